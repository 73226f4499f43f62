package volume

import (
	"errors"

	"github.com/nspcc-dev/emfs/pkg/namespace"
	"github.com/nspcc-dev/emfs/pkg/recordstore"
)

// Errors returned by volume operations. See namespace package for details.
var (
	ErrInvalidPath       = namespace.ErrInvalidPath
	ErrNotFound          = namespace.ErrNotFound
	ErrDirectoryNotFound = namespace.ErrDirectoryNotFound
	ErrFileNotFound      = namespace.ErrFileNotFound
	ErrDirectoryNotEmpty = namespace.ErrDirectoryNotEmpty
	ErrRootProtected     = namespace.ErrRootProtected
	ErrPathCollision     = namespace.ErrPathCollision
	ErrFileExists        = namespace.ErrFileExists
	ErrAccessDenied      = namespace.ErrAccessDenied
	ErrTimeOutOfRange    = namespace.ErrTimeOutOfRange
	ErrStoreFault        = namespace.ErrStoreFault

	// ErrWrongPassword is the cause of ErrStoreFault for volumes opened
	// with a wrong password.
	ErrWrongPassword = recordstore.ErrWrongPassword

	// ErrClosed is returned for operations on closed streams and volumes.
	ErrClosed = errors.New("closed")
)
