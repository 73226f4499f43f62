package namespace

import (
	"errors"
	"fmt"

	"github.com/nspcc-dev/emfs/pkg/namespace/path"
	"github.com/nspcc-dev/emfs/pkg/recordstore"
	"github.com/nspcc-dev/emfs/pkg/util/logicerr"
)

var (
	// ErrInvalidPath is returned for paths that can't be canonicalized or
	// violate structural rules of the operation.
	ErrInvalidPath = path.ErrInvalidPath

	// ErrNotFound is returned when the entry is missing.
	ErrNotFound = logicerr.New("entry not found")
	// ErrDirectoryNotFound is ErrNotFound for directories.
	ErrDirectoryNotFound = fmt.Errorf("%w: directory", ErrNotFound)
	// ErrFileNotFound is ErrNotFound for files.
	ErrFileNotFound = fmt.Errorf("%w: file", ErrNotFound)

	// ErrDirectoryNotEmpty is returned on removal of a directory having
	// children.
	ErrDirectoryNotEmpty = logicerr.New("directory is not empty")
	// ErrRootProtected is returned on attempts to remove or move the root.
	ErrRootProtected = logicerr.New("root directory can't be removed or moved")
	// ErrPathCollision is returned when the target path is occupied.
	ErrPathCollision = logicerr.New("path is already taken")
	// ErrFileExists is ErrPathCollision for an existing file.
	ErrFileExists = fmt.Errorf("%w: file exists", ErrPathCollision)
	// ErrAccessDenied is returned on attempts to use a directory as a file.
	ErrAccessDenied = logicerr.New("access denied")

	// ErrTimeOutOfRange is returned for timestamps the store can't keep.
	ErrTimeOutOfRange = logicerr.New("time is out of range")

	// ErrStoreFault wraps any failure of the underlying record store.
	ErrStoreFault = errors.New("record store fault")
)

// storeError converts record store failure into namespace error. Errors
// already classified by the namespace are returned as is.
func storeError(err error) error {
	switch {
	case err == nil, logicerr.Is(err), errors.Is(err, ErrStoreFault):
		return err
	case errors.Is(err, recordstore.ErrIndexCollision):
		return fmt.Errorf("%w: %w", ErrPathCollision, err)
	default:
		return fmt.Errorf("%w: %w", ErrStoreFault, err)
	}
}
