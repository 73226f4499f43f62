package cmderr

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// ExitErr carries the process exit code along with the error cause.
type ExitErr struct {
	Code  int
	Cause error
}

func (x ExitErr) Error() string { return x.Cause.Error() }

func (x ExitErr) Unwrap() error { return x.Cause }

// Code returns the exit code for err: zero for nil, the code of ExitErr
// in the chain or 1.
func Code(err error) int {
	if err == nil {
		return 0
	}

	var e ExitErr
	if errors.As(err, &e) {
		return e.Code
	}
	return 1
}

// Print writes err to w in the form commands report errors.
func Print(w io.Writer, err error) {
	fmt.Fprintln(w, "Error:", err)
}

// ExitOnErr writes error to os.Stderr and calls os.Exit with its Code.
// Does nothing if err is nil.
func ExitOnErr(err error) {
	if err != nil {
		Print(os.Stderr, err)
		os.Exit(Code(err))
	}
}
