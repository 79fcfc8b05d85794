// Command kbdash compiles YAML dashboard definitions into saved-object
// JSON that the platform's import API accepts.
//
// Usage:
//
//	kbdash compile [flags] file.yaml [file2.yaml ...]
//	kbdash check [flags] file.yaml [file2.yaml ...]
//	kbdash schema
//	kbdash watch [flags] file.yaml
//
// Exit codes:
//
//	0  All files compiled or checked cleanly (warnings allowed unless --strict)
//	1  One or more files have validation or compile errors
//	2  Input error (missing file, bad flags, unwritable output)
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/cockroachdb/errors"
)

const version = "0.1.0"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// exitError carries the exit code a command wants.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error { return e.err }

func exitWith(code int, err error) error {
	return &exitError{code: code, err: err}
}

func run(args []string, stdout, stderr io.Writer) int {
	cmd := newRootCmd(stdout, stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	if err == nil {
		return 0
	}

	var ee *exitError
	if errors.As(err, &ee) {
		if ee.err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", ee.err)
		}
		return ee.code
	}
	fmt.Fprintf(stderr, "Error: %v\n", err)
	return 2
}
