package ui

import (
	"fmt"
	"os"

	"github.com/espbuild/compmgr/usefulerror"
)

// ErrorExit prints the error and exits with a non-zero status code.
// UsefulErrors render their human message and help text; anything else
// falls back to the raw error string.
func ErrorExit(err error) {
	StopProgressWriter()

	usefulErr, ok := usefulerror.AsUsefulError(err)
	if !ok {
		fmt.Fprintln(os.Stderr, Colors.Red("Error: %s", err))
		os.Exit(1)
	}

	fmt.Fprintln(os.Stderr, Colors.Red("Error occurred: %s", usefulErr.HumanError()))
	fmt.Fprintln(os.Stderr, Colors.Yellow("%s", usefulErr.Help()))
	fmt.Fprintln(os.Stderr, Colors.Dim("Details: %s", err))

	os.Exit(1)
}
