package installer

import (
	"github.com/espbuild/compmgr/usefulerror"
)

var (
	ErrFilesystem = usefulerror.Useful().
			WithCode(usefulerror.ErrCodeFilesystem).
			WithHumanError("A filesystem operation failed while installing the component.").
			WithHelp("Check permissions and free space on the components directory, then try again.").
			Msg("filesystem operation failed")

	// ErrManifestMissing signals a malformed upstream package: a
	// successfully unpacked component must carry a manifest.
	ErrManifestMissing = usefulerror.Useful().
				WithCode(usefulerror.ErrCodeManifestMissing).
				WithHumanError("The installed component does not contain a component manifest.").
				WithHelp("The upstream package appears to be malformed. Report this to the component's publisher.").
				Msg("component manifest missing after install")
)
