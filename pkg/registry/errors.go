package registry

import (
	"github.com/espbuild/compmgr/usefulerror"
)

var (
	ErrRegistryUnavailable = usefulerror.Useful().
				WithCode(usefulerror.ErrCodeRegistry).
				WithHumanError("The component registry could not be reached or returned an invalid response.").
				WithHelp("Check your network connection and try again. If the problem persists, the registry may be temporarily unavailable.").
				Msg("registry request failed")

	ErrComponentNotFound = usefulerror.Useful().
				WithCode("component_not_found").
				WithHumanError("The requested component does not exist in the registry.").
				WithHelp("Check the component namespace and name for typos.").
				Msg("component not found")

	ErrNoMatchingVersion = usefulerror.Useful().
				WithCode(usefulerror.ErrCodeNoMatchingVersion).
				WithHumanError("No published version of the component satisfies the requested constraint.").
				WithHelp("Relax the version constraint or check the available versions listed in the error.").
				Msg("no matching version")
)
