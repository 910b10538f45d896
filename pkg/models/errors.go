package models

import (
	"github.com/espbuild/compmgr/usefulerror"
)

var (
	ErrInvalidComponentName = usefulerror.Useful().
		WithCode(usefulerror.ErrCodeInvalidArgument).
		WithHumanError("The component name is not in the expected namespace/name format.").
		WithHelp("Declare components as \"namespace/name\", for example \"espressif/mdns\".").
		Msg("invalid component name")
)
