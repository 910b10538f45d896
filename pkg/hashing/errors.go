package hashing

import (
	"github.com/espbuild/compmgr/usefulerror"
)

var (
	// ErrMarkerCorrupted indicates the cache marker exists but does not
	// hold a well-formed SHA-256 digest. Recoverable by re-installing
	// the component, which rewrites the marker.
	ErrMarkerCorrupted = usefulerror.Useful().
		WithCode(usefulerror.ErrCodeCacheCorruption).
		WithHumanError("The component cache marker is corrupted.").
		WithHelp("The component will be downloaded again automatically on the next install.").
		Msg("cache marker corrupted")
)
