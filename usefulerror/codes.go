package usefulerror

// Standard error codes reused across the project. Human friendly
// identifiers, not posix codes. Keep this minimal, reuse before adding.
const (
	ErrCodeInvalidArgument   = "invalid_argument"
	ErrCodeConstraintParse   = "constraint_parse"
	ErrCodeRegistry          = "registry_error"
	ErrCodeNoMatchingVersion = "no_matching_version"
	ErrCodeFilesystem        = "filesystem_error"
	ErrCodeCacheCorruption   = "cache_corruption"
	ErrCodeManifestMissing   = "manifest_missing"
	ErrCodeUnknown           = "unknown"
)
