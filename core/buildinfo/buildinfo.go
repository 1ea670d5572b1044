package buildinfo

// Set via -ldflags at build time:
//
//	-X 'github.com/m3rciful/familybudget/core/buildinfo.Version=v0.3.0'
//	-X 'github.com/m3rciful/familybudget/core/buildinfo.Commit=abcdef0'
//	-X 'github.com/m3rciful/familybudget/core/buildinfo.Date=2025-08-30T12:00:00Z'
var (
	// Version reports the semantic version or tag of the build.
	Version = "dev"
	// Commit reports the source control commit used for the build.
	Commit = "local"
	// Date reports the build timestamp in RFC3339 format.
	Date = ""
)

// String returns a compact "version (commit)" label for logs and /stats.
func String() string {
	if Commit == "" {
		return Version
	}
	return Version + " (" + Commit + ")"
}
