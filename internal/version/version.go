package version

// Build metadata, overridable at link time:
//
//	go build -ldflags "-X tunelink/internal/version.Version=v1.2.3"
var (
	AppName   = "TuneLink"
	Version   = "dev"
	BuildDate = "unknown"
)
