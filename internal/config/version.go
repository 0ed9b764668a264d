package config

// Version is the studio binary version.
// Set at build time via: -ldflags "-X github.com/graphstudio/studio/internal/config.Version=<tag>"
// Defaults to "dev" when built without ldflags.
var Version = "dev"
