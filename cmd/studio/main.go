package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/graphstudio/studio/driver"
	"github.com/graphstudio/studio/internal/config"
)

// Build-time variables set via ldflags.
var (
	commit    = ""
	buildDate = ""
)

const defaultAddress = "http://localhost:8000"

var (
	flagAddress  string
	flagUsername string
	flagPassword string
	flagProfile  string
	flagFmt      string
)

func versionString() string {
	if commit != "" && buildDate != "" {
		return fmt.Sprintf("studio version %s (commit: %s, built: %s)", config.Version, commit, buildDate)
	}
	return fmt.Sprintf("studio version %s", config.Version)
}

type configFile struct {
	// Flat format
	Address  string `yaml:"address"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	// Profile format
	Profiles      map[string]configProfile `yaml:"profiles"`
	ActiveProfile string                   `yaml:"active_profile"`
}

type configProfile struct {
	Address  string `yaml:"address"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "studio",
		Short:   "Studio - run TypeQL queries and watch the answers lay themselves out",
		Version: versionString(),
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			resolveConfig()
		},
		SilenceUsage: true,
	}
	rootCmd.SetVersionTemplate("{{.Version}}\n")

	rootCmd.PersistentFlags().StringVar(&flagAddress, "address", defaultAddress, "TypeDB HTTP address (env: TYPEDB_ADDRESS)")
	rootCmd.PersistentFlags().StringVar(&flagUsername, "username", "", "TypeDB username (env: TYPEDB_USERNAME)")
	rootCmd.PersistentFlags().StringVar(&flagPassword, "password", "", "TypeDB password (env: TYPEDB_PASSWORD)")
	rootCmd.PersistentFlags().StringVar(&flagProfile, "profile", "", "Profile from ~/.studio/config.yaml")
	rootCmd.PersistentFlags().StringVar(&flagFmt, "format", "json", "Output format: json|table|quiet, graphs also d3|dot|mermaid")

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newHealthCmd())
	rootCmd.AddCommand(newDatabasesCmd())
	rootCmd.AddCommand(newQueryCmd())
	rootCmd.AddCommand(newVisualiseCmd())

	return rootCmd
}

// resolveConfig fills connection settings: flag, then env, then config file.
func resolveConfig() {
	if flagAddress == defaultAddress {
		if v := os.Getenv("TYPEDB_ADDRESS"); v != "" {
			flagAddress = v
		}
	}
	if flagUsername == "" {
		flagUsername = os.Getenv("TYPEDB_USERNAME")
	}
	if flagPassword == "" {
		flagPassword = os.Getenv("TYPEDB_PASSWORD")
	}

	if p, ok := loadProfile(); ok {
		if flagAddress == defaultAddress && p.Address != "" {
			flagAddress = p.Address
		}
		if flagUsername == "" {
			flagUsername = p.Username
		}
		if flagPassword == "" {
			flagPassword = p.Password
		}
	}

	if flagUsername == "" {
		flagUsername = "admin"
	}
	if flagPassword == "" {
		flagPassword = "password"
	}
}

// loadProfile reads ~/.studio/config.yaml and returns the selected profile,
// falling back to the flat keys.
func loadProfile() (configProfile, bool) {
	home, err := os.UserHomeDir()
	if err != nil {
		return configProfile{}, false
	}
	data, err := os.ReadFile(filepath.Join(home, ".studio", "config.yaml"))
	if err != nil {
		return configProfile{}, false
	}
	var cfg configFile
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return configProfile{}, false
	}

	resolved := configProfile{Address: cfg.Address, Username: cfg.Username, Password: cfg.Password}
	if cfg.Profiles != nil {
		name := flagProfile
		if name == "" {
			name = cfg.ActiveProfile
		}
		if name == "" {
			name = "default"
		}
		if p, ok := cfg.Profiles[name]; ok {
			if p.Address != "" {
				resolved.Address = p.Address
			}
			if p.Username != "" {
				resolved.Username = p.Username
			}
			if p.Password != "" {
				resolved.Password = p.Password
			}
		}
	}
	return resolved, true
}

func newDriver() *driver.Driver {
	return driver.New(flagAddress, driver.WithCredentials(flagUsername, flagPassword))
}

func fatal(msg string, err error) {
	fmt.Fprintf(os.Stderr, "Error: %s: %v\n", msg, err)
	os.Exit(1)
}
