// ABOUTME: Configuration for store locations and CLI behavior.
// ABOUTME: Backed by viper: config file, environment, and flag bindings.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds the resolved settings for one invocation.
type Config struct {
	// DataDir is the directory holding the per-vendor store files.
	// Supports ~ expansion; defaults to the XDG data directory.
	DataDir string
	// Verbose enables extra progress output.
	Verbose bool
}

// Load resolves configuration from viper's merged sources.
func Load() *Config {
	return &Config{
		DataDir: dataDirOrDefault(viper.GetString("data-dir")),
		Verbose: viper.GetBool("verbose"),
	}
}

func dataDirOrDefault(dir string) string {
	if dir == "" {
		return DefaultDataDir()
	}
	return ExpandPath(dir)
}

// DefaultDataDir returns the default data directory following the XDG spec.
func DefaultDataDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, _ := os.UserHomeDir()
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "healthdb")
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) string {
	if path == "" {
		return ""
	}
	if path == "~" {
		home, _ := os.UserHomeDir()
		return home
	}
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}

// Init wires viper's config file search and environment prefix. Call once
// from the CLI before Load.
func Init(cfgFile string) error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		configDir := os.Getenv("XDG_CONFIG_HOME")
		if configDir == "" {
			home, _ := os.UserHomeDir()
			configDir = filepath.Join(home, ".config")
		}
		viper.AddConfigPath(filepath.Join(configDir, "healthdb"))
		viper.AddConfigPath(".")
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("HEALTHDB")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		// No config file found in the search path is fine; everything has
		// defaults. A file that exists but fails to parse is not.
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}
