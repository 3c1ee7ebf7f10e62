// Package config loads CommuniDirect settings from config.toml under the
// application root directory, creating the file with defaults on first run.
package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Built-in defaults used when config.toml is absent or incomplete
const (
	DefaultPort          = 9833
	DefaultIP            = "127.0.0.1"
	DefaultLogDir        = "~/.communidirect/logs"
	DefaultAccessLogName = "access.log"
	DefaultErrLogName    = "err.log"

	ConfigFile = "config.toml"
)

// Settings holds the CommuniDirect runtime configuration
type Settings struct {
	Port          int    `toml:"port"`
	IP            string `toml:"ip"`
	LogDir        string `toml:"log_dir"`
	AccessLogName string `toml:"access_log_name"`
	ErrLogName    string `toml:"err_log_name"`
}

// Defaults returns the compiled-in settings
func Defaults() Settings {
	return Settings{
		Port:          DefaultPort,
		IP:            DefaultIP,
		LogDir:        DefaultLogDir,
		AccessLogName: DefaultAccessLogName,
		ErrLogName:    DefaultErrLogName,
	}
}

// DefaultRoot returns ~/.communidirect
func DefaultRoot() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".communidirect"
	}
	return filepath.Join(home, ".communidirect")
}

// Load reads config.toml under root, writing the default file first when it
// does not exist. Missing keys fall back per-key to their defaults; an
// unreadable file falls back wholesale rather than failing. The configured
// log directory is created on every load.
func Load(root string) (*Settings, error) {
	if err := os.MkdirAll(root, 0700); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	settings := Defaults()
	configPath := filepath.Join(root, ConfigFile)

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := writeSettings(configPath, settings); err != nil {
			return nil, err
		}
		log.Printf("Wrote default config to %s", configPath)
	} else {
		data, err := os.ReadFile(configPath)
		if err != nil {
			log.Printf("⚠️  Failed to read config, using defaults: %v", err)
		} else if err := toml.Unmarshal(data, &settings); err != nil {
			// Unmarshal overlays onto the defaults, so any key the file
			// omits keeps its default value
			log.Printf("⚠️  Failed to parse config, using defaults: %v", err)
			settings = Defaults()
		}
	}

	logDir := ResolveHome(settings.LogDir)
	if err := os.MkdirAll(logDir, 0700); err != nil {
		log.Printf("⚠️  Failed to create log directory %s: %v", logDir, err)
	}

	return &settings, nil
}

func writeSettings(path string, s Settings) error {
	data, err := toml.Marshal(s)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write default config: %w", err)
	}
	return nil
}

// ResolveHome expands a leading ~ to the current user's home directory
func ResolveHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// Addr returns the ip:port listen address
func (s *Settings) Addr() string {
	return fmt.Sprintf("%s:%d", s.IP, s.Port)
}

// AccessLogPath returns the full path of the access log file
func (s *Settings) AccessLogPath() string {
	return filepath.Join(ResolveHome(s.LogDir), s.AccessLogName)
}

// ErrLogPath returns the full path of the error log file
func (s *Settings) ErrLogPath() string {
	return filepath.Join(ResolveHome(s.LogDir), s.ErrLogName)
}
