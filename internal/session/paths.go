package session

import (
	"os"
	"path/filepath"
)

// BaseDir returns ~/.wpp.
func BaseDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".wpp")
}

// Dir returns the session-specific directory.
func Dir(name string) string {
	return filepath.Join(BaseDir(), "sessions", name)
}

// LogDir returns the log directory for a session.
func LogDir(name string) string {
	return filepath.Join(Dir(name), "logs")
}

// LogPath returns the log file of one binary (wpptui, wppctl, wppd).
func LogPath(name, component string) string {
	return filepath.Join(LogDir(name), component+".log")
}

// EnvPath returns the per-session .env file.
func EnvPath(name string) string {
	return filepath.Join(Dir(name), ".env")
}

// BackendDir returns the data directory of the development backend.
func BackendDir(name string) string {
	return filepath.Join(Dir(name), "backend")
}

// BackendDBPath returns the development backend database path.
func BackendDBPath(name string) string {
	return filepath.Join(BackendDir(name), "wppd.db")
}

// ConfigPath returns the global config file path.
func ConfigPath() string {
	return filepath.Join(BaseDir(), "config.toml")
}

// EnsureDir creates the session directory tree with proper permissions.
func EnsureDir(name string) error {
	dirs := []string{
		Dir(name),
		LogDir(name),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0700); err != nil {
			return err
		}
	}
	return nil
}
