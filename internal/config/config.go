package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration
type Config struct {
	// Server configuration
	Server ServerConfig

	// Logging configuration
	Log LogConfig

	// External script configuration
	Scripts ScriptConfig

	// Git configuration
	Git GitConfig

	// Browser UI configuration
	UI UIConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration // 0 disables the limit
	ShutdownTimeout time.Duration
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string
	Format string // "json" or "text"
}

// ScriptConfig holds settings for the per-model scripts
type ScriptConfig struct {
	Dir        string
	Timeout    time.Duration // 0 disables the limit
	DiffEnvVar string        // Variable that carries the diff file path
}

// GitConfig holds settings for the git invocation
type GitConfig struct {
	Binary  string
	Ref     string
	WorkDir string // Empty means the server's working directory
}

// UIConfig holds settings for the static UI
type UIConfig struct {
	File   string // Resolved against Scripts.Dir when relative
	ShowQR bool
}

// Load loads configuration from environment variables with sensible defaults.
// The result is not validated; callers apply command-line overrides first.
func Load() (*Config, error) {
	// Try to load .env file (ignore errors - it's optional)
	_ = godotenv.Load(".env")

	cfg := &Config{
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getEnvAsInt("SERVER_PORT", 5000),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 0),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
		Scripts: ScriptConfig{
			Dir:        getEnv("SCRIPT_DIR", defaultScriptDir()),
			Timeout:    getEnvAsDuration("SCRIPT_TIMEOUT", 0),
			DiffEnvVar: getEnv("DIFF_ENV_VAR", "DIFF_FILE"),
		},
		Git: GitConfig{
			Binary:  getEnv("GIT_BINARY", "git"),
			Ref:     getEnv("GIT_DIFF_REF", "staging"),
			WorkDir: getEnv("GIT_WORK_DIR", ""),
		},
		UI: UIConfig{
			File:   getEnv("UI_FILE", "git_diff_ui.html"),
			ShowQR: getEnvAsBool("SHOW_QR", false),
		},
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Scripts.Dir == "" {
		return fmt.Errorf("script directory is required")
	}

	if c.Scripts.Timeout < 0 {
		return fmt.Errorf("script timeout must not be negative: %s", c.Scripts.Timeout)
	}

	if c.Scripts.DiffEnvVar == "" || strings.ContainsAny(c.Scripts.DiffEnvVar, "= ") {
		return fmt.Errorf("invalid diff environment variable name: %q", c.Scripts.DiffEnvVar)
	}

	if c.Git.Binary == "" {
		return fmt.Errorf("git binary is required")
	}

	if strings.TrimSpace(c.Git.Ref) == "" {
		return fmt.Errorf("git diff reference is required")
	}

	return nil
}

// Address returns the server address in the format host:port
func (s *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// URL returns the address a browser on this machine should open
func (s *ServerConfig) URL() string {
	host := s.Host
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	return fmt.Sprintf("http://%s:%d/", host, s.Port)
}

// UIPath returns the absolute-or-relative path of the UI asset
func (c *Config) UIPath() string {
	if filepath.IsAbs(c.UI.File) {
		return c.UI.File
	}
	return filepath.Join(c.Scripts.Dir, c.UI.File)
}

// defaultScriptDir is the directory holding the running executable. Binaries
// built by `go run` or `go test` live under the temp dir, so those fall back
// to the working directory.
func defaultScriptDir() string {
	wd, err := os.Getwd()
	if err != nil {
		wd = "."
	}

	exe, err := os.Executable()
	if err != nil {
		return wd
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}

	tempDir := os.TempDir()
	if resolved, err := filepath.EvalSymlinks(tempDir); err == nil {
		tempDir = resolved
	}

	return scriptDirFor(exe, tempDir, wd)
}

func scriptDirFor(exe, tempDir, wd string) string {
	dir := filepath.Dir(exe)
	rel, err := filepath.Rel(tempDir, dir)
	if err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return wd
	}
	return dir
}

// Helper functions to get environment variables

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(strings.TrimSpace(valueStr))
	if err != nil {
		return defaultValue
	}

	return value
}
