// Package settings loads and validates the unisync settings document.
//
// The document is JSON, read once per process with a private viper instance so
// that no settings state is shared between callers:
//
//	{
//	  "unison_path": "/usr/local/bin/unison",
//	  "log_dir": "~/logs",
//	  "profile_dir": "~/.unison",
//	  "local_sync": {
//	    "roots_prefix": ["", "/mnt/backup"],
//	    "roots": [["Documents", "documents"], ["Pictures", "pictures"]]
//	  }
//	}
//
// Any key can be overridden from the environment with the UNISYNC_ prefix,
// e.g. UNISYNC_UNISON_PATH or UNISYNC_LOG_DIR. A .env file next to the settings
// file is loaded first when present.
package settings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/openmined/unisync/internal/utils"
	"github.com/spf13/viper"
)

const (
	FileName  = "settings.json"
	EnvPrefix = "UNISYNC"

	// BatchLogName is the log file used by batch-root runs.
	BatchLogName = "local-sync.log"
)

// envKeys are bound explicitly so overrides apply even when the file omits them.
var envKeys = []string{"unison_path", "log_dir", "profile_dir"}

var (
	ErrInvalidSettings = errors.New("invalid settings")
	ErrUnisonNotFound  = errors.New("unison not found")
	ErrLogDirMissing   = errors.New("log directory missing")
)

// Mode selects which parts of the document are required.
type Mode int

const (
	ModeBatch Mode = iota
	ModeProfile
)

// String returns the mode name used in logs.
func (m Mode) String() string {
	switch m {
	case ModeBatch:
		return "batch"
	case ModeProfile:
		return "profile"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// LocalSync is the batch-root section of the document.
type LocalSync struct {
	RootsPrefix []string   `mapstructure:"roots_prefix"`
	Roots       [][]string `mapstructure:"roots"`
}

// Settings is immutable once returned by Load.
type Settings struct {
	UnisonPath string    `mapstructure:"unison_path"`
	LogDir     string    `mapstructure:"log_dir"`
	ProfileDir string    `mapstructure:"profile_dir"`
	LocalSync  LocalSync `mapstructure:"local_sync"`

	// Path is the file the settings were read from.
	Path string `mapstructure:"-"`

	rootsSet bool
}

// Error carries an operator-facing message and a sentinel for errors.Is.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string { return e.Msg }
func (e *Error) Unwrap() error { return e.Kind }

func newError(kind error, format string, args ...any) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Load reads the settings file at path. A leading `~` in path-valued keys is
// expanded against home.
func Load(path string, home string) (*Settings, error) {
	if err := loadDotEnv(filepath.Dir(path)); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range envKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, newError(ErrInvalidSettings, "Env override for %s could not be bound: %v", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, newError(ErrInvalidSettings, "Settings file [%s] could not be read: %v", path, err)
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, newError(ErrInvalidSettings, "Settings file [%s] is malformed: %v", path, err)
	}

	s.Path = path
	s.rootsSet = v.IsSet("local_sync.roots")
	s.UnisonPath = utils.ExpandHome(s.UnisonPath, home)
	s.LogDir = utils.ExpandHome(s.LogDir, home)
	s.ProfileDir = utils.ExpandHome(s.ProfileDir, home)

	return &s, nil
}

func loadDotEnv(dir string) error {
	envFile := filepath.Join(dir, ".env")
	if !utils.FileExists(envFile) {
		return nil
	}
	// godotenv never overrides variables that are already set.
	if err := godotenv.Load(envFile); err != nil {
		return newError(ErrInvalidSettings, "Env file [%s] could not be loaded: %v", envFile, err)
	}
	return nil
}

// Validate checks the preconditions that must hold before any job runs.
func (s *Settings) Validate(mode Mode) error {
	if s.UnisonPath == "" {
		return newError(ErrInvalidSettings, "unison_path is not set in [%s]", s.Path)
	}
	if !utils.FileExists(s.UnisonPath) {
		return newError(ErrUnisonNotFound, "Unison not found at [%s]", s.UnisonPath)
	}
	if !utils.IsExecutable(s.UnisonPath) {
		return newError(ErrUnisonNotFound, "Unison at [%s] is not executable", s.UnisonPath)
	}

	if s.LogDir == "" {
		return newError(ErrInvalidSettings, "log_dir is not set in [%s]", s.Path)
	}
	if !utils.DirExists(s.LogDir) {
		return newError(ErrLogDirMissing, "Log directory [%s] does not exist", s.LogDir)
	}

	if mode == ModeBatch {
		return s.validateLocalSync()
	}
	return nil
}

func (s *Settings) validateLocalSync() error {
	if len(s.LocalSync.RootsPrefix) != 2 {
		return newError(ErrInvalidSettings,
			"local_sync.roots_prefix must have exactly 2 entries, got %d", len(s.LocalSync.RootsPrefix))
	}
	if !s.rootsSet {
		return newError(ErrInvalidSettings, "local_sync.roots is not set in [%s]", s.Path)
	}
	for i, pair := range s.LocalSync.Roots {
		if len(pair) != 2 {
			return newError(ErrInvalidSettings,
				"local_sync.roots[%d] must have exactly 2 entries, got %d", i, len(pair))
		}
	}
	return nil
}

// LogPath returns the log file for a run named name.
func (s *Settings) LogPath(name string) string {
	return filepath.Join(s.LogDir, name)
}

// ProfilePath returns the profile argument passed to unison. Without a
// profile_dir the bare name is used and unison resolves it itself.
func (s *Settings) ProfilePath(name string) string {
	if s.ProfileDir == "" {
		return name
	}
	return filepath.Join(s.ProfileDir, name)
}

// ResolvePath picks the settings file, honoring in order:
// 1) an explicit --settings flag
// 2) the UNISYNC_SETTINGS environment variable
// 3) settings.json next to the executable
// 4) settings.json in the working directory
//
// Paths from 1) and 2) are made absolute with `~` expanded.
func ResolvePath(flagValue string, flagChanged bool) string {
	if flagChanged && flagValue != "" {
		return absPath(flagValue)
	}

	if envPath := os.Getenv(EnvPrefix + "_SETTINGS"); envPath != "" {
		return absPath(envPath)
	}

	if dir, err := utils.ExecutableDir(); err == nil {
		candidate := filepath.Join(dir, FileName)
		if utils.FileExists(candidate) {
			return candidate
		}
	}

	return FileName
}

func absPath(path string) string {
	resolved, err := utils.ResolvePath(path)
	if err != nil {
		return path
	}
	return resolved
}
