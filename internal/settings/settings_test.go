package settings

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSettings(t *testing.T, dir string, content string) string {
	t.Helper()
	path := filepath.Join(dir, FileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func fakeUnison(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "unison")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\nexit 0\n"), 0o755))
	return path
}

func validDocument(unison, logDir string) string {
	return `{
	"unison_path": "` + filepath.ToSlash(unison) + `",
	"log_dir": "` + filepath.ToSlash(logDir) + `",
	"profile_dir": "~/.unison",
	"local_sync": {
		"roots_prefix": ["", "backup"],
		"roots": [["Documents", "docs"], ["Pictures", "pics"]]
	}
}`
}

func TestLoad_ReadsDocument(t *testing.T) {
	tmp := t.TempDir()
	unison := fakeUnison(t, tmp)
	path := writeSettings(t, tmp, validDocument(unison, tmp))
	home := filepath.Join(tmp, "home")

	s, err := Load(path, home)
	require.NoError(t, err)

	assert.Equal(t, path, s.Path)
	assert.Equal(t, filepath.ToSlash(unison), filepath.ToSlash(s.UnisonPath))
	assert.Equal(t, filepath.Join(home, ".unison"), s.ProfileDir)
	assert.Equal(t, []string{"", "backup"}, s.LocalSync.RootsPrefix)
	assert.Equal(t, [][]string{{"Documents", "docs"}, {"Pictures", "pics"}}, s.LocalSync.Roots)
}

func TestLoad_Errors(t *testing.T) {
	tmp := t.TempDir()

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(tmp, "nope.json"), tmp)
		assert.ErrorIs(t, err, ErrInvalidSettings)
		assert.Contains(t, err.Error(), "nope.json")
	})

	t.Run("malformed json", func(t *testing.T) {
		dir := t.TempDir()
		path := writeSettings(t, dir, `{"unison_path": `)
		_, err := Load(path, tmp)
		assert.ErrorIs(t, err, ErrInvalidSettings)
	})
}

func TestLoad_EnvOverrides(t *testing.T) {
	tmp := t.TempDir()
	unison := fakeUnison(t, tmp)
	path := writeSettings(t, tmp, validDocument("/does/not/exist", tmp))

	t.Setenv("UNISYNC_UNISON_PATH", unison)

	s, err := Load(path, tmp)
	require.NoError(t, err)
	assert.Equal(t, unison, s.UnisonPath)
	assert.NoError(t, s.Validate(ModeBatch))
}

func TestLoad_EnvOverridesKeyMissingFromFile(t *testing.T) {
	tmp := t.TempDir()
	unison := fakeUnison(t, tmp)
	path := writeSettings(t, tmp, `{
	"log_dir": "`+filepath.ToSlash(tmp)+`",
	"local_sync": {"roots_prefix": ["", "backup"], "roots": []}
}`)

	t.Setenv("UNISYNC_UNISON_PATH", unison)
	t.Setenv("UNISYNC_PROFILE_DIR", "~/profiles")

	s, err := Load(path, tmp)
	require.NoError(t, err)
	assert.Equal(t, unison, s.UnisonPath)
	assert.Equal(t, filepath.Join(tmp, "profiles"), s.ProfileDir)
	assert.NoError(t, s.Validate(ModeBatch))
}

func TestLoad_DotEnvBesideSettings(t *testing.T) {
	tmp := t.TempDir()
	logDir := filepath.Join(tmp, "logs")
	require.NoError(t, os.Mkdir(logDir, 0o755))
	path := writeSettings(t, tmp, validDocument(fakeUnison(t, tmp), "/does/not/exist"))
	require.NoError(t, os.WriteFile(filepath.Join(tmp, ".env"), []byte("UNISYNC_LOG_DIR="+logDir+"\n"), 0o644))

	// godotenv sets the process env directly; register cleanup through t.Setenv.
	t.Setenv("UNISYNC_LOG_DIR", "")
	require.NoError(t, os.Unsetenv("UNISYNC_LOG_DIR"))

	s, err := Load(path, tmp)
	require.NoError(t, err)
	assert.Equal(t, logDir, s.LogDir)
}

func TestValidate(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("relies on unix execute bits")
	}
	tmp := t.TempDir()
	unison := fakeUnison(t, tmp)
	notExec := filepath.Join(tmp, "unison-noexec")
	require.NoError(t, os.WriteFile(notExec, []byte("x"), 0o644))

	base := func() *Settings {
		return &Settings{
			UnisonPath: unison,
			LogDir:     tmp,
			LocalSync: LocalSync{
				RootsPrefix: []string{"a", "b"},
				Roots:       [][]string{{"x", "y"}},
			},
			Path:     filepath.Join(tmp, FileName),
			rootsSet: true,
		}
	}

	tests := []struct {
		name    string
		mutate  func(s *Settings)
		mode    Mode
		wantErr error
		wantMsg string
	}{
		{name: "valid batch", mutate: func(s *Settings) {}, mode: ModeBatch},
		{name: "valid profile without local_sync", mutate: func(s *Settings) { s.LocalSync = LocalSync{}; s.rootsSet = false }, mode: ModeProfile},
		{name: "empty roots is valid", mutate: func(s *Settings) { s.LocalSync.Roots = nil }, mode: ModeBatch},
		{
			name:    "missing unison",
			mutate:  func(s *Settings) { s.UnisonPath = filepath.Join(tmp, "missing") },
			mode:    ModeProfile,
			wantErr: ErrUnisonNotFound,
			wantMsg: "Unison not found at [" + filepath.Join(tmp, "missing") + "]",
		},
		{
			name:    "unison is a directory",
			mutate:  func(s *Settings) { s.UnisonPath = tmp },
			mode:    ModeBatch,
			wantErr: ErrUnisonNotFound,
		},
		{
			name:    "unison not executable",
			mutate:  func(s *Settings) { s.UnisonPath = notExec },
			mode:    ModeBatch,
			wantErr: ErrUnisonNotFound,
			wantMsg: "not executable",
		},
		{name: "unset unison", mutate: func(s *Settings) { s.UnisonPath = "" }, mode: ModeBatch, wantErr: ErrInvalidSettings},
		{
			name:    "missing log dir",
			mutate:  func(s *Settings) { s.LogDir = filepath.Join(tmp, "nologs") },
			mode:    ModeProfile,
			wantErr: ErrLogDirMissing,
			wantMsg: "Log directory [" + filepath.Join(tmp, "nologs") + "] does not exist",
		},
		{name: "one prefix", mutate: func(s *Settings) { s.LocalSync.RootsPrefix = []string{"a"} }, mode: ModeBatch, wantErr: ErrInvalidSettings},
		{name: "roots absent", mutate: func(s *Settings) { s.rootsSet = false }, mode: ModeBatch, wantErr: ErrInvalidSettings},
		{
			name:    "ragged pair",
			mutate:  func(s *Settings) { s.LocalSync.Roots = [][]string{{"x", "y"}, {"only"}} },
			mode:    ModeBatch,
			wantErr: ErrInvalidSettings,
			wantMsg: "local_sync.roots[1]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := base()
			tt.mutate(s)
			err := s.Validate(tt.mode)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
			if tt.wantMsg != "" {
				assert.Contains(t, err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestLogAndProfilePaths(t *testing.T) {
	s := &Settings{LogDir: "/var/log/unisync"}
	assert.Equal(t, filepath.Join("/var/log/unisync", BatchLogName), s.LogPath(BatchLogName))
	assert.Equal(t, "work", s.ProfilePath("work"))

	s.ProfileDir = "/home/a/profiles"
	assert.Equal(t, filepath.Join("/home/a/profiles", "work"), s.ProfilePath("work"))
}

func TestResolvePath(t *testing.T) {
	t.Run("flag wins", func(t *testing.T) {
		t.Setenv("UNISYNC_SETTINGS", "/env/settings.json")
		assert.Equal(t, "/flag/settings.json", ResolvePath("/flag/settings.json", true))
	})

	t.Run("env when flag unchanged", func(t *testing.T) {
		t.Setenv("UNISYNC_SETTINGS", "/env/settings.json")
		assert.Equal(t, "/env/settings.json", ResolvePath("/flag/settings.json", false))
	})

	t.Run("relative flag is made absolute", func(t *testing.T) {
		wd, err := os.Getwd()
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(wd, "conf", FileName), ResolvePath(filepath.Join("conf", FileName), true))
	})

	t.Run("home in env is expanded", func(t *testing.T) {
		if runtime.GOOS == "windows" {
			t.Skip("home comes from USERPROFILE")
		}
		home := t.TempDir()
		t.Setenv("HOME", home)
		t.Setenv("UNISYNC_SETTINGS", "~/sync/settings.json")
		assert.Equal(t, filepath.Join(home, "sync", FileName), ResolvePath("", false))
	})

	t.Run("default file name", func(t *testing.T) {
		t.Setenv("UNISYNC_SETTINGS", "")
		assert.Equal(t, FileName, ResolvePath("", false))
	})
}

func TestModeString(t *testing.T) {
	assert.Equal(t, "batch", ModeBatch.String())
	assert.Equal(t, "profile", ModeProfile.String())
	assert.Equal(t, "mode(7)", Mode(7).String())
}
