package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	DefaultAPI     = "http://127.0.0.1:8000/api"
	DefaultTimeout = 30 * time.Second

	settingsFile = "config.yaml"
)

// Settings is the on-disk client configuration, ~/.scanconsole/config.yaml
type Settings struct {
	API              string        `yaml:"api"`
	Health           string        `yaml:"health"`
	Timeout          time.Duration `yaml:"timeout"`
	MinServerVersion string        `yaml:"min_server_version"`
}

func Default() *Settings {
	return &Settings{
		API:     DefaultAPI,
		Timeout: DefaultTimeout,
	}
}

// HealthURL returns the configured health endpoint, or the API base with
// its trailing /api segment replaced by /health.
func (s *Settings) HealthURL() string {
	if s.Health != "" {
		return s.Health
	}

	base := strings.TrimRight(s.API, "/")
	base = strings.TrimSuffix(base, "/api")

	return base + "/health"
}

// Load reads the settings file at path. A missing file yields the defaults.
func Load(path string) (*Settings, error) {
	s := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, errors.Wrapf(err, "read settings %s", path)
	}

	if err = yaml.Unmarshal(data, s); err != nil {
		return nil, errors.Wrapf(err, "parse settings %s", path)
	}

	if s.API == "" {
		s.API = DefaultAPI
	}
	if s.Timeout <= 0 {
		s.Timeout = DefaultTimeout
	}

	return s, nil
}

// Save writes the settings file, creating its folder when needed.
func (s *Settings) Save(path string) error {
	if err := MkFolder(filepath.Dir(path)); err != nil {
		return err
	}

	data, err := yaml.Marshal(s)
	if err != nil {
		return errors.Wrap(err, "encode settings")
	}

	return os.WriteFile(path, data, 0600)
}

// HomeDir is where the session database and settings live.
func HomeDir() (string, error) {
	if runtime.GOOS == "windows" {
		dir, err := os.Getwd()
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, "scanconsoledata"), nil
	}

	dir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ".scanconsole"), nil
}

func SettingsPath(home string) string {
	return filepath.Join(home, settingsFile)
}

func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func MkFolder(path string) error {
	if !Exists(path) {
		err := os.MkdirAll(path, os.FileMode(0700))
		if err != nil {
			return err
		}
	}
	return nil
}
