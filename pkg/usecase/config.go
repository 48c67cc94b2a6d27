package usecase

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/m-mizutani/goerr/v2"
	"gopkg.in/yaml.v3"

	"github.com/m-mizutani/distup/pkg/domain"
	"github.com/m-mizutani/distup/pkg/domain/model"
)

// ConfigService loads the optional tool configuration file.
type ConfigService struct{}

func NewConfigService() *ConfigService {
	return &ConfigService{}
}

// GetDefaultPath returns the default config file location.
func (s *ConfigService) GetDefaultPath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".config", "distup", "config.yml")
}

// Load reads and parses the config file at path.
func (s *ConfigService) Load(path string) (*model.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, domain.ErrConfiguration.Wrap(err)
	}
	var config model.Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, domain.ErrConfiguration.Wrap(err)
	}
	return &config, nil
}

// LoadDefault loads the config from the default path, returning an empty
// config when no file exists.
func (s *ConfigService) LoadDefault() (*model.Config, error) {
	path := s.GetDefaultPath()
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return &model.Config{}, nil
	}
	return s.Load(path)
}

// GenerateTemplate returns a commented starting-point config.
func (s *ConfigService) GenerateTemplate() string {
	return `# distup configuration
#
# All settings are optional.

# Directory holding actions.json and startup.json.
# store_path: ~/.config/distup

# Override the wsl executable.
# wsl_binary: wsl.exe

# Fallback for the {{user}} token.
# default_user: root

# Default timeout (seconds) for startup steps without one.
# default_timeout_sec: 30
`
}

// SaveTemplate writes the template to path, refusing to overwrite an
// existing file unless force is set.
func (s *ConfigService) SaveTemplate(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return domain.ErrConfiguration.Wrap(goerr.New("config file already exists: " + path))
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return domain.ErrConfiguration.Wrap(err)
	}
	if err := os.WriteFile(path, []byte(s.GenerateTemplate()), 0600); err != nil {
		return domain.ErrConfiguration.Wrap(err)
	}
	return nil
}
