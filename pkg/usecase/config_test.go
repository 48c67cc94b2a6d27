package usecase_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/m-mizutani/distup/pkg/usecase"
)

func TestConfigService(t *testing.T) {
	service := usecase.NewConfigService()

	t.Run("loads a config file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yml")
		content := `store_path: /tmp/distup-test
wsl_binary: /usr/local/bin/wsl
default_user: root
default_timeout_sec: 90
`
		gt.NoError(t, os.WriteFile(path, []byte(content), 0600))

		config, err := service.Load(path)
		gt.NoError(t, err)
		gt.Equal(t, "/tmp/distup-test", config.StorePath)
		gt.Equal(t, "/usr/local/bin/wsl", config.WSLBinary)
		gt.Equal(t, "root", config.DefaultUser)
		gt.Equal(t, 90*time.Second, config.StepTimeout())
	})

	t.Run("missing file is an error", func(t *testing.T) {
		_, err := service.Load(filepath.Join(t.TempDir(), "nope.yml"))
		gt.Error(t, err)
	})

	t.Run("invalid yaml is an error", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yml")
		gt.NoError(t, os.WriteFile(path, []byte(":\n\t:bad"), 0600))
		_, err := service.Load(path)
		gt.Error(t, err)
	})

	t.Run("zero config falls back to defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yml")
		gt.NoError(t, os.WriteFile(path, []byte("{}"), 0600))

		config, err := service.Load(path)
		gt.NoError(t, err)
		gt.Equal(t, 30*time.Second, config.StepTimeout())
	})

	t.Run("template parses as valid config", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yml")
		gt.NoError(t, service.SaveTemplate(path, false))

		config, err := service.Load(path)
		gt.NoError(t, err)
		gt.Equal(t, "", config.StorePath)
	})

	t.Run("save template refuses to overwrite without force", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yml")
		gt.NoError(t, service.SaveTemplate(path, false))
		gt.Error(t, service.SaveTemplate(path, false))
		gt.NoError(t, service.SaveTemplate(path, true))
	})
}
