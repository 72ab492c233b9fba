package configloader

import (
	"errors"
	"io/fs"
	"os"
	"strings"

	"portfolio_reporter/internal/app/port"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// LoadDotEnv loads KEY=VALUE pairs from the given files into the process environment.
// Variables already set in the environment are kept. Missing files are skipped with a warning.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, path := range paths {
		if err := godotenv.Load(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				logrus.Warnf("%s not found, relying on process environment", path)
				continue
			}
			return err
		}
		logrus.Infof("Loaded environment from %s", path)
	}
	return nil
}

// EnvSettings resolves runtime settings from the process environment,
// falling back to the settings map of the config file.
type EnvSettings struct {
	fallback map[string]string
}

// NewEnvSettings creates EnvSettings with the given fallback values.
func NewEnvSettings(fallback map[string]string) *EnvSettings {
	copied := make(map[string]string, len(fallback))
	for k, v := range fallback {
		copied[k] = v
	}
	return &EnvSettings{fallback: copied}
}

// GetSetting implements port.RuntimeSettings.
func (s *EnvSettings) GetSetting(key string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return s.fallback[key]
}

// MapSettings is a fixed set of runtime settings.
type MapSettings map[string]string

// GetSetting implements port.RuntimeSettings.
func (m MapSettings) GetSetting(key string) string {
	return m[key]
}

// WithOverrides returns settings where the given values take precedence over base.
func WithOverrides(base port.RuntimeSettings, overrides map[string]string) MapSettingsOverlay {
	return MapSettingsOverlay{base: base, overrides: MapSettings(overrides)}
}

// MapSettingsOverlay layers fixed values on top of other settings.
type MapSettingsOverlay struct {
	base      port.RuntimeSettings
	overrides MapSettings
}

// GetSetting implements port.RuntimeSettings.
func (o MapSettingsOverlay) GetSetting(key string) string {
	if v := o.overrides.GetSetting(key); v != "" {
		return v
	}
	if o.base == nil {
		return ""
	}
	return o.base.GetSetting(key)
}
