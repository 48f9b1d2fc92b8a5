package config

import (
	"net/url"
	"os"
)

// SettingSource represents where a setting's value comes from.
type SettingSource string

const (
	SourceEnv    SettingSource = "env"
	SourceConfig SettingSource = "config"
	SourceNone   SettingSource = "none"
)

// SettingStatus describes one connection setting for `smartb3 status`.
type SettingStatus struct {
	Name   string        `json:"name"`
	Source SettingSource `json:"source"`
	IsSet  bool          `json:"is_set"`
	Masked string        `json:"masked,omitempty"` // e.g., "tok...abc"
}

// CheckSettings reports the backend connection settings with secrets
// masked.
func CheckSettings(cfg *Config) []SettingStatus {
	base := checkSetting("Backend URL", cfg.Backend.BaseURL, EnvPrefix+"_BACKEND_BASE_URL")
	base.Masked = redactURL(cfg.Backend.BaseURL)
	return []SettingStatus{
		base,
		checkSetting("Backend API Token", cfg.Backend.APIToken, EnvPrefix+"_BACKEND_API_TOKEN"),
	}
}

// checkSetting checks if a value is set and where it came from.
func checkSetting(name, value, envVar string) SettingStatus {
	status := SettingStatus{
		Name:  name,
		IsSet: value != "",
	}

	if value != "" {
		if os.Getenv(envVar) != "" {
			status.Source = SourceEnv
		} else {
			status.Source = SourceConfig
		}
		status.Masked = maskKey(value)
	} else {
		status.Source = SourceNone
	}

	return status
}

// redactURL hides any password embedded in a URL.
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return maskKey(raw)
	}
	return u.Redacted()
}

// maskKey masks a secret for display, showing only first 3 and last 3 chars.
func maskKey(key string) string {
	if len(key) <= 8 {
		return "***"
	}
	return key[:3] + "..." + key[len(key)-3:]
}
