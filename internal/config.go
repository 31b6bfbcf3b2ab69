package internal

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/darkroom/internal/platform"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App         ApplicationConfig `yaml:"app"`
	Platform    PlatformConfig    `yaml:"platform"`
	Storage     StorageConfig     `yaml:"storage"`
	Preferences PreferencesConfig `yaml:"preferences"`
	Camera      CameraConfig      `yaml:"camera"`
	Auth        AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Platform.Validate(); err != nil {
		return err
	}
	if err := c.Storage.Validate(); err != nil {
		return err
	}
	if err := c.Preferences.Validate(); err != nil {
		return err
	}
	if err := c.Camera.Validate(); err != nil {
		return err
	}
	return c.Auth.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
//
// PublicURL is the base URL clients use to reach this server; object URLs
// and converted file URIs are minted below it.
type HTTPConfig struct {
	Port      int    `yaml:"port"`
	PublicURL string `yaml:"public_url"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	if c.PublicURL == "" {
		c.PublicURL = fmt.Sprintf("http://localhost:%d", c.Port)
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
		validation.Field(&c.PublicURL, validation.Required, validation.By(absoluteHTTPURL)),
	)
}

func absoluteHTTPURL(value any) error {
	s, _ := value.(string)
	u, err := url.Parse(s)
	if err != nil {
		return err
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.New("must be an absolute http(s) URL")
	}
	return nil
}

// PlatformConfig selects the runtime environment.
type PlatformConfig struct {
	Mode string `yaml:"mode"`
}

// Validate validates the platform configuration.
func (c *PlatformConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(platform.ModeNative, platform.ModeBrowser)),
	)
}

// StorageConfig holds the root of the photo file store.
type StorageConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the storage configuration.
func (c *StorageConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// PreferencesConfig holds the SQLite key-value database location.
type PreferencesConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the preferences configuration.
func (c *PreferencesConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// CameraConfig holds the spool directory the device camera drops shots into.
type CameraConfig struct {
	SpoolPath string        `yaml:"spool_path"`
	Settle    time.Duration `yaml:"settle"`
}

// Validate validates the camera configuration.
func (c *CameraConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.SpoolPath, validation.Required),
		validation.Field(&c.Settle, validation.Min(time.Duration(0))),
	)
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local dev.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Platform: PlatformConfig{
			Mode: platform.ModeBrowser,
		},
		Storage: StorageConfig{
			Path: "./library",
		},
		Preferences: PreferencesConfig{
			Path: "./darkroom.db",
		},
		Camera: CameraConfig{
			SpoolPath: "./spool",
			Settle:    200 * time.Millisecond,
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
