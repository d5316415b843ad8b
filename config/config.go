package config

import (
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Log formats.
const (
	FormatJSON = "json"
	FormatText = "text"
)

// Config is the whole editor configuration.
type Config struct {
	App           AppConfig           `yaml:"app"`
	Editor        EditorConfig        `yaml:"editor"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// Validate validates every section.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Editor.Validate(); err != nil {
		return err
	}
	return c.Observability.Validate()
}

// AppConfig holds process level settings.
type AppConfig struct {
	LogLevel  slog.Level `yaml:"log_level"`
	LogFormat string     `yaml:"log_format"`
}

// Validate validates the application configuration.
func (c *AppConfig) Validate() error {
	if c.LogFormat == "" {
		c.LogFormat = FormatJSON
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.LogFormat, validation.In(FormatJSON, FormatText)),
	)
}

// EditorConfig holds the constants of the interactive controller.
type EditorConfig struct {
	// UseStaffLink lets relation partners decide the staff of an ambiguous glyph.
	UseStaffLink bool `yaml:"use_staff_link"`
	// UseStaffProximity accepts the nearest staff when close enough.
	UseStaffProximity bool `yaml:"use_staff_proximity"`
	// GutterRatio is the vertical margin, as ratio of inter-staff gutter.
	GutterRatio float64 `yaml:"gutter_ratio"`
	// PrintWatch logs the stop watch of glyph rebuild.
	PrintWatch bool `yaml:"print_watch"`
	// MultiDeleteConfirm asks before deleting more than one inter.
	MultiDeleteConfirm bool `yaml:"multi_delete_confirm"`
	// HeadDilation is the ring, in interline fraction, rebuilt around removed inters.
	HeadDilation float64 `yaml:"head_dilation"`
	// MaxLyricsInjection is the largest syllable count solved exactly against chords.
	MaxLyricsInjection int `yaml:"max_lyrics_injection"`
}

// Validate validates the editor configuration.
func (c *EditorConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.GutterRatio, validation.Min(0.0), validation.Max(1.0)),
		validation.Field(&c.HeadDilation, validation.Min(0.0), validation.Max(2.0)),
		validation.Field(&c.MaxLyricsInjection, validation.Min(0), validation.Max(10)),
	)
}

// ObservabilityConfig switches metrics and tracing.
type ObservabilityConfig struct {
	Metrics bool `yaml:"metrics"`
	Tracing bool `yaml:"tracing"`
}

// Validate validates the observability configuration.
func (c *ObservabilityConfig) Validate() error { return nil }

// NewDefault returns the configuration used when no file is given.
func NewDefault() *Config {
	return &Config{
		App: AppConfig{
			LogLevel:  slog.LevelInfo,
			LogFormat: FormatJSON,
		},
		Editor: DefaultEditor(),
		Observability: ObservabilityConfig{
			Metrics: true,
		},
	}
}

// DefaultEditor returns the default controller constants.
func DefaultEditor() EditorConfig {
	return EditorConfig{
		UseStaffLink:       true,
		UseStaffProximity:  true,
		GutterRatio:        0.33,
		MultiDeleteConfirm: true,
		HeadDilation:       0.15,
		MaxLyricsInjection: 7,
	}
}
