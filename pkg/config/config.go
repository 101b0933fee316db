package config

import (
	"fmt"
	"time"

	"gitlab.com/tinyland/lab/pulsebar/pkg/sources/mpdsource"
	"gitlab.com/tinyland/lab/pulsebar/pkg/sources/sysload"
	"gitlab.com/tinyland/lab/pulsebar/pkg/sources/volume"
	"gitlab.com/tinyland/lab/pulsebar/pkg/sources/weather"
)

// Config is the root configuration.
type Config struct {
	General GeneralConfig `toml:"general"`
	Sources SourcesConfig `toml:"sources"`
}

// GeneralConfig holds settings that are not tied to one source.
type GeneralConfig struct {
	// Tick is the master render cadence.
	Tick Duration `toml:"tick"`

	// Output selects the stream format: "auto" (protocol unless stdout is
	// a terminal), "protocol", or "plain".
	Output string `toml:"output"`

	// StopOnHide advertises pause/resume signals in the protocol header so
	// the bar can stop updates while hidden.
	StopOnHide bool `toml:"stop_on_hide"`

	// LogLevel is "debug", "info", "warn", or "error".
	LogLevel string `toml:"log_level"`
}

// SourcesConfig groups the per-source sections.
type SourcesConfig struct {
	MPD     MPDConfig     `toml:"mpd"`
	Volume  VolumeConfig  `toml:"volume"`
	Weather WeatherConfig `toml:"weather"`
	Sysload SysloadConfig `toml:"sysload"`
}

// MPDConfig controls the now-playing source.
type MPDConfig struct {
	Enabled    bool     `toml:"enabled"`
	Host       string   `toml:"host"`
	Interval   Duration `toml:"interval"`
	RetryDelay Duration `toml:"retry_delay"`
	Fallback   string   `toml:"fallback"`
}

// VolumeConfig controls the mixer source.
type VolumeConfig struct {
	Enabled  bool     `toml:"enabled"`
	Command  string   `toml:"command"`
	Sink     string   `toml:"sink"`
	Interval Duration `toml:"interval"`
	Fallback string   `toml:"fallback"`
}

// WeatherConfig controls the weather source.
type WeatherConfig struct {
	Enabled  bool     `toml:"enabled"`
	Command  string   `toml:"command"`
	Check    bool     `toml:"check"`
	Interval Duration `toml:"interval"`
	Fallback string   `toml:"fallback"`
}

// SysloadConfig controls the optional CPU/RAM source.
type SysloadConfig struct {
	Enabled  bool     `toml:"enabled"`
	Interval Duration `toml:"interval"`
	Fallback string   `toml:"fallback"`
}

// DefaultConfig returns the stock configuration: the three classic sources
// enabled at their original cadences, sysload off.
func DefaultConfig() *Config {
	return &Config{
		General: GeneralConfig{
			Tick:       Duration{100 * time.Millisecond},
			Output:     "auto",
			StopOnHide: true,
			LogLevel:   "info",
		},
		Sources: SourcesConfig{
			MPD: MPDConfig{
				Enabled:    true,
				Host:       mpdsource.DefaultHost,
				Interval:   Duration{mpdsource.DefaultInterval},
				RetryDelay: Duration{mpdsource.DefaultRetryDelay},
				Fallback:   mpdsource.Fallback,
			},
			Volume: VolumeConfig{
				Enabled:  true,
				Command:  "wpctl",
				Sink:     volume.DefaultSink,
				Interval: Duration{volume.DefaultInterval},
				Fallback: volume.Fallback,
			},
			Weather: WeatherConfig{
				Enabled:  true,
				Command:  "bom-buddy",
				Interval: Duration{weather.DefaultInterval},
				Fallback: weather.Fallback,
			},
			Sysload: SysloadConfig{
				Enabled:  false,
				Interval: Duration{sysload.DefaultInterval},
				Fallback: sysload.Fallback,
			},
		},
	}
}

// Validate checks the configuration for values that would break the render
// loop or a poller.
func (c *Config) Validate() error {
	if c.General.Tick.Duration <= 0 {
		return fmt.Errorf("config: general.tick must be positive")
	}
	switch c.General.Output {
	case "auto", "protocol", "plain":
	default:
		return fmt.Errorf("config: general.output %q (want auto, protocol, or plain)", c.General.Output)
	}
	switch c.General.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: general.log_level %q (want debug, info, warn, or error)", c.General.LogLevel)
	}
	return nil
}
