package logger

import "fmt"

// Config contains logging configuration.
type Config struct {
	Level     string `yaml:"level" mapstructure:"level"`
	Format    string `yaml:"format" mapstructure:"format"`
	Output    string `yaml:"output" mapstructure:"output"`
	NoColor   bool   `yaml:"no_color" mapstructure:"no_color"`
	Timestamp bool   `yaml:"timestamp" mapstructure:"timestamp"`
	Caller    bool   `yaml:"caller" mapstructure:"caller"`
}

// ApplyDefaults applies default values to logging configuration.
func (c *Config) ApplyDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
	if c.Format == "" {
		c.Format = "console"
	}
	if c.Output == "" {
		c.Output = "stdout"
	}
}

// Validate validates logging configuration.
func (c *Config) Validate() error {
	validLevels := []string{"trace", "debug", "info", "warn", "error", "fatal", "panic", ""}
	levelOK := false
	for _, v := range validLevels {
		if c.Level == v {
			levelOK = true
			break
		}
	}
	if !levelOK {
		return fmt.Errorf("logging.level must be a zerolog level (got: %s)", c.Level)
	}

	switch c.Format {
	case "", "console", FormatPretty, "json":
	default:
		return fmt.Errorf("logging.format must be one of [console, pretty, json] (got: %s)", c.Format)
	}

	switch c.Output {
	case "", "stdout", "stderr":
	default:
		return fmt.Errorf("logging.output must be one of [stdout, stderr] (got: %s)", c.Output)
	}
	return nil
}
