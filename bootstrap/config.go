package bootstrap

import (
	"github.com/FelixKahle/leafs/admin"
	"github.com/FelixKahle/leafs/config"
)

// Config is the interface constraint for application configuration types.
// Any struct that embeds config.ServiceConfig (value embedding) automatically
// satisfies this interface via promoted methods.
//
// Example:
//
//	type MyConfig struct {
//	    config.ServiceConfig `yaml:",inline" mapstructure:",squash"`
//	    Modules bootstrap.ModulesConfig `yaml:"modules" mapstructure:"modules"`
//	}
//
//	app, err := bootstrap.NewApp(&cfg)
type Config interface {
	GetServiceConfig() *config.ServiceConfig
	ApplyDefaults()
	Validate() error
}

// ModulesConfig controls module loading at startup.
type ModulesConfig struct {
	// Autoload lists registered module names to load, in order, before the
	// application is marked ready.
	Autoload []string `yaml:"autoload" mapstructure:"autoload"`
}

// GetModulesConfig returns the modules section.
func (c *ModulesConfig) GetModulesConfig() *ModulesConfig { return c }

// AppConfig is a ready-made configuration for registry applications: the
// service base plus module autoloading and the optional admin surface.
// Embed it, or embed config.ServiceConfig directly and pick the sections
// you need.
type AppConfig struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`

	Modules ModulesConfig `yaml:"modules" mapstructure:"modules"`
	Admin   admin.Config  `yaml:"admin" mapstructure:"admin"`
}

// ApplyDefaults sets defaults on the base config and all sections.
func (c *AppConfig) ApplyDefaults() {
	c.ServiceConfig.ApplyDefaults()
	c.Admin.ApplyDefaults()
}

// GetModulesConfig returns the modules section.
func (c *AppConfig) GetModulesConfig() *ModulesConfig { return &c.Modules }

// GetAdminConfig returns the admin section.
func (c *AppConfig) GetAdminConfig() *admin.Config { return &c.Admin }

// modulesConfigProvider is satisfied by config types carrying a modules
// section. The App sniffs for it, so custom configs opt in by embedding
// ModulesConfig or defining the getter.
type modulesConfigProvider interface {
	GetModulesConfig() *ModulesConfig
}

// adminConfigProvider is satisfied by config types carrying an admin section.
type adminConfigProvider interface {
	GetAdminConfig() *admin.Config
}
