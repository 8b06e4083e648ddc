// Package config provides Viper-based configuration loading for the
// workshop server.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/gunbench/gunbench/internal/game/gunsmith"
)

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
}

// DSN returns the PostgreSQL connection string.
//
// Precondition: Host, Port, User, and Name must be non-empty.
// Postcondition: Returns a valid PostgreSQL DSN string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// StatsConfig is the configurable gun stat template.
type StatsConfig struct {
	Power       float64 `mapstructure:"power"`
	Accuracy    float64 `mapstructure:"accuracy"`
	Rapidity    float64 `mapstructure:"rapidity"`
	Recoil      float64 `mapstructure:"recoil"`
	ReloadSpeed float64 `mapstructure:"reload_speed"`
	Scope       float64 `mapstructure:"scope"`
	Ammo        int     `mapstructure:"ammo"`
}

// Stats converts the config template into the game's stat block.
func (s StatsConfig) Stats() gunsmith.Stats {
	return gunsmith.Stats{
		Power:       s.Power,
		Accuracy:    s.Accuracy,
		Rapidity:    s.Rapidity,
		Recoil:      s.Recoil,
		ReloadSpeed: s.ReloadSpeed,
		Scope:       s.Scope,
		Ammo:        s.Ammo,
	}
}

// ArmoryConfig holds the player-facing workshop settings.
type ArmoryConfig struct {
	// Profile is the profile name progress is saved under.
	Profile string `mapstructure:"profile"`
	// RackCapacity is the number of gun storage slots.
	RackCapacity int `mapstructure:"rack_capacity"`
	// StartingCurrency is the balance a fresh profile begins with.
	StartingCurrency int `mapstructure:"starting_currency"`
	// SellRatio is the fraction of appraised value paid out on a sale.
	SellRatio float64 `mapstructure:"sell_ratio"`
	// OfferingsPerCategory is the shop stock target per part category.
	OfferingsPerCategory int `mapstructure:"offerings_per_category"`
	// BaseStats is the stat template every gun starts from.
	BaseStats StatsConfig `mapstructure:"base_stats"`
}

// SaveConfig holds persistence cadence settings.
type SaveConfig struct {
	// AutosaveInterval is how much un-suppressed time must accrue before
	// an autosave fires.
	AutosaveInterval time.Duration `mapstructure:"autosave_interval"`
	// AutosaveTick is how often the autosaver checks its gate.
	AutosaveTick time.Duration `mapstructure:"autosave_tick"`
	// RackRestoreDelay postpones the rack restore stage.
	RackRestoreDelay time.Duration `mapstructure:"rack_restore_delay"`
	// WorkbenchRestoreDelay postpones the workbench restore stage after
	// the rack stage completes.
	WorkbenchRestoreDelay time.Duration `mapstructure:"workbench_restore_delay"`
}

// ContentConfig holds authored-content locations.
type ContentConfig struct {
	// PartsDir is the directory of part definition YAML files.
	PartsDir string `mapstructure:"parts_dir"`
}

// Config is the top-level application configuration.
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Armory   ArmoryConfig   `mapstructure:"armory"`
	Save     SaveConfig     `mapstructure:"save"`
	Content  ContentConfig  `mapstructure:"content"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateDatabase(c.Database); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateArmory(c.Armory); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateSave(c.Save); err != nil {
		errs = append(errs, err.Error())
	}
	if c.Content.PartsDir == "" {
		errs = append(errs, "content.parts_dir must not be empty")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateDatabase(d DatabaseConfig) error {
	var errs []string
	if d.Host == "" {
		errs = append(errs, "database.host must not be empty")
	}
	if d.Port < 1 || d.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", d.Port))
	}
	if d.User == "" {
		errs = append(errs, "database.user must not be empty")
	}
	if d.Name == "" {
		errs = append(errs, "database.name must not be empty")
	}
	validSSL := map[string]bool{"disable": true, "require": true, "verify-ca": true, "verify-full": true}
	if !validSSL[d.SSLMode] {
		errs = append(errs, fmt.Sprintf("database.sslmode must be one of [disable, require, verify-ca, verify-full], got %q", d.SSLMode))
	}
	if d.MaxConns < 1 {
		errs = append(errs, fmt.Sprintf("database.max_conns must be >= 1, got %d", d.MaxConns))
	}
	if d.MinConns < 0 {
		errs = append(errs, fmt.Sprintf("database.min_conns must be >= 0, got %d", d.MinConns))
	}
	if d.MinConns > d.MaxConns {
		errs = append(errs, "database.min_conns must not exceed database.max_conns")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

func validateArmory(a ArmoryConfig) error {
	var errs []string
	if a.Profile == "" {
		errs = append(errs, "armory.profile must not be empty")
	}
	if a.RackCapacity < 1 {
		errs = append(errs, fmt.Sprintf("armory.rack_capacity must be >= 1, got %d", a.RackCapacity))
	}
	if a.StartingCurrency < 0 {
		errs = append(errs, fmt.Sprintf("armory.starting_currency must be >= 0, got %d", a.StartingCurrency))
	}
	if a.SellRatio <= 0 || a.SellRatio > 1 {
		errs = append(errs, fmt.Sprintf("armory.sell_ratio must be in (0, 1], got %v", a.SellRatio))
	}
	if a.OfferingsPerCategory < 1 {
		errs = append(errs, fmt.Sprintf("armory.offerings_per_category must be >= 1, got %d", a.OfferingsPerCategory))
	}
	if a.BaseStats.Ammo < 0 {
		errs = append(errs, fmt.Sprintf("armory.base_stats.ammo must be >= 0, got %d", a.BaseStats.Ammo))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateSave(s SaveConfig) error {
	var errs []string
	if s.AutosaveInterval <= 0 {
		errs = append(errs, fmt.Sprintf("save.autosave_interval must be > 0, got %v", s.AutosaveInterval))
	}
	if s.AutosaveTick <= 0 {
		errs = append(errs, fmt.Sprintf("save.autosave_tick must be > 0, got %v", s.AutosaveTick))
	}
	if s.AutosaveTick > 0 && s.AutosaveInterval > 0 && s.AutosaveTick > s.AutosaveInterval {
		errs = append(errs, "save.autosave_tick must not exceed save.autosave_interval")
	}
	if s.RackRestoreDelay < 0 {
		errs = append(errs, "save.rack_restore_delay must not be negative")
	}
	if s.WorkbenchRestoreDelay < 0 {
		errs = append(errs, "save.workbench_restore_delay must not be negative")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Environment variable overrides with GUNBENCH_ prefix
	v.SetEnvPrefix("GUNBENCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "gunbench")
	v.SetDefault("database.password", "gunbench")
	v.SetDefault("database.name", "gunbench")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.max_conn_lifetime", "1h")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("armory.profile", "player")
	v.SetDefault("armory.rack_capacity", 8)
	v.SetDefault("armory.starting_currency", 100)
	v.SetDefault("armory.sell_ratio", 0.5)
	v.SetDefault("armory.offerings_per_category", 6)
	v.SetDefault("armory.base_stats.power", 1)
	v.SetDefault("armory.base_stats.accuracy", 1)
	v.SetDefault("armory.base_stats.rapidity", 1)
	v.SetDefault("armory.base_stats.recoil", 1)
	v.SetDefault("armory.base_stats.reload_speed", 1)
	v.SetDefault("armory.base_stats.scope", 1)
	v.SetDefault("armory.base_stats.ammo", 6)

	v.SetDefault("save.autosave_interval", "5m")
	v.SetDefault("save.autosave_tick", "10s")
	v.SetDefault("save.rack_restore_delay", "500ms")
	v.SetDefault("save.workbench_restore_delay", "1s")

	v.SetDefault("content.parts_dir", "content/parts")
}
