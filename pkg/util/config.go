package util

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type SourceConfig struct {
	URL   string `mapstructure:"url" validate:"required,url"`
	Local string `mapstructure:"local" validate:"required"`
}

type RegionConfig struct {
	Padding float64 `mapstructure:"padding" validate:"gte=0,lt=10"`
}

type RoutingConfig struct {
	Profile       string  `mapstructure:"profile" validate:"required"`
	TurnPenalty   int     `mapstructure:"turn_penalty" validate:"gte=0"`
	MappingRadius float64 `mapstructure:"mapping_radius" validate:"gt=0"`
}

type VehicleConfig struct {
	// File overrides the embedded car vehicle when set.
	File string `mapstructure:"file"`
}

type LogConfig struct {
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
}

type Config struct {
	Source  SourceConfig  `mapstructure:"source"`
	Region  RegionConfig  `mapstructure:"region"`
	Routing RoutingConfig `mapstructure:"routing"`
	Vehicle VehicleConfig `mapstructure:"vehicle"`
	Log     LogConfig     `mapstructure:"log"`
}

const (
	DefaultSourceURL     = "http://planet.anyways.eu/planet/europe/belgium/belgium-latest.osm.pbf"
	DefaultSourceLocal   = "belgium-latest.osm.pbf"
	DefaultPadding       = 0.01
	DefaultProfile       = "car.shortest"
	DefaultTurnPenalty   = 60
	DefaultMappingRadius = 1000.0
)

// ReadConfig loads config.yaml from the working directory or ./data/ when
// present, applies STREETSCAN_* environment overrides and validates the result.
func ReadConfig() (*Config, error) {
	v := viper.New()

	v.SetDefault("source.url", DefaultSourceURL)
	v.SetDefault("source.local", DefaultSourceLocal)
	v.SetDefault("region.padding", DefaultPadding)
	v.SetDefault("routing.profile", DefaultProfile)
	v.SetDefault("routing.turn_penalty", DefaultTurnPenalty)
	v.SetDefault("routing.mapping_radius", DefaultMappingRadius)
	v.SetDefault("vehicle.file", "")
	v.SetDefault("log.level", "debug")

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./data/")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("fatal error config file: %w", err)
		}
	}

	v.SetEnvPrefix("STREETSCAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}
