// SPDX-FileCopyrightText: 2026 Mikołaj Kuranowski
// SPDX-License-Identifier: MIT

package config

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/MKuranowski/RadomGTFS/radom_gtfs/util/set"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

//go:embed default.yml
var defaultConfig []byte

const (
	EnvPublisherName = "RADOM_GTFS_PUBLISHER_NAME"
	EnvPublisherURL  = "RADOM_GTFS_PUBLISHER_URL"
)

type Agency struct {
	ID       string `yaml:"id" validate:"required"`
	Name     string `yaml:"name" validate:"required"`
	URL      string `yaml:"url" validate:"required,url"`
	Timezone string `yaml:"timezone" validate:"required,timezone"`
	Lang     string `yaml:"lang" validate:"required,len=2"`
}

type Publisher struct {
	Name string `yaml:"name" validate:"required_with=URL"`
	URL  string `yaml:"url" validate:"required_with=Name,omitempty,url"`
	Lang string `yaml:"lang" validate:"required,len=2"`
}

func (p Publisher) IsSet() bool {
	return p.Name != "" && p.URL != ""
}

type RouteStyle struct {
	Type      int    `yaml:"type" validate:"gte=0"`
	Color     string `yaml:"color" validate:"omitempty,hexadecimal,len=6"`
	TextColor string `yaml:"text_color" validate:"omitempty,hexadecimal,len=6"`
}

type Fare struct {
	ID               string `yaml:"id" validate:"required"`
	Price            string `yaml:"price" validate:"required,numeric"`
	Currency         string `yaml:"currency" validate:"required,len=3"`
	PaymentMethod    int    `yaml:"payment_method" validate:"oneof=0 1"`
	Transfers        *int   `yaml:"transfers" validate:"omitempty,gte=0,lte=2"`
	TransferDuration *int   `yaml:"transfer_duration" validate:"omitempty,gt=0"`
}

type Sources struct {
	ListingURL    string `yaml:"listing_url" validate:"required,url"`
	StopsURL      string `yaml:"stops_url" validate:"required,url"`
	HolidaysURL   string `yaml:"holidays_url" validate:"required,url"`
	RoutePagesURL string `yaml:"route_pages_url" validate:"required,url"`
}

type Config struct {
	Agency             Agency     `yaml:"agency"`
	Publisher          Publisher  `yaml:"publisher"`
	RouteStyle         RouteStyle `yaml:"route_style"`
	Fares              []Fare     `yaml:"fares" validate:"dive"`
	Region             string     `yaml:"region" validate:"required"`
	IgnoreStops        []int      `yaml:"ignore_stops"`
	ScheduleLengthDays int        `yaml:"schedule_length_days" validate:"gt=0"`
	Sources            Sources    `yaml:"sources"`
}

func (c *Config) IgnoredStops() set.Set[int] {
	return set.Of(c.IgnoreStops...)
}

func (c *Config) Validate() error {
	return validator.New().Struct(c)
}

// Default returns the built-in configuration for Radom.
func Default() *Config {
	c := new(Config)
	if err := yaml.Unmarshal(defaultConfig, c); err != nil {
		panic(fmt.Errorf("default.yml: %w", err))
	}
	return c
}

// Load reads the configuration from a YAML file on top of the defaults.
// An empty path returns the defaults. Publisher settings may be overridden with
// environment variables, which is applied before validation.
func Load(path string) (*Config, error) {
	c := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}

		if err := yaml.Unmarshal(data, c); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}

	if err := c.ApplyEnvironment(); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return c, nil
}

// ApplyEnvironment overrides publisher settings from the environment.
// Every variable may also be provided through a file, named by the variable with a "_FILE" suffix.
func (c *Config) ApplyEnvironment() error {
	name, err := lookupEnv(EnvPublisherName)
	if err != nil {
		return err
	} else if name != "" {
		c.Publisher.Name = name
	}

	url, err := lookupEnv(EnvPublisherURL)
	if err != nil {
		return err
	} else if url != "" {
		c.Publisher.URL = url
	}

	return nil
}

func lookupEnv(key string) (string, error) {
	value := os.Getenv(key)
	path := os.Getenv(key + "_FILE")
	if value == "" && path != "" {
		content, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("%s_FILE: %w", key, err)
		}
		value = string(content)
	}
	return strings.TrimSpace(value), nil
}
