// Copyright (c) 2026 Atelier. All rights reserved.
// Author: lucas.m.rezende@gmail.com

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values. A local '.env' file is
loaded first when present, which is the normal way to run the tool on a workstation.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (store, materializer) via constructors.
  - Zero Hidden State: No global variables are used to store config.
*/
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// # Configuration Schema

// Config holds all runtime configuration for the Atelier API server.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// PortfolioRoot is the sandbox root. Every data file and asset the server
	// touches must resolve to a path nested under this directory.
	PortfolioRoot string `env:"PORTFOLIO_ROOT,required"`

	// DataDir holds the per-locale catalog JSON files, relative to PortfolioRoot.
	DataDir string `env:"DATA_DIR" envDefault:"data"`

	// AssetsDir holds per-project gallery folders, relative to PortfolioRoot.
	AssetsDir string `env:"ASSETS_DIR" envDefault:"assets/img/portfolio"`

	// Image processing
	MaxGalleryWidth int    `env:"MAX_GALLERY_WIDTH" envDefault:"1920"`
	ThumbWidth      int    `env:"THUMB_WIDTH"       envDefault:"400"`
	ThumbHeight     int    `env:"THUMB_HEIGHT"      envDefault:"300"`
	ImageFormat     string `env:"IMAGE_FORMAT"      envDefault:"jpeg"`
	ImageQuality    int    `env:"IMAGE_QUALITY"     envDefault:"82"`

	// Optional translation collaborator (local LLM-style HTTP service).
	// Leaving TranslatorURL empty disables the /translate endpoint.
	TranslatorURL     string        `env:"TRANSLATOR_URL"`
	TranslatorTimeout time.Duration `env:"TRANSLATOR_TIMEOUT" envDefault:"90s"`

	// Optional draft cache backend. When unset, drafts live in process memory.
	RedisURL string        `env:"REDIS_URL"`
	DraftTTL time.Duration `env:"DRAFT_TTL" envDefault:"168h"`

	// Cross-Origin Resource Sharing
	ExtraOrigins string `env:"EXTRA_ORIGINS"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct.
//
// A '.env' file in the working directory is merged in first; its absence is not
// an error (production environments set real variables instead).
func Load() (*Config, error) {

	// Best-effort .env merge for local development.
	_ = godotenv.Load()

	// Use the 'env' package to map environment variables to struct fields.
	// This will fail if any field marked with 'required' is missing.
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if cfg.ImageFormat != "jpeg" && cfg.ImageFormat != "png" {
		return nil, fmt.Errorf("config: IMAGE_FORMAT must be jpeg or png, got %q", cfg.ImageFormat)
	}

	return cfg, nil
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
