// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package config assembles the immutable RunConfig from, in increasing
// precedence: built-in defaults, the optional hatebu-clipper.yaml file,
// .secrets/ files, the environment (including a .env file), and
// command-line flags. Nothing reads the environment after Load returns.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/pdiddy/hatebu-clipper/internal/credentials"
	"github.com/pdiddy/hatebu-clipper/internal/secrets"
	"github.com/pdiddy/hatebu-clipper/pkg/types"
)

// ErrMissingConsumer is returned when the OAuth consumer is not configured.
var ErrMissingConsumer = errors.New("please set HATENA_CONSUMER_KEY and HATENA_CONSUMER_SECRET in .env file or as environment variables")

const (
	DefaultTag                   = "obsidian"
	DefaultUserAgent             = "hatebu-clipper/0.1"
	DefaultMaxItemsWithoutDelete = 1
	DefaultMaxRetries            = 3
	DefaultDotEnv                = ".env"
	EnvPrefix                    = "HATEBU_CLIPPER"
)

// Viper keys. They match the mapstructure tags on types.RunConfig.
const (
	KeyConsumerKey           = "consumer_key"
	KeyConsumerSecret        = "consumer_secret"
	KeySaveDir               = "save_dir"
	KeyTag                   = "tag"
	KeyDryRun                = "dryrun"
	KeyDeleteBookmark        = "delete_bookmark"
	KeyMaxItemsWithoutDelete = "max_items_without_delete"
	KeyTokenFile             = "token_file"
	KeyHistoryDB             = "history_db"
	KeyFetcher               = "fetcher"
	KeyConverter             = "converter"
	KeyFrontmatter           = "frontmatter"
	KeyTimeout               = "timeout"
	KeyUserAgent             = "user_agent"
	KeyMaxRetries            = "max_retries"
)

// envNames are the variable names the clipper has always read. Every other
// key is also reachable as HATEBU_CLIPPER_<KEY>.
var envNames = map[string]string{
	KeyConsumerKey:    "HATENA_CONSUMER_KEY",
	KeyConsumerSecret: "HATENA_CONSUMER_SECRET",
	KeySaveDir:        "SAVE_DIR",
	KeyTag:            "TARGET_TAG_NAME",
}

// LoadDotEnv exports the variables in path that are not already set. A
// missing file is not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// Setup registers defaults and environment bindings on v.
func Setup(v *viper.Viper) error {
	v.SetDefault(KeyTag, DefaultTag)
	v.SetDefault(KeySaveDir, "")
	v.SetDefault(KeyDryRun, false)
	v.SetDefault(KeyDeleteBookmark, true)
	v.SetDefault(KeyMaxItemsWithoutDelete, DefaultMaxItemsWithoutDelete)
	v.SetDefault(KeyTokenFile, credentials.DefaultPath)
	v.SetDefault(KeyHistoryDB, "")
	v.SetDefault(KeyFetcher, string(types.FetcherHTTP))
	v.SetDefault(KeyConverter, string(types.ConverterHTML))
	v.SetDefault(KeyFrontmatter, false)
	v.SetDefault(KeyTimeout, 10*time.Second)
	v.SetDefault(KeyUserAgent, DefaultUserAgent)
	v.SetDefault(KeyMaxRetries, DefaultMaxRetries)
	v.SetDefault(KeyConsumerKey, "")
	v.SetDefault(KeyConsumerSecret, "")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	for key, env := range envNames {
		if err := v.BindEnv(key, env); err != nil {
			return fmt.Errorf("binding %s: %w", env, err)
		}
	}
	return nil
}

// Load builds a RunConfig from v, filling the consumer pair from secrets
// when neither the environment nor the config file provides it, and
// validates the result.
func Load(v *viper.Viper, secretValues map[string]string) (types.RunConfig, error) {
	var cfg types.RunConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return types.RunConfig{}, fmt.Errorf("decoding configuration: %w", err)
	}

	if cfg.ConsumerKey == "" {
		cfg.ConsumerKey = secretValues[secrets.ConsumerKey]
	}
	if cfg.ConsumerSecret == "" {
		cfg.ConsumerSecret = secretValues[secrets.ConsumerSecret]
	}
	cfg.ConsumerKey = strings.TrimSpace(cfg.ConsumerKey)
	cfg.ConsumerSecret = strings.TrimSpace(cfg.ConsumerSecret)
	cfg.Tag = strings.TrimSpace(cfg.Tag)

	if err := Validate(cfg); err != nil {
		return types.RunConfig{}, err
	}
	return cfg, nil
}

// Validate checks cfg for values no run can proceed with.
func Validate(cfg types.RunConfig) error {
	if cfg.ConsumerKey == "" || cfg.ConsumerSecret == "" {
		return ErrMissingConsumer
	}
	if cfg.Tag == "" {
		return errors.New("tag must not be empty")
	}
	switch cfg.Fetcher {
	case types.FetcherHTTP, types.FetcherBrowser:
	default:
		return fmt.Errorf("unknown fetcher %q (want %q or %q)", cfg.Fetcher, types.FetcherHTTP, types.FetcherBrowser)
	}
	switch cfg.Converter {
	case types.ConverterHTML, types.ConverterMarkitdown:
	default:
		return fmt.Errorf("unknown converter %q (want %q or %q)", cfg.Converter, types.ConverterHTML, types.ConverterMarkitdown)
	}
	if cfg.MaxItemsWithoutDelete < 0 {
		return fmt.Errorf("max items without delete must be >= 0, got %d", cfg.MaxItemsWithoutDelete)
	}
	if cfg.Timeout < 0 {
		return fmt.Errorf("timeout must be >= 0, got %v", cfg.Timeout)
	}
	if cfg.TokenFile == "" {
		return errors.New("token file path must not be empty")
	}
	return nil
}
