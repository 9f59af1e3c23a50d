// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the hatebu-clipper CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/pdiddy/hatebu-clipper/internal/config"
	"github.com/pdiddy/hatebu-clipper/internal/secrets"
	"github.com/pdiddy/hatebu-clipper/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds consumer credentials read from .secrets/ at startup.
var loadedSecrets map[string]string

// rootCmd is the base command for the hatebu-clipper CLI.
var rootCmd = &cobra.Command{
	Use:   "hatebu-clipper",
	Short: "Archive tagged Hatena bookmarks as Markdown",
	Long: `hatebu-clipper finds your Hatena bookmarks carrying a tag, fetches each
page, converts it to Markdown, and saves it as <YYYYMMDD>_<title>.md in a
directory such as an Obsidian vault. Archived bookmarks are removed from
Hatena unless --delete-bookmark=false is given.

Consumer credentials come from HATENA_CONSUMER_KEY and HATENA_CONSUMER_SECRET
(environment or .env), hatebu-clipper.yaml, or files in .secrets/.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.LoadDotEnv(config.DefaultDotEnv); err != nil {
			return err
		}
		s, err := secrets.Load(secrets.DefaultDir, os.Stderr)
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./hatebu-clipper.yaml or ~/.config/hatebu-clipper/hatebu-clipper.yaml)")
	rootCmd.PersistentFlags().String("token-file", "", "cached OAuth token file (default tokens.json)")
}

func initConfig() {
	if err := config.Setup(viper.GetViper()); err != nil {
		fmt.Fprintln(os.Stderr, "warning:", err)
	}

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("hatebu-clipper")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "hatebu-clipper"))
		}
	}

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// bindFlags ties viper keys to the flags of the command being executed, so
// commands that share a key do not overwrite each other's bindings.
func bindFlags(flags *pflag.FlagSet, keys map[string]string) error {
	for key, name := range keys {
		f := flags.Lookup(name)
		if f == nil {
			continue
		}
		if err := viper.BindPFlag(key, f); err != nil {
			return fmt.Errorf("binding --%s: %w", name, err)
		}
	}
	return nil
}

// loadRunConfig binds the command's flags and returns the validated
// configuration.
func loadRunConfig(cmd *cobra.Command, keys map[string]string) (types.RunConfig, error) {
	keys[config.KeyTokenFile] = "token-file"
	if err := bindFlags(cmd.Flags(), keys); err != nil {
		return types.RunConfig{}, err
	}
	return config.Load(viper.GetViper(), loadedSecrets)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
