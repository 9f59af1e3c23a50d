// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/pdiddy/hatebu-clipper/internal/archive"
	"github.com/pdiddy/hatebu-clipper/internal/config"
	"github.com/pdiddy/hatebu-clipper/internal/container"
	"github.com/pdiddy/hatebu-clipper/internal/convert"
	"github.com/pdiddy/hatebu-clipper/internal/credentials"
	"github.com/pdiddy/hatebu-clipper/internal/fetch"
	"github.com/pdiddy/hatebu-clipper/internal/hatena"
	"github.com/pdiddy/hatebu-clipper/internal/history"
	"github.com/pdiddy/hatebu-clipper/internal/pipeline"
	"github.com/pdiddy/hatebu-clipper/pkg/types"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Clip every bookmark carrying the tag",
	Long: `Run authenticates (reusing tokens.json when present), searches your
bookmarks for the tag, and for each one fetches the page, converts it to
Markdown, writes <save-dir>/<YYYYMMDD>_<title>.md and deletes the bookmark.

Without a save directory the Markdown is printed to stdout. With
--delete-bookmark=false only --max-without-delete bookmarks are processed
(default 1) so repeated runs do not re-clip the same pages; 0 removes the cap.
--dryrun fetches and converts but writes nothing and deletes nothing.`,
	RunE: runClip,
}

// runFlags maps viper keys to run's flag names.
func runFlags() map[string]string {
	return map[string]string{
		config.KeyTag:                   "tag",
		config.KeySaveDir:               "save-dir",
		config.KeyDryRun:                "dryrun",
		config.KeyDeleteBookmark:        "delete-bookmark",
		config.KeyMaxItemsWithoutDelete: "max-without-delete",
		config.KeyFetcher:               "fetcher",
		config.KeyConverter:             "converter",
		config.KeyFrontmatter:           "frontmatter",
		config.KeyTimeout:               "timeout",
		config.KeyHistoryDB:             "history-db",
	}
}

func init() {
	runCmd.Flags().String("tag", config.DefaultTag, "tag to search for (env TARGET_TAG_NAME)")
	runCmd.Flags().String("save-dir", "", "directory for Markdown files; empty prints to stdout (env SAVE_DIR)")
	runCmd.Flags().Bool("dryrun", false, "fetch and convert only; no file writes or bookmark deletes")
	runCmd.Flags().String("delete-bookmark", "true", "delete each bookmark after archiving (true or false)")
	runCmd.Flags().Int("max-without-delete", config.DefaultMaxItemsWithoutDelete, "bookmarks to process when not deleting; 0 for no limit")
	runCmd.Flags().String("fetcher", string(types.FetcherHTTP), "page fetcher: http or browser")
	runCmd.Flags().String("chrome-path", "", "Chrome executable for --fetcher browser (default: search PATH)")
	runCmd.Flags().String("converter", string(types.ConverterHTML), "Markdown converter: html or markitdown")
	runCmd.Flags().Bool("frontmatter", false, "prepend YAML frontmatter with bookmark metadata")
	runCmd.Flags().Duration("timeout", fetch.DefaultTimeout, "page fetch timeout")
	runCmd.Flags().String("history-db", "", "SQLite file recording each clipped bookmark; empty disables")

	rootCmd.AddCommand(runCmd)
}

func runClip(cmd *cobra.Command, args []string) error {
	cfg, err := loadRunConfig(cmd, runFlags())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	out, log := cmd.OutOrStdout(), cmd.ErrOrStderr()

	fetcher, err := newFetcher(cmd, cfg)
	if err != nil {
		return err
	}
	converter, err := newConverter(cfg)
	if err != nil {
		return err
	}

	endpoints := hatena.DefaultEndpoints()
	deps := pipeline.Deps{
		Credentials: credentials.NewStore(cfg.TokenFile, log),
		Authenticator: hatena.NewAuthenticator(cfg.ConsumerKey, cfg.ConsumerSecret, endpoints,
			hatena.ConsolePrompter{In: cmd.InOrStdin(), Out: out}, log),
		Connect: func(ctx context.Context, creds types.Credentials) (pipeline.Service, error) {
			return hatena.NewSession(ctx, cfg.ConsumerKey, cfg.ConsumerSecret, creds, endpoints, cfg.HTTPConfig, log), nil
		},
		Fetcher:   fetcher,
		Converter: converter,
		Writer: archive.NewWriter(archive.Options{
			SaveDir:     cfg.SaveDir,
			DryRun:      cfg.DryRun,
			Frontmatter: cfg.Frontmatter,
			Tag:         cfg.Tag,
		}, out, log),
	}

	if cfg.HistoryDB != "" && !cfg.DryRun {
		store, err := history.Open(cfg.HistoryDB)
		if err != nil {
			fmt.Fprintf(log, "warning: history disabled: %v\n", err)
		} else {
			defer store.Close()
			deps.Recorder = store
		}
	}

	_, err = pipeline.New(cfg, deps, log).Run(ctx)
	return err
}

func newFetcher(cmd *cobra.Command, cfg types.RunConfig) (fetch.Fetcher, error) {
	switch cfg.Fetcher {
	case types.FetcherBrowser:
		chromePath, _ := cmd.Flags().GetString("chrome-path")
		return fetch.NewBrowserFetcher(cfg.HTTPConfig, chromePath), nil
	case types.FetcherHTTP:
		return fetch.NewHTTPFetcher(cfg.HTTPConfig), nil
	}
	return nil, fmt.Errorf("unknown fetcher %q", cfg.Fetcher)
}

func newConverter(cfg types.RunConfig) (convert.Converter, error) {
	switch cfg.Converter {
	case types.ConverterMarkitdown:
		rt, err := container.DetectRuntime()
		if err != nil {
			return nil, err
		}
		return convert.NewMarkitdownConverter(rt)
	case types.ConverterHTML:
		return convert.HTMLConverter{}, nil
	}
	return nil, fmt.Errorf("unknown converter %q", cfg.Converter)
}
