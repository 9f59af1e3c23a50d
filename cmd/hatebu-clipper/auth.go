// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/pdiddy/hatebu-clipper/internal/credentials"
	"github.com/pdiddy/hatebu-clipper/internal/hatena"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authorize with Hatena and cache the access token",
	Long: `Auth runs the OAuth handshake even when a cached token exists: it prints
an authorization URL, waits for the verifier code you paste back, and
overwrites the token file with the new access token.`,
	RunE: runAuth,
}

func init() {
	rootCmd.AddCommand(authCmd)
}

func runAuth(cmd *cobra.Command, args []string) error {
	cfg, err := loadRunConfig(cmd, map[string]string{})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	out, log := cmd.OutOrStdout(), cmd.ErrOrStderr()
	auth := hatena.NewAuthenticator(cfg.ConsumerKey, cfg.ConsumerSecret, hatena.DefaultEndpoints(),
		hatena.ConsolePrompter{In: cmd.InOrStdin(), Out: out}, log)

	creds, err := auth.Authenticate(ctx)
	if err != nil {
		return err
	}

	store := credentials.NewStore(cfg.TokenFile, log)
	if err := store.Save(creds); err != nil {
		return err
	}
	fmt.Fprintf(log, "Access token saved to %s\n", store.Path())
	return nil
}
