// Copyright (c) 2026 Grove
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"grove/cli/internal/config"
	"grove/cli/internal/secrets"
)

var loginTokenType string

// loginCmd stores an engine auth token in the OS keyring and turns on
// authenticated requests. The token is read without echo and never touches
// the config file.
var loginCmd = &cobra.Command{
	Use:     "login",
	Aliases: []string{"auth"},
	Short:   "Store an engine auth token in the OS keyring",
	Long: `The login command prompts for an auth token and stores it securely in the
OS keyring. Subsequent commands attach the token to every engine request as
an Authorization header.

The token can also be supplied per invocation via GROVE_AUTH_TOKEN, which
takes precedence over the keyring and needs no login.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Print("Enter auth token (input hidden): ")
		raw, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Println()
		if err != nil {
			return fmt.Errorf("reading token: %w", err)
		}
		token := strings.TrimSpace(string(raw))
		if token == "" {
			return errors.New("token is required")
		}

		km, err := secrets.GetManager()
		if err != nil {
			fmt.Println("❌ Secure storage is not available on this system.")
			fmt.Println("   Set GROVE_AUTH_TOKEN in the environment instead.")
			return err
		}
		if err := km.SaveAuthToken(token); err != nil {
			fmt.Println("❌ Failed to save the token securely.")
			return err
		}

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		cfg.AuthEnabled = true
		if loginTokenType != "" {
			cfg.AuthTokenType = loginTokenType
		}
		if err := config.Save(cfg); err != nil {
			return err
		}

		fmt.Println("✅ Token saved. Requests will now be authenticated.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(loginCmd)
	loginCmd.Flags().StringVar(&loginTokenType, "token-type", "", "Authorization scheme to use with the token (default Bearer)")
}
