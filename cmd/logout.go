// Copyright (c) 2026 Grove
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"grove/cli/internal/config"
	"grove/cli/internal/secrets"
)

// logoutCmd removes the stored auth token and turns authenticated requests
// off again.
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the stored auth token",

	RunE: func(cmd *cobra.Command, args []string) error {
		// Clear the keyring entry best effort; the config flip below is what
		// stops the header from being sent.
		if km, err := secrets.GetManager(); err == nil {
			_ = km.ClearAuthToken()
		}

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		cfg.AuthEnabled = false
		if err := config.Save(cfg); err != nil {
			return err
		}

		fmt.Println("✅ Token removed. Requests are no longer authenticated.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(logoutCmd)
}
