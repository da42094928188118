// Copyright (c) 2026 Grove
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"grove/cli/internal/config"
	"grove/cli/internal/druid"
	"grove/cli/internal/logging"
	"grove/cli/internal/secrets"
	"grove/cli/internal/terminal"
	"grove/cli/internal/tunnel"
)

var (
	connectTunnelHost     string
	connectTunnelPort     int
	connectTunnelUser     string
	connectTunnelIdentity string
)

// connectCmd represents the connect command for configuring the engine
// endpoint. It prompts for the endpoint URL and verifies reachability before
// saving the configuration.
var connectCmd = &cobra.Command{
	Use:   "connect",
	Short: "Configure and verify the engine endpoint",
	Long: `The connect command prompts for the engine's base URL and verifies that the
engine answers its status endpoint before saving the configuration.

When the engine is only reachable through an SSH hop, pass --tunnel-host (and
optionally --tunnel-user, --tunnel-port, --identity); the verification and all
later commands then run through a local port forward.

Example endpoint: http://druid-broker.internal:8082`,
	RunE: func(cmd *cobra.Command, args []string) error {
		reader := bufio.NewReader(os.Stdin)
		promptText := "Enter engine endpoint (e.g., http://localhost:8082): "
		fmt.Print(promptText)
		rawEndpoint, _ := reader.ReadString('\n')
		rawEndpoint = strings.TrimSpace(rawEndpoint)

		// Clear the prompt and user input from terminal
		terminal.ClearPreviousLines(len(promptText) + len(rawEndpoint))

		if rawEndpoint == "" {
			return errors.New("endpoint is required")
		}
		u, err := url.Parse(rawEndpoint)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			fmt.Println("❌ Invalid endpoint. Please provide a full http(s) URL.")
			fmt.Println("   Example: http://druid-broker.internal:8082")
			if err == nil {
				err = errors.New("endpoint must be an http(s) URL")
			}
			return err
		}
		endpoint := strings.TrimRight(rawEndpoint, "/")

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		cfg.Endpoint = endpoint
		if connectTunnelHost != "" {
			cfg.Tunnel = config.TunnelConfig{
				Enabled:      true,
				Host:         connectTunnelHost,
				Port:         connectTunnelPort,
				User:         connectTunnelUser,
				IdentityFile: connectTunnelIdentity,
			}
		}

		startTime := time.Now()
		stopSpinner := startInlineSpinner(os.Stdout, "verifying connection", spinnerFrames, 100*time.Millisecond)

		logger := logging.NewDefault(cfg.LogLevel)
		var spec *druid.TunnelSpec
		if cfg.Tunnel.Enabled {
			spec = &druid.TunnelSpec{
				Host:         cfg.Tunnel.Host,
				Port:         cfg.Tunnel.Port,
				User:         cfg.Tunnel.User,
				IdentityFile: cfg.Tunnel.IdentityFile,
			}
		}
		conn := &druid.ConnectionDetails{
			Endpoint:      endpoint,
			AuthEnabled:   cfg.AuthEnabled,
			AuthTokenType: cfg.AuthTokenType,
			AuthTokenRef:  secrets.KeyAuthToken,
			Tunnel:        spec,
		}
		client := druid.NewClient(logger, secrets.Source{}, tunnel.New(logger), nil, cfg.TimeoutMillis)

		ctxPing, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
		defer cancel()
		status, err := client.Status(ctxPing, conn)
		if err != nil {
			stopSpinner()
			fmt.Println("Connection failed. Please check the endpoint and network connection.")
			return err
		}

		// Keep the spinner visible long enough to register
		if elapsed := time.Since(startTime); elapsed < 2*time.Second {
			time.Sleep(2*time.Second - elapsed)
		}
		stopSpinner()

		if err := config.Save(cfg); err != nil {
			fmt.Println("❌ Connection verified but the configuration could not be saved.")
			return err
		}

		fmt.Printf("✅ Connected to engine %s and saved the endpoint!\n", status.Version)
		fmt.Println("   You're ready to run 'grove query'")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(connectCmd)
	connectCmd.Flags().StringVar(&connectTunnelHost, "tunnel-host", "", "SSH hop to tunnel engine traffic through")
	connectCmd.Flags().IntVar(&connectTunnelPort, "tunnel-port", 22, "SSH port on the hop")
	connectCmd.Flags().StringVar(&connectTunnelUser, "tunnel-user", "", "SSH user on the hop (defaults to the current user)")
	connectCmd.Flags().StringVar(&connectTunnelIdentity, "identity", "", "Private key for the hop (defaults to ~/.ssh/id_ed25519)")
}
