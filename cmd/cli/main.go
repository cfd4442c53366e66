package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/finbase/corebank/internal/infrastructure/auth"
)

var (
	baseURL string
	timeout time.Duration
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "corebank-cli",
		Short: "Corebank CLI tool",
		Long:  `A command line interface for operating the corebank ledger service.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the corebank API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")

	rootCmd.AddCommand(ledgerCommand())
	rootCmd.AddCommand(accountCommand())
	rootCmd.AddCommand(transferCommand())
	rootCmd.AddCommand(tokenCommand())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func ledgerCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Ledger operations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "consistency",
		Short: "Check that every account balance matches its journal",
		RunE: func(cmd *cobra.Command, args []string) error {
			return checkConsistency(cmd.OutOrStdout())
		},
	})

	return cmd
}

func accountCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Account operations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "get <id>",
		Short: "Fetch an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return getJSON(cmd.OutOrStdout(), "/api/v1/accounts/"+args[0])
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "entries <id>",
		Short: "List an account's journal entries",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return getJSON(cmd.OutOrStdout(), "/api/v1/accounts/"+args[0]+"/entries")
		},
	})

	return cmd
}

func transferCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transfer",
		Short: "Transfer operations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "get <id>",
		Short: "Fetch a transfer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return getJSON(cmd.OutOrStdout(), "/api/v1/transfers/"+args[0])
		},
	})

	return cmd
}

func tokenCommand() *cobra.Command {
	var (
		secret     string
		expiration time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token <owner-id>",
		Short: "Issue a service JWT for an account owner",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ownerID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid owner id: %w", err)
			}

			if secret == "" {
				secret = os.Getenv("JWT_SECRET")
			}

			if secret == "" {
				return fmt.Errorf("a signing secret is required (--secret or JWT_SECRET)")
			}

			token, err := auth.NewJWTManager(secret, expiration).Generate(ownerID)
			if err != nil {
				return fmt.Errorf("generate token: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), token)

			return nil
		},
	}

	cmd.Flags().StringVar(&secret, "secret", "", "JWT signing secret (defaults to JWT_SECRET)")
	cmd.Flags().DurationVar(&expiration, "expiration", 24*time.Hour, "Token lifetime")

	return cmd
}

func checkConsistency(out io.Writer) error {
	client := &http.Client{Timeout: timeout}

	resp, err := client.Get(baseURL + "/api/v1/ledger/consistency")
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	var result struct {
		Consistent      bool    `json:"consistent"`
		DriftedAccounts []int64 `json:"drifted_accounts"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}

	if resp.StatusCode != http.StatusOK || !result.Consistent {
		fmt.Fprintf(out, "Consistency check FAILED\nDrifted accounts: %v\n", result.DriftedAccounts)
		return fmt.Errorf("ledger is inconsistent")
	}

	fmt.Fprintln(out, "Consistency check PASSED")

	return nil
}

func getJSON(out io.Writer, path string) error {
	client := &http.Client{Timeout: timeout}

	resp, err := client.Get(baseURL + path)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode >= 400 {
		return fmt.Errorf("request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var pretty any
	if err := json.Unmarshal(body, &pretty); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}

	encoded, err := json.MarshalIndent(pretty, "", "  ")
	if err != nil {
		return err
	}

	fmt.Fprintln(out, string(encoded))

	return nil
}
