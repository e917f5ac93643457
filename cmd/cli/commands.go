package main

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/spf13/cobra"
)

var (
	dryRun bool
)

func init() {
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(playersCmd)
	rootCmd.AddCommand(matchesCmd)
	rootCmd.AddCommand(leaderboardCmd)
	rootCmd.AddCommand(dashboardCmd)
	rootCmd.AddCommand(recalculateCmd)
	rootCmd.AddCommand(cacheClearCmd)
	rootCmd.AddCommand(metricsCmd)

	recalculateCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Only report what would change, without mutating anything")
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the health of the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/health")
	},
}

var playersCmd = &cobra.Command{
	Use:   "players",
	Short: "List the registered players",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/players")
	},
}

var matchesCmd = &cobra.Command{
	Use:   "matches",
	Short: "List matches (staff visibility)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/matches")
	},
}

var leaderboardCmd = &cobra.Command{
	Use:   "leaderboard",
	Short: "Show the rating leaderboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/leaderboard")
	},
}

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show the club dashboard summary",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/dashboard")
	},
}

var recalculateCmd = &cobra.Command{
	Use:   "recalculate",
	Short: "Reset all ratings and replay every confirmed match in order",
	RunE: func(cmd *cobra.Command, args []string) error {
		endpoint := "/recalculate"
		if dryRun {
			endpoint += "?dry_run=true"
		}
		return performPostRequest(endpoint)
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "cache-clear",
	Short: "Clear the server's cache",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performPostRequest("/cache/clear")
	},
}

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Get application metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/metrics")
	},
}

func performGetRequest(endpoint string) error {
	url := host + endpoint
	fmt.Printf("Making request to %s\n", url)

	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	// The CLI is an operator tool and reads with full visibility.
	req.Header.Set("X-Staff", "true")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	return printResponse(resp)
}

func performPostRequest(endpoint string) error {
	url := host + endpoint
	fmt.Printf("Making request to %s\n", url)

	req, err := http.NewRequest(http.MethodPost, url, strings.NewReader(""))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("X-Staff", "true")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	return printResponse(resp)
}

func printResponse(resp *http.Response) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	fmt.Printf("Status Code: %d\n", resp.StatusCode)
	fmt.Println("Response Body:")
	fmt.Println(string(body))

	return nil
}
