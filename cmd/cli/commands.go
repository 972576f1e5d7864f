package main

import (
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/spf13/cobra"
)

var (
	leaderboardCategory string
	leaderboardPeriod   string
	leaderboardLimit    int
	seasonID            string
	rebuildPeriod       string
	rebuildPeriodKey    string
	announceCategory    string
	announcePeriod      string
)

func init() {
	leaderboardCmd.Flags().StringVar(&leaderboardCategory, "category", "goals", "Leaderboard category (goals, assists, saves, xp, mvp, winrate)")
	leaderboardCmd.Flags().StringVar(&leaderboardPeriod, "period", "alltime", "Leaderboard period (week, month, year, alltime)")
	leaderboardCmd.Flags().IntVar(&leaderboardLimit, "limit", 10, "Maximum number of entries")
	seasonCmd.Flags().StringVar(&seasonID, "season", "", "Season to show (defaults to the server's current season)")
	rebuildCmd.Flags().StringVar(&rebuildPeriod, "period", "", "Period to rebuild (defaults to all)")
	rebuildCmd.Flags().StringVar(&rebuildPeriodKey, "periodKey", "", "Bucket key to rebuild (defaults to the current one)")

	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(processCmd)
	rootCmd.AddCommand(rebuildCmd)
	rootCmd.AddCommand(seasonCmd)
	rootCmd.AddCommand(leaderboardCmd)
	announceCmd.Flags().StringVar(&announceCategory, "category", "goals", "Leaderboard category to announce")
	announceCmd.Flags().StringVar(&announcePeriod, "period", "week", "Leaderboard period to announce")

	rootCmd.AddCommand(levelsCmd)
	rootCmd.AddCommand(announceCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(metricsCmd)
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the health of the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/health")
	},
}

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Drain the pending game result backlog",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/process")
	},
}

var rebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Rebuild leaderboard documents from delta history",
	RunE: func(cmd *cobra.Command, args []string) error {
		params := url.Values{}
		if rebuildPeriod != "" {
			params.Set("period", rebuildPeriod)
		}
		if rebuildPeriodKey != "" {
			params.Set("periodKey", rebuildPeriodKey)
		}
		return performGetRequest(withQuery("/rebuild", params))
	},
}

var seasonCmd = &cobra.Command{
	Use:   "season",
	Short: "Show the season standings",
	RunE: func(cmd *cobra.Command, args []string) error {
		params := url.Values{}
		if seasonID != "" {
			params.Set("seasonID", seasonID)
		}
		return performGetRequest(withQuery("/season", params))
	},
}

var leaderboardCmd = &cobra.Command{
	Use:   "leaderboard",
	Short: "Show a leaderboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		params := url.Values{}
		params.Set("category", leaderboardCategory)
		params.Set("period", leaderboardPeriod)
		params.Set("limit", fmt.Sprintf("%d", leaderboardLimit))
		return performGetRequest(withQuery("/leaderboard", params))
	},
}

var levelsCmd = &cobra.Command{
	Use:   "levels",
	Short: "Show the level table",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/levels")
	},
}

var announceCmd = &cobra.Command{
	Use:   "announce",
	Short: "Announce a leaderboard on the notification channel",
	RunE: func(cmd *cobra.Command, args []string) error {
		params := url.Values{}
		params.Set("category", announceCategory)
		params.Set("period", announcePeriod)
		return performGetRequest(withQuery("/announce-leaderboard", params))
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show the persistent engine counters",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/stats")
	},
}

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Get application metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/metrics")
	},
}

func withQuery(endpoint string, params url.Values) string {
	if len(params) == 0 {
		return endpoint
	}
	return endpoint + "?" + params.Encode()
}

func performGetRequest(endpoint string) error {
	url := host + endpoint
	fmt.Printf("Making request to %s\n", url)

	resp, err := http.Get(url)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	fmt.Printf("Status Code: %d\n", resp.StatusCode)
	fmt.Println("Response Body:")
	fmt.Println(string(body))

	return nil
}
