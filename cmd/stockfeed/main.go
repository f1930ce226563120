package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/aazamm/stockfeed/internal/config"
	"github.com/aazamm/stockfeed/internal/report"
	"github.com/aazamm/stockfeed/internal/scan"
	"github.com/aazamm/stockfeed/internal/server"
	"github.com/aazamm/stockfeed/internal/stock"
	"github.com/aazamm/stockfeed/internal/store"
	"github.com/spf13/cobra"
)

var version = "dev"

var (
	verbose    bool
	configPath string
	cfg        *config.Config
	cfgFile    string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "stockfeed",
	Short:   "RSS feeds with stock mention tracking",
	Long:    "Stockfeed subscribes to RSS/Atom feeds, tracks investments, and correlates news sentiment with daily price moves.",
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			log.SetFlags(log.LstdFlags | log.Lshortfile)
		} else {
			log.SetFlags(log.LstdFlags)
		}

		// Skip config loading for init and version
		if cmd.Name() == "init" || cmd.Name() == "version" {
			return nil
		}

		path, err := config.ResolveConfigPath(configPath)
		if err != nil {
			return err
		}
		cfg, err = config.Load(path)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		cfgFile = path
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(removeCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(stockCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(serveCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("stockfeed", version)
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration in ~/.config/stockfeed/",
	RunE: func(cmd *cobra.Command, args []string) error {
		target := filepath.Join(config.ConfigDir(), "config.yaml")
		if _, err := os.Stat(target); err == nil {
			fmt.Printf("Config already exists: %s\n", target)
			return nil
		}

		if err := os.MkdirAll(config.ConfigDir(), 0o755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}

		if err := os.WriteFile(target, config.DefaultConfigYAML, 0o644); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}

		fmt.Printf("Created config: %s\n", target)
		fmt.Println("Edit it to adjust fetch limits, the history window, and storage paths.")
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show configuration and database status",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		stats, err := db.GetStats()
		if err != nil {
			return fmt.Errorf("getting stats: %w", err)
		}

		configSource := cfgFile
		if configSource == "" {
			configSource = "built-in defaults"
		}
		fmt.Printf("Config: %s\n", configSource)
		fmt.Printf("Database: %s\n\n", db.Path())
		fmt.Printf("Feeds: %d\n", stats.Feeds)
		fmt.Printf("Investments: %d\n", stats.Investments)
		return nil
	},
}

// --- feed commands ---

var addCmd = &cobra.Command{
	Use:   "add <url>",
	Short: "Subscribe to a feed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		url := args[0]
		added, err := db.AddFeed(url)
		if err != nil {
			return err
		}
		if added {
			fmt.Printf("Added feed: %s\n", url)
		} else {
			fmt.Printf("Feed already exists: %s\n", url)
		}
		return nil
	},
}

var removeCmd = &cobra.Command{
	Use:   "remove <url>",
	Short: "Unsubscribe from a feed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		url := args[0]
		removed, err := db.RemoveFeed(url)
		if err != nil {
			return err
		}
		if removed {
			fmt.Printf("Removed feed: %s\n", url)
		} else {
			fmt.Printf("Feed not found: %s\n", url)
		}
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List subscribed feeds",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		feeds, err := db.ListFeeds()
		if err != nil {
			return err
		}
		if len(feeds) == 0 {
			fmt.Println("No feeds subscribed. Use 'stockfeed add <url>' to add a feed.")
			return nil
		}

		fmt.Println("Subscribed feeds:")
		for i, f := range feeds {
			fmt.Printf("  %d. %s\n", i+1, f.URL)
		}
		return nil
	},
}

var fetchCmd = &cobra.Command{
	Use:   "fetch [url]",
	Short: "Fetch and display articles from feeds",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		result, err := scan.NewRunner(cfg, db).Digest(cmd.Context(), args)
		if err != nil {
			if errors.Is(err, scan.ErrNoFeeds) {
				fmt.Println("No feeds subscribed. Use 'stockfeed add <url>' to add a feed.")
				return nil
			}
			return err
		}

		for _, res := range result.Feeds {
			fmt.Printf("\nFetching: %s\n", res.URL)
			if res.Err != nil {
				fmt.Fprintf(os.Stderr, "Error fetching %s: %v\n", res.URL, res.Err)
				continue
			}
			fmt.Print(report.FeedArticles(res.Feed))
		}
		return nil
	},
}

// --- stock commands ---

var stockCmd = &cobra.Command{
	Use:   "stock",
	Short: "Manage tracked investments",
}

var stockName string

var stockAddCmd = &cobra.Command{
	Use:   "add <ticker>",
	Short: "Track an investment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		ticker := strings.ToUpper(args[0])
		var name *string
		if stockName != "" {
			name = &stockName
		}

		added, err := db.AddInvestment(ticker, name)
		if err != nil {
			return err
		}
		if added {
			fmt.Printf("Added investment: %s\n", store.Investment{Ticker: ticker, Name: name}.Display())
		} else {
			fmt.Printf("Investment already tracked: %s\n", ticker)
		}
		return nil
	},
}

var stockRemoveCmd = &cobra.Command{
	Use:   "remove <ticker>",
	Short: "Stop tracking an investment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		ticker := strings.ToUpper(args[0])
		removed, err := db.RemoveInvestment(ticker)
		if err != nil {
			return err
		}
		if removed {
			fmt.Printf("Removed investment: %s\n", ticker)
		} else {
			fmt.Printf("Investment not found: %s\n", ticker)
		}
		return nil
	},
}

var stockListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tracked investments",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		investments, err := db.ListInvestments()
		if err != nil {
			return err
		}
		if len(investments) == 0 {
			fmt.Println("No investments tracked. Use 'stockfeed stock add <ticker>' to add one.")
			return nil
		}

		fmt.Println("Tracked investments:")
		for i, inv := range investments {
			fmt.Printf("  %d. %s\n", i+1, inv.Display())
		}
		return nil
	},
}

var stockQuoteCmd = &cobra.Command{
	Use:   "quote <ticker>",
	Short: "Fetch the current quote for a ticker",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ticker := strings.ToUpper(args[0])
		fmt.Printf("Fetching quote for %s...\n", ticker)

		quote, err := stock.NewClient().Quote(cmd.Context(), ticker)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error fetching quote: %v\n", err)
			return nil
		}

		fmt.Printf("\n%s\n", report.Quote(quote))
		return nil
	},
}

var stockHistoryDays int

var stockHistoryCmd = &cobra.Command{
	Use:   "history <ticker>",
	Short: "Show recent daily closes for a ticker",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ticker := strings.ToUpper(args[0])
		days := stockHistoryDays
		if days <= 0 {
			days = cfg.History.Days
		}

		fmt.Printf("Fetching price history for %s...\n", ticker)
		prices, err := stock.NewClient().History(cmd.Context(), ticker, days)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error fetching price history: %v\n", err)
			return nil
		}
		if len(prices) == 0 {
			fmt.Printf("No price data for %s.\n", ticker)
			return nil
		}

		fmt.Printf("\nGot %d days of price data.\n\n", len(prices))
		for _, p := range prices {
			fmt.Printf("  %s: $%.2f\n", p.Date, p.Close)
		}
		return nil
	},
}

func init() {
	stockAddCmd.Flags().StringVarP(&stockName, "name", "n", "", "Company name for display and matching")
	stockHistoryCmd.Flags().IntVar(&stockHistoryDays, "days", 0, "History window in days (default from config)")

	stockCmd.AddCommand(stockAddCmd)
	stockCmd.AddCommand(stockRemoveCmd)
	stockCmd.AddCommand(stockListCmd)
	stockCmd.AddCommand(stockQuoteCmd)
	stockCmd.AddCommand(stockHistoryCmd)
}

// --- scan command ---

var (
	scanFullText bool
	scanMarkdown bool
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan feeds for mentions of tracked investments",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		stats, err := db.GetStats()
		if err != nil {
			return err
		}
		if stats.Investments == 0 {
			fmt.Println("No investments tracked. Use 'stockfeed stock add <ticker>' to add one.")
			return nil
		}
		if stats.Feeds == 0 {
			fmt.Println("No feeds subscribed. Use 'stockfeed add <url>' to add a feed.")
			return nil
		}

		fmt.Printf("Scanning feeds for investment mentions...\n\n")

		r := scan.NewRunner(cfg, db)
		if scanFullText {
			r.FullText = true
		}

		result, err := r.Scan(cmd.Context())
		if err != nil {
			return err
		}

		for _, fe := range result.FeedErrors {
			fmt.Fprintf(os.Stderr, "Error fetching %s: %v\n", fe.URL, fe.Err)
		}

		if len(result.Mentions) == 0 {
			fmt.Println("No mentions found for tracked investments.")
			return nil
		}

		fmt.Printf("Found %d mentions:\n\n", len(result.Mentions))
		if scanMarkdown {
			fmt.Print(report.ScanDigestMarkdown(result.Mentions))
		} else {
			fmt.Print(report.ScanDigest(result.Mentions))
		}
		return nil
	},
}

func init() {
	scanCmd.Flags().BoolVar(&scanFullText, "full-text", false, "Fetch full article text before matching")
	scanCmd.Flags().BoolVar(&scanMarkdown, "markdown", false, "Render the digest as markdown")
}

// --- analyze command ---

var (
	analyzeDays     int
	analyzeMarkdown bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <ticker>",
	Short: "Correlate news sentiment with price history for a ticker",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		ticker := strings.ToUpper(args[0])
		investment, err := db.GetInvestment(ticker)
		if err != nil {
			return err
		}
		if investment == nil {
			fmt.Printf("Ticker %s is not being tracked. Use 'stockfeed stock add %s' first.\n", ticker, ticker)
			return nil
		}

		r := scan.NewRunner(cfg, db)
		if analyzeDays > 0 {
			r.HistoryDays = analyzeDays
		}

		fmt.Printf("Analyzing %s ...\n\n", ticker)
		fmt.Println("Fetching price history...")

		result, err := r.Analyze(cmd.Context(), ticker)
		noFeeds := errors.Is(err, scan.ErrNoFeeds)
		if err != nil && !noFeeds {
			return err
		}

		if result.HistoryErr != nil {
			fmt.Fprintf(os.Stderr, "Error fetching price history: %v\n", result.HistoryErr)
		} else {
			fmt.Printf("Got %d days of price data.\n\n", len(result.Prices))
		}

		if recent := report.RecentPrices(result.Prices, 5); recent != "" {
			fmt.Print(recent)
			fmt.Println()
		}

		if noFeeds {
			fmt.Println("No feeds to scan. Add some feeds with 'stockfeed add <url>'.")
			return nil
		}

		fmt.Println("Scanning feeds for mentions...")

		if len(result.Mentions) == 0 {
			fmt.Printf("No recent news mentions found for %s.\n", ticker)
			return nil
		}

		fmt.Printf("Found %d mentions.\n\n", len(result.Mentions))
		if analyzeMarkdown {
			fmt.Print(report.CorrelationTableMarkdown(result.Correlations))
		} else {
			fmt.Print(report.CorrelationTable(result.Correlations))
		}
		return nil
	},
}

func init() {
	analyzeCmd.Flags().IntVar(&analyzeDays, "days", 0, "Price history window in days (default from config)")
	analyzeCmd.Flags().BoolVar(&analyzeMarkdown, "markdown", false, "Render the correlation table as markdown")
}

// --- serve command ---

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the local web server",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		port := servePort
		if port <= 0 {
			port = cfg.Server.Port
		}

		fmt.Printf("Starting server at http://localhost:%d\n", port)
		fmt.Println("Press Ctrl+C to stop")
		return server.Serve(db, scan.NewRunner(cfg, db), port)
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Port to run the server on (default from config)")
}

func openDB() (*store.DB, error) {
	return store.Open(filepath.Join(cfg.GetDataDir(), "stockfeed.db"))
}
