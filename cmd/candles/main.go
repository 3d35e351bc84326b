// Candlestick retrieval CLI
// This application pulls OHLCV (Open, High, Low, Close, Volume) candlestick
// data for a trading pair from a supported exchange, handling window
// planning, rate-limit pacing, and timezone normalization.
//
// Usage:
//
//	candles fetch --ticker BTC-USD --interval 1d --start 2023-01-01 --end 2023-03-31
//	candles pairs --exchange coinbase
//	candles exchanges
//
// For detailed help on any command, use: candles <command> --help
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/Sam-analyst/crypto-trading-project/internal/candles"
	"github.com/Sam-analyst/crypto-trading-project/internal/config"
	"github.com/Sam-analyst/crypto-trading-project/internal/logger"
	"github.com/Sam-analyst/crypto-trading-project/internal/series"
)

// CLI version information
const (
	Version   = "1.0.0"
	AppName   = "candles"
	ConfigEnv = "CANDLES_CONFIG"
)

// Exit codes following standard conventions
const (
	ExitSuccess     = 0
	ExitUsageError  = 1
	ExitConfigError = 2
	ExitDataError   = 4
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(ExitUsageError)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "fetch":
		if err := handleFetch(ctx, args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(ExitDataError)
		}
	case "pairs":
		if err := handlePairs(ctx, args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(ExitDataError)
		}
	case "exchanges":
		if err := handleExchanges(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(ExitConfigError)
		}
	case "--version", "-v":
		fmt.Printf("%s version %s\n", AppName, Version)
	case "--help", "-h", "help":
		if len(args) > 0 {
			printCommandHelp(args[0])
		} else {
			printUsage()
		}
	default:
		fmt.Fprintf(os.Stderr, "Error: Unknown command '%s'\n\n", command)
		printUsage()
		os.Exit(ExitUsageError)
	}
}

// globalFlags are accepted by every command.
type globalFlags struct {
	ConfigPath string
	LogLevel   string
	LogFormat  string
	LogFile    string
}

// fetchFlags represents flags for the fetch command
type fetchFlags struct {
	globalFlags
	Exchange  string
	Ticker    string
	Interval  string
	Start     string
	End       string
	StartTime string
	EndTime   string
	Timezone  string
	Format    string
	Help      bool
}

// pairsFlags represents flags for the pairs command
type pairsFlags struct {
	globalFlags
	Exchange string
	All      bool
	Help     bool
}

// handleFetch handles the 'fetch' command for candle retrieval
func handleFetch(ctx context.Context, args []string) error {
	flags, err := parseFetchFlags(args)
	if err != nil {
		return err
	}

	if flags.Help {
		printCommandHelp("fetch")
		return nil
	}

	if flags.Ticker == "" {
		return fmt.Errorf("--ticker is required")
	}
	if flags.Start == "" || flags.End == "" {
		return fmt.Errorf("both --start and --end are required")
	}

	client, closer, err := buildClient(flags.globalFlags)
	if err != nil {
		return err
	}
	defer closer.Close()

	s, err := client.GetCandles(ctx, candles.Request{
		Exchange:      flags.Exchange,
		TickerID:      flags.Ticker,
		StartDate:     flags.Start,
		EndDate:       flags.End,
		StartTime:     flags.StartTime,
		EndTime:       flags.EndTime,
		LocalTimezone: flags.Timezone,
		Interval:      flags.Interval,
	})
	if err != nil {
		return err
	}

	switch flags.Format {
	case "json":
		return outputJSON(s)
	case "csv":
		return outputCSV(s)
	default:
		return outputTable(s)
	}
}

// handlePairs handles the 'pairs' command listing an exchange's trading pairs
func handlePairs(ctx context.Context, args []string) error {
	flags, err := parsePairsFlags(args)
	if err != nil {
		return err
	}

	if flags.Help {
		printCommandHelp("pairs")
		return nil
	}

	client, closer, err := buildClient(flags.globalFlags)
	if err != nil {
		return err
	}
	defer closer.Close()

	pairs, err := client.TradingPairs(ctx, flags.Exchange)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tBASE\tQUOTE\tSTATUS")
	shown := 0
	for _, pair := range pairs {
		if !flags.All && !pair.Active() {
			continue
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", pair.ID, pair.BaseCurrency, pair.QuoteCurrency, pair.Status)
		shown++
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("\n%d pairs", shown)
	if !flags.All {
		fmt.Printf(" (use --all to include inactive pairs)")
	}
	fmt.Println()
	return nil
}

// handleExchanges handles the 'exchanges' command listing the registry
func handleExchanges(args []string) error {
	flags, rest, err := parseGlobalFlags(args)
	if err != nil {
		return err
	}
	for _, arg := range rest {
		if arg == "--help" || arg == "-h" {
			printCommandHelp("exchanges")
			return nil
		}
		return fmt.Errorf("unknown flag: %s", arg)
	}

	cfg, err := loadRegistry(flags.ConfigPath)
	if err != nil {
		return err
	}

	for _, name := range cfg.ValidExchanges() {
		ec, err := cfg.Exchange(name)
		if err != nil {
			return err
		}
		fmt.Printf("%s\tintervals: %s\n", name, strings.Join(ec.Intervals(), ", "))
	}
	return nil
}

// buildClient wires logging, the registry, and the candle client from the
// shared flags.
func buildClient(flags globalFlags) (*candles.Client, io.Closer, error) {
	log, closer, err := logger.New(logger.Config{
		Level:    flags.LogLevel,
		Format:   flags.LogFormat,
		Output:   logOutput(flags.LogFile),
		FilePath: flags.LogFile,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to setup logging: %w", err)
	}

	cfg, err := loadRegistry(flags.ConfigPath)
	if err != nil {
		closer.Close()
		return nil, nil, err
	}

	return candles.New(cfg, candles.WithLogger(log)), closer, nil
}

func logOutput(filePath string) string {
	if filePath != "" {
		return "file"
	}
	return "stderr"
}

// loadRegistry loads the exchange registry from --config, the CANDLES_CONFIG
// environment variable, or the built-in defaults, in that order.
func loadRegistry(path string) (*config.Config, error) {
	if path == "" {
		path = os.Getenv(ConfigEnv)
	}
	if path == "" {
		return config.Default(), nil
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// Flag parsing functions

// parseGlobalFlags consumes the flags shared by every command and returns
// the remainder.
func parseGlobalFlags(args []string) (globalFlags, []string, error) {
	flags := globalFlags{
		LogLevel:  "info",
		LogFormat: "text",
	}

	var rest []string
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--config", "-c":
			if i+1 >= len(args) {
				return flags, nil, fmt.Errorf("--config requires a value")
			}
			flags.ConfigPath = args[i+1]
			i++
		case "--log-level":
			if i+1 >= len(args) {
				return flags, nil, fmt.Errorf("--log-level requires a value")
			}
			flags.LogLevel = args[i+1]
			i++
		case "--log-format":
			if i+1 >= len(args) {
				return flags, nil, fmt.Errorf("--log-format requires a value")
			}
			flags.LogFormat = args[i+1]
			i++
		case "--log-file":
			if i+1 >= len(args) {
				return flags, nil, fmt.Errorf("--log-file requires a value")
			}
			flags.LogFile = args[i+1]
			i++
		default:
			rest = append(rest, args[i])
		}
	}

	return flags, rest, nil
}

// parseFetchFlags parses command line arguments for the fetch command
func parseFetchFlags(args []string) (*fetchFlags, error) {
	global, rest, err := parseGlobalFlags(args)
	if err != nil {
		return nil, err
	}

	flags := &fetchFlags{
		globalFlags: global,
		Exchange:    "coinbase",
		Format:      "table",
	}

	for i := 0; i < len(rest); i++ {
		switch rest[i] {
		case "--exchange", "-x":
			if i+1 >= len(rest) {
				return nil, fmt.Errorf("--exchange requires a value")
			}
			flags.Exchange = rest[i+1]
			i++
		case "--ticker", "-t":
			if i+1 >= len(rest) {
				return nil, fmt.Errorf("--ticker requires a value")
			}
			flags.Ticker = rest[i+1]
			i++
		case "--interval", "-i":
			if i+1 >= len(rest) {
				return nil, fmt.Errorf("--interval requires a value")
			}
			flags.Interval = rest[i+1]
			i++
		case "--start", "-s":
			if i+1 >= len(rest) {
				return nil, fmt.Errorf("--start requires a value")
			}
			flags.Start = rest[i+1]
			i++
		case "--end", "-e":
			if i+1 >= len(rest) {
				return nil, fmt.Errorf("--end requires a value")
			}
			flags.End = rest[i+1]
			i++
		case "--start-time":
			if i+1 >= len(rest) {
				return nil, fmt.Errorf("--start-time requires a value")
			}
			flags.StartTime = rest[i+1]
			i++
		case "--end-time":
			if i+1 >= len(rest) {
				return nil, fmt.Errorf("--end-time requires a value")
			}
			flags.EndTime = rest[i+1]
			i++
		case "--timezone", "-z":
			if i+1 >= len(rest) {
				return nil, fmt.Errorf("--timezone requires a value")
			}
			flags.Timezone = rest[i+1]
			i++
		case "--format", "-f":
			if i+1 >= len(rest) {
				return nil, fmt.Errorf("--format requires a value")
			}
			format := rest[i+1]
			if format != "json" && format != "csv" && format != "table" {
				return nil, fmt.Errorf("invalid format, must be: json, csv, or table")
			}
			flags.Format = format
			i++
		case "--help", "-h":
			flags.Help = true
		default:
			return nil, fmt.Errorf("unknown flag: %s", rest[i])
		}
	}

	return flags, nil
}

// parsePairsFlags parses command line arguments for the pairs command
func parsePairsFlags(args []string) (*pairsFlags, error) {
	global, rest, err := parseGlobalFlags(args)
	if err != nil {
		return nil, err
	}

	flags := &pairsFlags{
		globalFlags: global,
		Exchange:    "coinbase",
	}

	for i := 0; i < len(rest); i++ {
		switch rest[i] {
		case "--exchange", "-x":
			if i+1 >= len(rest) {
				return nil, fmt.Errorf("--exchange requires a value")
			}
			flags.Exchange = rest[i+1]
			i++
		case "--all", "-a":
			flags.All = true
		case "--help", "-h":
			flags.Help = true
		default:
			return nil, fmt.Errorf("unknown flag: %s", rest[i])
		}
	}

	return flags, nil
}

// Output formatting functions

// outputJSON formats the series as JSON
func outputJSON(s *series.Series) error {
	type row struct {
		Timestamp string `json:"timestamp"`
		Open      string `json:"open"`
		High      string `json:"high"`
		Low       string `json:"low"`
		Close     string `json:"close"`
		Volume    string `json:"volume"`
	}

	rows := make([]row, 0, s.Len())
	for _, c := range s.Candles {
		rows = append(rows, row{
			Timestamp: c.Timestamp.Format("2006-01-02T15:04:05Z07:00"),
			Open:      c.Open,
			High:      c.High,
			Low:       c.Low,
			Close:     c.Close,
			Volume:    c.Volume,
		})
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(rows)
}

// outputCSV formats the series as CSV
func outputCSV(s *series.Series) error {
	fmt.Println(strings.Join(s.Header(), ","))
	for _, r := range s.Rows() {
		fmt.Println(strings.Join(r, ","))
	}
	return nil
}

// outputTable formats the series as an aligned table
func outputTable(s *series.Series) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)

	fmt.Fprintln(w, strings.ToUpper(strings.Join(s.Header(), "\t")))
	for _, r := range s.Rows() {
		fmt.Fprintln(w, strings.Join(r, "\t"))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("\n%d candles for %s (%s)\n", s.Len(), s.TickerID, s.Interval.Symbol)
	return nil
}

// Help and usage functions

// printUsage prints the main usage information
func printUsage() {
	fmt.Printf(`%s - Candlestick retrieval CLI v%s

USAGE:
    %s <command> [options]

COMMANDS:
    fetch       Fetch OHLCV candles for a trading pair
    pairs       List an exchange's trading pairs
    exchanges   List the supported exchanges and their intervals

GLOBAL OPTIONS:
    --config, -c <path>    Exchange registry YAML (or $%s)
    --log-level <level>    debug, info, warn, error (default: info)
    --log-format <fmt>     text or json (default: text)
    --log-file <path>      Write logs to a rotating file instead of stderr
    --help, -h             Show help information
    --version, -v          Show version information

EXAMPLES:
    # Fetch BTC-USD daily candles for Q1 2023
    %s fetch --ticker BTC-USD --interval 1d --start 2023-01-01 --end 2023-03-31

    # Fetch hourly candles for a trading day in New York time
    %s fetch --ticker ETH-USD --interval 1h --start 2023-06-01 --end 2023-06-01 \
        --start-time 09:30:00 --end-time 16:00:00 --timezone America/New_York

    # List active Coinbase pairs
    %s pairs --exchange coinbase

For detailed help on any command, use: %s <command> --help
`, AppName, Version, AppName, ConfigEnv, AppName, AppName, AppName, AppName)
}

// printCommandHelp prints detailed help for a specific command
func printCommandHelp(command string) {
	switch command {
	case "fetch":
		fmt.Printf(`%s fetch - Fetch OHLCV candles

USAGE:
    %s fetch [options]

OPTIONS:
    --ticker, -t <pair>       Trading pair to fetch (required)
                              Examples: BTC-USD, ETH-USD, SOL-USD

    --start, -s <date>        Start date, YYYY-MM-DD (required)
    --end, -e <date>          End date, YYYY-MM-DD, inclusive (required)

    --interval, -i <interval> Candle interval (default: 1d)
                              Supported: 1m, 5m, 15m, 1h, 6h, 1d

    --start-time <time>       Start time, HH:MM:SS (default: 00:00:00)
    --end-time <time>         End time, HH:MM:SS (default: 23:59:59)
                              Both are ignored for the 1d interval.

    --timezone, -z <zone>     IANA zone the times are expressed in
                              (default: America/New_York, sub-daily only)

    --exchange, -x <name>     Exchange to fetch from (default: coinbase)
    --format, -f <format>     Output format: table, json, csv (default: table)
    --help, -h                Show this help message

NOTES:
    - A request may span at most 5000 candles; narrow the range or use a
      coarser interval if it is rejected.
    - Calls are paced to one per second to respect exchange rate limits,
      so large ranges take several seconds.
    - Sub-daily timestamps are shown in the requested timezone; daily
      candles are calendar days in UTC.
`, AppName, AppName)

	case "pairs":
		fmt.Printf(`%s pairs - List an exchange's trading pairs

USAGE:
    %s pairs [options]

OPTIONS:
    --exchange, -x <name>  Exchange to query (default: coinbase)
    --all, -a              Include inactive and delisted pairs
    --help, -h             Show this help message
`, AppName, AppName)

	case "exchanges":
		fmt.Printf(`%s exchanges - List the supported exchanges

USAGE:
    %s exchanges [options]

Reads the registry from --config or $%s, falling back to the
built-in defaults.
`, AppName, AppName, ConfigEnv)

	default:
		fmt.Fprintf(os.Stderr, "No help available for command: %s\n", command)
		printUsage()
	}
}
