// Package main provides the newsfeed command-line tool for searching and listing news articles.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"

	"localnews/internal/config"
	"localnews/internal/formatter"
	"localnews/internal/logger"
	"localnews/internal/news"
	"localnews/internal/request"
)

func main() {
	// Define command-line flags
	configFile := flag.String("config", "", "Path to YAML configuration file")
	envFile := flag.String("env", ".env", "Path to .env file with "+config.EnvAPIKey)
	searchTerm := flag.String("q", "", "Search term (overrides config)")
	orderBy := flag.String("order-by", "", "Result ordering: newest, oldest or relevance (overrides config)")
	format := flag.String("format", "", "Output format: table or json (overrides config)")
	showURL := flag.Bool("urls", false, "Show article URLs in table output")
	watch := flag.Bool("watch", false, "Keep running and refresh on the configured schedule")
	showUsage := flag.Bool("help", false, "Show usage information")

	flag.Parse()

	if *showUsage {
		printUsage()
		os.Exit(0)
	}

	if err := config.LoadDotEnv(*envFile); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}

	cfg, err := loadConfig(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Flags override the file
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "q":
			cfg.Query.SearchTerm = *searchTerm
		case "order-by":
			cfg.Query.OrderBy = *orderBy
		case "format":
			cfg.Display.Format = *format
		case "watch":
			cfg.Refresh.Enabled = *watch
		}
	})

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "❌ Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger(cfg.Logging.Level)
	log.Debug("Configuration loaded", "config", cfg.String())

	reqCfg, err := cfg.RequestConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Invalid query settings: %v\n", err)
		os.Exit(1)
	}

	fetcher := news.NewFetcherWithOptions(news.FetchOptions{
		UserAgent:      cfg.HTTP.UserAgent,
		ConnectTimeout: cfg.HTTP.GetConnectTimeout(),
		ReadTimeout:    cfg.HTTP.GetReadTimeout(),
		MaxBodyKb:      cfg.HTTP.MaxBodyKb,
	})
	client := news.NewClientWithDeps(fetcher, news.NewParser(), log)

	printer := &resultPrinter{
		out:    os.Stdout,
		format: cfg.Display.Format,
		opts:   formatter.Options{TitleWidth: cfg.Display.TitleWidth, ShowURL: *showURL},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !cfg.Refresh.Enabled {
		if err := runOnce(ctx, client, cfg.API.BaseEndpoint, reqCfg, printer); err != nil {
			fmt.Fprintf(os.Stderr, "❌ %v\n", err)
			os.Exit(1)
		}

		return
	}

	if err := runWatch(ctx, client, cfg, reqCfg, printer, log); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadConfig(path)
	}

	// Try the default location, then fall back to built-in defaults
	defaultConfig := "configs/newsfeed.yaml"
	if _, statErr := os.Stat(defaultConfig); statErr == nil {
		return config.LoadConfig(defaultConfig)
	}

	cfg := config.Default()
	cfg.ApplyEnv()

	return cfg, nil
}

// runOnce fetches a single page of results and prints it.
func runOnce(ctx context.Context, client *news.Client, endpoint string, reqCfg request.Config, printer *resultPrinter) error {
	outcome := <-client.FetchAsync(ctx, endpoint, reqCfg)
	if outcome.Err != nil {
		return outcome.Err
	}

	return printer.Print(outcome.Result)
}

// runWatch refreshes on the configured cron schedule until interrupted. Every
// refresh goes through the loader, so a slow response that is overtaken by a
// newer refresh is never printed.
func runWatch(ctx context.Context, client *news.Client, cfg *config.Config, reqCfg request.Config, printer *resultPrinter, log *logger.Logger) error {
	loader := news.NewLoader(client, log)
	defer loader.Wait()
	defer loader.Stop()

	results := make(chan news.Outcome, 1)
	deliver := func(o news.Outcome) {
		// Keep only the newest undisplayed outcome.
		select {
		case <-results:
		default:
		}
		results <- o
	}

	refresh := func() {
		loader.Submit(ctx, cfg.API.BaseEndpoint, reqCfg, deliver)
	}

	scheduler := cron.New(cron.WithLogger(log.CronLogger()))
	if _, err := scheduler.AddFunc(cfg.Refresh.Schedule, refresh); err != nil {
		return fmt.Errorf("failed to schedule refresh %q: %w", cfg.Refresh.Schedule, err)
	}

	log.Info("Watching for news", "schedule", cfg.Refresh.Schedule, "search_term", reqCfg.SearchTerm, "order_by", reqCfg.OrderBy)

	refresh()
	scheduler.Start()

	defer func() {
		<-scheduler.Stop().Done()
	}()

	for {
		select {
		case <-ctx.Done():
			log.Info("Shutting down")

			return nil
		case outcome := <-results:
			if outcome.Err != nil {
				return outcome.Err
			}

			if err := printer.Print(outcome.Result); err != nil {
				return err
			}
		}
	}
}

type resultPrinter struct {
	out    io.Writer
	format string
	opts   formatter.Options
}

func (p *resultPrinter) Print(result news.Result) error {
	if p.format == "json" {
		if !result.OK() {
			fmt.Fprintln(os.Stderr, formatter.StatusMessage(result.Failure))
		}

		data, err := formatter.RenderJSON(result.Articles)
		if err != nil {
			return err
		}

		_, err = io.WriteString(p.out, data)

		return err
	}

	_, err := io.WriteString(p.out, formatter.RenderResult(result, p.opts))

	return err
}

func printUsage() {
	fmt.Println("📰 newsfeed - search the Guardian content API from the terminal")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  newsfeed [flags]")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  newsfeed -q \"local elections\" -order-by relevance")
	fmt.Println("  newsfeed -config configs/newsfeed.yaml -watch")
	fmt.Println("  newsfeed -q climate -format json")
	fmt.Println()
	fmt.Println("The API key is read from " + config.EnvAPIKey + " (environment or .env file) or api.api_key in the config file.")
	fmt.Println()
	fmt.Println("Flags:")
	flag.PrintDefaults()
}
