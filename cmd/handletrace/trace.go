package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/handletrace/internal/cache"
	"github.com/nao1215/handletrace/internal/config"
	"github.com/nao1215/handletrace/internal/correlate"
	"github.com/nao1215/handletrace/internal/harvest"
	"github.com/nao1215/handletrace/internal/log"
	"github.com/nao1215/handletrace/internal/model"
	"github.com/nao1215/handletrace/internal/pipeline"
	"github.com/nao1215/handletrace/internal/probe"
	"github.com/nao1215/handletrace/internal/report"
	"github.com/nao1215/handletrace/internal/signature"
	"github.com/nao1215/handletrace/internal/transport"
	"github.com/nao1215/handletrace/internal/variant"
)

// NewTraceCmd creates the trace command.
func NewTraceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trace [seed-handle]",
		Short: "Trace a handle across platforms",
		Long: `Trace investigates one or more seed handles across the platform registry.

For each seed it generates candidate handle variants, probes every
(platform, candidate) pair for an existing account, fingerprints the
confirmed accounts, and reports identity clusters whose behavioral
signatures correlate above the threshold.

Examples:
  # Trace a single handle with defaults
  handletrace trace alice

  # Trace several handles in one run
  handletrace trace alice alice_dev

  # Passive-only probing, never touching the platforms directly
  handletrace trace --stealth 3 alice

  # Route all probing through a SOCKS5 proxy
  handletrace trace --proxy 127.0.0.1:9050 alice

  # Route all probing through an embedded Tor daemon
  handletrace trace --tor alice

  # Output a JSON report to a file
  handletrace trace --json -o report.json alice

Configuration file (.handletrace) example:
  platforms:
    mastodon:
      disabled: true
    forgejo:
      profile_url_template: "https://codeberg.org/%s"
      existence_markers: ["profile-avatar"]
  credentials:
    search_api_key: "..."`,
		Args: cobra.ArbitraryArgs,
		RunE: runTraceCmd,
	}

	// Probing behavior flags
	cmd.Flags().IntP("stealth", "s", config.DefaultStealthLevel,
		"Stealth level: 1 direct, 2 passive-first, 3 passive-only")
	cmd.Flags().Int("max-variants", config.DefaultMaxVariants,
		"Maximum candidate handles generated per seed")
	cmd.Flags().IntP("workers", "w", config.DefaultWorkers,
		"Number of concurrent probes")
	cmd.Flags().DurationP("timeout", "t", config.DefaultRequestTimeout,
		"Connection timeout for each request")
	cmd.Flags().Duration("run-timeout", 0,
		"Overall deadline for each investigation (0 = none)")
	cmd.Flags().Int("budget", config.DefaultSessionBudget,
		"Maximum requests per platform per session before cooling down")

	// Cache flags
	cmd.Flags().Duration("cache-ttl", config.DefaultCacheTTL,
		"Probe cache entry lifetime")
	cmd.Flags().Bool("no-cache", false,
		"Use an in-memory probe cache instead of the persistent one")

	// Routing flags
	cmd.Flags().String("proxy", "",
		"Route probing through a SOCKS5 proxy at the given address")
	cmd.Flags().Bool("tor", false,
		"Start an embedded Tor daemon and route probing through it")
	cmd.Flags().Duration("tor-timeout", config.DefaultTorStartupTimeout,
		"Timeout for embedded Tor startup")

	// Fingerprinting flags
	cmd.Flags().Bool("no-harvest", false,
		"Skip content harvesting (discovery and probing only)")
	cmd.Flags().Bool("suggest", false,
		"Generate additional variants with the configured AI suggester")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .handletrace in current or home directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")

	return cmd
}

// runTraceCmd executes the trace command.
func runTraceCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// Structured logging with credential masking
	verbose := getVerboseFlag(cmd)
	logger := log.NewLogger(os.Stderr, verbose)
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runTrace(ctx, cfg, logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from cobra command flags.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	var err error

	cfg.StealthLevel, err = cmd.Flags().GetInt("stealth")
	if err != nil {
		return nil, err
	}

	cfg.MaxVariants, err = cmd.Flags().GetInt("max-variants")
	if err != nil {
		return nil, err
	}

	cfg.Workers, err = cmd.Flags().GetInt("workers")
	if err != nil {
		return nil, err
	}

	cfg.RequestTimeout, err = cmd.Flags().GetDuration("timeout")
	if err != nil {
		return nil, err
	}

	cfg.RunTimeout, err = cmd.Flags().GetDuration("run-timeout")
	if err != nil {
		return nil, err
	}

	cfg.SessionBudget, err = cmd.Flags().GetInt("budget")
	if err != nil {
		return nil, err
	}

	cfg.CacheTTL, err = cmd.Flags().GetDuration("cache-ttl")
	if err != nil {
		return nil, err
	}

	noCache, err := cmd.Flags().GetBool("no-cache")
	if err != nil {
		return nil, err
	}
	if !noCache {
		cfg.CacheDir = config.XDGCacheDir()
	}

	cfg.ProxyAddress, err = cmd.Flags().GetString("proxy")
	if err != nil {
		return nil, err
	}

	cfg.UseTor, err = cmd.Flags().GetBool("tor")
	if err != nil {
		return nil, err
	}

	cfg.TorStartupTimeout, err = cmd.Flags().GetDuration("tor-timeout")
	if err != nil {
		return nil, err
	}

	noHarvest, err := cmd.Flags().GetBool("no-harvest")
	if err != nil {
		return nil, err
	}
	cfg.Harvest = !noHarvest

	cfg.SuggestVariants, err = cmd.Flags().GetBool("suggest")
	if err != nil {
		return nil, err
	}

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// Load the config file: an explicitly specified file must exist, the
	// default search is allowed to come up empty.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	if configPath != "" {
		file, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		file.Apply(cfg)
	} else if explicitConfigPath {
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	}

	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}

	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}

	cfg.ReportFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	// Positional arguments are the seed handles
	cfg.Seeds = args

	return cfg, nil
}

// runTrace wires the components and runs one investigation per seed.
func runTrace(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	fetcher, cleanup, err := buildFetcher(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	probeCache, closeCache, err := buildCache(cfg, logger)
	if err != nil {
		return err
	}
	defer closeCache()

	engine := buildEngine(cfg, logger, fetcher, probeCache)

	for _, seed := range cfg.Seeds {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		fmt.Printf("Tracing %s...\n", seed)
		startTime := time.Now()

		id, err := engine.StartInvestigation(ctx, seed)
		if err != nil {
			logger.Error("investigation failed to start", "seed", seed, "error", err)
			fmt.Fprintf(os.Stderr, "Trace error for %s: %v\n", seed, err)
			continue
		}

		inv, err := engine.Wait(ctx, id)
		if err != nil {
			logger.Error("investigation wait failed", "seed", seed, "error", err)
			continue
		}

		elapsed := time.Since(startTime)
		fmt.Printf("Trace completed in %s\n\n", elapsed.Round(time.Millisecond))

		if err := outputReport(cfg, inv.ToReport()); err != nil {
			logger.Error("report failed", "seed", seed, "error", err)
		}
	}

	return nil
}

// buildFetcher creates the outbound transport, optionally routed through
// a SOCKS5 proxy or an embedded Tor daemon. The returned cleanup stops
// the Tor daemon when one was started.
func buildFetcher(ctx context.Context, cfg *config.Config, logger *slog.Logger) (transport.Fetcher, func(), error) {
	opts := []transport.Option{
		transport.WithTimeout(cfg.RequestTimeout),
		transport.WithMimicry(cfg.StealthLevel >= config.StealthModerate),
	}
	cleanup := func() {}

	switch {
	case cfg.UseTor:
		fmt.Println("Starting embedded Tor daemon...")
		fmt.Printf("This may take 1-3 minutes while Tor bootstraps and connects to the network.\n\n")

		route := transport.NewAnonymizedRoute(
			transport.WithStartupTimeout(cfg.TorStartupTimeout),
		)
		if err := route.Start(ctx); err != nil {
			return nil, nil, fmt.Errorf("failed to start embedded Tor: %w", err)
		}
		logger.Info("embedded Tor daemon started", "socksAddr", route.SocksAddr())
		fmt.Printf("Embedded Tor daemon started, SOCKS proxy: %s\n\n", route.SocksAddr())

		opts = append(opts, transport.WithSOCKS5(route.SocksAddr()))
		cleanup = func() {
			logger.Info("stopping embedded Tor daemon...")
			if err := route.Stop(); err != nil {
				logger.Error("failed to stop embedded Tor", "error", err)
			}
		}
	case cfg.ProxyAddress != "":
		opts = append(opts, transport.WithSOCKS5(cfg.ProxyAddress))
		logger.Info("routing through SOCKS5 proxy", "address", cfg.ProxyAddress)
	}

	client, err := transport.NewClient(opts...)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("failed to create transport: %w", err)
	}
	return client, cleanup, nil
}

// buildCache opens the persistent probe cache, falling back to memory
// when persistence is disabled or the database cannot be opened.
func buildCache(cfg *config.Config, logger *slog.Logger) (cache.Cache, func(), error) {
	if cfg.CacheDir == "" {
		return cache.NewMemory(), func() {}, nil
	}

	db, err := cache.Open(cfg.CacheDir, cache.DefaultOptions(), logger)
	if err != nil {
		logger.Warn("probe cache unavailable, using in-memory cache", "dir", cfg.CacheDir, "error", err)
		return cache.NewMemory(), func() {}, nil
	}
	logger.Info("probe cache opened", "dir", cfg.CacheDir)
	return db, func() {
		if err := db.Close(); err != nil {
			logger.Error("failed to close probe cache", "error", err)
		}
	}, nil
}

// buildEngine assembles the investigation engine from the configuration.
func buildEngine(cfg *config.Config, logger *slog.Logger, fetcher transport.Fetcher, probeCache cache.Cache) *pipeline.Engine {
	var generatorOpts []variant.GeneratorOption
	if cfg.SuggestVariants && cfg.Credentials.OpenAIKey != "" {
		generatorOpts = append(generatorOpts,
			variant.WithSuggester(variant.NewOpenAISuggester(cfg.Credentials.OpenAIKey, variant.DefaultSuggestModel)))
	}
	generator := variant.NewGenerator(logger, generatorOpts...)

	prober := probe.New(cfg, fetcher, probeCache, logger)

	var harvester harvest.Harvester
	if cfg.Harvest {
		harvester = harvest.NewHTTPHarvester(fetcher, logger, harvest.WithMaxImages(cfg.MaxHarvestImages))
	}

	return pipeline.NewEngine(
		cfg,
		logger,
		generator,
		prober,
		harvester,
		signature.NewExtractor(logger),
		correlate.NewCorrelator(cfg.CorrelationThreshold, logger),
	)
}

// outputReport writes the report in the requested format.
func outputReport(cfg *config.Config, rep *model.InvestigationReport) error {
	var output *os.File
	if cfg.ReportFile != "" {
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		// Reports may identify real people; owner-only permissions.
		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	} else {
		output = os.Stdout
	}

	var writer report.Writer
	switch {
	case cfg.JSONReport:
		writer = report.NewJSONWriter(output, report.WithPrettyPrint())
	case cfg.MarkdownReport:
		writer = report.NewMarkdownWriter(output)
	default:
		writer = report.NewSimpleWriter(output)
	}

	_, err := writer.Write(rep)
	return err
}
