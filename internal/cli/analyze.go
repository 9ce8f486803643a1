package cli

import (
	"bufio"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pypilens/pypilens/pkg/archive"
	"github.com/pypilens/pypilens/pkg/cache"
	"github.com/pypilens/pypilens/pkg/errors"
	"github.com/pypilens/pypilens/pkg/fetch"
	"github.com/pypilens/pypilens/pkg/record"
	"github.com/pypilens/pypilens/pkg/report"
	"github.com/pypilens/pypilens/pkg/scrape"
)

// analyzeOptions collects every flag of the analyze command.
type analyzeOptions struct {
	configFile  string
	fromFile    string
	user        string
	format      string
	outputDir   string
	withSource  bool
	browser     bool
	chromeBin   string
	githubToken string
	concurrency int
	timeout     time.Duration
	retries     int
	retryDelay  time.Duration
	noCache     bool
	redisAddr   string
	printReport bool
}

// newAnalyzeCmd creates the analyze command.
func newAnalyzeCmd() *cobra.Command {
	var opts analyzeOptions

	cmd := &cobra.Command{
		Use:   "analyze [package...]",
		Short: "Aggregate metadata for one or more packages",
		Long: `Collect metadata for the given packages from the package index, the
rendered project page, the download statistics API, and the source
repository, then write one report per package.

Packages can be given as arguments, read from a file with --file, or
resolved from a user profile with --user.`,
		Example: `  pypilens analyze requests
  pypilens analyze requests flask django --format json
  pypilens analyze --file packages.txt --concurrency 10
  pypilens analyze --user kennethreitz --output-dir out`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, args, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.configFile, "config", "", "config file (default ~/.config/pypilens/config.toml)")
	flags.StringVarP(&opts.fromFile, "file", "f", "", "file with one package name per line")
	flags.StringVarP(&opts.user, "user", "u", "", "aggregate every package maintained by a user")
	flags.StringVar(&opts.format, "format", "", "report format: text, json, markdown, html")
	flags.StringVarP(&opts.outputDir, "output-dir", "o", "", "directory for report files")
	flags.BoolVar(&opts.withSource, "source-analysis", false, "download and analyze the source archive")
	flags.BoolVar(&opts.browser, "browser", false, "render pages with a headless browser")
	flags.StringVar(&opts.chromeBin, "chrome", "", "headless browser binary (default chromium)")
	flags.StringVar(&opts.githubToken, "github-token", "", "repository API token (default $GITHUB_TOKEN)")
	flags.IntVarP(&opts.concurrency, "concurrency", "c", 0, "bulk worker limit")
	flags.DurationVar(&opts.timeout, "timeout", 0, "per-request HTTP timeout")
	flags.IntVar(&opts.retries, "retries", 0, "attempts per request")
	flags.DurationVar(&opts.retryDelay, "retry-delay", 0, "base delay between retries")
	flags.BoolVar(&opts.noCache, "no-cache", false, "disable the response cache")
	flags.StringVar(&opts.redisAddr, "redis", "", "redis address for a shared cache (host:port)")
	flags.BoolVar(&opts.printReport, "print", false, "print the report to stdout as well")

	return cmd
}

func runAnalyze(cmd *cobra.Command, args []string, opts analyzeOptions) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	cfg, err := loadConfig(opts.configFile)
	if err != nil {
		return err
	}
	applyConfig(cmd, &opts, cfg)

	format, err := report.ParseFormat(opts.format)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid --format")
	}

	store, err := openCache(cmd, opts)
	if err != nil {
		return err
	}
	defer store.Close()

	policy := fetch.DefaultRetryPolicy()
	if opts.retries > 0 {
		policy.MaxAttempts = opts.retries
	}
	if opts.retryDelay > 0 {
		policy.BaseDelay = opts.retryDelay
	}
	fetchOpts := []fetch.FetcherOption{
		fetch.WithHTTPClient(&http.Client{Timeout: opts.timeout}),
		fetch.WithRetryPolicy(policy),
		fetch.WithLogger(logger),
	}
	if opts.browser {
		fetchOpts = append(fetchOpts, fetch.WithRenderer(&fetch.ChromeRenderer{Binary: opts.chromeBin}))
	}
	fetcher := fetch.NewFetcher(fetchOpts...)

	aggOpts := []scrape.AggregatorOption{
		scrape.WithCache(store),
		scrape.WithGitHubToken(opts.githubToken),
		scrape.WithBrowser(opts.browser),
		scrape.WithAggregatorLogger(logger),
	}
	if opts.withSource {
		aggOpts = append(aggOpts, scrape.WithSourceAnalyzer(
			archive.NewAnalyzer(fetcher, archive.WithLogger(logger))))
	}
	agg := scrape.NewAggregator(fetcher, aggOpts...)

	names, err := collectNames(cmd, args, opts, agg)
	if err != nil {
		return err
	}

	var records []*record.PackageRecord
	if len(names) == 1 {
		records = analyzeSingle(cmd, agg, names[0])
	} else {
		records = analyzeBulk(cmd, agg, names, opts.concurrency)
	}

	failed := 0
	for _, rec := range records {
		if rec.Error != "" {
			failed++
		}
		path, err := report.Save(opts.outputDir, rec, format)
		if err != nil {
			printWarning("Could not write report for %s: %v", rec.Name, err)
			continue
		}
		printFile(path)

		if opts.printReport && len(records) == 1 {
			out, err := report.Render(rec, format)
			if err == nil {
				fmt.Println()
				os.Stdout.Write(out)
			}
		}
	}

	fmt.Println()
	printSummary(records)

	if failed == len(records) {
		return errors.New(errors.ErrCodeOrchestratorItem, "all %d package(s) failed", failed)
	}
	return nil
}

// applyConfig fills unset flags from the config file.
func applyConfig(cmd *cobra.Command, opts *analyzeOptions, cfg Config) {
	flags := cmd.Flags()
	if !flags.Changed("format") && opts.format == "" {
		opts.format = cfg.Format
	}
	if !flags.Changed("output-dir") && opts.outputDir == "" {
		opts.outputDir = cfg.OutputDir
	}
	if !flags.Changed("github-token") && opts.githubToken == "" {
		opts.githubToken = cfg.GitHubToken
	}
	if !flags.Changed("concurrency") && opts.concurrency == 0 {
		opts.concurrency = cfg.Concurrency
	}
	if !flags.Changed("retries") && opts.retries == 0 {
		opts.retries = cfg.Retries
	}
	if !flags.Changed("retry-delay") && opts.retryDelay == 0 {
		opts.retryDelay = time.Duration(cfg.RetryBaseMS) * time.Millisecond
	}
	if !flags.Changed("timeout") && opts.timeout == 0 {
		opts.timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	if !flags.Changed("browser") {
		opts.browser = opts.browser || cfg.Browser
	}
	if !flags.Changed("chrome") && opts.chromeBin == "" {
		opts.chromeBin = cfg.ChromeBinary
	}
	if !flags.Changed("redis") && opts.redisAddr == "" {
		opts.redisAddr = cfg.RedisAddr
	}
}

// openCache picks the cache backend: Redis when configured, the file cache
// by default, and no cache with --no-cache.
func openCache(cmd *cobra.Command, opts analyzeOptions) (cache.Cache, error) {
	if opts.noCache {
		return cache.Null{}, nil
	}
	if opts.redisAddr != "" {
		store, err := cache.NewRedisCache(cmd.Context(), opts.redisAddr, "pypilens")
		if err != nil {
			return nil, fmt.Errorf("redis cache: %w", err)
		}
		return store, nil
	}
	dir, err := cacheDir()
	if err != nil {
		return nil, err
	}
	store, err := cache.NewFileCache(dir)
	if err != nil {
		return nil, fmt.Errorf("file cache: %w", err)
	}
	return store, nil
}

// collectNames merges arguments, the names file, and the user profile.
func collectNames(cmd *cobra.Command, args []string, opts analyzeOptions, agg *scrape.Aggregator) ([]string, error) {
	seen := make(map[string]bool)
	var names []string
	add := func(name string) {
		name = strings.TrimSpace(name)
		if name == "" || seen[name] {
			return
		}
		seen[name] = true
		names = append(names, name)
	}

	for _, arg := range args {
		add(arg)
	}

	if opts.fromFile != "" {
		f, err := os.Open(opts.fromFile)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "reading --file")
		}
		defer f.Close()
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			add(line)
		}
		if err := scanner.Err(); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "reading --file")
		}
	}

	if opts.user != "" {
		spinner := newSpinnerWithContext(cmd.Context(), fmt.Sprintf("Resolving packages for %s...", opts.user))
		spinner.Start()
		resolved, err := agg.ResolveProfile(cmd.Context(), opts.user)
		if err != nil {
			spinner.StopWithError(fmt.Sprintf("Could not resolve user %s", opts.user))
			return nil, err
		}
		spinner.StopWithSuccess(fmt.Sprintf("Found %d package(s) for %s", len(resolved), opts.user))
		for _, name := range resolved {
			add(name)
		}
	}

	if len(names) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "no packages given (use arguments, --file, or --user)")
	}
	return names, nil
}

func analyzeSingle(cmd *cobra.Command, agg *scrape.Aggregator, name string) []*record.PackageRecord {
	spinner := newSpinnerWithContext(cmd.Context(), fmt.Sprintf("Aggregating %s...", name))
	spinner.Start()

	rec, err := agg.Aggregate(cmd.Context(), name)
	if err != nil {
		spinner.StopWithError(fmt.Sprintf("Failed to aggregate %s", name))
	} else {
		spinner.StopWithSuccess(fmt.Sprintf("Aggregated %s %s", rec.Name, rec.Version))
	}
	return []*record.PackageRecord{rec}
}

func analyzeBulk(cmd *cobra.Command, agg *scrape.Aggregator, names []string, concurrency int) []*record.PackageRecord {
	spinner := newSpinnerWithContext(cmd.Context(), fmt.Sprintf("Aggregating %d packages...", len(names)))
	spinner.Start()

	orch := scrape.NewOrchestrator(agg)
	records := orch.Run(cmd.Context(), names, concurrency, func(completed, total int, name string, err error) {
		spinner.SetMessage(fmt.Sprintf("Aggregating packages... %d/%d (%s)", completed, total, name))
	})

	spinner.Stop()
	return records
}
