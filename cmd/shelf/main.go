package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/shelf"
	"github.com/fwojciec/shelf/bluemonday"
	"github.com/fwojciec/shelf/catalog"
	"github.com/fwojciec/shelf/crawl"
	"github.com/fwojciec/shelf/goquery"
	"github.com/fwojciec/shelf/htmlquery"
	"github.com/fwojciec/shelf/htmltomarkdown"
	shelfhttp "github.com/fwojciec/shelf/http"
	"github.com/fwojciec/shelf/pool"
	"github.com/fwojciec/shelf/rabbitmq"
	"github.com/fwojciec/shelf/rod"
	"github.com/fwojciec/shelf/search"
	shelfslog "github.com/fwojciec/shelf/slog"
	"github.com/fwojciec/shelf/sqlite"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Database path. Overrides the config file when set.
	DBPath string

	// Config file path. Overridden by the --config flag.
	ConfigPath string

	// SQLite database used by SQLite service implementations.
	DB *sqlite.DB

	// Fetcher is used for all outbound requests. Built from config when nil.
	Fetcher shelf.Fetcher

	pool     *pool.Pool
	notifier *rabbitmq.Notifier
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		DBPath:     os.Getenv("SHELF_DB"),
		ConfigPath: defaultConfigPath(),
	}
}

// Close gracefully stops the program. Queued background work finishes
// before the database closes.
func (m *Main) Close() error {
	if m.pool != nil {
		m.pool.Close()
	}
	if m.notifier != nil {
		m.notifier.Close()
	}
	if m.Fetcher != nil {
		m.Fetcher.Close()
	}
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("shelf"),
		kong.Description("Search book sites and read chapters from the terminal."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}),
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'shelf --help' to see available commands")
	}

	cmd := args[0]
	if cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	configPath := m.ConfigPath
	if cli.Config != "" {
		configPath = cli.Config
	}
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config %q: %w", configPath, err)
	}
	logger := setupLogger(cfg.LogLevel, stderr)

	dbPath := m.DBPath
	if dbPath == "" {
		dbPath = cfg.Database.Path
	}
	if dir := filepath.Dir(dbPath); dir != "." {
		_ = os.MkdirAll(dir, 0o755)
	}

	m.DB = sqlite.NewDB(dbPath)
	if err := m.DB.Open(); err != nil {
		fmt.Fprintf(stderr, "Hint: Set SHELF_DB to use a different database path\n")
		return fmt.Errorf("failed to open database at %q: %w", dbPath, err)
	}
	defer m.Close()

	deps.Sources = sqlite.NewSourceService(m.DB)
	deps.Books = sqlite.NewBookService(m.DB)
	deps.Chapters = sqlite.NewChapterService(m.DB)
	deps.Converter = htmltomarkdown.NewConverter()

	if m.Fetcher == nil {
		fetcher, err := newFetcher(cfg, logger)
		if err != nil {
			return err
		}
		m.Fetcher = fetcher
	}
	deps.Fetcher = m.Fetcher

	m.pool = pool.New(cfg.Pool.QueueCapacity,
		pool.WithCoreSize(cfg.Pool.CoreSize),
		pool.WithMaxSize(cfg.Pool.MaxSize),
		pool.WithLogger(logger),
	)

	extractor := goquery.NewExtractor(goquery.WithXPath(htmlquery.NewQuerier()))

	deps.Searcher = shelfslog.NewLoggingSearcher(&search.Searcher{
		Sources:       deps.Sources,
		Fetcher:       deps.Fetcher,
		Extractor:     extractor,
		Pool:          m.pool,
		SourceTimeout: cfg.Search.SourceTimeout,
		Logger:        logger,
	}, logger)

	deps.Catalog = &catalog.Service{
		Sources:   deps.Sources,
		Books:     deps.Books,
		Chapters:  deps.Chapters,
		Fetcher:   deps.Fetcher,
		Extractor: extractor,
		Pool:      m.pool,
		MaxPages:  cfg.Content.MaxPages,
		Prefetch:  cfg.Content.Prefetch,
		Logger:    logger,
	}
	if cfg.Content.Sanitize {
		deps.Catalog.Sanitizer = bluemonday.NewSanitizer()
	}

	if fillsChapters(kongCtx.Command()) && cfg.RabbitMQ.URL != "" {
		notifier, err := rabbitmq.Dial(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange, logger)
		if err != nil {
			// Notifications are best effort; reading works without them.
			logger.Warn("notifications disabled", "err", err)
		} else {
			m.notifier = notifier
			deps.Catalog.Notifier = shelfslog.NewLoggingNotifier(notifier, logger)
		}
	}

	return kongCtx.Run(deps)
}

// fillsChapters reports whether command may fetch chapter content and so
// emit content events.
func fillsChapters(command string) bool {
	name, _, _ := strings.Cut(command, " ")
	return name == "read" || name == "export"
}

// newFetcher builds the transport stack: a static HTTP or headless browser
// fetcher, wrapped with per-host rate limiting, retries and logging.
func newFetcher(cfg *Config, logger *slog.Logger) (shelf.Fetcher, error) {
	var base shelf.Fetcher
	if cfg.Browser.Enabled {
		f, err := rod.NewFetcher(
			rod.WithFetchTimeout(cfg.HTTP.Timeout),
			rod.WithUserAgent(cfg.HTTP.UserAgent),
			rod.WithBin(cfg.Browser.Bin),
			rod.WithNoSandbox(cfg.Browser.NoSandbox),
			rod.WithRecycleAfter(cfg.Browser.RecycleAfter),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to start browser (Chrome or Chromium must be installed): %w", err)
		}
		base = f
	} else {
		base = shelfhttp.NewFetcher(
			shelfhttp.WithTimeout(cfg.HTTP.Timeout),
			shelfhttp.WithUserAgent(cfg.HTTP.UserAgent),
		)
	}

	return &crawl.Fetcher{
		Fetcher:     shelfslog.NewLoggingFetcher(base, logger),
		RateLimiter: crawl.NewDomainLimiter(cfg.HTTP.RateLimit,
			crawl.WithBurst(cfg.HTTP.Burst),
			crawl.WithHostRates(cfg.HTTP.HostRates),
		),
		Backoff:     cfg.HTTP.RetryDelays,
		Logger:      logger,
	}, nil
}
