package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"

	"github.com/fortuna/hardwood/internal/board"
	"github.com/fortuna/hardwood/internal/config"
	"github.com/fortuna/hardwood/internal/ingest/espn"
	"github.com/fortuna/hardwood/internal/league"
	"github.com/fortuna/hardwood/internal/platform/logging"
	"github.com/fortuna/hardwood/internal/proxy"
	"github.com/fortuna/hardwood/internal/render"
)

const (
	appName    = "boardctl"
	appVersion = "1.0.0"
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

// run executes one boardctl invocation and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet(appName, flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		leagueKey = fs.String("league", "", "League key to load (e.g. nba)")
		pageName  = fs.String("page", "", "Render this page from the pages directory instead of printing JSON")
		proxyURL  = fs.String("proxy", "", "Fetch through this proxy URL instead of an in-process proxy")
		pagesDir  = fs.String("pages", "", "Pages directory (default from config)")
		standings = fs.Bool("standings", true, "Load standings when printing JSON")
		leaders   = fs.Bool("leaders", true, "Load leaders when printing JSON")
		verbose   = fs.Bool("v", false, "Log fetch progress to stdout")
		showVer   = fs.Bool("version", false, "Print version and exit")
	)
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if *showVer {
		fmt.Fprintf(stdout, "%s v%s\n", appName, appVersion)
		return 0
	}
	if *leagueKey == "" && *pageName == "" {
		fmt.Fprintln(stderr, "specify --league or --page")
		fs.Usage()
		return 2
	}

	level := logging.LevelError
	if *verbose {
		level = logging.LevelDebug
	}
	logger := logging.NewJSON(level)
	logging.SetDefault(logger)
	defer logger.Sync()

	fail := func(what string, err error) int {
		fmt.Fprintf(stderr, "%s: %v\n", what, err)
		return 1
	}

	cfg, err := config.Load(ctx)
	if err != nil {
		return fail("load config", err)
	}
	if *pagesDir != "" {
		cfg.PagesDir = *pagesDir
	}

	table, err := cfg.LeagueTable()
	if err != nil {
		return fail("build league table", err)
	}
	loc, err := cfg.Location()
	if err != nil {
		return fail("resolve time zone", err)
	}

	base := *proxyURL
	if base == "" {
		var stop func()
		base, stop, err = startLocalProxy(cfg, table, logger)
		if err != nil {
			return fail("start proxy", err)
		}
		defer stop()
	}

	service := board.NewService(table, espn.New(base, cfg.HTTPTimeout),
		board.WithLocation(loc),
		board.WithLogger(logger),
		board.WithSourceLabel(cfg.SourceLabel),
	)

	if *pageName != "" {
		if err := renderPage(ctx, stdout, service, table, cfg.PagesDir, *pageName); err != nil {
			return fail("render page", err)
		}
		return 0
	}

	snap := service.Load(ctx, strings.ToLower(*leagueKey), board.LoadOptions{Standings: *standings, Leaders: *leaders})
	out, err := sonic.ConfigDefault.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fail("encode snapshot", err)
	}
	fmt.Fprintln(stdout, string(out))
	if !snap.OK {
		return 1
	}
	return 0
}

// renderPage loads every league the page shows and prints the filled page.
func renderPage(ctx context.Context, w io.Writer, service *board.Service, table *league.Table, dir, name string) error {
	store := board.NewStore(table.Keys())
	pages := render.NewPages(os.DirFS(dir), store, table)

	presences, err := pages.Presences(name)
	if err != nil {
		return err
	}
	for _, p := range presences {
		store.Put(service.Load(ctx, p.League, p.Options))
	}

	html, err := pages.Render(name)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, html)
	return nil
}

// startLocalProxy serves the ESPN proxy on a loopback port and returns its URL.
func startLocalProxy(cfg *config.Config, table *league.Table, logger *logging.Logger) (string, func(), error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", nil, errors.Wrap(err, "listening on loopback")
	}

	allowed := append(append([]string{}, proxy.DefaultESPNPaths...), table.EndpointPaths("scoreboard", "summary", "standings")...)
	handler := proxy.NewESPN(cfg.ESPNUpstream, allowed, proxy.Options{
		HTTPClient: &http.Client{Timeout: 15 * time.Second},
		Logger:     logger,
		MaxAge:     cfg.ProxyMaxAge,
	})

	srv := &http.Server{Handler: handler}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("local proxy stopped", "error", err)
		}
	}()

	stop := func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
	return "http://" + ln.Addr().String() + "/proxy/espn", stop, nil
}
