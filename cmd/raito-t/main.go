package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/justyntemme/raito-t/internal/api"
	"github.com/justyntemme/raito-t/internal/config"
	"github.com/justyntemme/raito-t/internal/history"
	"github.com/justyntemme/raito-t/internal/imageload"
	"github.com/justyntemme/raito-t/internal/logging"
	"github.com/justyntemme/raito-t/internal/ui"
	"github.com/sanity-io/litter"
)

func main() {
	serverURL := flag.String("url", "", "Server URL (e.g., http://myserver:8080)")
	flag.StringVar(serverURL, "s", "", "Server URL (shorthand)")
	mangaID := flag.String("manga", "", "Open the chapter list of this manga")
	chapterID := flag.String("chapter", "", "Start reading this chapter (requires --manga)")
	page := flag.Int("page", -1, "Start on this page of --chapter, counted from 1")
	debug := flag.Bool("debug", false, "Log at debug level")
	logPath := flag.String("log", "", "Write logs to this file")
	dumpConfig := flag.Bool("dump-config", false, "Print the effective configuration and exit")
	showHelp := flag.Bool("help", false, "Show help message")
	flag.BoolVar(showHelp, "h", false, "Show help (shorthand)")

	flag.Parse()

	if *showHelp {
		printUsage()
		os.Exit(0)
	}
	if *chapterID != "" && *mangaID == "" {
		fmt.Fprintln(os.Stderr, "Error: --chapter requires --manga")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	// Override server URL if provided via flag
	if *serverURL != "" {
		cfg.ServerURL = *serverURL
		if err := cfg.Save(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not save server URL to config: %v\n", err)
		}
	}

	if *dumpConfig {
		fmt.Printf("Config path: %s\n", cfg.Path())
		litter.Dump(cfg)
		litter.Dump(cfg.Settings())
		os.Exit(0)
	}

	if *debug || *logPath != "" {
		level := slog.LevelInfo
		if *debug {
			level = slog.LevelDebug
		}
		path := *logPath
		if path == "" {
			path = filepath.Join(filepath.Dir(cfg.Path()), "raito-t.log")
		}
		f, err := logging.OpenFile(path, level)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
	}

	if err := run(cfg, *mangaID, *chapterID, *page); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, mangaID, chapterID string, page int) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client := api.NewClient(cfg.ServerURL, cfg.Token)
	probe, cancelProbe := context.WithTimeout(ctx, 3*time.Second)
	if err := client.Health(probe); err != nil {
		// positions still go to the local store while offline
		logging.Logger().Warn("server unreachable", "server", cfg.ServerURL, "err", err)
	}
	cancelProbe()

	local, err := history.OpenSQLite(cfg.DBPath)
	if err != nil {
		return err
	}
	defer local.Close()

	deps := ui.Deps{
		Catalog: client,
		Images:  imageload.New(client),
		// the local store answers first; the server copy follows other devices
		History: history.Multi{local, &history.Remote{Client: client}},
	}

	start := ui.Start{MangaID: mangaID, ChapterID: chapterID}
	if chapterID != "" && page > 0 {
		p := page - 1
		start.Page = &p
	}

	logging.Logger().Info("starting", "server", cfg.ServerURL, "db", cfg.DBPath)
	app := ui.NewApp(ctx, cfg, deps, start)
	p := tea.NewProgram(app,
		tea.WithAltScreen(),
		tea.WithMouseAllMotion(),
		tea.WithReportFocus(),
		tea.WithContext(ctx),
	)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run program: %w", err)
	}
	return nil
}

func printUsage() {
	fmt.Println("raito-t - continuous manga reader for the terminal")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  raito-t                                Show recently read manga")
	fmt.Println("  raito-t --manga <id>                   Open a manga's chapter list")
	fmt.Println("  raito-t --manga <id> --chapter <id>    Start reading a chapter")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  -s, --url <url>     Set server URL (saved to config)")
	fmt.Println("  --page <n>          Start page of --chapter, counted from 1")
	fmt.Println("  --debug             Log at debug level")
	fmt.Println("  --log <path>        Log file (default next to the config)")
	fmt.Println("  --dump-config       Print the effective configuration")
	fmt.Println("  -h, --help          Show this help message")
	fmt.Println()
	fmt.Println("Environment:")
	fmt.Println("  RAITO_SERVER_URL    Override the server URL")
	fmt.Println("  RAITO_DB_PATH       Override the history database path")
	fmt.Println()
	fmt.Println("Config: ~/.config/raito-t/config.json")
}
