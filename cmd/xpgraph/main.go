package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dustin/go-humanize"

	"github.com/rewired-gh/xpgraph/internal/config"
	"github.com/rewired-gh/xpgraph/internal/logger"
	"github.com/rewired-gh/xpgraph/internal/platform"
	"github.com/rewired-gh/xpgraph/internal/profile"
	"github.com/rewired-gh/xpgraph/internal/session"
	"github.com/rewired-gh/xpgraph/internal/storage"
)

var configPath = flag.String("config", "configs/config.yaml", "Path to configuration file")

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: xpgraph [-config path] <command> [flags]

Commands:
  login   -user <login> [-password <password>]   sign in and store the token
  logout                                        remove the stored token
  status                                        show the active view and a summary
  render  [-out dir] [-format svg|png] [-telegram]
                                                write both profile charts
`)
}

func main() {
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() < 1 {
		usage()
		os.Exit(2)
	}

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	logger.Debug("Configuration loaded from %s", *configPath)

	// Initialize storage
	store, err := storage.New(cfg.Storage.DBPath)
	if err != nil {
		logger.Fatal("Failed to initialize storage: %v", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("Failed to close storage: %v", err)
		}
	}()

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Info("Shutdown signal received, cancelling...")
		cancel()
	}()

	gate := session.NewGate(store)
	if err := gate.Restore(ctx); err != nil {
		logger.Fatal("Failed to restore session: %v", err)
	}

	client := platform.NewClient(cfg.Platform.BaseURL, cfg.Platform.Timeout, platform.ClientConfig{
		MaxRetries:     cfg.Platform.MaxRetries,
		RetryDelayBase: cfg.Platform.RetryDelayBase,
	})

	ctrl := profile.New(gate, client, profile.Options{
		Canvas:            cfg.Chart.Canvas,
		SortChronological: cfg.Chart.SortChronological,
	})

	cmd, args := flag.Arg(0), flag.Args()[1:]
	switch cmd {
	case "login":
		err = runLogin(ctx, ctrl, args)
	case "logout":
		err = ctrl.Logout(ctx)
		if err == nil {
			fmt.Println("Signed out.")
		}
	case "status":
		err = runStatus(ctx, ctrl)
	case "render":
		err = runRender(ctx, ctrl, cfg, args)
	default:
		usage()
		err = fmt.Errorf("unknown command %q", cmd)
	}

	if err != nil {
		if errors.Is(err, profile.ErrNotAuthenticated) {
			err = fmt.Errorf("%w: run 'xpgraph login -user <login>' first", err)
		}
		logger.Fatal("%s failed: %v", cmd, err)
	}
}

func runLogin(ctx context.Context, ctrl *profile.Controller, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	user := fs.String("user", "", "Username or email")
	password := fs.String("password", "", "Password (defaults to $"+config.EnvPrefix+"_PASSWORD)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	pw := *password
	if pw == "" {
		pw = os.Getenv(config.EnvPrefix + "_PASSWORD")
	}

	if err := ctrl.Login(ctx, *user, pw); err != nil {
		if errors.Is(err, platform.ErrInvalidCredentials) {
			return fmt.Errorf("invalid username or password")
		}
		return err
	}
	fmt.Printf("Signed in as %s.\n", *user)
	return nil
}

func runStatus(ctx context.Context, ctrl *profile.Controller) error {
	view := ctrl.ActiveView()
	fmt.Printf("View: %s\n", view)
	if view != session.ViewProfile {
		return nil
	}

	p, err := ctrl.Show(ctx)
	if err != nil {
		return err
	}
	printSummary(p)
	return nil
}

func printSummary(p *profile.Profile) {
	fmt.Printf("User: %s (id %d)\n", p.User.Login, p.User.ID)
	fmt.Printf("Total XP: %s\n", humanize.Comma(p.TotalXP))
	fmt.Printf("Transactions: %s\n", humanize.Comma(int64(p.Count)))
	fmt.Printf("Projects: %d\n", len(p.Totals))
}
