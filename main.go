package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"getsneaks/internal/auth"
	"getsneaks/internal/config"
	"getsneaks/internal/logging"
	"getsneaks/internal/remotesync"
	"getsneaks/internal/service"
	"getsneaks/internal/store"
	"getsneaks/internal/strava"
	"getsneaks/internal/tui"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	ctx := context.Background()

	// Load configuration
	cfg, err := config.Load()
	if errors.Is(err, config.ErrNoConfig) {
		fmt.Println("No config file found. Creating example config...")
		if _, err := config.CreateExample(); err != nil {
			return fmt.Errorf("creating example config: %w", err)
		}
		configDir, _ := config.GetConfigDir()
		fmt.Printf("\nPlease edit the config file at:\n  %s/config.json\n\n", configDir)
		fmt.Println("Fill in your profile. Strava credentials are optional and enable workout import;")
		fmt.Println("get them from https://www.strava.com/settings/api or delete the strava section.")
		return nil
	}
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		configDir, _ := config.GetConfigDir()
		fmt.Printf("Config validation failed: %v\n\n", err)
		fmt.Printf("Please edit the config file at:\n  %s/config.json\n", configDir)
		return nil
	}

	logFile, err := cfg.LogFile()
	if err != nil {
		return fmt.Errorf("resolving log file: %w", err)
	}
	logging.Setup(logging.LoggerSetupParams{
		LogFileName:   logFile,
		LogToStdout:   cfg.Logging.ToStdout,
		LogLevel:      cfg.Logging.Level,
		LogFormatJSON: cfg.Logging.JSON,
	})

	db, err := store.Open()
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	if err := service.ApplyProfile(ctx, db, cfg.Profile); err != nil {
		return err
	}

	history := service.NewHistoryService(db)

	var importer *service.ImportService
	if cfg.Strava.Enabled() {
		client, err := stravaClient(ctx, db, cfg)
		if err != nil {
			return err
		}
		importer = service.NewImportService(strava.NewSensor(client), db, history)
	} else {
		logrus.Info("strava not configured, import disabled")
	}

	var syncer *service.SyncService
	if cfg.Sync.Enabled() {
		syncer = service.NewSyncService(remotesync.NewClient(cfg.Sync.Endpoint, cfg.Sync.Token), db)
	}

	logrus.WithFields(logrus.Fields{
		"import": importer != nil,
		"sync":   syncer != nil,
	}).Info("starting getsneaks")

	app := tui.NewApp(history, importer, syncer)
	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running TUI: %w", err)
	}

	return nil
}

// stravaClient returns a client on stored tokens, running the browser login first when there are none
func stravaClient(ctx context.Context, db *store.Store, cfg *config.Config) (*strava.Client, error) {
	oauthCfg := auth.NewOAuthConfig(auth.Config{
		ClientID:     cfg.Strava.ClientID,
		ClientSecret: cfg.Strava.ClientSecret,
	})

	storedAuth, err := db.GetAuth(ctx)
	if errors.Is(err, store.ErrNoAuth) {
		fmt.Println("No Strava authentication found. Starting OAuth flow...")
		storedAuth, err = authenticate(ctx, db, cfg)
		if err != nil {
			return nil, fmt.Errorf("authentication: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("checking auth: %w", err)
	}

	tokenSource := auth.NewTokenSource(oauthCfg, auth.TokenFromAuth(storedAuth), auth.PersistTo(db))

	// Test token is valid by getting a fresh one
	if _, err := tokenSource.Token(); err != nil {
		fmt.Println("Stored token is invalid or expired. Re-authenticating...")
		storedAuth, err = authenticate(ctx, db, cfg)
		if err != nil {
			return nil, fmt.Errorf("re-authentication: %w", err)
		}
		tokenSource = auth.NewTokenSource(oauthCfg, auth.TokenFromAuth(storedAuth), auth.PersistTo(db))
	}

	return strava.NewClient(tokenSource), nil
}

func authenticate(ctx context.Context, db *store.Store, cfg *config.Config) (*store.Auth, error) {
	oauthCfg := auth.NewOAuthConfig(auth.Config{
		ClientID:     cfg.Strava.ClientID,
		ClientSecret: cfg.Strava.ClientSecret,
	})

	result, err := auth.Authenticate(ctx, oauthCfg, os.Stdout)
	if err != nil {
		return nil, err
	}

	storedAuth := auth.AuthFromResult(result)
	if err := db.SaveAuth(ctx, storedAuth); err != nil {
		return nil, fmt.Errorf("saving auth: %w", err)
	}

	fmt.Println()
	fmt.Printf("Successfully authenticated as athlete %d!\n", result.AthleteID)
	return storedAuth, nil
}
