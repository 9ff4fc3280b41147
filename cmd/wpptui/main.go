package main

import (
	"context"
	"flag"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/matheus3301/wppclone/internal/api"
	"github.com/matheus3301/wppclone/internal/bus"
	"github.com/matheus3301/wppclone/internal/config"
	"github.com/matheus3301/wppclone/internal/logging"
	"github.com/matheus3301/wppclone/internal/session"
	"github.com/matheus3301/wppclone/internal/status"
	"github.com/matheus3301/wppclone/internal/sync"
	"github.com/matheus3301/wppclone/internal/tui"
)

func main() {
	sessionFlag := flag.String("session", "", "session name (overrides config default)")
	urlFlag := flag.String("url", "", "backend URL (overrides config and WPP_API_URL)")
	startBackend := flag.Bool("start-backend", false, "start a local wppd when the backend is unreachable")
	flag.Parse()

	cfg, err := config.LoadOrEmpty(session.ConfigPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: load config: %v\n", err)
		os.Exit(1)
	}

	sessionName := session.Resolve(*sessionFlag, cfg)
	if err := session.ValidateName(sessionName); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if err := config.LoadDotEnv(".env", session.EnvPath(sessionName)); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	getenv := os.Getenv
	if *urlFlag != "" {
		getenv = func(key string) string {
			if key == config.EnvAPIURL {
				return *urlFlag
			}
			return os.Getenv(key)
		}
	}
	settings, err := cfg.Resolve(sessionName, getenv)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(session.LogPath(sessionName, "wpptui"), sessionName, false)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	client, err := api.New(settings.APIURL, api.WithTimeout(settings.RequestTimeout))
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if *startBackend && !probeBackend(client) {
		fmt.Fprintf(os.Stderr, "backend not reachable at %s, starting wppd...\n", settings.APIURL)
		if err := startDaemon(sessionName, settings); err != nil {
			fmt.Fprintf(os.Stderr, "failed to start backend: %v\n", err)
			os.Exit(1)
		}
		if !waitForBackend(client, 10*time.Second) {
			fmt.Fprintf(os.Stderr, "backend did not become ready\n")
			os.Exit(1)
		}
	}

	b := bus.New()
	link := status.NewMachine(b)
	coord := sync.NewCoordinator(client, settings, b, link, logger.Named("sync"))

	app := tui.NewApp(coord, b, link, settings, logger.Named("tui"))
	if err := app.Run(); err != nil {
		logger.Error("tui exited", zap.Error(err))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// probeBackend checks that the backend answers the conversation list.
func probeBackend(c *api.Client) bool {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := c.ListConversations(ctx)
	return err == nil
}

func startDaemon(sessionName string, settings config.Settings) error {
	u, err := url.Parse(settings.APIURL)
	if err != nil {
		return err
	}

	executable, err := os.Executable()
	if err != nil {
		return err
	}
	wppd := filepath.Join(filepath.Dir(executable), "wppd")
	if _, err := os.Stat(wppd); err != nil {
		wppd = "wppd"
	}

	cmd := exec.Command(wppd, "--session", sessionName, "--addr", u.Host, "--self-id", settings.SelfID)
	// Inherit stderr so backend startup errors are visible.
	cmd.Stderr = os.Stderr
	return cmd.Start()
}

func waitForBackend(c *api.Client, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if probeBackend(c) {
			return true
		}
		time.Sleep(300 * time.Millisecond)
	}
	return false
}
