package system

import (
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/julianstephens/daylog/internal/cli"
	"github.com/julianstephens/daylog/internal/lockfile"
	"github.com/julianstephens/daylog/internal/logger"
	"github.com/julianstephens/daylog/internal/web"
)

type ServeCmd struct {
	Addr    string `help:"Listen address (overrides listen_addr)." env:"DAYLOG_LISTEN_ADDR"`
	BaseURL string `name:"base-url" help:"Public base URL used for the OAuth redirect (default: http://<listen address>)." env:"DAYLOG_BASE_URL"`
}

func (c *ServeCmd) Run(ctx *cli.Context) error {
	cfg := ctx.Config
	if c.Addr != "" {
		cfg.ListenAddr = c.Addr
	}
	if c.BaseURL != "" {
		cfg.BaseURL = c.BaseURL
	}
	if err := cfg.ServerReady(); err != nil {
		return err
	}

	lockPath := lockfile.Path(cfg.ConfigDir)
	if running, err := lockfile.Check(lockPath); err == nil {
		return fmt.Errorf("daylog server already running at %s (PID %d)", running.Addr, running.PID)
	}

	ln, err := net.Listen("tcp", cfg.ListenAddr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", cfg.ListenAddr, err)
	}
	addr := ln.Addr().String()
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "http://" + addr
	}

	srv, err := web.New(ctx.Tracker, web.Options{
		BaseURL:       baseURL,
		ClientID:      cfg.GoogleClientID,
		ClientSecret:  cfg.GoogleClientSecret,
		SessionSecret: cfg.SessionSecret,
	})
	if err != nil {
		_ = ln.Close()
		return err
	}

	if err := lockfile.Write(lockPath, addr); err != nil {
		logger.Warn("Failed to write server lockfile", "path", lockPath, "error", err)
	}
	defer func() {
		if err := lockfile.Remove(lockPath); err != nil {
			logger.Warn("Failed to remove server lockfile", "path", lockPath, "error", err)
		}
	}()

	ctx.PerformAutomaticBackup()

	sigCtx, stop := signal.NotifyContext(ctx.Ctx(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctx.Printf("daylog listening on %s (press Ctrl+C to stop)\n", baseURL)
	if cfg.AdminEmail == "" {
		logger.Warn("No admin email configured, admin query page is disabled")
	}
	return srv.Serve(sigCtx, ln)
}
