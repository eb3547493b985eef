package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/aouyang1/beforeafter/api"
	"github.com/aouyang1/beforeafter/assets"
	"github.com/aouyang1/beforeafter/config"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfgFile string

	cmd := &cobra.Command{
		Use:   "beforeafter",
		Short: "Before/after image gallery server",
		Long: `beforeafter renders a before/after image gallery from a YAML or JSON
content file, either as a grid of cards or as an auto-rotating carousel.`,
		SilenceUsage: true,
	}
	cmd.Version = version
	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./gallery.yaml)")
	cmd.PersistentFlags().String("content", "content.yaml", "content file (YAML or JSON)")
	cmd.PersistentFlags().Bool("strict", false, "reject content that needs fallbacks")
	cmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")

	load := func(cmd *cobra.Command) (config.Config, error) {
		c, err := config.Load(cfgFile, cmd.Flags())
		if err != nil {
			return c, err
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: c.SlogLevel()})))
		return c, nil
	}

	cmd.AddCommand(newServeCmd(load))
	cmd.AddCommand(newRenderCmd(load))
	cmd.AddCommand(newValidateCmd(load))
	cmd.AddCommand(newSlideCmd())
	return cmd
}

type loader func(cmd *cobra.Command) (config.Config, error)

func newServeCmd(load loader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the gallery over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := load(cmd)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, c)
		},
	}
	cmd.Flags().String("addr", "0.0.0.0:8080", "listen address")
	cmd.Flags().String("assets", "public", "asset directory served at the site root")
	cmd.Flags().Bool("probe", false, "read image dimensions from the asset directory")
	cmd.Flags().Bool("watch", true, "reload the content file when it changes")
	cmd.Flags().Duration("idle-ttl", api.DefaultSessionIdleTTL, "unmount carousel sessions idle this long")
	return cmd
}

func serve(ctx context.Context, c config.Config) error {
	if c.SlogLevel() > slog.LevelDebug {
		gin.SetMode(gin.ReleaseMode)
	}

	var prober *assets.Prober
	if c.Assets.Probe {
		prober = assets.NewProber(c.Assets.Dir)
	}

	contentManager, err := api.NewContentManager(c.Content.Path, c.Content.Strict, prober)
	if err != nil {
		return err
	}
	if c.Content.Watch {
		go func() {
			if err := contentManager.Watch(ctx); err != nil {
				slog.Warn("content watch stopped", "error", err)
			}
		}()
	}

	webServer := api.NewWebServer(contentManager, api.Options{
		AssetsDir:      c.Assets.Dir,
		Strict:         c.Content.Strict,
		SessionIdleTTL: c.Session.IdleTTL,
	})
	if err := webServer.Start(ctx, c.Server.Addr); err != nil {
		return fmt.Errorf("web server: %w", err)
	}
	slog.Info("web server stopped")
	return nil
}
