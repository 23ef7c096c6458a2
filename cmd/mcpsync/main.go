package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"mcpsync/internal/app/sync"
	"mcpsync/internal/buildinfo"
	"mcpsync/internal/infra/config"
	"mcpsync/internal/infra/listing"
	"mcpsync/internal/infra/port"
	"mcpsync/internal/infra/transport"
)

type runOptions struct {
	logger *zap.Logger
}

func main() {
	opts := runOptions{logger: zap.NewNop()}

	root := &cobra.Command{
		Use:     "mcpsync",
		Short:   "Sync tools from catalog-registered MCP servers back into the catalog",
		Version: fmt.Sprintf("%s (%s)", buildinfo.Version, buildinfo.Build),
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			cfg := zap.NewProductionConfig()
			log, err := cfg.Build()
			if err != nil {
				return err
			}
			opts.logger = log
			return nil
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			_ = opts.logger.Sync()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := signalAwareContext(cmd.Context())
			defer cancel()
			return run(ctx, opts.logger)
		},
		SilenceUsage: true,
	}

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *zap.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	client := port.NewClient(port.Options{
		BaseURL:      cfg.APIBaseURL,
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Timeout:      cfg.HTTPTimeout,
		Logger:       logger,
	})

	servers, err := client.FetchServers(ctx)
	if err != nil {
		return fmt.Errorf("fetch servers: %w", err)
	}
	if len(servers) == 0 {
		logger.Info("no server records to process")
		return nil
	}

	lister := listing.NewLister(transport.NewStdioTransport(), cfg.ListTimeout, logger)
	extractor := sync.NewExtractor(lister, logger)
	controller := sync.NewController(extractor, client, logger)

	outcome := controller.SyncAll(ctx, servers)
	if outcome.Failed > 0 {
		return fmt.Errorf("%d of %d servers failed", outcome.Failed, outcome.ServersTotal)
	}
	return nil
}

func signalAwareContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(signals)
		select {
		case <-signals:
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}
