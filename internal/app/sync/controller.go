package sync

import (
	"context"

	"go.uber.org/zap"

	"mcpsync/internal/domain"
)

// ToolExtractor yields the tool records for one server, empty on any
// recoverable fault.
type ToolExtractor interface {
	ExtractToolsFromServer(ctx context.Context, server domain.ServerRecord) []domain.ToolRecord
}

type serverStatus int

const (
	statusProcessed serverStatus = iota
	statusSkipped
	statusFailed
)

// Controller runs the batch: servers strictly in registry order, one listing
// session at a time, with a per-server fault boundary so one server can never
// prevent processing of the rest.
type Controller struct {
	extractor ToolExtractor
	publisher domain.ToolPublisher
	logger    *zap.Logger
}

func NewController(extractor ToolExtractor, publisher domain.ToolPublisher, logger *zap.Logger) *Controller {
	if extractor == nil {
		panic("sync.Controller requires an extractor")
	}
	if publisher == nil {
		panic("sync.Controller requires a publisher")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		extractor: extractor,
		publisher: publisher,
		logger:    logger.Named("sync"),
	}
}

// SyncAll visits every server record and returns the final counters. The
// caller decides the process exit status from Failed.
func (c *Controller) SyncAll(ctx context.Context, servers []domain.ServerRecord) domain.SyncOutcome {
	outcome := domain.SyncOutcome{ServersTotal: len(servers)}

	for idx, server := range servers {
		c.logger.Info("processing server",
			zap.Int("index", idx+1),
			zap.Int("total", len(servers)),
			zap.String("server", server.Identifier),
			zap.String("title", server.DisplayTitle()),
		)

		status, toolCount := c.syncOne(ctx, server)
		switch status {
		case statusProcessed:
			outcome.Processed++
			outcome.ToolsSynced += toolCount
		case statusSkipped:
			outcome.Skipped++
		case statusFailed:
			outcome.Failed++
		}
	}

	c.logger.Info("sync complete",
		zap.Int("serversTotal", outcome.ServersTotal),
		zap.Int("processed", outcome.Processed),
		zap.Int("skipped", outcome.Skipped),
		zap.Int("failed", outcome.Failed),
		zap.Int("toolsSynced", outcome.ToolsSynced),
	)
	return outcome
}

func (c *Controller) syncOne(ctx context.Context, server domain.ServerRecord) (status serverStatus, toolCount int) {
	// Per-server fault boundary: a publish error or an unexpected panic
	// counts the server as failed and the batch moves on.
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("server processing panicked",
				zap.String("server", server.Identifier),
				zap.Any("panic", r),
			)
			status = statusFailed
			toolCount = 0
		}
	}()

	records := c.extractor.ExtractToolsFromServer(ctx, server)
	if len(records) == 0 {
		c.logger.Info("no tools found, skipping",
			zap.String("server", server.Identifier),
		)
		return statusSkipped, 0
	}

	for _, record := range records {
		if err := c.publisher.UpsertTool(ctx, record); err != nil {
			c.logger.Error("tool upsert failed",
				zap.String("server", server.Identifier),
				zap.String("tool", record.Identifier),
				zap.Error(err),
			)
			return statusFailed, 0
		}
	}

	names := make([]string, 0, len(records))
	for _, record := range records {
		names = append(names, record.Title)
	}
	// Summary write is best effort and independent of the upsert outcome.
	if err := c.publisher.SetServerToolNames(ctx, server.Identifier, names); err != nil {
		c.logger.Warn("server tool-name summary update failed",
			zap.String("server", server.Identifier),
			zap.Error(err),
		)
	}

	c.logger.Info("server processed",
		zap.String("server", server.Identifier),
		zap.Int("tools", len(records)),
	)
	return statusProcessed, len(records)
}
