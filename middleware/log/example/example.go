package logger_test

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ashmount/ClanBot/config"
	logger "github.com/ashmount/ClanBot/middleware/log"
)

// Example_basicUsage demonstrates building a logger from configuration.
func Example_basicUsage() {
	cfg := &config.LoggingConfig{
		Level:  "info",
		Format: "json",
		Output: "stdout",
	}

	log, err := logger.NewLogger(cfg)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	log.Info("bot started")
	log.Warn("kafka unavailable, running without role reconciliation")
	log.Error("store failure", zap.Error(fmt.Errorf("connection refused")))
}

// Example_contextAware demonstrates trace IDs flowing through a request.
func Example_contextAware() {
	log, _ := logger.NewDevelopmentLogger()
	defer log.Sync()

	ctx := logger.WithTraceID(context.Background(), logger.NewTraceID())

	log.InfoContext(ctx, "command received",
		zap.String("user_id", "user123"),
		zap.String("path", "/api/v1/wallet/deposit"))

	log.InfoContext(ctx, "deposit applied",
		zap.Int64("amount", 500))
}

// Example_persistentFields demonstrates component-scoped loggers.
func Example_persistentFields() {
	log, _ := logger.NewDevelopmentLogger()
	defer log.Sync()

	reconcilerLog := log.WithFields(zap.String("component", "reconciler"))

	reconcilerLog.Info("auto-enrolled member from role grant",
		zap.String("role_id", "role123"),
		zap.String("user_id", "user456"))
	reconcilerLog.Warn("role revoked from clan owner, directory left untouched",
		zap.String("role_id", "role123"))
}
