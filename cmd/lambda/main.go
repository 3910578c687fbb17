package main

import (
	"log"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"

	"github.com/andina-core/sqs-event-router/internal/config"
	"github.com/andina-core/sqs-event-router/internal/forward"
	"github.com/andina-core/sqs-event-router/internal/router"
)

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, err
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = lvl
	return cfg.Build()
}

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		log.Fatalf("configuration error: %v", err)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("cannot build logger for level %q: %v", cfg.LogLevel, err)
	}
	defer logger.Sync() //nolint:errcheck

	var policy router.AckPolicy = router.AlwaysAcknowledge{}
	if cfg.ReportBatchFailures {
		policy = router.ReportTransient{}
	}

	routes := cfg.Routes()
	for _, typ := range routes.Types() {
		target, _ := routes.Resolve(typ)
		logger.Info("route configured", zap.String("queueType", string(typ)), zap.String("url", target.URL()))
	}
	if !cfg.TLSVerify {
		logger.Warn("TLS certificate validation disabled")
	}

	r := router.New(routes,
		forward.New(cfg.HTTPTimeout, cfg.TLSVerify),
		router.WithLogger(logger),
		router.WithAckPolicy(policy),
		router.WithEnvironment(cfg.Environment),
	)

	lambda.Start(r.Handle)
}
