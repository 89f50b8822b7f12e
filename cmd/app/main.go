package main

import (
	"SmartShopping/internal/config"
	"SmartShopping/internal/entity"
	"SmartShopping/internal/middleware"
	"SmartShopping/pkg/catalog"
	"SmartShopping/pkg/detector"
	"SmartShopping/pkg/log"
	"SmartShopping/pkg/s3"
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logrus.Warnf("Error loading .env file: %v", err)
	}

	logger := log.NewLogger()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	priceCatalog, err := loadCatalog(cfg.Catalog)
	if err != nil {
		logger.Fatalf("Failed to load price catalog: %v", err)
	}
	logger.WithFields(log.Fields{
		"source": cfg.Catalog.Source,
		"items":  priceCatalog.Len(),
	}).Info("Price catalog loaded")

	classes, err := entity.NewClassTable(cfg.Detector.Labels)
	if err != nil {
		logger.Fatalf("Invalid class table: %v", err)
	}

	det, err := newDetector(cfg.Detector, logger)
	if err != nil {
		logger.Fatalf("Failed to initialize detector: %v", err)
	}
	checkClassTable(det, classes, cfg.Detector, logger)

	server, err := config.NewServer(
		config.WithFiber(config.NewFiber(logger, cfg.App)),
		config.WithLogger(logger),
		config.WithValidator(config.NewValidator()),
		config.WithMiddleware(middleware.Options{
			RequestsPerSecond: cfg.App.RateLimitRPS,
			Burst:             cfg.App.RateLimitBurst,
		}),
		config.WithUtils(int64(cfg.App.BodyLimitBytes())),
		config.WithCatalog(priceCatalog),
		config.WithDetector(det, cfg.Detector.Thresholds()),
		config.WithClassTable(classes),
		config.WithPaymentConfig(cfg.Payment),
		config.WithStaticDir(cfg.App.StaticDir),
		config.WithTLS(cfg.App.TLSCertFile, cfg.App.TLSKeyFile),
	)
	if err != nil {
		logger.Fatal(err)
	}

	server.RegisterHandler()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.Run(cfg.App.Port); err != nil {
			logger.Fatalf("Error starting server: %v", err)
		}
	}()

	logger.WithFields(log.Fields{
		"port": cfg.App.Port,
		"tls":  cfg.App.TLSEnabled(),
	}).Info("Server started")

	<-sigChan
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Errorf("Error during shutdown: %v", err)
	}
}

func loadCatalog(cfg config.CatalogConfig) (catalog.ICatalog, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	switch cfg.Source {
	case config.CatalogSourcePostgres:
		db, err := catalog.OpenPostgres(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		defer db.Close()

		return catalog.LoadPostgres(ctx, db, cfg.Table, cfg.OrderColumn)

	case config.CatalogSourceS3:
		client, err := s3.New(s3.Config{
			Region:          cfg.S3.Region,
			Bucket:          cfg.S3.Bucket,
			Endpoint:        cfg.S3.Endpoint,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
		})
		if err != nil {
			return nil, err
		}

		return catalog.LoadObject(ctx, client, cfg.S3.Key)

	default:
		return catalog.LoadCSVFile(cfg.CSVPath)
	}
}

func newDetector(cfg config.DetectorConfig, logger *logrus.Logger) (detector.IDetector, error) {
	if cfg.Backend == detector.BackendONNX {
		return detector.NewONNXDetector(detector.ONNXConfig{ModelPath: cfg.ModelPath})
	}

	return detector.NewWebSocketDetector(detector.WebSocketConfig{
		URL:         cfg.URL,
		PoolSize:    cfg.PoolSize,
		DialTimeout: cfg.DialTimeout,
	}, logger), nil
}

// checkClassTable aborts on a label count mismatch. A remote detector that
// cannot be reached yet is only reported; requests will retry the connection.
func checkClassTable(det detector.IDetector, classes *entity.ClassTable, cfg config.DetectorConfig, logger *logrus.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.DialTimeout)
	defer cancel()

	count, err := det.ClassCount(ctx)
	if err != nil {
		if cfg.Backend == detector.BackendONNX {
			logger.Fatalf("Failed to inspect model output: %v", err)
		}
		logger.WithFields(log.Fields{
			"url":   cfg.URL,
			"error": err.Error(),
		}).Warn("Inference service unreachable, class table not verified")
		return
	}

	if err := classes.Validate(count); err != nil {
		logger.Fatalf("Detector does not match class table: %v", err)
	}

	logger.WithFields(log.Fields{
		"backend": cfg.Backend,
		"classes": count,
	}).Info("Detector ready")
}
