package config

import (
	"SmartShopping/internal/api/payment"
	paymentHandler "SmartShopping/internal/api/payment/handler"
	paymentService "SmartShopping/internal/api/payment/service"
	predictionHandler "SmartShopping/internal/api/prediction/handler"
	predictionService "SmartShopping/internal/api/prediction/service"
	"SmartShopping/internal/entity"
	"SmartShopping/internal/middleware"
	"SmartShopping/pkg/catalog"
	"SmartShopping/pkg/detector"
	"SmartShopping/pkg/utils"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type ServerOption func(*Server) error

type Server struct {
	engine        *fiber.App
	log           *logrus.Logger
	middleware    middleware.Middleware
	validator     *validator.Validate
	utils         utils.IUtils
	handlers      []handler
	catalog       catalog.ICatalog
	detector      detector.IDetector
	classes       *entity.ClassTable
	thresholds    entity.Thresholds
	paymentConfig payment.PaymentConfig
	staticDir     string
	tlsCertFile   string
	tlsKeyFile    string
}

type handler interface {
	Start(srv fiber.Router)
}

func NewServer(options ...ServerOption) (*Server, error) {
	server := &Server{
		paymentConfig: payment.DefaultPaymentConfig(),
	}

	for _, option := range options {
		if err := option(server); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	if server.engine == nil {
		return nil, fmt.Errorf("fiber app is required")
	}
	if server.log == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if server.catalog == nil {
		return nil, fmt.Errorf("price catalog is required")
	}
	if server.detector == nil {
		return nil, fmt.Errorf("detector is required")
	}
	if server.classes == nil {
		return nil, fmt.Errorf("class table is required")
	}
	if server.validator == nil {
		server.validator = NewValidator()
	}
	if server.utils == nil {
		server.utils = utils.New()
	}
	if server.middleware == nil {
		server.middleware = middleware.New(server.log, middleware.Options{})
	}

	return server, nil
}

func WithFiber(fiberApp *fiber.App) ServerOption {
	return func(s *Server) error {
		s.engine = fiberApp
		return nil
	}
}

func WithLogger(logger *logrus.Logger) ServerOption {
	return func(s *Server) error {
		s.log = logger
		return nil
	}
}

func WithValidator(validator *validator.Validate) ServerOption {
	return func(s *Server) error {
		s.validator = validator
		return nil
	}
}

func WithMiddleware(opts middleware.Options) ServerOption {
	return func(s *Server) error {
		if s.log == nil {
			return fmt.Errorf("logger must be initialized before middleware")
		}
		s.middleware = middleware.New(s.log, opts)
		return nil
	}
}

// WithUtils caps multipart uploads at maxFileSize bytes. Zero keeps the
// utils default.
func WithUtils(maxFileSize int64) ServerOption {
	return func(s *Server) error {
		if maxFileSize <= 0 {
			s.utils = utils.New()
			return nil
		}
		s.utils = utils.NewWithMaxFileSize(maxFileSize)
		return nil
	}
}

func WithCatalog(cat catalog.ICatalog) ServerOption {
	return func(s *Server) error {
		if cat == nil {
			return errors.New("nil catalog")
		}
		s.catalog = cat
		return nil
	}
}

func WithDetector(det detector.IDetector, thresholds entity.Thresholds) ServerOption {
	return func(s *Server) error {
		if det == nil {
			return errors.New("nil detector")
		}
		s.detector = det
		s.thresholds = thresholds
		return nil
	}
}

func WithClassTable(classes *entity.ClassTable) ServerOption {
	return func(s *Server) error {
		s.classes = classes
		return nil
	}
}

func WithPaymentConfig(cfg payment.PaymentConfig) ServerOption {
	return func(s *Server) error {
		s.paymentConfig = cfg
		return nil
	}
}

// WithStaticDir serves the web client from dir. A missing directory only
// disables static serving.
func WithStaticDir(dir string) ServerOption {
	return func(s *Server) error {
		if dir == "" {
			return nil
		}
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			if s.log != nil {
				s.log.Warnf("Static directory %s not found, web client disabled", dir)
			}
			return nil
		}
		s.staticDir = dir
		return nil
	}
}

// WithTLS serves HTTPS from a PEM certificate and key. Empty paths keep
// plain HTTP.
func WithTLS(certFile, keyFile string) ServerOption {
	return func(s *Server) error {
		if certFile == "" && keyFile == "" {
			return nil
		}
		if certFile == "" || keyFile == "" {
			return errors.New("tls needs both a certificate and a key")
		}
		if _, err := tls.LoadX509KeyPair(certFile, keyFile); err != nil {
			return fmt.Errorf("load tls key pair: %w", err)
		}
		s.tlsCertFile = certFile
		s.tlsKeyFile = keyFile
		return nil
	}
}

func (s *Server) RegisterHandler() {
	s.engine.Use(s.middleware.NewRequestIDMiddleware())
	s.engine.Use(s.middleware.NewLoggingMiddleware())
	if s.middleware.RateLimitEnabled() {
		s.engine.Use(s.middleware.NewRateLimiter)
	}

	// Prediction
	predictionServices := predictionService.New(s.log, s.detector, s.classes, s.catalog, s.utils, s.thresholds)
	predictionHandlers := predictionHandler.New(s.log, s.validator, s.middleware, predictionServices, s.utils)

	// Payment
	paymentServices := paymentService.New(s.log, s.paymentConfig)
	paymentHandlers := paymentHandler.New(s.log, s.middleware, paymentServices)

	s.setupHealthCheck()
	s.handlers = append(s.handlers, predictionHandlers, paymentHandlers)

	for _, h := range s.handlers {
		h.Start(s.engine)
	}

	s.setupStatic()
}

func (s *Server) Run(port string) error {
	if port == "" {
		port = "5000"
	}

	addr := fmt.Sprintf(":%s", port)
	if s.tlsCertFile != "" {
		return s.engine.ListenTLS(addr, s.tlsCertFile, s.tlsKeyFile)
	}

	return s.engine.Listen(addr)
}

// Shutdown stops accepting requests, waits for in-flight ones, then releases
// the detector.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.engine.ShutdownWithContext(ctx)

	if closeErr := s.detector.Close(); closeErr != nil {
		err = errors.Join(err, fmt.Errorf("close detector: %w", closeErr))
	}

	return err
}

func (s *Server) setupHealthCheck() {
	s.engine.Get("/healthz", func(ctx *fiber.Ctx) error {
		return ctx.JSON(fiber.Map{
			"message":       "Server is Healthy!",
			"catalog_items": s.catalog.Len(),
		})
	})
}

func (s *Server) setupStatic() {
	if s.staticDir == "" {
		return
	}

	s.engine.Static("/", s.staticDir, fiber.Static{
		Index: "index.html",
	})
	s.log.Infof("Serving web client from %s", filepath.Clean(s.staticDir))
}
