package config

import (
	"SmartShopping/internal/api/payment"
	"SmartShopping/internal/entity"
	"SmartShopping/pkg/catalog"
	"SmartShopping/pkg/detector"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	App      AppConfig
	Catalog  CatalogConfig
	Detector DetectorConfig
	Payment  payment.PaymentConfig
}

type AppConfig struct {
	Port           string  `env:"APP_PORT" validate:"required,numeric"`
	Env            string  `env:"APP_ENV"`
	StaticDir      string  `env:"STATIC_DIR"`
	BodyLimitMB    int     `env:"BODY_LIMIT_MB" validate:"gte=1"`
	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS" validate:"gte=0"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST" validate:"gte=1"`
	TLSCertFile    string  `env:"APP_TLS_CERT" validate:"required_with=TLSKeyFile,omitempty,file"`
	TLSKeyFile     string  `env:"APP_TLS_KEY" validate:"required_with=TLSCertFile,omitempty,file"`
}

// BodyLimitBytes is the request body cap. Multipart uploads share it.
func (a AppConfig) BodyLimitBytes() int {
	return a.BodyLimitMB * 1024 * 1024
}

// TLSEnabled reports whether both halves of the key pair are configured.
func (a AppConfig) TLSEnabled() bool {
	return a.TLSCertFile != "" && a.TLSKeyFile != ""
}

const (
	CatalogSourceCSV      = "csv"
	CatalogSourcePostgres = "postgres"
	CatalogSourceS3       = "s3"
)

type CatalogConfig struct {
	Source      string `env:"CATALOG_SOURCE" validate:"oneof=csv postgres s3"`
	CSVPath     string `env:"CATALOG_CSV_PATH" validate:"required_if=Source csv"`
	DatabaseURL string `env:"CATALOG_DATABASE_URL" validate:"required_if=Source postgres"`
	Table       string `env:"CATALOG_TABLE" validate:"required_if=Source postgres"`
	OrderColumn string `env:"CATALOG_ORDER_COLUMN" validate:"required_if=Source postgres"`
	S3          S3Config
}

type S3Config struct {
	Bucket          string `env:"CATALOG_S3_BUCKET"`
	Key             string `env:"CATALOG_S3_KEY"`
	Region          string `env:"AWS_REGION"`
	Endpoint        string `env:"AWS_ENDPOINT"`
	AccessKeyID     string `env:"AWS_ACCESS_KEY_ID"`
	SecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY"`
}

type DetectorConfig struct {
	Backend     string        `env:"DETECTOR_BACKEND" validate:"oneof=websocket onnx"`
	URL         string        `env:"DETECTOR_URL" validate:"required_if=Backend websocket"`
	ModelPath   string        `env:"DETECTOR_MODEL_PATH" validate:"required_if=Backend onnx"`
	PoolSize    int           `env:"DETECTOR_POOL_SIZE" validate:"gte=1"`
	DialTimeout time.Duration `env:"DETECTOR_DIAL_TIMEOUT" validate:"gt=0"`
	Confidence  float64       `env:"DETECTOR_CONFIDENCE" validate:"gte=0,lte=1"`
	IoU         float64       `env:"DETECTOR_IOU" validate:"gte=0,lte=1"`
	InputSize   int           `env:"DETECTOR_INPUT_SIZE" validate:"gte=32"`
	Labels      []string      `env:"DETECTOR_LABELS" validate:"min=1,dive,required"`
}

func (d DetectorConfig) Thresholds() entity.Thresholds {
	return entity.Thresholds{
		Confidence: d.Confidence,
		IoU:        d.IoU,
		InputSize:  d.InputSize,
	}
}

// LoadConfig reads the process environment, applies defaults and validates
// the result.
func LoadConfig() (*Config, error) {
	return loadConfig(os.LookupEnv)
}

func loadConfig(lookup func(string) (string, bool)) (*Config, error) {
	r := &envReader{lookup: lookup}
	defaults := payment.DefaultPaymentConfig()

	cfg := &Config{
		App: AppConfig{
			Port:           r.string("APP_PORT", "5000"),
			Env:            r.string("APP_ENV", "development"),
			StaticDir:      r.string("STATIC_DIR", "./build"),
			BodyLimitMB:    r.int("BODY_LIMIT_MB", 50),
			RateLimitRPS:   r.float("RATE_LIMIT_RPS", 0),
			RateLimitBurst: r.int("RATE_LIMIT_BURST", 20),
			TLSCertFile:    r.string("APP_TLS_CERT", ""),
			TLSKeyFile:     r.string("APP_TLS_KEY", ""),
		},
		Catalog: CatalogConfig{
			Source:      strings.ToLower(r.string("CATALOG_SOURCE", CatalogSourceCSV)),
			CSVPath:     r.string("CATALOG_CSV_PATH", "./fairprice_items.csv"),
			DatabaseURL: r.string("CATALOG_DATABASE_URL", ""),
			Table:       r.string("CATALOG_TABLE", "item_prices"),
			OrderColumn: r.string("CATALOG_ORDER_COLUMN", catalog.DefaultOrderColumn),
			S3: S3Config{
				Bucket:          r.string("CATALOG_S3_BUCKET", ""),
				Key:             r.string("CATALOG_S3_KEY", "fairprice_items.csv"),
				Region:          r.string("AWS_REGION", "ap-southeast-1"),
				Endpoint:        r.string("AWS_ENDPOINT", ""),
				AccessKeyID:     r.string("AWS_ACCESS_KEY_ID", ""),
				SecretAccessKey: r.string("AWS_SECRET_ACCESS_KEY", ""),
			},
		},
		Detector: DetectorConfig{
			Backend:     strings.ToLower(r.string("DETECTOR_BACKEND", detector.BackendWebSocket)),
			URL:         r.string("DETECTOR_URL", "ws://localhost:8000/ws/detect"),
			ModelPath:   r.string("DETECTOR_MODEL_PATH", "./best.onnx"),
			PoolSize:    r.int("DETECTOR_POOL_SIZE", 4),
			DialTimeout: r.duration("DETECTOR_DIAL_TIMEOUT", 10*time.Second),
			Confidence:  r.float("DETECTOR_CONFIDENCE", 0.70),
			IoU:         r.float("DETECTOR_IOU", 0.70),
			InputSize:   r.int("DETECTOR_INPUT_SIZE", 640),
			Labels:      r.list("DETECTOR_LABELS", entity.DefaultClassNames),
		},
		Payment: payment.PaymentConfig{
			BaseURL:  r.string("PAYMENT_BASE_URL", defaults.BaseURL),
			Mobile:   r.string("PAYMENT_MOBILE", defaults.Mobile),
			UEN:      r.string("PAYMENT_UEN", defaults.UEN),
			Editable: r.string("PAYMENT_EDITABLE", defaults.Editable),
			Expiry:   r.string("PAYMENT_EXPIRY", defaults.Expiry),
			RefID:    r.string("PAYMENT_REF_ID", defaults.RefID),
			Company:  r.string("PAYMENT_COMPANY", defaults.Company),
		},
	}

	if err := errors.Join(r.errs...); err != nil {
		return nil, err
	}

	if err := NewValidator().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if cfg.Catalog.Source == CatalogSourceS3 && cfg.Catalog.S3.Bucket == "" {
		return nil, errors.New("invalid configuration: CATALOG_S3_BUCKET is required when CATALOG_SOURCE=s3")
	}

	return cfg, nil
}

// envReader collects parse errors so every bad variable is reported at once.
// Variables that are set but empty count as unset, except for the payment
// template parts which may legitimately be blank.
type envReader struct {
	lookup func(string) (string, bool)
	errs   []error
}

func (r *envReader) raw(key string) (string, bool) {
	v, ok := r.lookup(key)
	if !ok {
		return "", false
	}
	return strings.TrimSpace(v), true
}

func (r *envReader) string(key, def string) string {
	v, ok := r.raw(key)
	if !ok {
		return def
	}
	if v == "" && !strings.HasPrefix(key, "PAYMENT_") {
		return def
	}
	return v
}

func (r *envReader) int(key string, def int) int {
	v, ok := r.raw(key)
	if !ok || v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return n
}

func (r *envReader) float(key string, def float64) float64 {
	v, ok := r.raw(key)
	if !ok || v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return f
}

func (r *envReader) duration(key string, def time.Duration) time.Duration {
	v, ok := r.raw(key)
	if !ok || v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return d
}

func (r *envReader) list(key string, def []string) []string {
	v, ok := r.raw(key)
	if !ok || v == "" {
		out := make([]string, len(def))
		copy(out, def)
		return out
	}

	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		out = append(out, strings.TrimSpace(p))
	}
	return out
}
