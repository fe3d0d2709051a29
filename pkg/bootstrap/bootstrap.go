// Package bootstrap wires configuration, logging and the shared
// service dependencies for the import functions.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"cloud.google.com/go/pubsub"
	"cloud.google.com/go/storage"

	shared "github.com/tripweaver/server/pkg"
	"github.com/tripweaver/server/pkg/extractor"
	"github.com/tripweaver/server/pkg/identity"
	"github.com/tripweaver/server/pkg/infrastructure/database"
	"github.com/tripweaver/server/pkg/infrastructure/oauth"
	infrapubsub "github.com/tripweaver/server/pkg/infrastructure/pubsub"
	infrasentry "github.com/tripweaver/server/pkg/infrastructure/sentry"
	infrastorage "github.com/tripweaver/server/pkg/infrastructure/storage"
	"github.com/tripweaver/server/pkg/storage/firestore"
)

// Config holds standard configuration for all services
type Config struct {
	ProjectID          string
	GeminiAPIKey       string
	GeminiModel        string
	ServiceAccountJSON string
	AuthSecret         string
	RawMessageBucket   string
	EnablePublish      bool
	SentryDSN          string
}

// Service holds initialized dependencies
type Service struct {
	Tokens    shared.TokenProvider
	Identity  shared.IdentityLookup
	Extractor shared.TripExtractor
	DB        shared.Database
	Pub       shared.Publisher
	Store     shared.BlobStore
	Config    *Config
}

// LoadConfig reads configuration from environment variables. All
// missing required variables are reported in a single error.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		ProjectID:          os.Getenv("FIREBASE_PROJECT_ID"),
		GeminiAPIKey:       os.Getenv("GEMINI_API_KEY"),
		GeminiModel:        os.Getenv("GEMINI_MODEL"),
		ServiceAccountJSON: os.Getenv("FIREBASE_SERVICE_ACCOUNT"),
		AuthSecret:         os.Getenv("AUTH_SECRET"),
		RawMessageBucket:   os.Getenv("RAW_MESSAGE_BUCKET"),
		EnablePublish:      os.Getenv("ENABLE_PUBLISH") == "true",
		SentryDSN:          os.Getenv("SENTRY_DSN"),
	}

	var missing []string
	if cfg.ProjectID == "" {
		missing = append(missing, "FIREBASE_PROJECT_ID")
	}
	if cfg.GeminiAPIKey == "" {
		missing = append(missing, "GEMINI_API_KEY")
	}
	if cfg.ServiceAccountJSON == "" {
		missing = append(missing, "FIREBASE_SERVICE_ACCOUNT")
	}
	if cfg.AuthSecret == "" {
		missing = append(missing, "AUTH_SECRET")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}

	return cfg, nil
}

// GetSlogHandlerOptions returns standard handler options for GCP
func GetSlogHandlerOptions(level slog.Level) *slog.HandlerOptions {
	return &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// Map standard keys to Cloud Logging keys
			if a.Key == slog.MessageKey {
				return slog.Attr{Key: "message", Value: a.Value}
			}
			if a.Key == slog.LevelKey {
				return slog.Attr{Key: "severity", Value: a.Value}
			}
			return a
		},
	}
}

// ComponentHandler wraps a slog.Handler to prepend [component] to the message
type ComponentHandler struct {
	slog.Handler
	component string
}

// WithGroup implements slog.Handler
func (h *ComponentHandler) WithGroup(name string) slog.Handler {
	return &ComponentHandler{
		Handler:   h.Handler.WithGroup(name),
		component: h.component,
	}
}

// WithAttrs implements slog.Handler
func (h *ComponentHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newComp := h.component
	for _, a := range attrs {
		if a.Key == "component" {
			newComp = a.Value.String()
		}
	}
	return &ComponentHandler{
		Handler:   h.Handler.WithAttrs(attrs),
		component: newComp,
	}
}

// Handle implements slog.Handler
func (h *ComponentHandler) Handle(ctx context.Context, r slog.Record) error {
	comp := h.component

	r.Attrs(func(a slog.Attr) bool {
		if a.Key == "component" {
			comp = a.Value.String()
			return false // stop
		}
		return true
	})

	if comp != "" {
		newMsg := fmt.Sprintf("[%s] %s", comp, r.Message)
		newRecord := slog.NewRecord(r.Time, r.Level, newMsg, r.PC)
		r.Attrs(func(a slog.Attr) bool {
			newRecord.AddAttrs(a)
			return true
		})
		r = newRecord
	}

	return h.Handler.Handle(ctx, r)
}

// InitLogger configures structured logging with Cloud Logging compatible keys
func InitLogger() {
	opts := GetSlogHandlerOptions(slog.LevelInfo)
	handler := slog.NewJSONHandler(os.Stdout, opts)
	logger := slog.New(&ComponentHandler{Handler: handler})
	slog.SetDefault(logger)
}

// NewLogger creates a configured logger instance
func NewLogger(serviceName string) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := GetSlogHandlerOptions(level)
	handler := slog.NewJSONHandler(os.Stdout, opts)
	return slog.New(&ComponentHandler{Handler: handler}).With("service", serviceName)
}

// NewService initializes all standard dependencies
func NewService(ctx context.Context) (*Service, error) {
	InitLogger()
	cfg, err := LoadConfig()
	if err != nil {
		slog.Error("Config load failed", "error", err)
		return nil, err
	}

	slog.Info("Initializing service", "project_id", cfg.ProjectID)

	tokens := oauth.NewServiceAccountTokenSource(
		[]byte(cfg.ServiceAccountJSON),
		shared.ScopeDatastore,
		shared.ScopeIdentityToolkit,
	)

	fsClient := firestore.NewClient(cfg.ProjectID, tokens)
	idClient := identity.NewClient(cfg.ProjectID, tokens)

	// Pub/Sub
	var pubAdapter shared.Publisher
	if cfg.EnablePublish {
		psClient, err := pubsub.NewClient(ctx, cfg.ProjectID)
		if err != nil {
			slog.Error("PubSub init failed", "error", err)
			return nil, fmt.Errorf("pubsub init: %w", err)
		}
		pubAdapter = &infrapubsub.PubSubAdapter{Client: psClient}
		slog.Info("Pub/Sub: REAL (ENABLE_PUBLISH=true)")
	} else {
		pubAdapter = &infrapubsub.LogPublisher{}
		slog.Info("Pub/Sub: MOCK (LogPublisher)")
	}

	// Raw message archive is optional
	var store shared.BlobStore
	if cfg.RawMessageBucket != "" {
		gcsClient, err := storage.NewClient(ctx)
		if err != nil {
			slog.Error("Storage init failed", "error", err)
			return nil, fmt.Errorf("storage init: %w", err)
		}
		store = &infrastorage.StorageAdapter{Client: gcsClient, Bucket: cfg.RawMessageBucket}
	}

	if err := infrasentry.Init(infrasentry.Config{
		DSN:         cfg.SentryDSN,
		Environment: os.Getenv("ENVIRONMENT"),
		ServerName:  "email-importer",
	}, slog.Default()); err != nil {
		slog.Warn("Sentry init failed, continuing without error tracking", "error", err)
	}

	return &Service{
		Tokens:    tokens,
		Identity:  idClient,
		Extractor: extractor.NewGeminiExtractor(cfg.GeminiAPIKey, cfg.GeminiModel),
		DB:        database.NewFirestoreAdapter(fsClient),
		Pub:       pubAdapter,
		Store:     store,
		Config:    cfg,
	}, nil
}
