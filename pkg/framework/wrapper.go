// Package framework wraps CloudEvent handlers with shared logging,
// import tracking and panic capture.
package framework

import (
	"context"
	"log/slog"
	"time"

	"github.com/cloudevents/sdk-go/v2/event"
	"github.com/google/uuid"

	"github.com/tripweaver/server/pkg/bootstrap"
	"github.com/tripweaver/server/pkg/infrastructure/sentry"
)

// Context contains dependencies injected by the framework
type Context struct {
	Service  *bootstrap.Service
	Logger   *slog.Logger
	ImportID string
}

// HandlerFunc is the signature for a cloud function handler
type HandlerFunc func(ctx context.Context, e event.Event, fwCtx *Context) error

// WrapCloudEvent wraps a handler with a per-invocation logger, a
// generated import ID and Sentry panic capture.
func WrapCloudEvent(serviceName string, svc *bootstrap.Service, handler HandlerFunc) func(context.Context, event.Event) error {
	return func(ctx context.Context, e event.Event) error {
		importID := uuid.NewString()
		logger := bootstrap.NewLogger(serviceName).With("import_id", importID, "event_type", e.Type())

		fwCtx := &Context{
			Service:  svc,
			Logger:   logger,
			ImportID: importID,
		}
		logger.Info("Function started")

		defer sentry.RecoverAndCapture(logger)

		if err := handler(ctx, e, fwCtx); err != nil {
			logger.Error("Function failed", "error", err)
			sentry.CaptureException(err, map[string]interface{}{
				"import_id": fwCtx.ImportID,
				"service":   serviceName,
			}, logger)
			sentry.Flush(2 * time.Second)
			return err
		}

		logger.Info("Function completed successfully")
		return nil
	}
}
