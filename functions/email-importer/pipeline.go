package emailimporter

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	shared "github.com/tripweaver/server/pkg"
	"github.com/tripweaver/server/pkg/bootstrap"
	"github.com/tripweaver/server/pkg/identity"
	infrapubsub "github.com/tripweaver/server/pkg/infrastructure/pubsub"
	"github.com/tripweaver/server/pkg/infrastructure/sentry"
	infrastorage "github.com/tripweaver/server/pkg/infrastructure/storage"
	"github.com/tripweaver/server/pkg/trips"
)

// PipelineResult is the structured outcome returned to the caller.
// The log trail is always included, successful or not.
type PipelineResult struct {
	Success bool     `json:"success"`
	Message string   `json:"message,omitempty"`
	Error   string   `json:"error,omitempty"`
	TripID  string   `json:"tripId,omitempty"`
	Logs    []string `json:"logs"`
}

type pipelineInput struct {
	From     string
	Body     string
	Raw      []byte
	ImportID string
}

// RunPipeline processes one inbound message: resolve the sender to a
// user, extract trip details, map and persist the trip document. Every
// failure produces a structured result, never a panic escaping to the
// caller.
func RunPipeline(ctx context.Context, svc *bootstrap.Service, logger *slog.Logger, in pipelineInput) (result *PipelineResult) {
	result = &PipelineResult{Logs: []string{}}

	step := func(msg string) {
		result.Logs = append(result.Logs, fmt.Sprintf("[%s] %s", time.Now().UTC().Format(time.RFC3339), msg))
		logger.Info(msg)
	}

	defer func() {
		if r := recover(); r != nil {
			err, ok := r.(error)
			if !ok {
				err = fmt.Errorf("panic: %v", r)
			}
			result.Success = false
			result.Error = err.Error()
			step(fmt.Sprintf("Unhandled error: %v", err))
			logger.Error("Pipeline failed unexpectedly", "error", err)
			sentry.CaptureException(err, map[string]interface{}{"import_id": in.ImportID}, logger)
		}
	}()

	// Archive the raw message when a bucket is configured. Failure here
	// never blocks the import.
	if svc.Store != nil && len(in.Raw) > 0 {
		object := infrastorage.RawMessageObject(in.ImportID)
		if err := svc.Store.Write(ctx, object, in.Raw); err != nil {
			logger.Warn("Raw message archive failed", "object", object, "error", err)
		} else {
			step(fmt.Sprintf("Raw message archived as %s", object))
		}
	}

	step("Step 1: Authenticating...")
	if _, err := svc.Tokens.AccessToken(ctx); err != nil {
		step(fmt.Sprintf("Authentication failed: %v", err))
		result.Message = "Failed to authenticate with the backing store"
		return result
	}

	sender, err := identity.ParseSender(in.From)
	if err != nil {
		step(fmt.Sprintf("Sender parse failed: %v", err))
		result.Message = fmt.Sprintf("Could not determine a sender address from %q", in.From)
		return result
	}

	step(fmt.Sprintf("Resolving user for %s", sender.Address))
	userID, err := svc.Identity.UserIDByEmail(ctx, sender.Address)
	if err != nil {
		step(fmt.Sprintf("User lookup failed: %v", err))
		result.Message = "User lookup failed"
		return result
	}
	if userID == "" {
		step(fmt.Sprintf("No account matches %s", sender.Address))
		result.Message = fmt.Sprintf("User not found: %s", sender.Address)
		return result
	}
	step(fmt.Sprintf("User found: %s", userID))

	if err := svc.DB.LogSystemEvent(ctx, userID, "Email received", map[string]string{
		"from": in.From,
	}); err != nil {
		logger.Warn("System log write failed", "error", err)
	}

	step("Step 2: Extracting trip details...")
	trip, err := svc.Extractor.ExtractTrip(ctx, in.Body)
	if err != nil {
		step(fmt.Sprintf("Extraction failed: %v", err))
		result.Message = "Could not extract trip data from this email. Is it a booking confirmation?"
		if logErr := svc.DB.LogSystemEvent(ctx, userID, "Email import failed: no trip data extracted", map[string]string{
			"from": in.From,
		}); logErr != nil {
			logger.Warn("System log write failed", "error", logErr)
		}
		return result
	}
	step(fmt.Sprintf("Extracted trip: %s", trip.Name))

	step("Step 3: Saving trip...")
	doc := trips.MapTrip(trip, time.Now().UTC())
	tripID, err := svc.DB.CreateTrip(ctx, userID, doc)
	if err != nil {
		step(fmt.Sprintf("Save failed: %v", err))
		result.Message = "Failed to save the trip"
		result.Error = err.Error()
		sentry.CaptureException(err, map[string]interface{}{
			"import_id": in.ImportID,
			"user_id":   userID,
		}, logger)
		return result
	}
	result.TripID = tripID
	step(fmt.Sprintf("Trip created: %s", tripID))

	if err := svc.DB.LogSystemEvent(ctx, userID, "New trip created from email", map[string]string{
		"tripId": tripID,
		"name":   trip.Name,
	}); err != nil {
		logger.Warn("System log write failed", "error", err)
	}

	publishImported(ctx, svc, logger, userID, tripID, in.ImportID)

	result.Success = true
	result.Message = "Trip imported"
	return result
}

// publishImported announces a finished import for downstream
// consumers. Best effort only.
func publishImported(ctx context.Context, svc *bootstrap.Service, logger *slog.Logger, userID, tripID, importID string) {
	evt, err := infrapubsub.NewCloudEvent("/email-importer", "com.tripweaver.trip.imported", map[string]string{
		"userId":   userID,
		"tripId":   tripID,
		"importId": importID,
	})
	if err != nil {
		logger.Warn("Failed to create trip.imported event", "error", err)
		return
	}
	if msgID, err := svc.Pub.PublishCloudEvent(ctx, shared.TopicTripImported, evt); err != nil {
		logger.Warn("Failed to publish trip.imported", "error", err)
	} else {
		logger.Info("Published trip.imported", "message_id", msgID)
	}
}
