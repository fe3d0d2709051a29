// Package emailimporter turns inbound booking-confirmation emails into
// trip documents. It exposes an HTTP test trigger and a CloudEvent
// trigger fed by the mail-transport hook.
package emailimporter

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
	cloudevents "github.com/cloudevents/sdk-go/v2"
	"github.com/google/uuid"

	"github.com/tripweaver/server/pkg/bootstrap"
	"github.com/tripweaver/server/pkg/framework"
)

var (
	svc     *bootstrap.Service
	svcOnce sync.Once
	svcErr  error
)

func init() {
	functions.HTTP("ImportEmailHTTP", ImportEmailHTTP)
	functions.CloudEvent("ImportEmailEvent", ImportEmailEvent)
}

func initService(ctx context.Context) (*bootstrap.Service, error) {
	if svc != nil {
		return svc, nil
	}
	svcOnce.Do(func() {
		baseSvc, err := bootstrap.NewService(ctx)
		if err != nil {
			slog.Error("Failed to initialize service", "error", err)
			svcErr = err
			return
		}
		svc = baseSvc
	})
	return svc, svcErr
}

// importRequest is the test harness body
type importRequest struct {
	From    string `json:"from"`
	Content string `json:"content"`
}

const usageText = `POST a JSON body {"from": "...", "content": "..."} with the X-Auth-Token header set to the shared secret to import an email.`

// authorized checks the shared-secret header. An empty configured
// secret rejects everything.
func authorized(r *http.Request, secret string) bool {
	if secret == "" {
		return false
	}
	token := r.Header.Get("X-Auth-Token")
	if token == "" {
		token = r.Header.Get("X-Telegram-Bot-Api-Secret-Token")
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(secret)) == 1
}

// ImportEmailHTTP is the HTTP entry point
func ImportEmailHTTP(w http.ResponseWriter, r *http.Request) {
	svc, err := initService(r.Context())
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprintf(w, "Error: %v", err)
		return
	}
	handleHTTP(w, r, svc)
}

func handleHTTP(w http.ResponseWriter, r *http.Request, svc *bootstrap.Service) {
	ctx := r.Context()

	if !authorized(r, svc.Config.AuthSecret) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, "Unauthorized")
		return
	}

	if r.Method != http.MethodPost {
		w.Header().Set("Content-Type", "text/plain")
		fmt.Fprintln(w, usageText)
		return
	}

	var req importRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprintf(w, "Error: invalid request body: %v", err)
		return
	}
	if req.From == "" {
		req.From = "test@example.com"
	}

	importID := uuid.NewString()
	logger := bootstrap.NewLogger("email-importer").With("import_id", importID)

	result := RunPipeline(ctx, svc, logger, pipelineInput{
		From:     req.From,
		Body:     req.Content,
		Raw:      []byte(req.Content),
		ImportID: importID,
	})

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

// pubsubMessage mirrors the Pub/Sub push envelope carried in the
// CloudEvent payload.
type pubsubMessage struct {
	Message struct {
		Data       []byte            `json:"data"`
		Attributes map[string]string `json:"attributes"`
	} `json:"message"`
}

// inboundEmail is the forwarded message published by the
// mail-transport hook.
type inboundEmail struct {
	From string `json:"from"`
	Raw  []byte `json:"raw"`
}

// ImportEmailEvent is the CloudEvent entry point
func ImportEmailEvent(ctx context.Context, e cloudevents.Event) error {
	svc, err := initService(ctx)
	if err != nil {
		return fmt.Errorf("service init failed: %v", err)
	}
	return framework.WrapCloudEvent("email-importer", svc, importHandler)(ctx, e)
}

// importHandler contains the business logic for the CloudEvent path.
// Terminal user errors return nil so the message is not redelivered.
func importHandler(ctx context.Context, e cloudevents.Event, fwCtx *framework.Context) error {
	var msg pubsubMessage
	if err := e.DataAs(&msg); err != nil {
		return fmt.Errorf("decode pubsub envelope: %w", err)
	}

	var mail inboundEmail
	if err := json.Unmarshal(msg.Message.Data, &mail); err != nil {
		return fmt.Errorf("decode inbound email: %w", err)
	}

	result := RunPipeline(ctx, fwCtx.Service, fwCtx.Logger, pipelineInput{
		From:     mail.From,
		Body:     string(mail.Raw),
		Raw:      mail.Raw,
		ImportID: fwCtx.ImportID,
	})
	if !result.Success {
		fwCtx.Logger.Warn("Import did not complete", "message", result.Message, "error", result.Error)
	}
	return nil
}
