package emailimporter

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/tripweaver/server/pkg/bootstrap"
	firestore "github.com/tripweaver/server/pkg/storage/firestore"
	"github.com/tripweaver/server/pkg/testing/mocks"
	"github.com/tripweaver/server/pkg/trips"
)

func newTestService() *bootstrap.Service {
	return &bootstrap.Service{
		Tokens:    &mocks.MockTokenProvider{},
		Identity:  &mocks.MockIdentityLookup{},
		Extractor: &mocks.MockTripExtractor{},
		DB:        &mocks.MockDatabase{},
		Pub:       &mocks.MockPublisher{},
		Config:    &bootstrap.Config{ProjectID: "test-project", AuthSecret: "secret"},
	}
}

func run(svc *bootstrap.Service, from, body string) *PipelineResult {
	logger := bootstrap.NewLogger("email-importer-test")
	return RunPipeline(context.Background(), svc, logger, pipelineInput{
		From:     from,
		Body:     body,
		Raw:      []byte(body),
		ImportID: "import-1",
	})
}

func TestPipelineSuccess(t *testing.T) {
	svc := newTestService()

	var lookedUp string
	svc.Identity = &mocks.MockIdentityLookup{
		UserIDByEmailFunc: func(ctx context.Context, email string) (string, error) {
			lookedUp = email
			return "user-1", nil
		},
	}
	svc.Extractor = &mocks.MockTripExtractor{
		ExtractTripFunc: func(ctx context.Context, text string) (*trips.ExtractedTrip, error) {
			return &trips.ExtractedTrip{
				Name:        "Flight to London",
				Destination: "London",
				StartDate:   "2025-06-15",
				EndDate:     "2025-06-22",
				Flights: &trips.FlightBooking{
					PNR:          "XYZ",
					Airline:      "British Airways",
					FlightNumber: "BA123",
				},
			}, nil
		},
	}

	var written *firestore.Document
	svc.DB = &mocks.MockDatabase{
		CreateTripFunc: func(ctx context.Context, userID string, doc *firestore.Document) (string, error) {
			if userID != "user-1" {
				t.Errorf("userID = %q, want user-1", userID)
			}
			written = doc
			return "trip-42", nil
		},
	}

	result := run(svc, "A B <A@b.com>", "Flight BA123 PNR XYZ to London 2025-06-15 to 2025-06-22")

	if !result.Success {
		t.Fatalf("expected success, got %+v", result)
	}
	if result.TripID != "trip-42" {
		t.Errorf("tripId = %q, want trip-42", result.TripID)
	}
	if lookedUp != "a@b.com" {
		t.Errorf("lookup used %q, want the lowercased bare address a@b.com", lookedUp)
	}
	if written == nil {
		t.Fatal("no document written")
	}
	if got := written.Fields["dates"]["stringValue"]; got != "2025-06-15 - 2025-06-22" {
		t.Errorf("dates = %v", got)
	}
	if got := written.Fields["source"]["stringValue"]; got != "email" {
		t.Errorf("source = %v", got)
	}
	if len(result.Logs) == 0 {
		t.Error("log trail must always be returned")
	}
}

func TestPipelineUserNotFound(t *testing.T) {
	svc := newTestService()
	svc.Identity = &mocks.MockIdentityLookup{
		UserIDByEmailFunc: func(ctx context.Context, email string) (string, error) {
			return "", nil
		},
	}

	writes := 0
	svc.DB = &mocks.MockDatabase{
		CreateTripFunc: func(ctx context.Context, userID string, doc *firestore.Document) (string, error) {
			writes++
			return "should-not-happen", nil
		},
	}

	result := run(svc, "ghost@b.com", "some booking")

	if result.Success {
		t.Fatal("expected failure for unresolved sender")
	}
	if !strings.Contains(result.Message, "ghost@b.com") {
		t.Errorf("message should name the queried address, got %q", result.Message)
	}
	if writes != 0 {
		t.Errorf("expected zero write calls, got %d", writes)
	}
}

func TestPipelineExtractionFailure(t *testing.T) {
	svc := newTestService()
	svc.Extractor = &mocks.MockTripExtractor{
		ExtractTripFunc: func(ctx context.Context, text string) (*trips.ExtractedTrip, error) {
			return nil, fmt.Errorf("response is not valid trip JSON")
		},
	}

	writes := 0
	svc.DB = &mocks.MockDatabase{
		CreateTripFunc: func(ctx context.Context, userID string, doc *firestore.Document) (string, error) {
			writes++
			return "", nil
		},
	}

	result := run(svc, "a@b.com", "just a newsletter")

	if result.Success {
		t.Fatal("expected failure for unextractable content")
	}
	if !strings.Contains(result.Message, "booking confirmation") {
		t.Errorf("message should hint at booking confirmations, got %q", result.Message)
	}
	if writes != 0 {
		t.Errorf("expected zero write calls, got %d", writes)
	}

	found := false
	for _, entry := range result.Logs {
		if strings.Contains(entry, "Extraction failed") {
			found = true
		}
	}
	if !found {
		t.Errorf("log trail should record the extraction stage, got %v", result.Logs)
	}
}

func TestPipelineAuthenticationFailure(t *testing.T) {
	svc := newTestService()
	svc.Tokens = &mocks.MockTokenProvider{
		AccessTokenFunc: func(ctx context.Context) (string, error) {
			return "", fmt.Errorf("token exchange: invalid_grant")
		},
	}

	lookups := 0
	svc.Identity = &mocks.MockIdentityLookup{
		UserIDByEmailFunc: func(ctx context.Context, email string) (string, error) {
			lookups++
			return "user-1", nil
		},
	}

	result := run(svc, "a@b.com", "booking")

	if result.Success {
		t.Fatal("expected failure when authentication fails")
	}
	// Generic message to the caller, underlying cause in the logs only
	if strings.Contains(result.Message, "invalid_grant") {
		t.Errorf("message leaks the cause: %q", result.Message)
	}
	if !strings.Contains(strings.Join(result.Logs, "\n"), "invalid_grant") {
		t.Errorf("log trail should carry the cause, got %v", result.Logs)
	}
	if lookups != 0 {
		t.Errorf("expected zero lookups after auth failure, got %d", lookups)
	}
}

func TestPipelineMalformedSender(t *testing.T) {
	svc := newTestService()

	result := run(svc, "not an address", "booking")

	if result.Success {
		t.Fatal("expected failure for a malformed sender header")
	}
	if !strings.Contains(result.Message, "not an address") {
		t.Errorf("message should name the raw input, got %q", result.Message)
	}
}

func TestPipelinePersistenceFailure(t *testing.T) {
	svc := newTestService()
	storeBody := `{"error":{"message":"quota exceeded"}}`
	svc.DB = &mocks.MockDatabase{
		CreateTripFunc: func(ctx context.Context, userID string, doc *firestore.Document) (string, error) {
			return "", fmt.Errorf("firestore create failed (status 429): %s", storeBody)
		},
	}

	result := run(svc, "a@b.com", "booking")

	if result.Success {
		t.Fatal("expected failure when the store rejects the write")
	}
	if !strings.Contains(result.Error, "quota exceeded") {
		t.Errorf("error should embed the store body, got %q", result.Error)
	}
	if result.Message == "" || strings.Contains(result.Message, "quota") {
		t.Errorf("caller message should stay generic, got %q", result.Message)
	}
}

func TestPipelinePanicRecovery(t *testing.T) {
	svc := newTestService()
	svc.Extractor = &mocks.MockTripExtractor{
		ExtractTripFunc: func(ctx context.Context, text string) (*trips.ExtractedTrip, error) {
			panic("unexpected provider state")
		},
	}

	result := run(svc, "a@b.com", "booking")

	if result.Success {
		t.Fatal("expected failure after a panic")
	}
	if !strings.Contains(result.Error, "unexpected provider state") {
		t.Errorf("error should carry the panic value, got %q", result.Error)
	}
	if len(result.Logs) == 0 {
		t.Error("log trail must survive a panic")
	}
}
