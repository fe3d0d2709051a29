package shared

import (
	"context"

	"github.com/cloudevents/sdk-go/v2/event"

	firestore "github.com/tripweaver/server/pkg/storage/firestore"
	"github.com/tripweaver/server/pkg/trips"
)

// --- Identity Interfaces ---

// TokenProvider supplies a bearer token for outbound Google API calls.
type TokenProvider interface {
	AccessToken(ctx context.Context) (string, error)
}

// IdentityLookup resolves a normalized email address to an internal user
// id. Returns "" without error when no account matches.
type IdentityLookup interface {
	UserIDByEmail(ctx context.Context, email string) (string, error)
}

// --- Extraction Interfaces ---

type TripExtractor interface {
	ExtractTrip(ctx context.Context, text string) (*trips.ExtractedTrip, error)
}

// --- Persistence Interfaces ---

type Database interface {
	CreateTrip(ctx context.Context, userID string, doc *firestore.Document) (string, error)
	LogSystemEvent(ctx context.Context, userID, message string, details map[string]string) error
}

// --- Messaging Interfaces ---

type Publisher interface {
	PublishCloudEvent(ctx context.Context, topic string, e event.Event) (string, error)
}

// --- Storage Interfaces ---

type BlobStore interface {
	Write(ctx context.Context, object string, data []byte) error
	Read(ctx context.Context, object string) ([]byte, error)
}
