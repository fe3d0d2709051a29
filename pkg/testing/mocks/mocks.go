// Package mocks provides hand-rolled test doubles for the shared
// service interfaces. Each mock returns a sensible success value when
// no override func is set.
package mocks

import (
	"context"
	"fmt"

	"github.com/cloudevents/sdk-go/v2/event"

	firestore "github.com/tripweaver/server/pkg/storage/firestore"
	"github.com/tripweaver/server/pkg/trips"
)

// --- Mock TokenProvider ---
type MockTokenProvider struct {
	AccessTokenFunc func(ctx context.Context) (string, error)
}

func (m *MockTokenProvider) AccessToken(ctx context.Context) (string, error) {
	if m.AccessTokenFunc != nil {
		return m.AccessTokenFunc(ctx)
	}
	return "mock-access-token", nil
}

// --- Mock IdentityLookup ---
type MockIdentityLookup struct {
	UserIDByEmailFunc func(ctx context.Context, email string) (string, error)
}

func (m *MockIdentityLookup) UserIDByEmail(ctx context.Context, email string) (string, error) {
	if m.UserIDByEmailFunc != nil {
		return m.UserIDByEmailFunc(ctx, email)
	}
	return "mock-user-id", nil
}

// --- Mock TripExtractor ---
type MockTripExtractor struct {
	ExtractTripFunc func(ctx context.Context, text string) (*trips.ExtractedTrip, error)
}

func (m *MockTripExtractor) ExtractTrip(ctx context.Context, text string) (*trips.ExtractedTrip, error) {
	if m.ExtractTripFunc != nil {
		return m.ExtractTripFunc(ctx, text)
	}
	return &trips.ExtractedTrip{Name: "Mock Trip", Destination: "Mockville"}, nil
}

// --- Mock Database ---
type MockDatabase struct {
	CreateTripFunc     func(ctx context.Context, userID string, doc *firestore.Document) (string, error)
	LogSystemEventFunc func(ctx context.Context, userID, message string, details map[string]string) error
}

func (m *MockDatabase) CreateTrip(ctx context.Context, userID string, doc *firestore.Document) (string, error) {
	if m.CreateTripFunc != nil {
		return m.CreateTripFunc(ctx, userID, doc)
	}
	return "mock-trip-id", nil
}
func (m *MockDatabase) LogSystemEvent(ctx context.Context, userID, message string, details map[string]string) error {
	if m.LogSystemEventFunc != nil {
		return m.LogSystemEventFunc(ctx, userID, message, details)
	}
	return nil
}

// --- Mock Publisher ---
type MockPublisher struct {
	PublishCloudEventFunc func(ctx context.Context, topic string, e event.Event) (string, error)
}

func (m *MockPublisher) PublishCloudEvent(ctx context.Context, topic string, e event.Event) (string, error) {
	if m.PublishCloudEventFunc != nil {
		return m.PublishCloudEventFunc(ctx, topic, e)
	}
	return "msg-id", nil
}

// --- Mock Storage ---
type MockBlobStore struct {
	WriteFunc func(ctx context.Context, object string, data []byte) error
	ReadFunc  func(ctx context.Context, object string) ([]byte, error)
}

func (m *MockBlobStore) Write(ctx context.Context, object string, data []byte) error {
	if m.WriteFunc != nil {
		return m.WriteFunc(ctx, object, data)
	}
	return nil
}
func (m *MockBlobStore) Read(ctx context.Context, object string) ([]byte, error) {
	if m.ReadFunc != nil {
		return m.ReadFunc(ctx, object)
	}
	return nil, fmt.Errorf("object not found")
}
