// Package database adapts the Firestore REST client to the persistence
// interface the pipeline consumes.
package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	shared "github.com/tripweaver/server/pkg"
	firestore "github.com/tripweaver/server/pkg/storage/firestore"
)

// systemLogType tags importer entries in the per-user system_logs
// collection so the web app's debug view can filter them.
const systemLogType = "EMAIL_IMPORT"

// maxDetailsLen caps the serialized details payload of a system log
// entry, mirroring what the debug view displays.
const maxDetailsLen = 1500

// FirestoreAdapter provides trip persistence through the Firestore REST
// client.
type FirestoreAdapter struct {
	Client *firestore.Client
}

func NewFirestoreAdapter(client *firestore.Client) *FirestoreAdapter {
	return &FirestoreAdapter{Client: client}
}

// CreateTrip writes doc under users/{userID}/trips and returns the id
// the store assigned.
func (a *FirestoreAdapter) CreateTrip(ctx context.Context, userID string, doc *firestore.Document) (string, error) {
	path := fmt.Sprintf("%s/%s/%s", shared.CollectionUsers, userID, shared.CollectionTrips)
	created, err := a.Client.CreateDocument(ctx, path, doc)
	if err != nil {
		return "", err
	}
	if created.ID() == "" {
		return "", fmt.Errorf("store returned a document without a resource name")
	}
	return created.ID(), nil
}

// LogSystemEvent appends a diagnostic entry to the user's system_logs
// collection. Callers treat failures as non-fatal.
func (a *FirestoreAdapter) LogSystemEvent(ctx context.Context, userID, message string, details map[string]string) error {
	detailsJSON, err := json.Marshal(details)
	if err != nil {
		detailsJSON = []byte("{}")
	}

	doc := firestore.NewDocument()
	doc.Set("type", systemLogType)
	doc.Set("timestamp", time.Now().UTC())
	doc.Set("message", message)
	doc.Set("details", truncateDetails(string(detailsJSON)))

	path := fmt.Sprintf("%s/%s/%s", shared.CollectionUsers, userID, shared.CollectionSystemLogs)
	_, err = a.Client.CreateDocument(ctx, path, doc)
	return err
}

func truncateDetails(s string) string {
	if len(s) <= maxDetailsLen {
		return s
	}
	return s[:maxDetailsLen]
}
