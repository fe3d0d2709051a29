package trips

import (
	"time"

	firestore "github.com/tripweaver/server/pkg/storage/firestore"
)

const (
	// SourceEmail marks trips that entered through the email importer.
	SourceEmail = "email"

	// DefaultCoverImage is the cover the web app shows until the user
	// picks one.
	DefaultCoverImage = "https://images.unsplash.com/photo-1590523741831-ab7e8b8f9c7f?q=80&w=2574&auto=format&fit=crop"
)

// collectionFields are the list fields the trip dashboard iterates over.
// Every one must be written, even empty, or the trip fails to render.
var collectionFields = []string{
	"hotels",
	"restaurants",
	"attractions",
	"itinerary",
	"documents",
	"weather",
	"news",
	"expenses",
	"shoppingItems",
	"secureNotes",
}

// MapTrip converts an extracted trip into the wire-encoded document the
// web app reads. Pure: the same input and the same now produce the same
// document, and absent extractor fields become empty strings and empty
// arrays, never missing keys.
func MapTrip(t *ExtractedTrip, now time.Time) *firestore.Document {
	if t == nil {
		t = &ExtractedTrip{}
	}

	doc := firestore.NewDocument()
	doc.Set("name", t.Name)
	doc.Set("destination", t.Destination)
	doc.Set("startDate", t.StartDate)
	doc.Set("endDate", t.EndDate)
	doc.Set("dates", formatDateRange(t.StartDate, t.EndDate))
	doc.Set("coverImage", DefaultCoverImage)
	doc.Set("source", SourceEmail)
	doc.Set("isShared", false)
	doc.Set("createdAt", now)
	doc.Set("updatedAt", now)
	doc.Set("importedAt", now)

	flights := t.Flights
	if flights == nil {
		flights = &FlightBooking{}
	}
	doc.Set("flights", map[string]interface{}{
		"pnr":          flights.PNR,
		"airline":      flights.Airline,
		"flightNumber": flights.FlightNumber,
		"segments":     []interface{}{},
	})

	for _, field := range collectionFields {
		doc.Set(field, []interface{}{})
	}

	return doc
}

// formatDateRange derives the display range for the dashboard card. A
// missing end date degrades to the bare start date; without a start date
// there is no range at all.
func formatDateRange(start, end string) string {
	if start == "" {
		return ""
	}
	if end == "" {
		return start
	}
	return start + " - " + end
}
