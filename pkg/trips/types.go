// Package trips holds the trip data model shared by the extractor, the
// document mapper and the persistence layer.
package trips

// FlightBooking is the flight summary the extractor returns: the booking
// reference plus the primary flight on it.
type FlightBooking struct {
	PNR          string `json:"pnr"`
	Airline      string `json:"airline"`
	FlightNumber string `json:"flightNumber"`
}

// ExtractedTrip is the JSON shape requested from the model. Every field
// is optional from the extractor's perspective; the mapper supplies
// defaults so the stored document is always complete.
type ExtractedTrip struct {
	Name        string         `json:"name"`
	Destination string         `json:"destination"`
	StartDate   string         `json:"startDate"` // ISO 8601 date
	EndDate     string         `json:"endDate"`   // ISO 8601 date
	Flights     *FlightBooking `json:"flights"`
}
