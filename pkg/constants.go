package shared

const (
	CollectionUsers      = "users"
	CollectionTrips      = "trips"
	CollectionSystemLogs = "system_logs"

	TopicTripImported = "topic-trip-imported"

	// OAuth scopes the service-account token is requested with: document
	// store writes plus Identity Toolkit account lookup.
	ScopeDatastore       = "https://www.googleapis.com/auth/datastore"
	ScopeIdentityToolkit = "https://www.googleapis.com/auth/identitytoolkit"
)
