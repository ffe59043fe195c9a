package config

const (
	// DefaultDatabasePath is the default path for the catalog database.
	DefaultDatabasePath = "./medcatalog.db"

	// DefaultDataLocation is the default storage root for imported
	// volumes and thumbnails.
	DefaultDataLocation = "./data"
)
