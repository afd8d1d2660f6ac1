package config

// Default paths for databases
const (
	// DefaultDatabasePath is the default path for the main application database
	DefaultDatabasePath = "./givin.db"

	// DefaultTasksDatabasePath is the default path for the background task queue
	DefaultTasksDatabasePath = "./givin-tasks.db"
)

// DefaultMaxUploadBytes caps import and library uploads at 10 MiB.
const DefaultMaxUploadBytes = 10 << 20
