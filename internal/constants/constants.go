package constants

import "time"

const (
	DefaultRating  = 1200
	MultiplierKey  = "elo_multiplier"
	MultiplierOn   = "on"
	MultiplierOff  = "off"
	SourceManual   = "manual"
	SourceImport   = "import"
	DefaultLBLimit = 10
	MaxLBLimit     = 1000
)

const (
	MovementLookback = 5 * 24 * time.Hour
	MovementStaleAge = 30 * 24 * time.Hour
)

const (
	ExternalAPITimeout = 10 * time.Second
	DatabaseTimeout    = 5 * time.Second
	RequestTimeout     = 30 * time.Second
	ImportTimeout      = 2 * time.Minute
)

const (
	DBMaxOpenConns    = 10
	DBMaxIdleConns    = 5
	DBConnMaxLifetime = 1 * time.Hour
	DBMaxIdleTime     = 10 * time.Minute
	DBBusyTimeoutMS   = 5000
)

const (
	ShutdownTimeout = 5 * time.Second
)
