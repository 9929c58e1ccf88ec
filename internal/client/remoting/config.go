package remoting

import (
	"log/slog"
	"net/http"
	"time"
)

// Default client settings.
const (
	DefaultServer         = "http://127.0.0.1:7080"
	DefaultTimeout        = 10 * time.Second
	DefaultLookupAttempts = 3
	DefaultInitialBackoff = 100 * time.Millisecond
	DefaultMaxBackoff     = 2 * time.Second
)

// Config configures a Client.
type Config struct {
	// Server is the base URL of the remotebean server. A missing scheme
	// defaults to http.
	Server string

	// Timeout bounds each round trip.
	Timeout time.Duration

	// LookupAttempts is the number of tries for a lookup that fails with a
	// transport error. Values below one mean one.
	LookupAttempts int

	// InitialBackoff and MaxBackoff bound the delay between lookup tries.
	InitialBackoff time.Duration
	MaxBackoff     time.Duration

	// HTTPClient overrides the HTTP client. The Client does not close
	// idle connections of a caller-supplied client.
	HTTPClient *http.Client

	Logger *slog.Logger
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() Config {
	return Config{
		Server:         DefaultServer,
		Timeout:        DefaultTimeout,
		LookupAttempts: DefaultLookupAttempts,
		InitialBackoff: DefaultInitialBackoff,
		MaxBackoff:     DefaultMaxBackoff,
	}
}
