package tsserver

import "time"

// Default engine configuration values.
const (
	defaultBinary         = "tsserver"
	defaultEventBuffer    = 256
	defaultGracePeriod    = 5 * time.Second
	defaultMaxMessageSize = 16 << 20 // 16 MB: completion lists for large projects run to several MB
)

// EngineOptions holds resolved construction-time configuration for an Engine.
type EngineOptions struct {
	// Binary is the server executable name or path.
	Binary string

	// Args are arguments passed to the binary ahead of any per-session args.
	Args []string

	// EventBuffer is the buffer size of the session events channel.
	EventBuffer int

	// GracePeriod is the duration to wait after SIGTERM before sending SIGKILL.
	GracePeriod time.Duration

	// MaxMessageSize is the longest accepted stdout line in bytes.
	MaxMessageSize int
}

// EngineOption configures an Engine at construction time.
type EngineOption func(*EngineOptions)

// WithBinary sets the server executable name or path.
// An empty string is ignored.
func WithBinary(binary string) EngineOption {
	return func(o *EngineOptions) {
		if binary != "" {
			o.Binary = binary
		}
	}
}

// WithArgs sets arguments passed to the binary.
func WithArgs(args ...string) EngineOption {
	return func(o *EngineOptions) {
		o.Args = args
	}
}

// WithEventBuffer sets the buffer size of the session events channel.
// Values <= 0 are ignored.
func WithEventBuffer(size int) EngineOption {
	return func(o *EngineOptions) {
		if size > 0 {
			o.EventBuffer = size
		}
	}
}

// WithGracePeriod sets the duration to wait after SIGTERM before sending SIGKILL.
// Values <= 0 are ignored.
func WithGracePeriod(d time.Duration) EngineOption {
	return func(o *EngineOptions) {
		if d > 0 {
			o.GracePeriod = d
		}
	}
}

// WithMaxMessageSize sets the longest accepted stdout line in bytes.
// Values <= 0 are ignored.
func WithMaxMessageSize(n int) EngineOption {
	return func(o *EngineOptions) {
		if n > 0 {
			o.MaxMessageSize = n
		}
	}
}

func resolveEngineOptions(opts ...EngineOption) EngineOptions {
	o := EngineOptions{
		Binary:         defaultBinary,
		EventBuffer:    defaultEventBuffer,
		GracePeriod:    defaultGracePeriod,
		MaxMessageSize: defaultMaxMessageSize,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}
