package tsclient

// StartOptions holds resolved configuration for Engine.Start.
// Engine implementations call ResolveOptions to collapse functional
// options into this struct.
type StartOptions struct {
	// Dir overrides the child's working directory.
	Dir string

	// Args are appended to the engine's configured arguments.
	Args []string

	// Env holds extra KEY=VALUE entries added to the inherited environment.
	Env []string
}

// Option configures an Engine.Start invocation.
type Option func(*StartOptions)

// ResolveOptions applies functional options and returns the resolved config.
// Engine implementations call this in their Start method.
func ResolveOptions(opts ...Option) StartOptions {
	var so StartOptions
	for _, opt := range opts {
		if opt != nil {
			opt(&so)
		}
	}
	return so
}

// WithDir sets the working directory of the child process.
func WithDir(dir string) Option {
	return func(o *StartOptions) {
		o.Dir = dir
	}
}

// WithArgs appends arguments to the engine's configured argument list.
func WithArgs(args ...string) Option {
	return func(o *StartOptions) {
		o.Args = append(o.Args, args...)
	}
}

// WithEnv adds KEY=VALUE entries to the child's environment.
func WithEnv(env ...string) Option {
	return func(o *StartOptions) {
		o.Env = append(o.Env, env...)
	}
}
