package internal

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config *Config
	mode   string
	target string

	preview   bool
	noSuggest bool
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithMode selects what Run does: run, enhance, analyze, sitemap, robots,
// serve or mcp.
func WithMode(mode string) Option {
	return func(a *application) {
		a.mode = mode
	}
}

// WithTarget restricts batch modes to a subtree of the docs root.
func WithTarget(target string) Option {
	return func(a *application) {
		a.target = target
	}
}

// WithPreview makes enhancement report changes without writing files.
func WithPreview(preview bool) Option {
	return func(a *application) {
		a.preview = preview
	}
}

// WithoutSuggest disables the remote suggester regardless of config.
func WithoutSuggest(disabled bool) Option {
	return func(a *application) {
		a.noSuggest = disabled
	}
}
