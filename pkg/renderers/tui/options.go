package tui

import (
	"go.uber.org/zap"
)

// Theme captures optional prefixes the filler applies to messages.
type Theme struct {
	InfoPrefix  string
	ErrorPrefix string
}

// Option configures the Filler.
type Option func(*Filler)

// WithPromptDriver overrides the prompt driver used by the filler.
func WithPromptDriver(driver PromptDriver) Option {
	return func(f *Filler) {
		if driver != nil {
			f.driver = driver
		}
	}
}

// WithTheme applies optional message prefixes.
func WithTheme(theme Theme) Option {
	return func(f *Filler) {
		f.theme = theme
	}
}

// WithSimilarLimit caps how many matching stories are listed after the
// title prompt. Zero hides the list.
func WithSimilarLimit(limit int) Option {
	return func(f *Filler) {
		if limit >= 0 {
			f.similarLimit = limit
		}
	}
}

// WithLogger sets the logger used for prompt diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(f *Filler) {
		if logger != nil {
			f.logger = logger
		}
	}
}
