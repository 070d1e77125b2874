package store

import (
	"caisse/internal/platform/logger"
)

// Option mutates a Memory store during NewMemory
type Option[S any] func(*Memory[S])

// WithLogger sets the logger used for recovered panics
func WithLogger[S any](log logger.Logger) Option[S] {
	return func(m *Memory[S]) { m.log = log }
}

// WithName labels the store in errors and logs
func WithName[S any](name string) Option[S] {
	return func(m *Memory[S]) {
		if name != "" {
			m.name = name
		}
	}
}

// WithCommitHook registers an observer for published changes
func WithCommitHook[S any](h CommitHook[S]) Option[S] {
	return func(m *Memory[S]) {
		if h != nil {
			m.hooks = append(m.hooks, h)
		}
	}
}
