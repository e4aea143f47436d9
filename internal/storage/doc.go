// Package storage persists run state and diagnostic HTML dumps in a
// key-value blob store, backed by either a local directory or a GitHub
// gist.
package storage
