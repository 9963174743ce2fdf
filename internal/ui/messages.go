// Package ui provides the Bubble Tea TUI for Dem-News.
package ui

import (
	"github.com/Dem-News/demnews/internal/store"
)

// FeedLoaded is sent when a scoped feed fetch finishes.
type FeedLoaded struct {
	Scope store.Scope
	Err   error
}

// MutationDone is sent when a like, verify, flag or comment settles.
type MutationDone struct {
	ID     string
	Action string
	Err    error
}

// CommentsLoaded is sent when an item's comment thread has been
// fetched for the detail view.
type CommentsLoaded struct {
	ID  string
	Err error
}

// NewsCreated is sent when a report submission settles.
type NewsCreated struct {
	ID  string
	Err error
}

// RefreshTick triggers periodic refresh of the visible feed.
type RefreshTick struct{}
