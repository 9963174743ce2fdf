package engine

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/Dem-News/demnews/internal/api"
	"github.com/Dem-News/demnews/internal/logging"
	"github.com/Dem-News/demnews/internal/news"
	"github.com/Dem-News/demnews/internal/store"
)

// mutation describes one user action against a single entity. The
// lifecycle is idle → optimistic-applied → awaiting-response →
// confirmed, conflict or failed; run drives it.
type mutation struct {
	kind string

	// apply is the optimistic local change, executed on a clone under
	// the entity lock before the remote call starts.
	apply func(*news.NewsItem)

	// call is the remote operation. Its result patch is authoritative
	// for the fields the mutation owns.
	call func(context.Context) (store.Patch, error)

	// satisfied reports whether the refetched entity already reflects
	// the user's intent, in which case the conflict retry is skipped
	// (a concurrent action elsewhere got there first). nil means the
	// retry is always issued.
	satisfied func(*news.NewsItem) bool

	// cleanup strips optimistic residue the conflict refetch cannot
	// clear itself (a pending comment placeholder when the refetch
	// omitted comments). nil when the refetch is sufficient.
	cleanup func(*news.NewsItem)
}

// run executes a mutation end to end. The entity lock serializes
// actions per id; the remote call runs detached from the caller's
// context so a torn-down screen never leaves the shared cache in the
// optimistic state — the caller's context gates only result delivery.
func (e *Engine) run(ctx context.Context, id string, m mutation) (*news.NewsItem, error) {
	lock := e.entityLock(id)
	lock.Lock()
	defer lock.Unlock()

	prev, _, err := e.store.ApplyOptimistic(id, m.apply)
	if err != nil {
		// Unknown entity: terminal, nothing was applied.
		return nil, err
	}
	logging.Debug("mutation applied optimistically", "kind", m.kind, "id", id)

	callCtx := context.WithoutCancel(ctx)
	patch, err := m.call(callCtx)
	switch {
	case err == nil:
		if _, uerr := e.store.Upsert(patch); uerr != nil {
			if errors.Is(uerr, store.ErrStaleVersion) {
				// The response is older than what we hold: the entity
				// moved on server-side. Same recovery as a reported
				// version conflict.
				return e.resolveConflict(callCtx, ctx, id, prev, m)
			}
			e.store.Rollback(id, prev)
			return e.deliverErr(ctx, uerr)
		}
		logging.Debug("mutation confirmed", "kind", m.kind, "id", id)
		return e.deliver(ctx, id)

	case api.IsVersionConflict(err):
		logging.Debug("mutation hit version conflict", "kind", m.kind, "id", id)
		return e.resolveConflict(callCtx, ctx, id, prev, m)

	default:
		e.store.Rollback(id, prev)
		logging.Warn("mutation failed, rolled back", "kind", m.kind, "id", id, "error", err)
		return e.deliverErr(ctx, asDomainConflict(err))
	}
}

// deliver returns the settled entity, unless the caller's context is
// already done — the cache is correct either way.
func (e *Engine) deliver(ctx context.Context, id string) (*news.NewsItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return e.store.Get(id)
}

func (e *Engine) deliverErr(ctx context.Context, err error) (*news.NewsItem, error) {
	if cerr := ctx.Err(); cerr != nil {
		return nil, cerr
	}
	return nil, err
}

// Like toggles the acting user's membership in the item's likes. The
// optimistic flip makes the tap visible immediately; the server's
// likes set wins on reconcile even when it disagrees with the guess.
func (e *Engine) Like(ctx context.Context, id string) (*news.NewsItem, error) {
	uid := e.user.ID
	var wantLiked bool

	return e.run(ctx, id, mutation{
		kind: "like",
		apply: func(n *news.NewsItem) {
			wantLiked = !n.LikedBy(uid)
			if wantLiked {
				n.Likes = append(n.Likes, uid)
			} else {
				kept := n.Likes[:0]
				for _, l := range n.Likes {
					if l != uid {
						kept = append(kept, l)
					}
				}
				n.Likes = kept
			}
		},
		call: func(ctx context.Context) (store.Patch, error) {
			return e.transport.Like(ctx, id)
		},
		satisfied: func(n *news.NewsItem) bool {
			return n.LikedBy(uid) == wantLiked
		},
	})
}

// Verify adds the acting user's verification with their coordinates.
// The server rejects a duplicate by the same user with a domain error,
// which is surfaced as ErrDomainConflict after rollback.
func (e *Engine) Verify(ctx context.Context, id string, at news.GeoPoint) (*news.NewsItem, error) {
	if at.Latitude < -90 || at.Latitude > 90 || at.Longitude < -180 || at.Longitude > 180 {
		return nil, validationErr("coordinates out of range: %v", at)
	}

	uid := e.user.ID
	return e.run(ctx, id, mutation{
		kind: "verify",
		apply: func(n *news.NewsItem) {
			if n.VerifiedBy(uid) {
				return
			}
			loc := at
			n.Verifications = append(n.Verifications, news.Verification{
				UserID:    uid,
				Location:  &loc,
				Timestamp: time.Now(),
			})
		},
		call: func(ctx context.Context) (store.Patch, error) {
			return e.transport.Verify(ctx, id, at)
		},
		satisfied: func(n *news.NewsItem) bool {
			return n.VerifiedBy(uid)
		},
	})
}

// Flag adds the acting user's flag. code must be one of
// news.FlagReasons; ReasonOther requires free-text detail, which then
// becomes the recorded reason.
func (e *Engine) Flag(ctx context.Context, id, code, detail string) (*news.NewsItem, error) {
	if !news.ValidFlagReason(code) {
		return nil, validationErr("unknown flag reason %q", code)
	}
	reason := code
	if code == news.ReasonOther {
		reason = strings.TrimSpace(detail)
		if reason == "" {
			return nil, validationErr("flag reason detail must not be empty")
		}
	}

	uid := e.user.ID
	return e.run(ctx, id, mutation{
		kind: "flag",
		apply: func(n *news.NewsItem) {
			if n.FlaggedBy(uid) {
				return
			}
			n.Flags = append(n.Flags, news.Flag{
				UserID:    uid,
				Reason:    reason,
				Timestamp: time.Now(),
			})
		},
		call: func(ctx context.Context) (store.Patch, error) {
			return e.transport.Flag(ctx, id, reason)
		},
		satisfied: func(n *news.NewsItem) bool {
			return n.FlaggedBy(uid)
		},
	})
}

// AddComment appends a comment. A locally-stamped placeholder shows
// up immediately and is replaced — matched by its correlation id,
// never by content — once the server assigns the real record.
func (e *Engine) AddComment(ctx context.Context, id, content string) (*news.NewsItem, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, validationErr("comment must not be empty")
	}
	if utf8.RuneCountInString(content) > news.MaxCommentLength {
		return nil, validationErr("comment exceeds %d characters", news.MaxCommentLength)
	}

	placeholderID := "pending-" + uuid.NewString()
	placeholder := news.Comment{
		ID:        placeholderID,
		Author:    news.Author{ID: e.user.ID, Username: e.user.Username},
		Content:   content,
		CreatedAt: time.Now(),
		Pending:   true,
	}

	return e.run(ctx, id, mutation{
		kind: "comment",
		apply: func(n *news.NewsItem) {
			n.Comments = append(n.Comments, placeholder)
		},
		call: func(ctx context.Context) (store.Patch, error) {
			confirmed, err := e.transport.AddComment(ctx, id, content)
			if err != nil {
				return store.Patch{}, err
			}
			// Entity lock is held: read-modify-write here is safe.
			cur, err := e.store.Get(id)
			if err != nil {
				return store.Patch{}, err
			}
			return store.Patch{
				Kind:     store.KindComments,
				ID:       id,
				Comments: swapPlaceholder(cur.Comments, placeholderID, confirmed),
			}, nil
		},
		cleanup: func(n *news.NewsItem) {
			n.Comments = withoutComment(n.Comments, placeholderID)
		},
	})
}

// swapPlaceholder replaces the placeholder comment with the confirmed
// server record, keeping its position. If the placeholder is gone (a
// conflict refetch replaced the comment list) the confirmed record is
// appended instead — unless the server already included it.
func swapPlaceholder(comments []news.Comment, placeholderID string, confirmed news.Comment) []news.Comment {
	out := make([]news.Comment, 0, len(comments)+1)
	swapped := false
	for _, c := range comments {
		switch c.ID {
		case placeholderID:
			out = append(out, confirmed)
			swapped = true
		case confirmed.ID:
			swapped = true
			out = append(out, c)
		default:
			out = append(out, c)
		}
	}
	if !swapped {
		out = append(out, confirmed)
	}
	return out
}

// withoutComment drops the comment with the given id.
func withoutComment(comments []news.Comment, id string) []news.Comment {
	out := make([]news.Comment, 0, len(comments))
	for _, c := range comments {
		if c.ID != id {
			out = append(out, c)
		}
	}
	return out
}
