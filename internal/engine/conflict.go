package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/Dem-News/demnews/internal/api"
	"github.com/Dem-News/demnews/internal/logging"
	"github.com/Dem-News/demnews/internal/news"
	"github.com/Dem-News/demnews/internal/store"
)

// resolveConflict recovers from a version-conflict rejection: refetch
// the entity, merge the fresh authoritative state (which also clears
// the optimistic change), then replay the mutation at most once. Two
// conflicts in a row are terminal — there is no retry loop to live-lock
// under write contention.
//
// prev is the pre-optimistic snapshot, the rollback target while no
// fresher server state has been observed. Once the refetch lands, the
// refetched entity is the authoritative fallback instead.
//
// callCtx survives caller teardown; callerCtx gates result delivery.
func (e *Engine) resolveConflict(callCtx, callerCtx context.Context, id string, prev *news.NewsItem, m mutation) (*news.NewsItem, error) {
	fresh, err := e.transport.FetchEntity(callCtx, id)
	if err != nil {
		// Could not observe the latest state; restore the last
		// known-good snapshot so nothing unconfirmed lingers.
		e.store.Rollback(id, prev)
		logging.Warn("conflict refetch failed", "kind", m.kind, "id", id, "error", err)
		return e.deliverErr(callerCtx, err)
	}

	refreshed, err := e.store.Upsert(fresh)
	if err != nil {
		// The refetch is somehow older than the cache; nothing safe to
		// replay against.
		e.store.Rollback(id, prev)
		return e.deliverErr(callerCtx, fmt.Errorf("%w: %v", ErrConflictExhausted, err))
	}

	if m.satisfied != nil && m.satisfied(refreshed) {
		// A concurrent actor already produced the state the user asked
		// for (their like arrived via another device, say). Replaying
		// would undo it; confirm as-is.
		logging.Debug("conflict resolved by refetch alone", "kind", m.kind, "id", id)
		return e.deliver(callerCtx, id)
	}

	patch, err := m.call(callCtx)
	switch {
	case err == nil:
		if _, uerr := e.store.Upsert(patch); uerr != nil {
			if errors.Is(uerr, store.ErrStaleVersion) {
				e.stripResidue(id, m)
				return e.deliverErr(callerCtx, fmt.Errorf("%w after refetch", ErrConflictExhausted))
			}
			return e.deliverErr(callerCtx, uerr)
		}
		logging.Debug("mutation confirmed on retry", "kind", m.kind, "id", id)
		return e.deliver(callerCtx, id)

	case api.IsVersionConflict(err):
		e.stripResidue(id, m)
		logging.Warn("mutation conflicted twice, giving up", "kind", m.kind, "id", id)
		return e.deliverErr(callerCtx, fmt.Errorf("%w: %v", ErrConflictExhausted, err))

	default:
		e.stripResidue(id, m)
		return e.deliverErr(callerCtx, asDomainConflict(err))
	}
}

// stripResidue removes optimistic leftovers the refetch could not
// clear. The refetched payload replaces every set it carried, so for
// like/verify/flag the store already holds clean server state; comment
// placeholders need the explicit sweep.
func (e *Engine) stripResidue(id string, m mutation) {
	if m.cleanup == nil {
		return
	}
	_, _, err := e.store.ApplyOptimistic(id, func(n *news.NewsItem) { m.cleanup(n) })
	if err != nil {
		logging.Debug("residue cleanup skipped", "id", id, "error", err)
	}
}
