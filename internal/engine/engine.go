// Package engine orchestrates the demnews feed cache: scoped feed
// refreshes, optimistic mutations against the entity store, and
// reconciliation of server responses, including the one-shot
// refetch-and-retry path for version conflicts.
//
// All mutations on the same entity are serialized; a second action on
// an item waits until the first has been confirmed or rolled back, so a
// stale optimistic snapshot can never clobber a just-confirmed server
// state. Actions on different entities and fetches of different scopes
// run concurrently.
package engine

import (
	"context"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/Dem-News/demnews/internal/api"
	"github.com/Dem-News/demnews/internal/logging"
	"github.com/Dem-News/demnews/internal/news"
	"github.com/Dem-News/demnews/internal/store"
)

// Transport is the remote side of the engine. *api.Client implements
// it; tests inject fakes.
type Transport interface {
	FetchScoped(ctx context.Context, scope store.Scope, params store.FetchParams) ([]store.Patch, error)
	FetchEntity(ctx context.Context, id string) (store.Patch, error)
	CreateNews(ctx context.Context, req api.CreateNewsRequest) (store.Patch, error)
	Like(ctx context.Context, id string) (store.Patch, error)
	Verify(ctx context.Context, id string, at news.GeoPoint) (store.Patch, error)
	Flag(ctx context.Context, id, reason string) (store.Patch, error)
	AddComment(ctx context.Context, id, content string) (news.Comment, error)
	Comments(ctx context.Context, id string) (store.Patch, error)
}

var _ Transport = (*api.Client)(nil)

// Identity is the acting user, used for optimistic set membership.
type Identity struct {
	ID       string
	Username string
}

// Engine ties the entity store, the two feed scopes and the transport
// together behind the API the UI consumes.
type Engine struct {
	store     *store.Store
	feeds     *store.FeedIndex
	transport Transport
	user      Identity

	mu    sync.Mutex
	locks map[string]*sync.Mutex // per-entity mutation serialization
}

// New creates an Engine for the given user.
func New(t Transport, user Identity) *Engine {
	return &Engine{
		store:     store.New(),
		feeds:     store.NewFeedIndex(),
		transport: t,
		user:      user,
		locks:     make(map[string]*sync.Mutex),
	}
}

// entityLock returns the serialization lock for an entity id.
func (e *Engine) entityLock(id string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	l, ok := e.locks[id]
	if !ok {
		l = &sync.Mutex{}
		e.locks[id] = l
	}
	return l
}

// Item returns a snapshot of a cached entity.
func (e *Engine) Item(id string) (*news.NewsItem, error) {
	return e.store.Get(id)
}

// FeedItems joins a scope's ordered ids against the entity store. Ids
// whose entity has vanished are skipped rather than surfaced as holes.
func (e *Engine) FeedItems(scope store.Scope) []*news.NewsItem {
	ids := e.feeds.IDs(scope)
	items := make([]*news.NewsItem, 0, len(ids))
	for _, id := range ids {
		if item, err := e.store.Get(id); err == nil {
			items = append(items, item)
		}
	}
	return items
}

// FeedLoading reports whether the scope has a fetch in flight.
func (e *Engine) FeedLoading(scope store.Scope) bool { return e.feeds.Loading(scope) }

// FeedErr returns the scope's last fetch error.
func (e *Engine) FeedErr(scope store.Scope) error { return e.feeds.Err(scope) }

// FeedParams returns the scope's current fetch parameters.
func (e *Engine) FeedParams(scope store.Scope) store.FetchParams { return e.feeds.Params(scope) }

// Refresh fetches a scope unconditionally (pull-to-refresh). On
// success every returned item is upserted and the scope's id order is
// replaced with the server's; on failure the previous ids survive.
func (e *Engine) Refresh(ctx context.Context, scope store.Scope, params store.FetchParams) error {
	e.feeds.BeginFetch(scope, params)

	patches, err := e.transport.FetchScoped(ctx, scope, params)
	if err != nil {
		logging.Warn("feed fetch failed", "scope", scope, "error", err)
		e.feeds.CompleteFetch(scope, nil, err)
		return err
	}

	ids := make([]string, 0, len(patches))
	for _, p := range patches {
		if _, err := e.store.Upsert(p); err != nil {
			// A stale list row means the cache already holds something
			// newer; keep the cached entity and the feed position.
			logging.Debug("list row ignored", "id", p.ID, "error", err)
		}
		ids = append(ids, p.ID)
	}
	e.feeds.CompleteFetch(scope, ids, nil)
	logging.Debug("feed refreshed", "scope", scope, "items", len(ids))
	return nil
}

// RefreshIfNeeded fetches only when the scope has never been loaded
// with these parameters. Switching tabs uses this, so flipping between
// local and explore never triggers redundant fetches.
func (e *Engine) RefreshIfNeeded(ctx context.Context, scope store.Scope, params store.FetchParams) error {
	if !e.feeds.NeedsFetch(scope, params) {
		return nil
	}
	return e.Refresh(ctx, scope, params)
}

// RefreshAll fetches both scopes concurrently. Each scope records its
// own error; the first one is returned.
func (e *Engine) RefreshAll(ctx context.Context, local, explore store.FetchParams) error {
	var g errgroup.Group
	g.Go(func() error { return e.Refresh(ctx, store.ScopeLocal, local) })
	g.Go(func() error { return e.Refresh(ctx, store.ScopeExplore, explore) })
	return g.Wait()
}

// Create posts a new item and shows it immediately at the head of the
// scope the user is viewing — the other scope stays untouched until
// its own fetch.
func (e *Engine) Create(ctx context.Context, req api.CreateNewsRequest, viewing store.Scope) (*news.NewsItem, error) {
	if strings.TrimSpace(req.Content) == "" {
		return nil, validationErr("content must not be empty")
	}
	if req.Category == "" {
		req.Category = news.CategoryOther
	}

	patch, err := e.transport.CreateNews(ctx, req)
	if err != nil {
		return nil, err
	}
	item, err := e.store.Upsert(patch)
	if err != nil {
		return nil, err
	}
	e.feeds.Prepend(viewing, item.ID)
	logging.Info("news created", "id", item.ID, "scope", viewing)
	return item, nil
}

// LoadComments fetches an item's comment list into the cache.
func (e *Engine) LoadComments(ctx context.Context, id string) error {
	patch, err := e.transport.Comments(ctx, id)
	if err != nil {
		return err
	}
	_, err = e.store.Upsert(patch)
	return err
}
