package store

import (
	"sync"

	"github.com/Dem-News/demnews/internal/news"
)

// Scope names one of the two independent feed views.
type Scope string

const (
	// ScopeLocal is the geo-bounded feed around the user's position.
	ScopeLocal Scope = "local"
	// ScopeExplore is the unscoped discovery feed.
	ScopeExplore Scope = "explore"
)

// Scopes lists both scopes in display order.
var Scopes = []Scope{ScopeLocal, ScopeExplore}

// FetchParams are the query parameters of a scoped list fetch. Each
// scope keeps its own; the two never share.
type FetchParams struct {
	Location     *news.GeoPoint
	RadiusKm     float64
	Category     string
	VerifiedOnly bool
	Query        string
}

// Equal reports whether two parameter sets would produce the same
// fetch. Used for the fetch-once-per-scope-until-params-change rule.
func (p FetchParams) Equal(o FetchParams) bool {
	if (p.Location == nil) != (o.Location == nil) {
		return false
	}
	if p.Location != nil && *p.Location != *o.Location {
		return false
	}
	return p.RadiusKm == o.RadiusKm &&
		p.Category == o.Category &&
		p.VerifiedOnly == o.VerifiedOnly &&
		p.Query == o.Query
}

// feedState is the per-scope slice of the index. orderedIds is owned
// exclusively by its scope; entities live in the Store.
type feedState struct {
	params  FetchParams
	ids     []string
	loading bool
	err     error
	fetched bool
}

// FeedIndex holds the ordered id lists for both scopes. It stores ids
// only; entity content stays normalized in the Store so an item showing
// in both feeds is still a single cached entity.
//
// FeedIndex tracks state; the engine drives the actual remote list
// calls through BeginFetch/CompleteFetch.
type FeedIndex struct {
	mu    sync.RWMutex
	feeds map[Scope]*feedState
}

// NewFeedIndex creates an index with both scopes empty.
func NewFeedIndex() *FeedIndex {
	return &FeedIndex{
		feeds: map[Scope]*feedState{
			ScopeLocal:   {},
			ScopeExplore: {},
		},
	}
}

// state returns the slice for a scope. Both scopes exist from
// construction; an unknown scope reads as empty and writes nowhere.
func (f *FeedIndex) state(scope Scope) *feedState {
	if st, ok := f.feeds[scope]; ok {
		return st
	}
	return &feedState{}
}

// NeedsFetch reports whether the scope has never been fetched with
// these parameters. Switching tabs in the UI only refetches when this
// returns true.
func (f *FeedIndex) NeedsFetch(scope Scope, params FetchParams) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	st := f.state(scope)
	return !st.fetched || !st.params.Equal(params)
}

// BeginFetch marks the scope loading and records its parameters.
func (f *FeedIndex) BeginFetch(scope Scope, params FetchParams) {
	f.mu.Lock()
	defer f.mu.Unlock()
	st := f.state(scope)
	st.loading = true
	st.err = nil
	st.params = params
}

// CompleteFetch finishes a fetch. On success the scope's ids are
// replaced with the server's order, which is authoritative — the index
// never re-sorts. On failure the error is recorded and the previous
// ids are kept: stale-but-valid data beats an empty list.
func (f *FeedIndex) CompleteFetch(scope Scope, ids []string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	st := f.state(scope)
	st.loading = false
	if err != nil {
		st.err = err
		return
	}
	st.ids = append([]string(nil), ids...)
	st.err = nil
	st.fetched = true
}

// Prepend inserts an id at the head of the scope without a refetch,
// used after a successful create. A duplicate occurrence further down
// is removed so the id appears at most once.
func (f *FeedIndex) Prepend(scope Scope, id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	st := f.state(scope)
	ids := make([]string, 0, len(st.ids)+1)
	ids = append(ids, id)
	for _, existing := range st.ids {
		if existing != id {
			ids = append(ids, existing)
		}
	}
	st.ids = ids
}

// IDs returns a copy of the scope's ordered ids.
func (f *FeedIndex) IDs(scope Scope) []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]string(nil), f.state(scope).ids...)
}

// Loading reports whether a fetch is in flight for the scope.
func (f *FeedIndex) Loading(scope Scope) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.state(scope).loading
}

// Err returns the scope's last fetch error, nil after a success.
func (f *FeedIndex) Err(scope Scope) error {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.state(scope).err
}

// Params returns the parameters of the scope's last fetch.
func (f *FeedIndex) Params(scope Scope) FetchParams {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.state(scope).params
}
