package store

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/Dem-News/demnews/internal/news"
)

func TestFeedFetchLifecycle(t *testing.T) {
	f := NewFeedIndex()
	params := FetchParams{
		Location: &news.GeoPoint{Latitude: 27.7, Longitude: 85.3},
		RadiusKm: 5,
	}

	if !f.NeedsFetch(ScopeLocal, params) {
		t.Fatal("fresh scope should need a fetch")
	}

	f.BeginFetch(ScopeLocal, params)
	if !f.Loading(ScopeLocal) {
		t.Error("loading not set")
	}

	f.CompleteFetch(ScopeLocal, []string{"n2", "n1", "n3"}, nil)
	if f.Loading(ScopeLocal) {
		t.Error("loading not cleared")
	}
	if diff := cmp.Diff([]string{"n2", "n1", "n3"}, f.IDs(ScopeLocal)); diff != "" {
		t.Errorf("server order not kept (-want +got):\n%s", diff)
	}
	if f.NeedsFetch(ScopeLocal, params) {
		t.Error("same params should not need a refetch")
	}

	// Changed params invalidate the scope.
	changed := params
	changed.Category = news.CategorySports
	if !f.NeedsFetch(ScopeLocal, changed) {
		t.Error("changed params should need a refetch")
	}
}

func TestFeedFetchFailureKeepsStaleIDs(t *testing.T) {
	f := NewFeedIndex()
	params := FetchParams{Query: "flood"}

	f.BeginFetch(ScopeExplore, params)
	f.CompleteFetch(ScopeExplore, []string{"n1", "n2"}, nil)

	f.BeginFetch(ScopeExplore, params)
	fetchErr := errors.New("boom")
	f.CompleteFetch(ScopeExplore, nil, fetchErr)

	if got := f.Err(ScopeExplore); !errors.Is(got, fetchErr) {
		t.Errorf("error not recorded: %v", got)
	}
	if diff := cmp.Diff([]string{"n1", "n2"}, f.IDs(ScopeExplore)); diff != "" {
		t.Errorf("stale ids discarded on failure (-want +got):\n%s", diff)
	}
}

func TestFeedScopesAreIndependent(t *testing.T) {
	f := NewFeedIndex()

	f.BeginFetch(ScopeLocal, FetchParams{RadiusKm: 5})
	f.CompleteFetch(ScopeLocal, []string{"n1"}, nil)

	if len(f.IDs(ScopeExplore)) != 0 {
		t.Error("local fetch leaked into explore")
	}
	if !f.NeedsFetch(ScopeExplore, FetchParams{}) {
		t.Error("explore should still need its own fetch")
	}
	if f.Params(ScopeLocal).Equal(FetchParams{}) {
		t.Error("local params lost")
	}
}

func TestFeedPrepend(t *testing.T) {
	f := NewFeedIndex()
	f.CompleteFetch(ScopeLocal, []string{"n1", "n2"}, nil)

	f.Prepend(ScopeLocal, "n3")
	if diff := cmp.Diff([]string{"n3", "n1", "n2"}, f.IDs(ScopeLocal)); diff != "" {
		t.Errorf("prepend order wrong (-want +got):\n%s", diff)
	}

	// Prepending an id already present moves it to the head.
	f.Prepend(ScopeLocal, "n2")
	if diff := cmp.Diff([]string{"n2", "n3", "n1"}, f.IDs(ScopeLocal)); diff != "" {
		t.Errorf("duplicate not collapsed (-want +got):\n%s", diff)
	}
}

func TestFetchParamsEqual(t *testing.T) {
	loc := news.GeoPoint{Latitude: 1, Longitude: 2}
	tests := []struct {
		name string
		a, b FetchParams
		want bool
	}{
		{"both zero", FetchParams{}, FetchParams{}, true},
		{"same location", FetchParams{Location: &loc}, FetchParams{Location: &news.GeoPoint{Latitude: 1, Longitude: 2}}, true},
		{"one location nil", FetchParams{Location: &loc}, FetchParams{}, false},
		{"different query", FetchParams{Query: "a"}, FetchParams{Query: "b"}, false},
		{"different verified", FetchParams{VerifiedOnly: true}, FetchParams{}, false},
		{"different radius", FetchParams{RadiusKm: 5}, FetchParams{RadiusKm: 10}, false},
	}
	for _, tt := range tests {
		if got := tt.a.Equal(tt.b); got != tt.want {
			t.Errorf("%s: Equal = %v, want %v", tt.name, got, tt.want)
		}
	}
}
