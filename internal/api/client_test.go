package api

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/Dem-News/demnews/internal/news"
	"github.com/Dem-News/demnews/internal/store"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, 5*time.Second, func() string { return "tok123" })
}

func TestFetchScopedLocal(t *testing.T) {
	var gotPath, gotAuth string
	var gotQuery map[string][]string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query()
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"news": [
				{"_id": "n2", "content": "b", "category": "local",
				 "author": {"_id": "u1", "username": "rep"},
				 "createdAt": "2026-04-02T09:00:00Z",
				 "location": {"type": "Point", "coordinates": [85.3, 27.7]},
				 "likes": [], "verifications": [], "flags": [], "__v": 0},
				{"_id": "n1", "content": "a", "category": "local",
				 "author": {"_id": "u1", "username": "rep"},
				 "createdAt": "2026-04-02T08:00:00Z",
				 "likes": ["u2"], "verifications": [], "flags": [], "__v": 2}
			],
			"currentPage": 1, "totalPages": 1
		}`))
	})

	patches, err := c.FetchScoped(context.Background(), store.ScopeLocal, store.FetchParams{
		Location:     &news.GeoPoint{Latitude: 27.7, Longitude: 85.3},
		RadiusKm:     5,
		Category:     news.CategoryLocal,
		VerifiedOnly: true,
		Query:        "flood",
	})
	if err != nil {
		t.Fatalf("FetchScoped failed: %v", err)
	}

	if gotPath != "/news/location" {
		t.Errorf("wrong path: %s", gotPath)
	}
	if gotAuth != "Bearer tok123" {
		t.Errorf("missing bearer token: %q", gotAuth)
	}
	for key, want := range map[string]string{
		"latitude": "27.7", "longitude": "85.3", "radius": "5",
		"category": "local", "verified": "true", "query": "flood",
	} {
		if got := gotQuery[key]; len(got) != 1 || got[0] != want {
			t.Errorf("query %s = %v, want %s", key, got, want)
		}
	}

	// Server order preserved, GeoJSON converted to lat/lng.
	if len(patches) != 2 || patches[0].ID != "n2" || patches[1].ID != "n1" {
		t.Fatalf("unexpected patches: %+v", patches)
	}
	wantLoc := &news.GeoPoint{Latitude: 27.7, Longitude: 85.3}
	if diff := cmp.Diff(wantLoc, patches[0].Location); diff != "" {
		t.Errorf("location conversion (-want +got):\n%s", diff)
	}
	if patches[0].Kind != store.KindFull {
		t.Errorf("list patches must be KindFull, got %v", patches[0].Kind)
	}
}

func TestFetchScopedExplorePath(t *testing.T) {
	var gotPath string
	var gotQuery map[string][]string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query()
		w.Write([]byte(`{"news": [], "currentPage": 1, "totalPages": 1}`))
	})

	_, err := c.FetchScoped(context.Background(), store.ScopeExplore, store.FetchParams{Query: "sports"})
	if err != nil {
		t.Fatalf("FetchScoped failed: %v", err)
	}
	if gotPath != "/news/search" {
		t.Errorf("explore must hit /news/search, got %s", gotPath)
	}
	if _, ok := gotQuery["latitude"]; ok {
		t.Error("explore fetch must not send coordinates")
	}
}

func TestLikeReturnsPartialPatch(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/news/n1/like" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		w.Write([]byte(`{"_id": "n1", "likes": ["u2", "u5"], "__v": 7}`))
	})

	p, err := c.Like(context.Background(), "n1")
	if err != nil {
		t.Fatalf("Like failed: %v", err)
	}
	if p.Kind != store.KindLike {
		t.Errorf("kind = %v, want KindLike", p.Kind)
	}
	if diff := cmp.Diff([]string{"u2", "u5"}, p.Likes); diff != "" {
		t.Errorf("likes (-want +got):\n%s", diff)
	}
	if p.Version == nil || *p.Version != 7 {
		t.Errorf("version not decoded: %v", p.Version)
	}
	// Fields absent from the partial body stay absent.
	if p.Content != nil || p.Verifications != nil || p.Flags != nil {
		t.Errorf("absent fields decoded as present: %+v", p)
	}
}

func TestVerifySendsGeoJSONCoordinates(t *testing.T) {
	var gotBody string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		buf, _ := io.ReadAll(r.Body)
		gotBody = string(buf)
		w.Write([]byte(`{"_id": "n1", "verifications": [{"user": "me", "timestamp": "2026-04-02T09:00:00Z"}], "__v": 3}`))
	})

	p, err := c.Verify(context.Background(), "n1", news.GeoPoint{Latitude: 27.7, Longitude: 85.3})
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	// GeoJSON order is [lng, lat].
	want := `{"coordinates":{"type":"Point","coordinates":[85.3,27.7]}}`
	if gotBody != want {
		t.Errorf("body = %s, want %s", gotBody, want)
	}
	if p.Kind != store.KindVerify || len(p.Verifications) != 1 {
		t.Errorf("unexpected patch: %+v", p)
	}
}

func TestErrorClassification(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   ErrorKind
	}{
		{"version conflict", 400, `{"error": "News version mismatch, please retry"}`, KindVersionConflict},
		{"already verified", 400, `{"error": "You have already verified this news"}`, KindAlreadyVerified},
		{"already flagged", 400, `{"error": "You have already flagged this news"}`, KindAlreadyFlagged},
		{"plain bad request", 400, `{"message": "content is required"}`, KindBadRequest},
		{"not found", 404, `{"error": "News not found"}`, KindNotFound},
		{"unauthorized", 401, `{"error": "Invalid token"}`, KindUnauthorized},
		{"server error", 500, `{}`, KindNetwork},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})
			_, err := c.Like(context.Background(), "n1")
			if err == nil {
				t.Fatal("expected error")
			}
			if !IsKind(err, tt.want) {
				t.Errorf("error kind = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestTransportFailureIsNetworkKind(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", 200*time.Millisecond, nil)
	_, err := c.Like(context.Background(), "n1")
	if !IsKind(err, KindNetwork) {
		t.Errorf("expected network kind, got %v", err)
	}
}

func TestAddComment(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"_id": "c9", "author": {"_id": "me", "username": "self"}, "content": "hello", "createdAt": "2026-04-02T09:00:00Z"}`))
	})
	got, err := c.AddComment(context.Background(), "n1", "hello")
	if err != nil {
		t.Fatalf("AddComment failed: %v", err)
	}
	if got.ID != "c9" || got.Author.Username != "self" || got.Pending {
		t.Errorf("unexpected comment: %+v", got)
	}
}
