package store

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/Dem-News/demnews/internal/news"
)

func fullItem(id string, version int64) news.NewsItem {
	return news.NewsItem{
		ID:        id,
		Content:   "Road closed at main square",
		Category:  news.CategoryLocal,
		Author:    news.Author{ID: "u1", Username: "reporter"},
		CreatedAt: time.Date(2026, 4, 2, 9, 0, 0, 0, time.UTC),
		Location:  &news.GeoPoint{Latitude: 27.7, Longitude: 85.3},
		Likes:     []string{"u2"},
		Verifications: []news.Verification{
			{UserID: "u2", Timestamp: time.Date(2026, 4, 2, 10, 0, 0, 0, time.UTC)},
		},
		Flags:   []news.Flag{},
		Version: version,
	}
}

func seed(t *testing.T, s *Store, item news.NewsItem) *news.NewsItem {
	t.Helper()
	got, err := s.Upsert(FullPatch(item))
	if err != nil {
		t.Fatalf("seed upsert failed: %v", err)
	}
	return got
}

func TestGetNotFound(t *testing.T) {
	s := New()
	if _, err := s.Get("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestUpsertInsertsFullEntity(t *testing.T) {
	s := New()
	seed(t, s, fullItem("n1", 3))

	got, err := s.Get("n1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Content != "Road closed at main square" || got.Version != 3 {
		t.Errorf("unexpected entity: %+v", got)
	}
	if s.Len() != 1 {
		t.Errorf("expected 1 entity, got %d", s.Len())
	}
}

func TestUpsertLikeResponseOnlyTouchesLikes(t *testing.T) {
	s := New()
	seed(t, s, fullItem("n1", 3))

	version := int64(4)
	_, err := s.Upsert(Patch{
		Kind:    KindLike,
		ID:      "n1",
		Likes:   []string{"u2", "u5"},
		Version: &version,
		// A sloppy server rides verifications along; the kind is not
		// authoritative for them so they must be ignored.
		Verifications: []news.Verification{},
	})
	if err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	got, _ := s.Get("n1")
	if len(got.Likes) != 2 || !got.LikedBy("u5") {
		t.Errorf("likes not replaced: %v", got.Likes)
	}
	if len(got.Verifications) != 1 {
		t.Errorf("verifications clobbered by like response: %v", got.Verifications)
	}
	if got.Version != 4 {
		t.Errorf("version not advanced: %d", got.Version)
	}
}

func TestUpsertPreservesAuthorAndCreatedAt(t *testing.T) {
	s := New()
	orig := seed(t, s, fullItem("n1", 1))

	version := int64(2)
	content := "updated content"
	_, err := s.Upsert(Patch{
		Kind:    KindVerify,
		ID:      "n1",
		Content: &content,
		Version: &version,
		Verifications: []news.Verification{
			{UserID: "u2"}, {UserID: "u7"},
		},
	})
	if err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	got, _ := s.Get("n1")
	if got.Author != orig.Author {
		t.Errorf("author changed: %+v", got.Author)
	}
	if !got.CreatedAt.Equal(orig.CreatedAt) {
		t.Errorf("createdAt changed: %v", got.CreatedAt)
	}
	if got.Content != "updated content" {
		t.Errorf("scalar not merged: %q", got.Content)
	}
	if len(got.Verifications) != 2 {
		t.Errorf("verifications not replaced: %v", got.Verifications)
	}
}

func TestUpsertWriteOnceEvenIfPatchCarriesAuthor(t *testing.T) {
	s := New()
	seed(t, s, fullItem("n1", 1))

	version := int64(2)
	_, err := s.Upsert(Patch{
		Kind:    KindFull,
		ID:      "n1",
		Author:  &news.Author{ID: "impostor", Username: "impostor"},
		Version: &version,
	})
	if err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	got, _ := s.Get("n1")
	if got.Author.ID != "u1" {
		t.Errorf("author overwritten: %+v", got.Author)
	}
}

func TestUpsertRejectsStaleVersion(t *testing.T) {
	s := New()
	seed(t, s, fullItem("n1", 5))

	stale := int64(4)
	_, err := s.Upsert(Patch{Kind: KindLike, ID: "n1", Likes: []string{}, Version: &stale})
	if !errors.Is(err, ErrStaleVersion) {
		t.Fatalf("expected ErrStaleVersion, got %v", err)
	}

	// Nothing applied.
	got, _ := s.Get("n1")
	if got.Version != 5 || len(got.Likes) != 1 {
		t.Errorf("stale patch partially applied: %+v", got)
	}
}

func TestUpsertAbsentFieldsAreUntouched(t *testing.T) {
	s := New()
	seed(t, s, fullItem("n1", 1))

	version := int64(2)
	// A full refetch payload that omits comments (nil slice) must not
	// erase cached comments.
	s.Upsert(Patch{
		Kind:     KindComments,
		ID:       "n1",
		Comments: []news.Comment{{ID: "c1", Content: "hello"}},
	})
	_, err := s.Upsert(Patch{Kind: KindFull, ID: "n1", Version: &version})
	if err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	got, _ := s.Get("n1")
	if len(got.Comments) != 1 {
		t.Errorf("absent comments field erased cache: %v", got.Comments)
	}
}

func TestApplyOptimisticAndRollback(t *testing.T) {
	s := New()
	seed(t, s, fullItem("n1", 1))

	before, _ := s.Get("n1")

	prev, next, err := s.ApplyOptimistic("n1", func(n *news.NewsItem) {
		n.Likes = append(n.Likes, "u9")
	})
	if err != nil {
		t.Fatalf("ApplyOptimistic failed: %v", err)
	}
	if diff := cmp.Diff(before, prev); diff != "" {
		t.Errorf("prev snapshot differs from pre-state (-want +got):\n%s", diff)
	}
	if !next.LikedBy("u9") {
		t.Error("mutation not applied to next snapshot")
	}
	got, _ := s.Get("n1")
	if !got.LikedBy("u9") {
		t.Error("mutation not visible in store")
	}

	s.Rollback("n1", prev)
	got, _ = s.Get("n1")
	if diff := cmp.Diff(before, got); diff != "" {
		t.Errorf("rollback not byte-for-byte (-want +got):\n%s", diff)
	}
}

func TestApplyOptimisticUnknownID(t *testing.T) {
	s := New()
	_, _, err := s.ApplyOptimistic("ghost", func(n *news.NewsItem) {})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSnapshotsDoNotAliasStore(t *testing.T) {
	s := New()
	seed(t, s, fullItem("n1", 1))

	got, _ := s.Get("n1")
	got.Likes[0] = "tampered"
	got.Content = "tampered"

	fresh, _ := s.Get("n1")
	if fresh.Likes[0] == "tampered" || fresh.Content == "tampered" {
		t.Error("caller mutation leaked into store")
	}
}
