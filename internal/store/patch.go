package store

import (
	"time"

	"github.com/Dem-News/demnews/internal/news"
)

// Kind tags a server payload with the mutation that produced it. Each
// kind is authoritative for exactly one set-valued field; KindFull
// (entity fetch, create, list results) is authoritative for everything.
// The tag makes merging deterministic: Upsert never has to guess which
// parts of a partial object the server meant.
type Kind int

const (
	// KindFull marks a complete entity payload.
	KindFull Kind = iota
	// KindLike marks a like response; likes are authoritative.
	KindLike
	// KindVerify marks a verify response; verifications are authoritative.
	KindVerify
	// KindFlag marks a flag response; flags are authoritative.
	KindFlag
	// KindComments marks a comment-list payload; comments are authoritative.
	KindComments
)

// Patch is a typed partial entity. A nil pointer or nil slice means the
// field was absent from the payload. Set-valued fields are applied only
// when the Kind is authoritative for them, so an unrelated field that
// happens to ride along in a response can never clobber local state.
type Patch struct {
	Kind Kind
	ID   string

	Content  *string
	Category *string

	// Author and CreatedAt are write-once; they seed a newly inserted
	// entity but never overwrite an existing one.
	Author    *news.Author
	CreatedAt *time.Time

	Location *news.GeoPoint
	Media    []news.Media

	Likes         []string
	Verifications []news.Verification
	Flags         []news.Flag
	Comments      []news.Comment

	Version *int64
}

// authoritativeFor reports whether the kind owns the given set field.
func (k Kind) authoritativeLikes() bool         { return k == KindFull || k == KindLike }
func (k Kind) authoritativeVerifications() bool { return k == KindFull || k == KindVerify }
func (k Kind) authoritativeFlags() bool         { return k == KindFull || k == KindFlag }
func (k Kind) authoritativeComments() bool      { return k == KindFull || k == KindComments }

// materialize builds a full entity from the patch. Only called for the
// insert path, where the payload is known complete.
func (p Patch) materialize() *news.NewsItem {
	item := &news.NewsItem{ID: p.ID}
	p.mergeInto(item)
	return item
}

// mergeInto applies the patch to item in place. item is the store's
// private clone; the patch's own slices are copied, never aliased.
func (p Patch) mergeInto(item *news.NewsItem) {
	if p.Content != nil {
		item.Content = *p.Content
	}
	if p.Category != nil {
		item.Category = *p.Category
	}
	if p.Author != nil && item.Author == (news.Author{}) {
		item.Author = *p.Author
	}
	if p.CreatedAt != nil && item.CreatedAt.IsZero() {
		item.CreatedAt = *p.CreatedAt
	}
	if p.Location != nil {
		loc := *p.Location
		item.Location = &loc
	}
	if p.Media != nil && p.Kind == KindFull {
		item.Media = append([]news.Media(nil), p.Media...)
	}
	if p.Likes != nil && p.Kind.authoritativeLikes() {
		item.Likes = append([]string(nil), p.Likes...)
	}
	if p.Verifications != nil && p.Kind.authoritativeVerifications() {
		item.Verifications = cloneVerifications(p.Verifications)
	}
	if p.Flags != nil && p.Kind.authoritativeFlags() {
		item.Flags = append([]news.Flag(nil), p.Flags...)
	}
	if p.Comments != nil && p.Kind.authoritativeComments() {
		item.Comments = append([]news.Comment(nil), p.Comments...)
	}
	if p.Version != nil && *p.Version > item.Version {
		item.Version = *p.Version
	}
}

func cloneVerifications(vs []news.Verification) []news.Verification {
	out := make([]news.Verification, len(vs))
	for i, v := range vs {
		out[i] = v
		if v.Location != nil {
			loc := *v.Location
			out[i].Location = &loc
		}
	}
	return out
}

// FullPatch converts an entity payload into a KindFull patch. The
// transport layer uses this for list, create and refetch payloads.
// Slice fields that are nil stay nil, meaning "absent from the wire":
// a list response that omits comments must not erase comments already
// cached from a comment fetch. JSON decoding preserves the distinction
// (absent field decodes to nil, a present empty array to a non-nil
// empty slice).
func FullPatch(item news.NewsItem) Patch {
	content := item.Content
	category := item.Category
	author := item.Author
	createdAt := item.CreatedAt
	version := item.Version

	return Patch{
		Kind:          KindFull,
		ID:            item.ID,
		Content:       &content,
		Category:      &category,
		Author:        &author,
		CreatedAt:     &createdAt,
		Location:      item.Location,
		Version:       &version,
		Media:         item.Media,
		Likes:         item.Likes,
		Verifications: item.Verifications,
		Flags:         item.Flags,
		Comments:      item.Comments,
	}
}
