// Package news defines the canonical Dem-News domain model.
//
// NewsItem is the normalized entity the rest of the client operates on.
// Set-valued fields (likes, verifications, flags) are keyed by user id:
// membership is what matters, never multiplicity. The server owns the
// authoritative contents of every field; the client only guesses ahead
// of it during optimistic updates.
package news

import "time"

// Category values accepted by the backend.
const (
	CategoryPolitics  = "politics"
	CategorySports    = "sports"
	CategoryLocal     = "local"
	CategoryEmergency = "emergency"
	CategoryOther     = "other"
)

// Categories lists all valid categories in display order.
var Categories = []string{
	CategoryPolitics,
	CategorySports,
	CategoryLocal,
	CategoryEmergency,
	CategoryOther,
}

// Flag reason codes accepted by the backend. ReasonOther requires
// free-text detail supplied by the user.
const (
	ReasonInappropriate    = "inappropriate"
	ReasonFalseInformation = "false_information"
	ReasonSpam             = "spam"
	ReasonHateSpeech       = "hate_speech"
	ReasonViolence         = "violence"
	ReasonOther            = "other"
)

// FlagReasons lists all reason codes in display order.
var FlagReasons = []string{
	ReasonInappropriate,
	ReasonFalseInformation,
	ReasonSpam,
	ReasonHateSpeech,
	ReasonViolence,
	ReasonOther,
}

// MaxCommentLength caps comment bodies, matching the backend limit.
const MaxCommentLength = 500

// GeoPoint is a WGS84 coordinate pair.
type GeoPoint struct {
	Latitude  float64
	Longitude float64
}

// Author identifies the creator of an item or comment.
// Write-once: merges never overwrite a stored author.
type Author struct {
	ID       string
	Username string
}

// Media is an attachment reference. Append-only from the author's side;
// never touched by other users' mutations.
type Media struct {
	URL  string
	Type string
}

// Verification records one user vouching for an item. At most one per
// user id.
type Verification struct {
	UserID    string
	Location  *GeoPoint
	Timestamp time.Time
}

// Flag records one user disputing an item. At most one per user id.
type Flag struct {
	UserID    string
	Reason    string
	Timestamp time.Time
}

// Comment is a reply on an item. The ID is server-assigned; optimistic
// placeholders carry a client-generated id until reconciled.
type Comment struct {
	ID        string
	Author    Author
	Content   string
	CreatedAt time.Time
	Pending   bool
}

// NewsItem is the canonical entity, stored once per id.
type NewsItem struct {
	ID            string
	Content       string
	Category      string
	Author        Author
	CreatedAt     time.Time
	Location      *GeoPoint
	Media         []Media
	Verifications []Verification
	Flags         []Flag
	Likes         []string
	Comments      []Comment

	// Version is the server's optimistic-concurrency counter. It never
	// decreases over the lifetime of the entity.
	Version int64
}

// LikedBy reports whether userID is in the likes set.
func (n *NewsItem) LikedBy(userID string) bool {
	for _, id := range n.Likes {
		if id == userID {
			return true
		}
	}
	return false
}

// VerifiedBy reports whether userID has a verification on the item.
func (n *NewsItem) VerifiedBy(userID string) bool {
	for _, v := range n.Verifications {
		if v.UserID == userID {
			return true
		}
	}
	return false
}

// FlaggedBy reports whether userID has a flag on the item.
func (n *NewsItem) FlaggedBy(userID string) bool {
	for _, f := range n.Flags {
		if f.UserID == userID {
			return true
		}
	}
	return false
}

// Clone returns a deep copy. Slices are copied so a mutation on the
// clone never aliases the original — optimistic apply and rollback
// depend on that.
func (n *NewsItem) Clone() *NewsItem {
	if n == nil {
		return nil
	}
	out := *n
	if n.Location != nil {
		loc := *n.Location
		out.Location = &loc
	}
	out.Media = append([]Media(nil), n.Media...)
	out.Likes = append([]string(nil), n.Likes...)
	out.Comments = append([]Comment(nil), n.Comments...)
	out.Verifications = make([]Verification, len(n.Verifications))
	for i, v := range n.Verifications {
		out.Verifications[i] = v
		if v.Location != nil {
			loc := *v.Location
			out.Verifications[i].Location = &loc
		}
	}
	out.Flags = append([]Flag(nil), n.Flags...)
	return &out
}

// ValidFlagReason reports whether code is a known reason code.
func ValidFlagReason(code string) bool {
	for _, r := range FlagReasons {
		if r == code {
			return true
		}
	}
	return false
}
