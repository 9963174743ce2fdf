package api

import (
	"time"

	"github.com/Dem-News/demnews/internal/news"
	"github.com/Dem-News/demnews/internal/store"
)

// The backend speaks Mongo-flavored JSON: "_id" identifiers, a "__v"
// version counter, and GeoJSON points with [longitude, latitude]
// coordinate order. This file is the only place that dialect exists;
// everything past it uses the internal/news model.

// geoJSON is a GeoJSON Point.
type geoJSON struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"` // [lng, lat]
}

func (g *geoJSON) toPoint() *news.GeoPoint {
	if g == nil || len(g.Coordinates) < 2 {
		return nil
	}
	return &news.GeoPoint{Latitude: g.Coordinates[1], Longitude: g.Coordinates[0]}
}

func fromPoint(p news.GeoPoint) geoJSON {
	return geoJSON{Type: "Point", Coordinates: []float64{p.Longitude, p.Latitude}}
}

type wireAuthor struct {
	ID       string `json:"_id"`
	Username string `json:"username"`
}

type wireMedia struct {
	URL  string `json:"url"`
	Type string `json:"type"`
}

type wireVerification struct {
	User      string    `json:"user"`
	Location  *geoJSON  `json:"location"`
	Timestamp time.Time `json:"timestamp"`
}

type wireFlag struct {
	User      string    `json:"user"`
	Reason    string    `json:"reason"`
	Timestamp time.Time `json:"timestamp"`
}

type wireComment struct {
	ID        string     `json:"_id"`
	Author    wireAuthor `json:"author"`
	Content   string     `json:"content"`
	CreatedAt time.Time  `json:"createdAt"`
}

func (c wireComment) toComment() news.Comment {
	return news.Comment{
		ID:        c.ID,
		Author:    news.Author{ID: c.Author.ID, Username: c.Author.Username},
		Content:   c.Content,
		CreatedAt: c.CreatedAt,
	}
}

// wireNews decodes both full entities and the partial bodies mutation
// endpoints return. Pointer / nil-slice fields distinguish "absent"
// from "present but empty", which drives the merge in store.Upsert.
type wireNews struct {
	ID            string             `json:"_id"`
	Content       *string            `json:"content"`
	Category      *string            `json:"category"`
	Author        *wireAuthor        `json:"author"`
	CreatedAt     *time.Time         `json:"createdAt"`
	Location      *geoJSON           `json:"location"`
	Media         []wireMedia        `json:"media"`
	Likes         []string           `json:"likes"`
	Verifications []wireVerification `json:"verifications"`
	Flags         []wireFlag         `json:"flags"`
	Comments      []wireComment      `json:"comments"`
	Version       *int64             `json:"__v"`
}

// toPatch converts a wire payload into a typed patch of the given kind.
func (w wireNews) toPatch(kind store.Kind) store.Patch {
	p := store.Patch{
		Kind:      kind,
		ID:        w.ID,
		Content:   w.Content,
		Category:  w.Category,
		CreatedAt: w.CreatedAt,
		Location:  w.Location.toPoint(),
		Version:   w.Version,
	}
	if w.Author != nil {
		p.Author = &news.Author{ID: w.Author.ID, Username: w.Author.Username}
	}
	if w.Media != nil {
		p.Media = make([]news.Media, len(w.Media))
		for i, m := range w.Media {
			p.Media[i] = news.Media{URL: m.URL, Type: m.Type}
		}
	}
	if w.Likes != nil {
		p.Likes = append([]string(nil), w.Likes...)
	}
	if w.Verifications != nil {
		p.Verifications = make([]news.Verification, len(w.Verifications))
		for i, v := range w.Verifications {
			p.Verifications[i] = news.Verification{
				UserID:    v.User,
				Location:  v.Location.toPoint(),
				Timestamp: v.Timestamp,
			}
		}
	}
	if w.Flags != nil {
		p.Flags = make([]news.Flag, len(w.Flags))
		for i, f := range w.Flags {
			p.Flags[i] = news.Flag{UserID: f.User, Reason: f.Reason, Timestamp: f.Timestamp}
		}
	}
	if w.Comments != nil {
		p.Comments = make([]news.Comment, len(w.Comments))
		for i, c := range w.Comments {
			p.Comments[i] = c.toComment()
		}
	}
	return p
}

// listResponse is the envelope of the scoped list endpoints.
type listResponse struct {
	News        []wireNews `json:"news"`
	CurrentPage int        `json:"currentPage"`
	TotalPages  int        `json:"totalPages"`
}

// errorResponse is the backend's error body. Some endpoints use
// "error", others "message".
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (e errorResponse) text() string {
	if e.Error != "" {
		return e.Error
	}
	return e.Message
}

// User is the authenticated profile returned by the auth endpoints.
type User struct {
	ID       string `json:"_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// authResponse is the login/register envelope.
type authResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
