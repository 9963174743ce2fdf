package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Dem-News/demnews/internal/api"
	"github.com/Dem-News/demnews/internal/config"
	"github.com/Dem-News/demnews/internal/engine"
	"github.com/Dem-News/demnews/internal/logging"
	"github.com/Dem-News/demnews/internal/news"
	"github.com/Dem-News/demnews/internal/session"
	"github.com/Dem-News/demnews/internal/store"
	"github.com/Dem-News/demnews/internal/ui"
)

func main() {
	register := flag.Bool("register", false, "create a new account instead of logging in")
	email := flag.String("email", os.Getenv("DEMNEWS_EMAIL"), "account email")
	username := flag.String("username", os.Getenv("DEMNEWS_USERNAME"), "username (registration only)")
	password := flag.String("password", os.Getenv("DEMNEWS_PASSWORD"), "account password")
	lat := flag.Float64("lat", 0, "override device latitude")
	lng := flag.Float64("lng", 0, "override device longitude")
	flag.Parse()

	dataDir := config.DataDir()
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	if err := logging.Init(dataDir); err != nil {
		log.Fatalf("Failed to initialize logging: %v", err)
	}
	defer logging.Close()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	sess, err := session.New(filepath.Join(dataDir, "session.db"))
	if err != nil {
		log.Fatalf("Failed to open session database: %v", err)
	}
	defer sess.Close()

	// The token lives in an atomic so a login during startup is seen
	// by every request the client issues afterwards.
	var token atomic.Value
	token.Store("")
	client := api.NewClient(cfg.API.BaseURL, cfg.API.Timeout(), func() string {
		return token.Load().(string)
	})

	ctx := context.Background()
	user, err := authenticate(ctx, client, sess, &token, *register, *email, *username, *password)
	if err != nil {
		log.Fatalf("Authentication failed: %v", err)
	}
	logging.Info("Signed in", "user", user.Username)

	location := resolveLocation(sess, cfg, *lat, *lng)
	if err := client.UpdateLocation(ctx, location); err != nil {
		// The feed still works from the last known position.
		logging.Warn("Failed to push location to server", "error", err)
	}
	if err := sess.SaveLocation(location); err != nil {
		logging.Warn("Failed to persist location", "error", err)
	}

	eng := engine.New(client, user)

	local := store.FetchParams{
		Location:     &location,
		RadiusKm:     cfg.Feed.RadiusKm,
		VerifiedOnly: cfg.Feed.VerifiedOnly,
	}
	explore := store.FetchParams{}

	app := ui.NewApp(eng, location, local, explore)
	program := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := program.Run(); err != nil {
		log.Printf("Error running program: %v", err)
	}
}

// authenticate restores a stored session, or signs in with the given
// credentials and persists the result.
func authenticate(ctx context.Context, client *api.Client, sess *session.Store, token *atomic.Value, register bool, email, username, password string) (engine.Identity, error) {
	if !register && email == "" {
		stored, user, err := sess.Credentials()
		if err != nil {
			return engine.Identity{}, err
		}
		if stored != "" {
			token.Store(stored)
			return user, nil
		}
	}

	if email == "" || password == "" {
		return engine.Identity{}, fmt.Errorf("no stored session; pass -email and -password (add -register for a new account)")
	}

	var (
		tok  string
		user api.User
		err  error
	)
	if register {
		if username == "" {
			return engine.Identity{}, fmt.Errorf("-register requires -username")
		}
		tok, user, err = client.Register(ctx, username, email, password)
	} else {
		tok, user, err = client.Login(ctx, email, password)
	}
	if err != nil {
		return engine.Identity{}, err
	}

	token.Store(tok)
	identity := engine.Identity{ID: user.ID, Username: user.Username}
	if err := sess.SaveCredentials(tok, identity); err != nil {
		logging.Warn("Failed to persist session", "error", err)
	}
	return identity, nil
}

// resolveLocation picks the device position: explicit flags win, then
// the last saved location, then the configured fallback.
func resolveLocation(sess *session.Store, cfg *config.Config, lat, lng float64) news.GeoPoint {
	if lat != 0 || lng != 0 {
		return news.GeoPoint{Latitude: lat, Longitude: lng}
	}
	if saved, err := sess.LastLocation(); err == nil && saved != nil {
		return *saved
	}
	return cfg.Feed.Fallback()
}
