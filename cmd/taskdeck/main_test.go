package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jfanara/taskdeck/internal/session"
	"github.com/jfanara/taskdeck/pkg/client"
)

func TestEnvTokenIsReadOnly(t *testing.T) {
	src := envToken("fixed")
	if src.LoadToken() != "fixed" {
		t.Fatalf("LoadToken = %q", src.LoadToken())
	}
	if err := src.SaveToken("other"); err != nil {
		t.Fatalf("SaveToken: %v", err)
	}
	if err := src.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if src.LoadToken() != "fixed" {
		t.Error("env token must survive save and clear")
	}
}

func TestEnvTokenReachesTheBoard(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/profile" {
			http.NotFound(w, r)
			return
		}
		if r.Header.Get("Authorization") != "Bearer env-tok" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"error": "bad token"}) //nolint:errcheck
			return
		}
		json.NewEncoder(w).Encode(map[string]any{ //nolint:errcheck
			"user": map[string]any{"id": 9, "name": "Env", "email": "env@example.com"},
		})
	}))
	defer srv.Close()

	store := session.NewStore()
	c, err := client.New(srv.URL, store.Token)
	if err != nil {
		t.Fatal(err)
	}
	m := session.NewManager(store, c, envToken("env-tok"))

	m.Init(context.Background())

	if !store.Authenticated() {
		t.Fatal("expected the env token to authenticate the session")
	}
	if store.Token() != "env-tok" {
		t.Fatalf("expected the env token in the store, got %q", store.Token())
	}
	dec, err := session.RequireSession(context.Background(), store)
	if err != nil || !dec.Allowed {
		t.Fatalf("expected the session guard to allow the board, got %+v err=%v", dec, err)
	}
}
