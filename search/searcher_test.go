package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSearch_ReturnsCappedTaggedLinks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("q"); got != "iPhone 16 Pro site:amazon.in" {
			t.Errorf("q = %q, want domain-scoped query", got)
		}
		if got := r.URL.Query().Get("engine"); got != "google" {
			t.Errorf("engine = %q, want google", got)
		}

		results := []map[string]string{
			{"link": "https://amazon.in/p1"},
			{"link": ""}, // missing link must be dropped
			{"link": "https://amazon.in/p2"},
			{"link": "https://amazon.in/p3"},
			{"link": "https://amazon.in/p4"},
			{"link": "https://amazon.in/p5"},
			{"link": "https://amazon.in/p6"},
		}
		json.NewEncoder(w).Encode(map[string]any{"organic_results": results})
	}))
	defer srv.Close()

	s := NewSearcher(srv.Client(), srv.URL, "test-key")
	links := s.Search(context.Background(), "iPhone 16 Pro", "amazon.in")

	if len(links) != 5 {
		t.Fatalf("got %d links, want 5", len(links))
	}
	for i, l := range links {
		if l.Site != "amazon.in" {
			t.Errorf("link %d site = %q, want amazon.in", i, l.Site)
		}
		if l.URL == "" {
			t.Errorf("link %d has empty URL", i)
		}
	}
	if links[0].URL != "https://amazon.in/p1" || links[1].URL != "https://amazon.in/p2" {
		t.Errorf("link order not preserved: %v", links)
	}
}

func TestSearch_BackendErrorYieldsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	s := NewSearcher(srv.Client(), srv.URL, "test-key")
	if links := s.Search(context.Background(), "tv", "amazon.in"); len(links) != 0 {
		t.Errorf("got %d links, want 0 on backend error", len(links))
	}
}

func TestSearch_MalformedResponseYieldsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"organic_results": not-json`)
	}))
	defer srv.Close()

	s := NewSearcher(srv.Client(), srv.URL, "test-key")
	if links := s.Search(context.Background(), "tv", "amazon.in"); len(links) != 0 {
		t.Errorf("got %d links, want 0 on malformed response", len(links))
	}
}

func TestSearch_UnreachableBackendYieldsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	s := NewSearcher(nil, srv.URL, "test-key")
	if links := s.Search(context.Background(), "tv", "amazon.in"); len(links) != 0 {
		t.Errorf("got %d links, want 0 when backend is unreachable", len(links))
	}
}
