package scraper

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestFetch_SendsBrowserSignature(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ua := r.Header.Get("User-Agent"); !strings.Contains(ua, "Chrome") {
			t.Errorf("User-Agent = %q, want a Chrome signature", ua)
		}
		if ref := r.Header.Get("Referer"); ref != "https://www.google.com/" {
			t.Errorf("Referer = %q, want google referrer", ref)
		}
		if acc := r.Header.Get("Accept"); !strings.Contains(acc, "text/html") {
			t.Errorf("Accept = %q, want html accept header", acc)
		}
		if lang := r.Header.Get("Accept-Language"); lang == "" {
			t.Error("Accept-Language missing")
		}
		fmt.Fprint(w, "<html></html>")
	}))
	defer srv.Close()

	f := NewFetcher(0, "")
	body, err := f.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(body) != "<html></html>" {
		t.Errorf("body = %q", body)
	}
}

func TestFetch_NonSuccessStatusIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "blocked", http.StatusForbidden)
	}))
	defer srv.Close()

	f := NewFetcher(0, "")
	if _, err := f.Fetch(context.Background(), srv.URL); err == nil {
		t.Fatal("want error for HTTP 403, got nil")
	}
}

func TestFetch_BodyCapRespected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, strings.Repeat("x", 1024))
	}))
	defer srv.Close()

	f := NewFetcher(16, "")
	body, err := f.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(body) != 16 {
		t.Errorf("got %d bytes, want cap of 16", len(body))
	}
}

func TestFetch_ContextDeadlineAborts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	f := NewFetcher(0, "")
	if _, err := f.Fetch(ctx, srv.URL); err == nil {
		t.Fatal("want error when the fetch deadline expires, got nil")
	}
}
