package discovery

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/sanjaypinna/price-fetcher/models"
)

// keyBehavior maps a credential to a canned backend reaction.
type keyBehavior struct {
	status int
	text   string
}

// newGenServer simulates the generative backend: it reacts per credential and
// records the order credentials were used in.
func newGenServer(t *testing.T, behaviors map[string]keyBehavior, used *[]string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.URL.Query().Get("key")
		*used = append(*used, key)

		b, ok := behaviors[key]
		if !ok {
			t.Errorf("unexpected credential used: %q", key)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		if b.status != http.StatusOK {
			w.WriteHeader(b.status)
			json.NewEncoder(w).Encode(map[string]any{
				"error": map[string]any{"message": "backend says no", "status": "ERROR"},
			})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"candidates": []any{
				map[string]any{"content": map[string]any{"parts": []any{
					map[string]any{"text": b.text},
				}}},
			},
		})
	}))
}

func TestDiscover_FirstKeySucceeds(t *testing.T) {
	var used []string
	srv := newGenServer(t, map[string]keyBehavior{
		"k1": {status: http.StatusOK, text: "amazon.in\nflipkart.com\nmyntra.com"},
	}, &used)
	defer srv.Close()

	d := NewDiscoverer(NewClient(srv.Client(), srv.URL, ""), []string{"k1", "k2"})
	sites, err := d.Discover(context.Background(), "India")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"amazon.in", "flipkart.com", "myntra.com"}
	if !reflect.DeepEqual(sites, want) {
		t.Errorf("sites = %v, want %v", sites, want)
	}
	if len(used) != 1 || used[0] != "k1" {
		t.Errorf("credentials used = %v, want just k1", used)
	}
}

func TestDiscover_TransientFailuresFallOver(t *testing.T) {
	var used []string
	srv := newGenServer(t, map[string]keyBehavior{
		"k1": {status: http.StatusTooManyRequests},
		"k2": {status: http.StatusServiceUnavailable},
		"k3": {status: http.StatusOK, text: "amazon.in\nflipkart.com"},
	}, &used)
	defer srv.Close()

	d := NewDiscoverer(NewClient(srv.Client(), srv.URL, ""), []string{"k1", "k2", "k3", "k4"})
	sites, err := d.Discover(context.Background(), "India")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"amazon.in", "flipkart.com"}
	if !reflect.DeepEqual(sites, want) {
		t.Errorf("sites = %v, want %v", sites, want)
	}
	if !reflect.DeepEqual(used, []string{"k1", "k2", "k3"}) {
		t.Errorf("credentials used = %v, want [k1 k2 k3]; k4 must never be invoked", used)
	}
}

func TestDiscover_RejectionStopsImmediately(t *testing.T) {
	var used []string
	srv := newGenServer(t, map[string]keyBehavior{
		"k1": {status: http.StatusUnauthorized},
	}, &used)
	defer srv.Close()

	d := NewDiscoverer(NewClient(srv.Client(), srv.URL, ""), []string{"k1", "k2"})
	_, err := d.Discover(context.Background(), "India")

	var cmpErr *models.CompareError
	if !errors.As(err, &cmpErr) || cmpErr.Code != models.ErrCodeDiscoveryRejected {
		t.Fatalf("error = %v, want code %s", err, models.ErrCodeDiscoveryRejected)
	}
	if !reflect.DeepEqual(used, []string{"k1"}) {
		t.Errorf("credentials used = %v, want [k1]; later credentials must not be tried", used)
	}
}

func TestDiscover_AllKeysExhausted(t *testing.T) {
	var used []string
	srv := newGenServer(t, map[string]keyBehavior{
		"k1": {status: http.StatusTooManyRequests},
		"k2": {status: http.StatusServiceUnavailable},
	}, &used)
	defer srv.Close()

	d := NewDiscoverer(NewClient(srv.Client(), srv.URL, ""), []string{"k1", "k2"})
	_, err := d.Discover(context.Background(), "India")

	var cmpErr *models.CompareError
	if !errors.As(err, &cmpErr) || cmpErr.Code != models.ErrCodeDiscoveryExhausted {
		t.Fatalf("error = %v, want code %s", err, models.ErrCodeDiscoveryExhausted)
	}
	if len(used) != 2 {
		t.Errorf("credentials used = %v, want both keys tried", used)
	}
}

func TestParseDomains(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "filters lines without a dot",
			text: "Here are the top sites:\namazon.in\nflipkart\nmyntra.com\n",
			want: []string{"amazon.in", "myntra.com"},
		},
		{
			name: "trims whitespace",
			text: "  amazon.in  \n\tflipkart.com\n",
			want: []string{"amazon.in", "flipkart.com"},
		},
		{
			name: "caps at five",
			text: "a.com\nb.com\nc.com\nd.com\ne.com\nf.com\ng.com",
			want: []string{"a.com", "b.com", "c.com", "d.com", "e.com"},
		},
		{
			name: "empty response",
			text: "",
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseDomains(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parseDomains(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}
