package analytics

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/miqueiast/vendas-amazon/internal/fetcher"
)

func newTestFetcher(t *testing.T, baseURL string) *CountFetcher {
	t.Helper()
	f, err := NewCountFetcher(Options{
		BaseURL:     baseURL,
		Credentials: Credentials{Username: "user", Password: "secret"},
		Timeout:     2 * time.Second,
	})
	if err != nil {
		t.Fatalf("NewCountFetcher() returned unexpected error: %v", err)
	}
	return f
}

func TestNewCountFetcher(t *testing.T) {
	f := newTestFetcher(t, "https://analytics.example.com")

	if f.eventType != DefaultEventType {
		t.Errorf("eventType = %d, want %d", f.eventType, DefaultEventType)
	}
	if f.client == nil {
		t.Error("client is nil")
	}
}

func TestNewCountFetcher_InvalidOptions(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{"missing base URL", Options{Credentials: Credentials{Username: "u"}}},
		{"missing username", Options{BaseURL: "http://localhost"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewCountFetcher(tt.opts); err == nil {
				t.Error("NewCountFetcher() expected error, got nil")
			}
		})
	}
}

func TestCountFetcher_Key(t *testing.T) {
	f, err := NewCountFetcher(Options{
		BaseURL:     "http://localhost",
		Credentials: Credentials{Username: "u"},
		EventType:   7,
	})
	if err != nil {
		t.Fatalf("NewCountFetcher() returned unexpected error: %v", err)
	}

	if got := f.Key(); got != "fetcher:analytics:countPerHour:7" {
		t.Errorf("Key() = %q", got)
	}
}

func TestCountFetcher_Fetch_Success(t *testing.T) {
	wantAuth := "Basic " + base64.StdEncoding.EncodeToString([]byte("user:secret"))

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("method = %s, want GET", r.Method)
		}
		if r.URL.Path != CountPerHourPath {
			t.Errorf("path = %q, want %q", r.URL.Path, CountPerHourPath)
		}
		q := r.URL.Query()
		if q.Get("dateBegin") != "2025-02-21" || q.Get("dateEnd") != "2025-02-21" {
			t.Errorf("dateBegin/dateEnd = %q/%q", q.Get("dateBegin"), q.Get("dateEnd"))
		}
		if q.Get("eventType") != "11" {
			t.Errorf("eventType = %q, want 11", q.Get("eventType"))
		}
		if got := r.Header.Get("Authorization"); got != wantAuth {
			t.Errorf("Authorization = %q, want %q", got, wantAuth)
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`[
			{"date": "2025-02-21", "hour": 0, "count": 4},
			{"date": "2025-02-21", "hour": 1, "count": 9},
			{"date": "2025-02-21", "hour": 2, "count": 1}
		]`))
	})

	server := httptest.NewServer(handler)
	defer server.Close()

	records, err := newTestFetcher(t, server.URL).Fetch(context.Background(), "2025-02-21")
	if err != nil {
		t.Fatalf("Fetch() returned unexpected error: %v", err)
	}

	if len(records) != 3 {
		t.Fatalf("len(records) = %d, want 3", len(records))
	}
	for i, rec := range records {
		hour, _ := rec.Get("hour")
		if got := hour.(interface{ String() string }).String(); got != []string{"0", "1", "2"}[i] {
			t.Errorf("record %d hour = %s", i, got)
		}
	}
}

func TestCountFetcher_Fetch_Errors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantType fetcher.ErrorType
	}{
		{"bad request means no data", http.StatusBadRequest, `{"message": "no data"}`, fetcher.ErrorTypeNoData},
		{"unauthorized", http.StatusUnauthorized, ``, fetcher.ErrorTypeClient},
		{"not found", http.StatusNotFound, ``, fetcher.ErrorTypeClient},
		{"rate limited", http.StatusTooManyRequests, ``, fetcher.ErrorTypeRateLimit},
		{"server error", http.StatusInternalServerError, ``, fetcher.ErrorTypeServer},
		{"object body", http.StatusOK, `{"items": []}`, fetcher.ErrorTypeMalformed},
		{"html body", http.StatusOK, `<html>maintenance</html>`, fetcher.ErrorTypeMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := newTestFetcher(t, server.URL).Fetch(context.Background(), "2025-02-21")
			if err == nil {
				t.Fatal("Fetch() expected error, got nil")
			}

			var fe *fetcher.FetchError
			if !errors.As(err, &fe) {
				t.Fatalf("Fetch() error = %T, want *fetcher.FetchError", err)
			}
			if fe.Type != tt.wantType {
				t.Errorf("error type = %q, want %q", fe.Type, tt.wantType)
			}
		})
	}
}

func TestCountFetcher_Fetch_EmptyArray(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	records, err := newTestFetcher(t, server.URL).Fetch(context.Background(), "2025-02-21")
	if err != nil {
		t.Fatalf("Fetch() returned unexpected error: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("len(records) = %d, want 0", len(records))
	}
}

func TestCountFetcher_Fetch_LogsFirstRecord(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { slog.SetDefault(prev) })

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"date": "2025-02-21", "hour": 0, "count": 4}, {"date": "2025-02-21", "hour": 1, "count": 9}]`))
	}))
	defer server.Close()

	if _, err := newTestFetcher(t, server.URL).Fetch(context.Background(), "2025-02-21"); err != nil {
		t.Fatalf("Fetch() returned unexpected error: %v", err)
	}

	want := `"first":{"date":"2025-02-21","hour":0,"count":4}`
	if !strings.Contains(buf.String(), want) {
		t.Errorf("debug log missing %s:\n%s", want, buf.String())
	}
}

func TestCountFetcher_Fetch_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := newTestFetcher(t, url).Fetch(context.Background(), "2025-02-21")
	if err == nil {
		t.Fatal("Fetch() expected error, got nil")
	}
	if got := fetcher.TypeOf(err); got != fetcher.ErrorTypeNetwork {
		t.Errorf("error type = %q, want %q", got, fetcher.ErrorTypeNetwork)
	}
}

func TestCountFetcher_Fetch_ContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestFetcher(t, server.URL).Fetch(ctx, "2025-02-21")
	if err == nil {
		t.Fatal("Fetch() expected error for cancelled context, got nil")
	}
	if got := fetcher.TypeOf(err); got != fetcher.ErrorTypeCanceled {
		t.Errorf("error type = %q, want %q", got, fetcher.ErrorTypeCanceled)
	}
}

func TestCredentials(t *testing.T) {
	c := Credentials{Username: "testuser", Password: "testpass"}

	want := base64.StdEncoding.EncodeToString([]byte("testuser:testpass"))
	if c.Token() != want {
		t.Errorf("Token() = %q, want %q", c.Token(), want)
	}
	if c.Header() != "Basic "+want {
		t.Errorf("Header() = %q", c.Header())
	}
	if c.String() != "BasicAuth(username: testuser)" {
		t.Errorf("String() = %q", c.String())
	}
	if err := (Credentials{Password: "x"}).Validate(); !errors.Is(err, ErrMissingCredentials) {
		t.Errorf("Validate() = %v, want ErrMissingCredentials", err)
	}
}
