package application

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/retouch-app/retouch/edit/domain"
)

// stubStore serves canned records so gateway behavior can be exercised
// without a real backend.
type stubStore struct {
	records map[string]*domain.Record
	putErr  error
	puts    []string
}

func newStubStore() *stubStore {
	return &stubStore{records: make(map[string]*domain.Record)}
}

func (s *stubStore) Put(_ context.Context, token string, data []byte, mime, originalName string) (*domain.Handle, error) {
	if s.putErr != nil {
		return nil, s.putErr
	}
	s.puts = append(s.puts, token)
	s.records[token] = &domain.Record{
		Bytes:        domain.CloneBytes(data),
		Mime:         domain.NormalizeMime(mime),
		OriginalName: originalName,
		CreatedAt:    time.Now(),
	}
	return &domain.Handle{ImageKey: "images/" + token, MetaKey: "images/" + token + ".json"}, nil
}

func (s *stubStore) Get(_ context.Context, token string) (*domain.Record, error) {
	record, ok := s.records[token]
	if !ok {
		return nil, fmt.Errorf("get %s: %w", token, domain.ErrNotFound)
	}
	copied := *record
	copied.Bytes = domain.CloneBytes(record.Bytes)
	return &copied, nil
}

func (s *stubStore) Close() error { return nil }

func TestDownloadMissingToken(t *testing.T) {
	svc := NewDownloadService(newStubStore(), time.Hour)

	_, err := svc.Resolve(context.Background(), "", "")
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("Resolve with empty token = %v, want ErrInvalidInput", err)
	}
}

func TestDownloadUnknownToken(t *testing.T) {
	svc := NewDownloadService(newStubStore(), time.Hour)

	_, err := svc.Resolve(context.Background(), "nope", "")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Resolve on unknown token = %v, want ErrNotFound", err)
	}
}

func TestDownloadLocalBytes(t *testing.T) {
	store := newStubStore()
	data := []byte("inline image payload")
	store.records["tok"] = &domain.Record{
		Bytes:        data,
		Mime:         domain.MimePNG,
		OriginalName: "Holiday Trip.heic",
		CreatedAt:    time.Now(),
	}

	svc := NewDownloadService(store, time.Hour)
	result, err := svc.Resolve(context.Background(), "tok", "")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	if !bytes.Equal(result.Bytes, data) {
		t.Errorf("Bytes = %q, want %q", result.Bytes, data)
	}
	if result.Mime != domain.MimePNG {
		t.Errorf("Mime = %q, want %q", result.Mime, domain.MimePNG)
	}
	if result.Filename != "HolidayTrip-edited.png" {
		t.Errorf("Filename = %q, want %q", result.Filename, "HolidayTrip-edited.png")
	}
	if result.Length() != len(data) {
		t.Errorf("Length = %d, want %d", result.Length(), len(data))
	}

	// Copy-on-read: mutating the result must not reach the store.
	result.Bytes[0] = 'X'
	again, err := svc.Resolve(context.Background(), "tok", "")
	if err != nil {
		t.Fatalf("second Resolve failed: %v", err)
	}
	if !bytes.Equal(again.Bytes, data) {
		t.Error("mutating a resolved download corrupted the stored bytes")
	}
}

func TestDownloadExpiredRecord(t *testing.T) {
	store := newStubStore()
	store.records["tok"] = &domain.Record{
		Bytes:     []byte("old"),
		Mime:      domain.MimeJPEG,
		CreatedAt: time.Now(),
	}

	svc := NewDownloadService(store, 24*time.Hour)
	// Advance the gateway's clock 25 hours past creation.
	svc.now = func() time.Time { return time.Now().Add(25 * time.Hour) }

	_, err := svc.Resolve(context.Background(), "tok", "")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Resolve on expired record = %v, want ErrNotFound", err)
	}
}

func TestDownloadRemoteFetch(t *testing.T) {
	payload := []byte("remote webp payload")

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Cache-Control") != "no-cache" {
			t.Errorf("upstream fetch missing no-cache header")
		}
		w.Header().Set("Content-Type", "image/webp")
		w.Write(payload)
	}))
	defer upstream.Close()

	store := newStubStore()
	store.records["tok"] = &domain.Record{
		URL:       upstream.URL + "/photos/tok.webp",
		Mime:      domain.MimeJPEG, // stored mime loses to the upstream header
		CreatedAt: time.Now(),
	}

	svc := NewDownloadService(store, time.Hour)
	result, err := svc.Resolve(context.Background(), "tok", "myname")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	if !bytes.Equal(result.Bytes, payload) {
		t.Errorf("Bytes = %q, want %q", result.Bytes, payload)
	}
	if result.Mime != domain.MimeWebP {
		t.Errorf("Mime = %q, want upstream %q", result.Mime, domain.MimeWebP)
	}
	if result.Filename != "myname.webp" {
		t.Errorf("Filename = %q, want %q", result.Filename, "myname.webp")
	}
}

func TestDownloadRemoteFallsBackToStoredMime(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// No Content-Type header at all.
		w.Header()["Content-Type"] = nil
		w.Write([]byte("bytes"))
	}))
	defer upstream.Close()

	store := newStubStore()
	store.records["tok"] = &domain.Record{
		URL:       upstream.URL,
		Mime:      domain.MimePNG,
		CreatedAt: time.Now(),
	}

	svc := NewDownloadService(store, time.Hour)
	result, err := svc.Resolve(context.Background(), "tok", "")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if result.Mime != domain.MimePNG {
		t.Errorf("Mime = %q, want stored %q", result.Mime, domain.MimePNG)
	}
}

func TestDownloadUpstreamFailure(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "Upstream 404",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "gone", http.StatusNotFound)
			},
		},
		{
			name: "Upstream 500",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "boom", http.StatusInternalServerError)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			upstream := httptest.NewServer(tt.handler)
			defer upstream.Close()

			store := newStubStore()
			store.records["tok"] = &domain.Record{
				URL:       upstream.URL,
				Mime:      domain.MimeJPEG,
				CreatedAt: time.Now(),
			}

			svc := NewDownloadService(store, time.Hour)
			_, err := svc.Resolve(context.Background(), "tok", "")

			// Upstream failures are distinguishable from absence: never
			// ErrNotFound, never empty bytes with a nil error.
			if !errors.Is(err, domain.ErrUpstream) {
				t.Errorf("Resolve = %v, want ErrUpstream", err)
			}
			if errors.Is(err, domain.ErrNotFound) {
				t.Error("upstream failure must not look like absence")
			}
		})
	}
}

func TestDownloadUpstreamUnreachable(t *testing.T) {
	store := newStubStore()
	store.records["tok"] = &domain.Record{
		URL:       "http://127.0.0.1:1/unreachable",
		Mime:      domain.MimeJPEG,
		CreatedAt: time.Now(),
	}

	svc := NewDownloadService(store, time.Hour)
	_, err := svc.Resolve(context.Background(), "tok", "")
	if !errors.Is(err, domain.ErrUpstream) {
		t.Errorf("Resolve = %v, want ErrUpstream", err)
	}
}
