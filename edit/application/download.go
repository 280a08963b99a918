package application

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/retouch-app/retouch/edit/domain"
	"github.com/retouch-app/retouch/internal/observability"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

const fetchTimeout = 30 * time.Second

// Download is a fully resolved record ready for HTTP delivery. Bytes is
// always an independent copy; handlers may hand it to the response
// writer without touching any store-owned buffer.
type Download struct {
	Bytes    []byte
	Mime     string
	Filename string
}

// Length is the true byte count, used for Content-Length on both GET
// and HEAD responses.
func (d *Download) Length() int {
	return len(d.Bytes)
}

// DownloadService is the retrieval gateway: it turns a token into
// deliverable bytes, whether the record holds them inline or behind a
// remote reference.
type DownloadService struct {
	store  domain.RecordStore
	client *http.Client
	group  singleflight.Group
	maxAge time.Duration

	// now is swappable so expiry is testable against a fixed clock.
	now func() time.Time
}

func NewDownloadService(store domain.RecordStore, maxAge time.Duration) *DownloadService {
	if maxAge <= 0 {
		maxAge = domain.DefaultRetention
	}
	return &DownloadService{
		store:  store,
		client: &http.Client{Timeout: fetchTimeout},
		maxAge: maxAge,
		now:    time.Now,
	}
}

// Resolve looks up token, applies expiry, fetches remote bytes when
// needed, and derives the download filename. Expired records are
// indistinguishable from ones that never existed. Idempotent and free
// of side effects beyond the single upstream fetch, so safe to retry.
func (s *DownloadService) Resolve(ctx context.Context, token, requestedBase string) (*Download, error) {
	if token == "" {
		return nil, fmt.Errorf("download requires a token: %w", domain.ErrInvalidInput)
	}

	record, err := s.store.Get(ctx, token)
	if err != nil {
		observability.CountDownload("not_found")
		return nil, err
	}

	if domain.Expired(record.CreatedAt, s.now(), s.maxAge) {
		observability.CountDownload("expired")
		return nil, fmt.Errorf("get %s: %w", token, domain.ErrNotFound)
	}

	data := record.Bytes
	mime := record.Mime

	if record.Remote() {
		data, mime, err = s.fetchRemote(ctx, token, record)
		if err != nil {
			observability.CountDownload("upstream_error")
			return nil, err
		}
	} else {
		data = domain.CloneBytes(data)
	}

	observability.CountDownload("ok")
	return &Download{
		Bytes:    data,
		Mime:     mime,
		Filename: domain.BuildFilename(requestedBase, record.OriginalName, mime),
	}, nil
}

type fetched struct {
	body []byte
	mime string
}

// fetchRemote streams the referenced bytes. Concurrent requests for the
// same token share one upstream fetch; each caller still receives its
// own copy of the body.
func (s *DownloadService) fetchRemote(ctx context.Context, token string, record *domain.Record) ([]byte, string, error) {
	v, err, _ := s.group.Do(token, func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, record.URL, nil)
		if err != nil {
			return nil, fmt.Errorf("building upstream request: %v: %w", err, domain.ErrUpstream)
		}
		req.Header.Set("Cache-Control", "no-cache")

		resp, err := s.client.Do(req)
		if err != nil {
			log.Error().Err(err).Str("token", token).Msg("Upstream fetch failed")
			return nil, fmt.Errorf("fetching stored image: %v: %w", err, domain.ErrUpstream)
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			log.Error().Int("status", resp.StatusCode).Str("token", token).Msg("Upstream returned non-success status")
			return nil, fmt.Errorf("upstream returned status %d: %w", resp.StatusCode, domain.ErrUpstream)
		}

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			// A partial body is a failure, never partial bytes to the client.
			return nil, fmt.Errorf("reading upstream body: %v: %w", err, domain.ErrUpstream)
		}

		// Upstream content type wins when present; the stored mime is
		// the fallback.
		mime := resp.Header.Get("Content-Type")
		if mime == "" {
			mime = record.Mime
		}

		return fetched{body: body, mime: domain.NormalizeMime(mime)}, nil
	})
	if err != nil {
		return nil, "", err
	}

	f := v.(fetched)
	return domain.CloneBytes(f.body), f.mime, nil
}
