package persistence

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/retouch-app/retouch/edit/domain"
	"golang.org/x/sync/errgroup"
)

var _ domain.RecordStore = (*BlobStore)(nil)

// How long a presigned reference stays valid. Long enough for a
// redirect-then-download round trip, far shorter than record retention.
const signedURLTTL = 15 * time.Minute

// BlobConfig configures the remote strategies.
type BlobConfig struct {
	Endpoint  string
	Bucket    string
	AccessKey string
	SecretKey string
	UseSSL    bool

	// Signed selects the access-controlled variant: objects are private
	// and Get returns presigned, time-limited references. When false the
	// bucket is expected to allow public reads and Get returns plain
	// object URLs.
	Signed bool
}

// BlobStore is the durable remote strategy over any S3-compatible blob
// host. Payload and sidecar are two objects under images/<token>.*;
// the sidecar is rewritten on every Put. Get is lazy: it resolves the
// record's reference URL and metadata but leaves byte streaming to the
// retrieval gateway.
type BlobStore struct {
	client *minio.Client
	cfg    BlobConfig
}

// NewBlobStore validates configuration and builds the client. Missing
// credentials are a storage misconfiguration, reported as such rather
// than surfacing later as an opaque request failure.
func NewBlobStore(cfg BlobConfig) (*BlobStore, error) {
	if cfg.Endpoint == "" || cfg.Bucket == "" || cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("blob store requires endpoint, bucket and credentials: %w", domain.ErrStorage)
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build blob client: %v: %w", err, domain.ErrStorage)
	}

	return &BlobStore{client: client, cfg: cfg}, nil
}

func (s *BlobStore) Put(ctx context.Context, token string, data []byte, mime, originalName string) (*domain.Handle, error) {
	if token == "" {
		return nil, fmt.Errorf("put: token cannot be empty: %w", domain.ErrInvalidInput)
	}

	mime = domain.NormalizeMime(mime)
	createdAt := time.Now()
	imgKey := imageKey(token, mime)

	if data == nil {
		// Metadata-only rewrite: the payload must already be there.
		existing, err := s.findObjects(ctx, token)
		if err != nil {
			return nil, err
		}
		if existing.image == nil {
			return nil, fmt.Errorf("put: metadata-only write for unknown token: %w", domain.ErrInvalidInput)
		}
		imgKey = existing.image.Key
		createdAt = existing.image.LastModified
	} else {
		_, err := s.client.PutObject(ctx, s.cfg.Bucket, imgKey,
			bytes.NewReader(data), int64(len(data)),
			minio.PutObjectOptions{ContentType: mime})
		if err != nil {
			return nil, fmt.Errorf("failed to upload image: %v: %w", err, domain.ErrStorage)
		}
	}

	meta, err := encodeMetadata(metadata{
		Mime:         mime,
		OriginalName: originalName,
		CreatedAt:    createdAt.UnixMilli(),
	})
	if err != nil {
		return nil, err
	}

	// The sidecar is written on every Put, including metadata-only ones.
	_, err = s.client.PutObject(ctx, s.cfg.Bucket, metaKey(token),
		bytes.NewReader(meta), int64(len(meta)),
		minio.PutObjectOptions{ContentType: "application/json"})
	if err != nil {
		return nil, fmt.Errorf("failed to upload metadata: %v: %w", err, domain.ErrStorage)
	}

	return &domain.Handle{ImageKey: imgKey, MetaKey: metaKey(token)}, nil
}

func (s *BlobStore) Get(ctx context.Context, token string) (*domain.Record, error) {
	found, err := s.findObjects(ctx, token)
	if err != nil {
		return nil, err
	}
	if found.image == nil || found.meta == nil {
		// One half without the other fails closed.
		return nil, fmt.Errorf("get %s: %w", token, domain.ErrNotFound)
	}

	var (
		meta        metadata
		contentType = found.image.ContentType
	)

	// Listings on some backends omit the content type; the Stat probe
	// (HEAD) is authoritative and confirms the object is still readable
	// with our credentials. Run it alongside the sidecar read.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		raw, err := s.readObject(gctx, found.meta.Key)
		if err != nil {
			return err
		}
		m, err := decodeMetadata(raw)
		if err != nil {
			return fmt.Errorf("get %s: %v: %w", token, err, domain.ErrNotFound)
		}
		meta = m
		return nil
	})
	g.Go(func() error {
		stat, err := s.client.StatObject(gctx, s.cfg.Bucket, found.image.Key, minio.StatObjectOptions{})
		if err != nil {
			if minio.ToErrorResponse(err).Code == "NoSuchKey" {
				return fmt.Errorf("get %s: %w", token, domain.ErrNotFound)
			}
			return fmt.Errorf("failed to stat image: %v: %w", err, domain.ErrStorage)
		}
		if stat.ContentType != "" {
			contentType = stat.ContentType
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	ref, err := s.reference(ctx, found.image.Key)
	if err != nil {
		return nil, err
	}

	// Mime fallback chain: object content type, then sidecar, then jpeg.
	mime := contentType
	if mime == "" || mime == "application/octet-stream" {
		mime = meta.Mime
	}

	return &domain.Record{
		URL:          ref,
		Mime:         domain.NormalizeMime(mime),
		OriginalName: meta.OriginalName,
		CreatedAt:    time.UnixMilli(meta.CreatedAt),
	}, nil
}

func (s *BlobStore) Close() error {
	return nil
}

type foundObjects struct {
	image *minio.ObjectInfo
	meta  *minio.ObjectInfo
}

// findObjects lists everything under the token's prefix and picks out
// the sidecar and the payload (the one non-json object).
func (s *BlobStore) findObjects(ctx context.Context, token string) (foundObjects, error) {
	var found foundObjects

	objects := s.client.ListObjects(ctx, s.cfg.Bucket, minio.ListObjectsOptions{
		Prefix:    tokenPrefix(token),
		Recursive: true,
	})

	for obj := range objects {
		if obj.Err != nil {
			return foundObjects{}, fmt.Errorf("failed to list blobs: %v: %w", obj.Err, domain.ErrStorage)
		}
		o := obj
		if isMetaKey(o.Key) {
			found.meta = &o
		} else {
			found.image = &o
		}
	}

	return found, nil
}

func (s *BlobStore) readObject(ctx context.Context, key string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, s.cfg.Bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %v: %w", key, err, domain.ErrStorage)
	}
	defer obj.Close()

	raw, err := io.ReadAll(obj)
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, fmt.Errorf("read %s: %w", key, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to read %s: %v: %w", key, err, domain.ErrStorage)
	}
	return raw, nil
}

// reference builds the URL the retrieval gateway streams from: a plain
// object URL for public buckets, a presigned one for private buckets.
func (s *BlobStore) reference(ctx context.Context, key string) (string, error) {
	if !s.cfg.Signed {
		base := *s.client.EndpointURL()
		base.Path = "/" + s.cfg.Bucket + "/" + strings.TrimPrefix(key, "/")
		return base.String(), nil
	}

	signed, err := s.client.PresignedGetObject(ctx, s.cfg.Bucket, key, signedURLTTL, url.Values{})
	if err != nil {
		return "", fmt.Errorf("failed to presign %s: %v: %w", key, err, domain.ErrStorage)
	}
	return signed.String(), nil
}
