// Package source fetches raw feature collections from local files, http(s)
// URLs and s3:// objects, with an optional Redis byte cache for remote
// sources.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	minio "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/redis/go-redis/v9"

	"github.com/dmaher42/athens/internal/logger"
	"github.com/dmaher42/athens/internal/metrics"
	"github.com/dmaher42/athens/pkg/config"
)

// ErrUnsupportedScheme is returned for locations no backend can serve.
var ErrUnsupportedScheme = errors.New("unsupported source scheme")

// maxBody caps the size of a fetched collection.
const maxBody = 64 << 20

const cachePrefix = "walkmap:src:"

// Fetcher loads the raw bytes behind a location.
type Fetcher interface {
	Fetch(ctx context.Context, loc string) ([]byte, error)
}

// Source is the default Fetcher. The zero value reads local files and
// http(s) URLs with http.DefaultClient.
type Source struct {
	HTTP     *http.Client
	S3       *minio.Client
	Cache    *redis.Client
	CacheTTL time.Duration
	Log      *slog.Logger
}

// FromConfig builds a Source from project configuration. Redis and MinIO
// clients are only created when their address is set.
func FromConfig(def config.SourceDef) (*Source, error) {
	s := &Source{
		HTTP:     &http.Client{Timeout: 30 * time.Second},
		CacheTTL: time.Duration(def.CacheTTLSeconds) * time.Second,
		Log:      logger.L(),
	}
	if def.Redis.Addr != "" {
		s.Cache = redis.NewClient(&redis.Options{
			Addr:     def.Redis.Addr,
			Password: def.Redis.Password,
			DB:       def.Redis.DB,
		})
	}
	if def.MinIO.Endpoint != "" {
		c, err := minio.New(def.MinIO.Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(def.MinIO.AccessKey, def.MinIO.SecretKey, ""),
			Secure: def.MinIO.Secure,
		})
		if err != nil {
			return nil, fmt.Errorf("creating minio client: %w", err)
		}
		s.S3 = c
	}
	return s, nil
}

// Close releases the Redis connection pool, if any.
func (s *Source) Close() error {
	if s.Cache != nil {
		return s.Cache.Close()
	}
	return nil
}

// Fetch returns the bytes at loc. Plain paths and file:// URLs are read
// from disk; http(s) and s3 locations go through the cache when one is
// configured.
func (s *Source) Fetch(ctx context.Context, loc string) ([]byte, error) {
	u, err := url.Parse(loc)
	if err != nil || u.Scheme == "" || len(u.Scheme) == 1 {
		// No scheme, or a Windows drive letter.
		return readFile(loc)
	}

	switch strings.ToLower(u.Scheme) {
	case "file":
		return readFile(u.Path)
	case "http", "https":
		return s.cached(ctx, loc, func() ([]byte, error) { return s.fetchHTTP(ctx, loc) })
	case "s3":
		return s.cached(ctx, loc, func() ([]byte, error) { return s.fetchS3(ctx, u) })
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme)
}

func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading source file: %w", err)
	}
	return data, nil
}

func (s *Source) logger() *slog.Logger {
	if s.Log != nil {
		return s.Log
	}
	return logger.L()
}

func (s *Source) cached(ctx context.Context, loc string, fetch func() ([]byte, error)) ([]byte, error) {
	if s.Cache == nil {
		return fetch()
	}
	key := cachePrefix + loc
	data, err := s.Cache.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		metrics.CacheHitsTotal.Inc()
		return data, nil
	case errors.Is(err, redis.Nil):
		metrics.CacheMissesTotal.Inc()
	default:
		metrics.CacheMissesTotal.Inc()
		s.logger().Warn("source_cache_get_failed", "loc", loc, "err", err)
	}

	data, err = fetch()
	if err != nil {
		return nil, err
	}
	if err := s.Cache.Set(ctx, key, data, s.CacheTTL).Err(); err != nil {
		s.logger().Warn("source_cache_set_failed", "loc", loc, "err", err)
	}
	return data, nil
}

func (s *Source) fetchHTTP(ctx context.Context, loc string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, loc, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/geo+json, application/json")

	client := s.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", loc, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching %s: unexpected status %s", loc, resp.Status)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", loc, err)
	}
	s.logger().Debug("source_http_fetched", "loc", loc, "bytes", len(data), "duration_ms", time.Since(start).Milliseconds())
	return data, nil
}

func (s *Source) fetchS3(ctx context.Context, u *url.URL) ([]byte, error) {
	if s.S3 == nil {
		return nil, fmt.Errorf("%w: s3 source without a configured endpoint", ErrUnsupportedScheme)
	}
	bucket, object := u.Host, strings.TrimPrefix(u.Path, "/")
	if bucket == "" || object == "" {
		return nil, fmt.Errorf("s3 location %q needs bucket and key", u.String())
	}
	reader, err := s.S3.GetObject(ctx, bucket, object, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get object failed: %w", err)
	}
	defer reader.Close()

	data, err := io.ReadAll(io.LimitReader(reader, maxBody))
	if err != nil {
		return nil, fmt.Errorf("reading object %s/%s: %w", bucket, object, err)
	}
	return data, nil
}
