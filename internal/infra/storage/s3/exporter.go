package s3

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"stayhost/internal/app/policies"
)

type Options struct {
	Endpoint      string
	UseSSL        bool
	AccessKey     string
	SecretKey     string
	Bucket        string
	PublicBaseURL string
	// PresignTTL > 0 returns time-limited signed links instead of plain object URLs.
	PresignTTL time.Duration
	Logger     *slog.Logger
}

// CalendarExporter writes calendar snapshots to an S3-compatible bucket.
type CalendarExporter struct {
	bucket        string
	publicBaseURL string
	presignTTL    time.Duration
	client        *minio.Client
	logger        *slog.Logger

	bucketInitOnce sync.Once
	bucketInitErr  error
}

func NewCalendarExporter(opts Options) (*CalendarExporter, error) {
	endpoint := strings.TrimSpace(opts.Endpoint)
	if endpoint == "" {
		return nil, errors.New("s3: endpoint is required")
	}
	bucket := strings.TrimSpace(opts.Bucket)
	if bucket == "" {
		return nil, errors.New("s3: bucket is required")
	}
	client, err := minio.New(hostOf(endpoint), &minio.Options{
		Creds:  credentials.NewStaticV4(strings.TrimSpace(opts.AccessKey), strings.TrimSpace(opts.SecretKey), ""),
		Secure: opts.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("s3: create client: %w", err)
	}
	base := strings.TrimSpace(opts.PublicBaseURL)
	if base == "" {
		base = endpoint
	}
	return &CalendarExporter{
		bucket:        bucket,
		publicBaseURL: strings.TrimRight(base, "/"),
		presignTTL:    opts.PresignTTL,
		client:        client,
		logger:        opts.Logger,
	}, nil
}

func (e *CalendarExporter) Upload(ctx context.Context, obj policies.CalendarObject) (string, error) {
	if obj.Body == nil {
		return "", errors.New("s3: body is required")
	}
	key := strings.Trim(strings.TrimSpace(obj.Key), "/")
	if key == "" {
		return "", errors.New("s3: object key is required")
	}
	if err := e.ensureBucket(ctx); err != nil {
		return "", err
	}
	contentType := obj.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	size := obj.Size
	if size <= 0 {
		size = -1
	}
	info, err := e.client.PutObject(ctx, e.bucket, key, obj.Body, size, minio.PutObjectOptions{
		ContentType:        contentType,
		ContentDisposition: fmt.Sprintf("attachment; filename=%q", key[strings.LastIndex(key, "/")+1:]),
	})
	if err != nil {
		return "", fmt.Errorf("s3: put object: %w", err)
	}

	link, err := e.link(ctx, key)
	if err != nil {
		return "", err
	}
	if e.logger != nil {
		e.logger.Info("calendar snapshot stored", "bucket", e.bucket, "key", key, "size", info.Size)
	}
	return link, nil
}

// Ping reports whether the bucket is reachable.
func (e *CalendarExporter) Ping(ctx context.Context) error {
	_, err := e.client.BucketExists(ctx, e.bucket)
	return err
}

func (e *CalendarExporter) link(ctx context.Context, key string) (string, error) {
	if e.presignTTL <= 0 {
		return objectURL(e.publicBaseURL, e.bucket, key), nil
	}
	u, err := e.client.PresignedGetObject(ctx, e.bucket, key, e.presignTTL, url.Values{})
	if err != nil {
		return "", fmt.Errorf("s3: presign: %w", err)
	}
	return u.String(), nil
}

func (e *CalendarExporter) ensureBucket(ctx context.Context) error {
	e.bucketInitOnce.Do(func() {
		exists, err := e.client.BucketExists(ctx, e.bucket)
		if err != nil {
			e.bucketInitErr = fmt.Errorf("s3: check bucket: %w", err)
			return
		}
		if exists {
			return
		}
		if err := e.client.MakeBucket(ctx, e.bucket, minio.MakeBucketOptions{}); err != nil {
			e.bucketInitErr = fmt.Errorf("s3: create bucket: %w", err)
		}
	})
	return e.bucketInitErr
}

func objectURL(base, bucket, key string) string {
	return fmt.Sprintf("%s/%s/%s", strings.TrimRight(base, "/"), bucket, strings.TrimLeft(key, "/"))
}

func hostOf(endpoint string) string {
	if parsed, err := url.Parse(endpoint); err == nil && parsed.Host != "" {
		return parsed.Host
	}
	return endpoint
}

var _ policies.CalendarExporter = (*CalendarExporter)(nil)
