package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"sort"
	"time"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// Report kinds.
const (
	KindCheck     = "check"
	KindPromotion = "promotion"
	KindRepair    = "repair"
	KindReplicate = "replicate"
)

// ErrNoReports is returned when no report exists for a kind and id.
var ErrNoReports = errors.New("no reports found")

// IsKind reports whether kind names a report kind.
func IsKind(kind string) bool {
	switch kind {
	case KindCheck, KindPromotion, KindRepair, KindReplicate:
		return true
	}
	return false
}

// Publisher writes JSON reports of sync runs to a bucket.
type Publisher struct {
	client Client
	bucket string
	prefix string
	logger *zap.Logger

	// Now stamps report keys.
	Now func() time.Time
}

// NewPublisher creates a publisher writing to bucket under prefix.
func NewPublisher(client Client, bucket, prefix string, logger *zap.Logger) *Publisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Publisher{client: client, bucket: bucket, prefix: prefix, logger: logger, Now: time.Now}
}

// EnsureBucket creates the report bucket when it does not exist.
func (p *Publisher) EnsureBucket(ctx context.Context) error {
	exists, err := p.client.BucketExists(ctx, p.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket %s: %w", p.bucket, err)
	}
	if exists {
		return nil
	}
	if err := p.client.MakeBucket(ctx, p.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", p.bucket, err)
	}
	p.logger.Info("Created report bucket", zap.String("bucket", p.bucket))
	return nil
}

// Key returns the object key of a report of kind about id written at t.
func (p *Publisher) Key(kind, id string, t time.Time) string {
	t = t.UTC()
	return path.Join(p.prefix, kind, id, t.Format("20060102T150405.000000000Z")+".json")
}

// Publish encodes report as JSON and uploads it. It returns the object key.
func (p *Publisher) Publish(ctx context.Context, kind, id string, report any) (string, error) {
	body, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode %s report: %w", kind, err)
	}

	key := p.Key(kind, id, p.Now())
	_, err = p.client.PutObject(ctx, p.bucket, key, bytes.NewReader(body), int64(len(body)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload report %s: %w", key, err)
	}

	p.logger.Debug("Published report", zap.String("bucket", p.bucket), zap.String("key", key))
	return key, nil
}

// List returns the keys of every report of kind about id, oldest first.
func (p *Publisher) List(ctx context.Context, kind, id string) ([]string, error) {
	prefix := path.Join(p.prefix, kind, id) + "/"

	var keys []string
	for obj := range p.client.ListObjects(ctx, p.bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list reports: %w", obj.Err)
		}
		keys = append(keys, obj.Key)
	}
	sort.Strings(keys)
	return keys, nil
}

// Load downloads the report at key and decodes it into out.
func (p *Publisher) Load(ctx context.Context, key string, out any) error {
	obj, err := p.client.GetObject(ctx, p.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return fmt.Errorf("failed to get report %s: %w", key, err)
	}
	defer obj.Close()

	if err := json.NewDecoder(obj).Decode(out); err != nil {
		return fmt.Errorf("failed to decode report %s: %w", key, err)
	}
	return nil
}

// Latest loads the newest report of kind about id into out and returns its key.
func (p *Publisher) Latest(ctx context.Context, kind, id string, out any) (string, error) {
	keys, err := p.List(ctx, kind, id)
	if err != nil {
		return "", err
	}
	if len(keys) == 0 {
		return "", fmt.Errorf("%s %s: %w", kind, id, ErrNoReports)
	}
	key := keys[len(keys)-1]
	return key, p.Load(ctx, key, out)
}
