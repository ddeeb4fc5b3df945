package storage

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog/log"
)

// Gateway performs object uploads and mints presigned read links against a
// single bucket. It holds no mutable state and is safe for concurrent use.
type Gateway struct {
	client    *s3.Client
	presigner *s3.PresignClient
	namespace string
	bucket    string
}

// NewGateway creates a Gateway over the given S3 client and presigner.
func NewGateway(client *s3.Client, presigner *s3.PresignClient, namespace, bucket string) *Gateway {
	return &Gateway{
		client:    client,
		presigner: presigner,
		namespace: namespace,
		bucket:    bucket,
	}
}

// Ref returns the full storage coordinates for a key in the gateway's bucket.
func (g *Gateway) Ref(key string) ObjectRef {
	return ObjectRef{Namespace: g.namespace, Bucket: g.bucket, Key: key}
}

// Put uploads a single object. Any upload error is a stage failure for the
// caller to report; nothing is retried here.
func (g *Gateway) Put(ctx context.Context, key string, data []byte, contentType string) error {
	log.Debug().
		Str("bucket", g.bucket).
		Str("key", key).
		Str("contentType", contentType).
		Int("size", len(data)).
		Msg("Uploading object")

	_, err := g.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      &g.bucket,
		Key:         &key,
		Body:        bytes.NewReader(data),
		ContentType: &contentType,
	})
	if err != nil {
		return fmt.Errorf("put object %s in bucket %s: %w", key, g.bucket, err)
	}

	log.Info().Str("bucket", g.bucket).Str("key", key).Msg("Object stored")
	return nil
}

// PresignGet mints a read-only access link for one object, valid for the
// given lifetime. The grant covers exactly one object; it allows no listing
// and no writes. An empty URL from the presigner is treated as a failure.
func (g *Gateway) PresignGet(ctx context.Context, key string, ttl time.Duration) (AccessLink, error) {
	result, err := g.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: &g.bucket,
		Key:    &key,
	}, func(opts *s3.PresignOptions) {
		opts.Expires = ttl
	})
	if err != nil {
		return AccessLink{}, fmt.Errorf("presign GetObject %s: %w", key, err)
	}
	if result == nil || result.URL == "" {
		return AccessLink{}, fmt.Errorf("presign GetObject %s: empty URL", key)
	}

	link := AccessLink{URL: result.URL, ExpiresAt: time.Now().UTC().Add(ttl)}
	log.Debug().Str("key", key).Time("expiresAt", link.ExpiresAt).Msg("Access link created")
	return link, nil
}
