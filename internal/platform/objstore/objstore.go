// Copyright (c) 2026 ExpenseReport. All rights reserved.
// Author: s.maher.dev@gmail.com

/*
Package objstore implements the external file-store collaborator on top of an
S3-compatible bucket (Cloudflare R2, MinIO, AWS S3).

Uploaded receipts and avatars are stored under per-purpose folders and
addressed by a durable public URL. The URL is the only handle the rest of the
system ever sees; deletion takes the URL back and maps it to the object key.

Deletion failures are reported to the caller but are expected to be consumed
by the best-effort cleanup runner; an orphaned object is never a user-facing
error.
*/
package objstore

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// Settings carries the bucket configuration taken from process config.
type Settings struct {
	Bucket        string
	Region        string
	Endpoint      string // Custom endpoint for R2/MinIO; empty for AWS S3.
	AccessKeyID   string
	SecretKey     string
	PublicBaseURL string // Base of the durable URLs handed out for uploads.
}

// Store is an S3-backed file store.
type Store struct {
	client        *s3.Client
	bucket        string
	publicBaseURL string
	logger        *slog.Logger
}

// New builds an S3 client from the given settings and verifies them.
func New(ctx context.Context, settings Settings, logger *slog.Logger) (*Store, error) {
	if settings.Bucket == "" {
		return nil, fmt.Errorf("objstore: bucket is not configured")
	}
	if settings.PublicBaseURL == "" {
		return nil, fmt.Errorf("objstore: public base URL is not configured")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(settings.Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(settings.AccessKeyID, settings.SecretKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("objstore: failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(options *s3.Options) {
		if settings.Endpoint != "" {
			options.BaseEndpoint = aws.String(settings.Endpoint)
			// R2 and MinIO resolve buckets by path, not virtual host.
			options.UsePathStyle = true
		}
	})

	logger.Info("object store configured",
		slog.String("bucket", settings.Bucket),
		slog.String("region", settings.Region),
	)

	return &Store{
		client:        client,
		bucket:        settings.Bucket,
		publicBaseURL: strings.TrimRight(settings.PublicBaseURL, "/"),
		logger:        logger,
	}, nil
}

// Upload stores content under the given folder and returns its durable URL.
//
// The object key embeds a fresh UUIDv7 so concurrent uploads of files with
// the same name never collide; the original extension is preserved so the
// browser can render the file directly.
func (store *Store) Upload(ctx context.Context, content []byte, filename, contentType, folder string) (string, error) {
	key := folder + newObjectName(filename)

	input := &s3.PutObjectInput{
		Bucket: aws.String(store.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(content),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	if _, err := store.client.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("objstore: upload of %q failed: %w", key, err)
	}

	return store.publicBaseURL + "/" + key, nil
}

// Delete removes the object identified by a previously returned durable URL.
//
// URLs minted by other stores (different base) are rejected rather than
// silently ignored, so misconfiguration shows up in the cleanup logs.
func (store *Store) Delete(ctx context.Context, fileURL string) error {
	key, ok := strings.CutPrefix(fileURL, store.publicBaseURL+"/")
	if !ok || key == "" {
		return fmt.Errorf("objstore: URL %q does not belong to this store", fileURL)
	}

	_, err := store.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(store.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("objstore: delete of %q failed: %w", key, err)
	}

	return nil
}

// newObjectName produces a collision-free object name preserving the
// extension of the uploaded file.
func newObjectName(filename string) string {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}

	ext := strings.ToLower(path.Ext(filename))
	return id.String() + ext
}
