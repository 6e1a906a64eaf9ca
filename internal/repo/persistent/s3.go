package persistent

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/andreyxaxa/oral-screening/pkg/s3client"
	"github.com/andreyxaxa/oral-screening/pkg/types/errs"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

type ArtifactRepo struct {
	*s3client.S3Client
	bucket string
}

func NewArtifactRepo(s3c *s3client.S3Client, bucket string) *ArtifactRepo {
	return &ArtifactRepo{s3c, bucket}
}

func (r *ArtifactRepo) Upload(ctx context.Context, key string, data io.Reader, contentType string, size int64) error {
	_, err := r.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(r.bucket),
		Key:           aws.String(key),
		Body:          data,
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(size),
	})
	if err != nil {
		return fmt.Errorf("ArtifactRepo - Upload - r.Client.PutObject: %w", errs.Storage(err))
	}

	return nil
}

func (r *ArtifactRepo) UploadBytes(ctx context.Context, key string, data []byte, contentType string) error {
	_, err := r.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(r.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return fmt.Errorf("ArtifactRepo - UploadBytes - r.Client.PutObject: %w", errs.Storage(err))
	}

	return nil
}

func (r *ArtifactRepo) DownloadBytes(ctx context.Context, key string) ([]byte, error) {
	result, err := r.Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("ArtifactRepo - DownloadBytes - r.Client.GetObject: %w", mapS3Error(err))
	}
	defer result.Body.Close()

	b, err := io.ReadAll(result.Body)
	if err != nil {
		return nil, fmt.Errorf("ArtifactRepo - DownloadBytes - io.ReadAll: %w", errs.Storage(err))
	}

	return b, nil
}

func (r *ArtifactRepo) Exists(ctx context.Context, key string) (bool, error) {
	_, err := r.Client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		mapped := mapS3Error(err)
		if errors.Is(mapped, errs.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("ArtifactRepo - Exists - r.Client.HeadObject: %w", mapped)
	}

	return true, nil
}

func (r *ArtifactRepo) Delete(ctx context.Context, key string) error {
	_, err := r.Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("ArtifactRepo - Delete - r.Client.DeleteObject: %w", errs.Storage(err))
	}

	return nil
}

func (r *ArtifactRepo) PresignURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	req, err := r.Presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", fmt.Errorf("ArtifactRepo - PresignURL - r.Presign.PresignGetObject: %w", errs.Storage(err))
	}

	return req.URL, nil
}

func mapS3Error(err error) error {
	var noSuchKey *types.NoSuchKey
	var notFound *types.NotFound
	if errors.As(err, &noSuchKey) || errors.As(err, &notFound) {
		return fmt.Errorf("%w: %w", errs.ErrNotFound, err)
	}

	return errs.Storage(err)
}
