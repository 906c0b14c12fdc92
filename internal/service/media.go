package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// MediaStore resolves recipe image references. Store persists raw image
// bytes and returns an object key; ResolveURL turns a key into a URL a
// client can fetch.
type MediaStore interface {
	Store(ctx context.Context, data []byte, contentType string) (string, error)
	ResolveURL(ctx context.Context, key string) (string, error)
}

// S3MediaStore stores recipe images in an S3 bucket and serves them through
// presigned GET URLs.
type S3MediaStore struct {
	client *s3.Client
	bucket string
	urlTTL time.Duration
}

// NewS3MediaStore initializes the S3 client from the environment.
func NewS3MediaStore(ctx context.Context) (*S3MediaStore, error) {
	bucket := os.Getenv("S3_BUCKET_NAME")
	if bucket == "" {
		bucket = "platefeed-recipe-images"
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(os.Getenv("AWS_REGION")),
	)
	if err != nil {
		return nil, err
	}

	return &S3MediaStore{
		client: s3.NewFromConfig(awsCfg),
		bucket: bucket,
		urlTTL: 24 * time.Hour,
	}, nil
}

func (s *S3MediaStore) Store(ctx context.Context, data []byte, contentType string) (string, error) {
	ext := "bin"
	if i := strings.Index(contentType, "/"); i >= 0 && i+1 < len(contentType) {
		ext = contentType[i+1:]
	}
	key := fmt.Sprintf("recipes/%s.%s", uuid.New().String(), ext)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload image: %w", err)
	}
	return key, nil
}

func (s *S3MediaStore) ResolveURL(ctx context.Context, key string) (string, error) {
	presignClient := s3.NewPresignClient(s.client)
	presigned, err := presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(s.urlTTL))
	if err != nil {
		return "", err
	}
	return presigned.URL, nil
}

// DecodeImageDataURL splits a "data:image/...;base64," payload into raw
// bytes and a content type. Returns false when the value is not a data URL,
// in which case the caller treats it as an already-stored key.
func DecodeImageDataURL(value string) ([]byte, string, bool, error) {
	if !strings.HasPrefix(value, "data:image") {
		return nil, "", false, nil
	}
	header, encoded, found := strings.Cut(value, ";base64,")
	if !found {
		return nil, "", true, &ValidationError{Reason: "malformed image data"}
	}
	contentType := strings.TrimPrefix(header, "data:")
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, "", true, &ValidationError{Reason: "malformed image data"}
	}
	return data, contentType, true, nil
}
