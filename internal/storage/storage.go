package storage

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/oklog/ulid/v2"
)

const DefaultPresignTTL = 15 * time.Minute

// Storage defines the interface for file storage backends
type Storage interface {
	PresignPut(ctx context.Context, objectName, contentType string) (string, error)
	PresignGet(ctx context.Context, objectName string) (string, error)
	ImageURL(ctx context.Context, location string) (string, error)
}

// Presigner is the subset of the S3 presign client used here
type Presigner interface {
	PresignPutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
	PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

type S3Config struct {
	Region   string
	Bucket   string
	Endpoint string // e.g. http://localstack:4566
	TTL      time.Duration
}

// S3Storage presigns uploads and reads against one bucket
type S3Storage struct {
	presigner Presigner
	bucket    string
	region    string
	ttl       time.Duration
}

// NewS3 loads AWS credentials from the environment. A custom endpoint
// switches the client to path-style addressing.
func NewS3(ctx context.Context, cfg S3Config) (*S3Storage, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return NewS3WithPresigner(s3.NewPresignClient(client), cfg), nil
}

func NewS3WithPresigner(p Presigner, cfg S3Config) *S3Storage {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultPresignTTL
	}
	return &S3Storage{presigner: p, bucket: cfg.Bucket, region: cfg.Region, ttl: cfg.TTL}
}

func (s *S3Storage) PresignPut(ctx context.Context, objectName, contentType string) (string, error) {
	req, err := s.presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(objectName),
		ContentType: aws.String(contentType),
	}, func(o *s3.PresignOptions) { o.Expires = s.ttl })
	if err != nil {
		return "", fmt.Errorf("failed to presign upload: %w", err)
	}
	return req.URL, nil
}

func (s *S3Storage) PresignGet(ctx context.Context, objectName string) (string, error) {
	req, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectName),
	}, func(o *s3.PresignOptions) { o.Expires = s.ttl })
	if err != nil {
		return "", fmt.Errorf("failed to presign download: %w", err)
	}
	return req.URL, nil
}

// ImageURL gives the analyzer a time-limited link to a private document
func (s *S3Storage) ImageURL(ctx context.Context, location string) (string, error) {
	return s.PresignGet(ctx, strings.TrimPrefix(location, "/"))
}

// ResolveURL is the public virtual-hosted URL of key
func ResolveURL(bucket, region, key string) (string, error) {
	if bucket == "" || region == "" || strings.TrimSpace(key) == "" {
		return "", fmt.Errorf("bucket, region and key are required")
	}
	escaped := (&url.URL{Path: strings.TrimPrefix(key, "/")}).EscapedPath()
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", bucket, region, escaped), nil
}

// PublicStorage serves objects without signing: from a base URL for local
// development, or from a public-read bucket by virtual-hosted URL.
type PublicStorage struct {
	baseURL string
	bucket  string
	region  string
}

func NewPublicStorage(baseURL string) *PublicStorage {
	return &PublicStorage{baseURL: strings.TrimRight(baseURL, "/")}
}

// NewBucketStorage addresses objects of a public-read bucket through ResolveURL
func NewBucketStorage(bucket, region string) *PublicStorage {
	return &PublicStorage{bucket: bucket, region: region}
}

func (s *PublicStorage) objectURL(objectName string) (string, error) {
	if s.baseURL == "" {
		return ResolveURL(s.bucket, s.region, objectName)
	}
	return s.baseURL + "/" + objectName, nil
}

func (s *PublicStorage) PresignPut(ctx context.Context, objectName, contentType string) (string, error) {
	return s.objectURL(objectName)
}

func (s *PublicStorage) PresignGet(ctx context.Context, objectName string) (string, error) {
	return s.objectURL(objectName)
}

func (s *PublicStorage) ImageURL(ctx context.Context, location string) (string, error) {
	return s.objectURL(strings.TrimPrefix(location, "/"))
}

// UploadKey builds a unique object key for an actor's document image
func UploadKey(actorID, fileName string) string {
	base := path.Base(strings.ReplaceAll(fileName, "\\", "/"))
	ext := strings.ToLower(path.Ext(base))
	if ext == "." {
		ext = ""
	}
	name := strings.Trim(sanitize(strings.TrimSuffix(base, path.Ext(base))), "_")
	if name == "" {
		name = "document"
	}
	return fmt.Sprintf("%s%s-%s%s", UploadPrefix(actorID), name, ulid.Make().String(), ext)
}

// UploadPrefix is the folder every upload signed for actorID lands in
func UploadPrefix(actorID string) string {
	return "kyc/" + sanitize(actorID) + "/"
}

// OwnsKey reports whether key names an object inside actorID's upload folder
func OwnsKey(actorID, key string) bool {
	if sanitize(actorID) == "" {
		return false
	}
	key = strings.TrimPrefix(key, "/")
	rest, ok := strings.CutPrefix(key, UploadPrefix(actorID))
	if !ok || rest == "" {
		return false
	}
	for _, segment := range strings.Split(rest, "/") {
		if segment == "" || segment == "." || segment == ".." {
			return false
		}
	}
	return true
}

func sanitize(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ' || r == '.':
			b.WriteRune('_')
		}
	}
	return b.String()
}
