package reports

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Config holds S3/MinIO connection settings for the report archive.
type S3Config struct {
	// Endpoint for MinIO (e.g., "minio.internal:9000"). Empty for AWS S3.
	Endpoint string

	Bucket string
	Region string

	AccessKeyID     string
	SecretAccessKey string

	// UseSSL enables HTTPS for a custom endpoint.
	UseSSL bool

	// PathPrefix is prepended to all object keys.
	PathPrefix string
}

// S3Archive stores reports and analyses as objects in S3 or MinIO.
type S3Archive struct {
	client     *s3.Client
	bucket     string
	pathPrefix string
	now        func() time.Time
}

// NewS3Archive builds the client; a custom endpoint switches to
// path-style addressing for MinIO compatibility.
func NewS3Archive(cfg *S3Config) (*S3Archive, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("bucket name is required")
	}

	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	var opts []func(*config.LoadOptions) error
	opts = append(opts, config.WithRegion(region))

	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	var s3Opts []func(*s3.Options)
	if cfg.Endpoint != "" {
		scheme := "http"
		if cfg.UseSSL {
			scheme = "https"
		}
		endpoint := fmt.Sprintf("%s://%s", scheme, cfg.Endpoint)
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		})
	}

	return &S3Archive{
		client:     s3.NewFromConfig(awsCfg, s3Opts...),
		bucket:     cfg.Bucket,
		pathPrefix: cfg.PathPrefix,
		now:        func() time.Time { return time.Now().UTC() },
	}, nil
}

func (a *S3Archive) key(parts ...string) string {
	if a.pathPrefix != "" {
		parts = append([]string{a.pathPrefix}, parts...)
	}
	return strings.Join(parts, "/")
}

func (a *S3Archive) put(ctx context.Context, key, content string) (string, error) {
	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        strings.NewReader(content),
		ContentType: aws.String("text/plain; charset=utf-8"),
	})
	if err != nil {
		return "", fmt.Errorf("put object: %w", err)
	}
	return fmt.Sprintf("s3://%s/%s", a.bucket, key), nil
}

func (a *S3Archive) SaveReport(ctx context.Context, content string) (string, error) {
	return a.put(ctx, a.key(reportFilename(a.now())), content)
}

func (a *S3Archive) SaveAnalysis(ctx context.Context, content string) (string, error) {
	return a.put(ctx, a.key("analysis", analysisFilename(a.now())), content)
}
