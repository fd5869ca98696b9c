// Package s3 stores generated images in an S3 (or S3-compatible) bucket.
package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"

	"github.com/acemetillidie0001/obd-premium-apps-sub006/pkg/storage"
)

// DefaultTimeout bounds a single PutObject call.
const DefaultTimeout = 15 * time.Second

// Config configures the S3 backend.
type Config struct {
	Bucket string
	Region string

	// Prefix is prepended to every key (for example "imagery/").
	Prefix string

	// PublicBaseURL is the base of returned object URLs, e.g. a CDN. It
	// defaults to <Endpoint>/<Bucket> when Endpoint is set and to the
	// virtual-hosted AWS bucket URL otherwise.
	PublicBaseURL string

	// Endpoint targets an S3-compatible service; path-style addressing is
	// used when set.
	Endpoint string

	// Static credentials. When empty the default AWS credential chain is used.
	AccessKeyID     string
	SecretAccessKey string

	CacheControl string
	Timeout      time.Duration
}

// putObjectAPI is the subset of the S3 client the backend needs.
type putObjectAPI interface {
	PutObject(ctx context.Context, params *awss3.PutObjectInput, optFns ...func(*awss3.Options)) (*awss3.PutObjectOutput, error)
}

// Backend writes objects with PutObject.
type Backend struct {
	cfg    Config
	client putObjectAPI
	logger *slog.Logger
}

// New creates an S3 backend using the AWS SDK default configuration chain.
func New(ctx context.Context, cfg Config) (*Backend, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("s3 storage: bucket is required")
	}
	if cfg.Region == "" {
		return nil, errors.New("s3 storage: region is required")
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, &storage.StorageError{Backend: storage.BackendS3, Operation: "load config", Cause: err}
	}

	client := awss3.NewFromConfig(awsCfg, func(o *awss3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return newWithClient(cfg, client), nil
}

func newWithClient(cfg Config, client putObjectAPI) *Backend {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	switch {
	case cfg.PublicBaseURL != "":
	case cfg.Endpoint != "":
		// Path-style, matching how the client addresses the endpoint.
		cfg.PublicBaseURL = strings.TrimRight(cfg.Endpoint, "/") + "/" + cfg.Bucket
	default:
		cfg.PublicBaseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
	}
	cfg.PublicBaseURL = strings.TrimRight(cfg.PublicBaseURL, "/")
	if cfg.Prefix != "" {
		cfg.Prefix = strings.Trim(cfg.Prefix, "/") + "/"
	}

	return &Backend{
		cfg:    cfg,
		client: client,
		logger: slog.Default().With("component", "storage.s3", "bucket", cfg.Bucket),
	}
}

// Name returns storage.BackendS3.
func (b *Backend) Name() string { return storage.BackendS3 }

// Write uploads the bytes and returns the public object URL.
func (b *Backend) Write(ctx context.Context, in *storage.WriteInput) *storage.WriteOutput {
	ctx, cancel := context.WithTimeout(ctx, b.cfg.Timeout)
	defer cancel()

	key := b.cfg.Prefix + in.Key
	input := &awss3.PutObjectInput{
		Bucket:      aws.String(b.cfg.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(in.Data),
		ContentType: aws.String(in.ContentType),
	}
	if b.cfg.CacheControl != "" {
		input.CacheControl = aws.String(b.cfg.CacheControl)
	}

	if _, err := b.client.PutObject(ctx, input); err != nil {
		code, msg := classify(err)
		b.logger.Warn("put object failed", "key", key, "code", code, "error", err)
		return storage.Failure(storage.BackendS3, code, msg)
	}

	b.logger.Debug("image stored", "key", key, "bytes", len(in.Data))
	return storage.Success(b.cfg.PublicBaseURL + "/" + key)
}

// classify maps SDK errors to output codes using only the API error code.
func classify(err error) (string, string) {
	if errors.Is(err, context.DeadlineExceeded) {
		return storage.CodeStorageError, "upload timed out"
	}
	if errors.Is(err, context.Canceled) {
		return storage.CodeStorageError, "upload cancelled"
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "AccessDenied", "InvalidAccessKeyId", "SignatureDoesNotMatch", "ExpiredToken", "InvalidToken":
			return storage.CodeStorageAuthError, "access denied (" + apiErr.ErrorCode() + ")"
		default:
			return storage.CodeStorageWriteError, "put object failed (" + apiErr.ErrorCode() + ")"
		}
	}
	return storage.CodeStorageError, "upload failed"
}

// Close is a no-op; the SDK client holds no resources that need releasing.
func (b *Backend) Close() error { return nil }
