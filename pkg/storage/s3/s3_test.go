package s3

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"

	"github.com/acemetillidie0001/obd-premium-apps-sub006/pkg/storage"
)

type fakeClient struct {
	err      error
	block    bool
	gotKey   string
	gotType  string
	gotBody  []byte
	gotCache string
}

func (f *fakeClient) PutObject(ctx context.Context, in *awss3.PutObjectInput, _ ...func(*awss3.Options)) (*awss3.PutObjectOutput, error) {
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if f.err != nil {
		return nil, f.err
	}
	f.gotKey = *in.Key
	f.gotType = *in.ContentType
	if in.CacheControl != nil {
		f.gotCache = *in.CacheControl
	}
	f.gotBody, _ = io.ReadAll(in.Body)
	return &awss3.PutObjectOutput{}, nil
}

func TestBackend_Write(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantURL string
		wantKey string
	}{
		{
			name:    "virtual hosted url",
			cfg:     Config{Bucket: "imgs", Region: "us-east-1"},
			wantURL: "https://imgs.s3.us-east-1.amazonaws.com/generated/x/promotion/r1.png",
			wantKey: "generated/x/promotion/r1.png",
		},
		{
			name:    "public base url and prefix",
			cfg:     Config{Bucket: "imgs", Region: "eu-west-1", PublicBaseURL: "https://cdn.example.com/", Prefix: "/imagery/"},
			wantURL: "https://cdn.example.com/imagery/generated/x/promotion/r1.png",
			wantKey: "imagery/generated/x/promotion/r1.png",
		},
		{
			name:    "compatible endpoint",
			cfg:     Config{Bucket: "imgs", Region: "us-east-1", Endpoint: "http://minio.internal:9000/"},
			wantURL: "http://minio.internal:9000/imgs/generated/x/promotion/r1.png",
			wantKey: "generated/x/promotion/r1.png",
		},
		{
			name:    "public base url wins over endpoint",
			cfg:     Config{Bucket: "imgs", Region: "auto", Endpoint: "https://acct.r2.cloudflarestorage.com", PublicBaseURL: "https://img.example.com"},
			wantURL: "https://img.example.com/generated/x/promotion/r1.png",
			wantKey: "generated/x/promotion/r1.png",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeClient{}
			tt.cfg.CacheControl = "public, max-age=31536000"
			b := newWithClient(tt.cfg, fake)

			out := b.Write(context.Background(), &storage.WriteInput{
				Key:         storage.Key("r1", "x", "promotion", "image/png"),
				Data:        []byte("png-bytes"),
				ContentType: "image/png",
			})
			if !out.OK {
				t.Fatalf("Write failed: %+v", out)
			}
			if out.URL != tt.wantURL {
				t.Errorf("URL = %q, want %q", out.URL, tt.wantURL)
			}
			if fake.gotKey != tt.wantKey || fake.gotType != "image/png" || string(fake.gotBody) != "png-bytes" {
				t.Errorf("put key=%q type=%q body=%q", fake.gotKey, fake.gotType, fake.gotBody)
			}
			if fake.gotCache != "public, max-age=31536000" {
				t.Errorf("CacheControl = %q", fake.gotCache)
			}
		})
	}
}

func TestBackend_WriteErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{"access denied", &smithy.GenericAPIError{Code: "AccessDenied", Message: "secret detail"}, storage.CodeStorageAuthError},
		{"bad key id", &smithy.GenericAPIError{Code: "InvalidAccessKeyId"}, storage.CodeStorageAuthError},
		{"signature", &smithy.GenericAPIError{Code: "SignatureDoesNotMatch"}, storage.CodeStorageAuthError},
		{"no such bucket", &smithy.GenericAPIError{Code: "NoSuchBucket"}, storage.CodeStorageWriteError},
		{"unknown", errors.New("dial tcp: connection refused"), storage.CodeStorageError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newWithClient(Config{Bucket: "b", Region: "r"}, &fakeClient{err: tt.err})
			out := b.Write(context.Background(), &storage.WriteInput{Key: "k", ContentType: "image/png"})
			if out.OK || out.ErrorCode != tt.wantCode {
				t.Errorf("got %+v, want code %s", out, tt.wantCode)
			}
			if out.ErrorMessageSafe == "" || containsAny(out.ErrorMessageSafe, "secret detail", "dial tcp") {
				t.Errorf("unsafe message %q", out.ErrorMessageSafe)
			}
		})
	}
}

func TestBackend_WriteTimeout(t *testing.T) {
	b := newWithClient(Config{Bucket: "b", Region: "r", Timeout: 20 * time.Millisecond}, &fakeClient{block: true})
	out := b.Write(context.Background(), &storage.WriteInput{Key: "k", ContentType: "image/png"})
	if out.OK || out.ErrorCode != storage.CodeStorageError || out.ErrorMessageSafe != "s3: upload timed out" {
		t.Errorf("unexpected output %+v", out)
	}
}

func TestNew_Validation(t *testing.T) {
	if _, err := New(context.Background(), Config{Region: "r"}); err == nil {
		t.Error("expected error without bucket")
	}
	if _, err := New(context.Background(), Config{Bucket: "b"}); err == nil {
		t.Error("expected error without region")
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
