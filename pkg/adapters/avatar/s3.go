// Package avatar issues presigned upload forms for profile images on an
// S3-compatible object store (AWS S3, MinIO, R2).
package avatar

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/wadjakorntonsri/go-link-in-bio/pkg/core/domain"
	"github.com/wadjakorntonsri/go-link-in-bio/pkg/ports"
)

const defaultMaxBytes = 5 << 20

type Options struct {
	Bucket    string
	Region    string
	Endpoint  string // empty for AWS
	AccessKey string
	SecretKey string
	URLTTL    time.Duration
	MaxBytes  int64
}

type presigner interface {
	PresignPostObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignPostOptions)) (*s3.PresignedPostRequest, error)
}

type S3Store struct {
	presign  presigner
	bucket   string
	ttl      time.Duration
	maxBytes int64
	now      func() time.Time
}

func NewS3Store(ctx context.Context, opts Options) (*S3Store, error) {
	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(opts.Region)}
	if opts.AccessKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, ""),
		))
	}
	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})

	ttl := opts.URLTTL
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	maxBytes := opts.MaxBytes
	if maxBytes <= 0 {
		maxBytes = defaultMaxBytes
	}
	return &S3Store{
		presign:  s3.NewPresignClient(client),
		bucket:   opts.Bucket,
		ttl:      ttl,
		maxBytes: maxBytes,
		now:      time.Now,
	}, nil
}

// PresignUpload returns a POST policy form for key. The policy pins the
// object key, requires Content-Type to equal contentType and bounds the
// upload size, so the store itself rejects anything else.
func (s *S3Store) PresignUpload(ctx context.Context, key, contentType string) (*domain.AvatarUpload, error) {
	expiresAt := s.now().Add(s.ttl)
	req, err := s.presign.PresignPostObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, func(o *s3.PresignPostOptions) {
		o.Expires = s.ttl
		o.Conditions = append(o.Conditions,
			[]interface{}{"eq", "$Content-Type", contentType},
			[]interface{}{"content-length-range", 1, s.maxBytes},
		)
	})
	if err != nil {
		return nil, err
	}

	fields := make(map[string]string, len(req.Values)+1)
	hasType := false
	for k, v := range req.Values {
		fields[k] = v
		if strings.EqualFold(k, "Content-Type") {
			hasType = true
		}
	}
	if !hasType {
		fields["Content-Type"] = contentType
	}
	return &domain.AvatarUpload{
		Key:       key,
		Method:    http.MethodPost,
		URL:       req.URL,
		Fields:    fields,
		ExpiresAt: expiresAt,
	}, nil
}

var _ ports.AvatarStore = (*S3Store)(nil)
