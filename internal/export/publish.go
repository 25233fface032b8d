package export

import (
	"bytes"
	"context"
	"fmt"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ObjectPutter is the part of the S3 client the publisher uses.
type ObjectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// PublisherConfig selects the bucket. Region and Endpoint fall back to the
// standard AWS configuration chain when empty; a custom Endpoint switches to
// path-style addressing for S3-compatible stores.
type PublisherConfig struct {
	Bucket   string
	Prefix   string
	Region   string
	Endpoint string
}

// Publisher uploads finished files to S3.
type Publisher struct {
	client ObjectPutter
	bucket string
	prefix string
}

func NewPublisher(ctx context.Context, cfg PublisherConfig) (*Publisher, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("publish: bucket is not set (S3_BUCKET)")
	}
	var loadOpts []func(*config.LoadOptions) error
	if cfg.Region != "" {
		loadOpts = append(loadOpts, config.WithRegion(cfg.Region))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("publish: aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return NewPublisherWithClient(client, cfg.Bucket, cfg.Prefix), nil
}

func NewPublisherWithClient(client ObjectPutter, bucket, prefix string) *Publisher {
	return &Publisher{client: client, bucket: bucket, prefix: prefix}
}

// Publish uploads body under prefix/key and returns its s3:// URI.
func (p *Publisher) Publish(ctx context.Context, key string, body []byte, contentType string) (string, error) {
	full := key
	if p.prefix != "" {
		full = path.Join(p.prefix, key)
	}
	in := &s3.PutObjectInput{
		Bucket:        aws.String(p.bucket),
		Key:           aws.String(full),
		Body:          bytes.NewReader(body),
		ContentLength: aws.Int64(int64(len(body))),
	}
	if contentType != "" {
		in.ContentType = aws.String(contentType)
	}
	if _, err := p.client.PutObject(ctx, in); err != nil {
		return "", fmt.Errorf("publish %s: %w", full, err)
	}
	return fmt.Sprintf("s3://%s/%s", p.bucket, full), nil
}
