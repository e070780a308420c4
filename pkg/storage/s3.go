package storage

import (
	"context"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Client talks to one S3-compatible endpoint. It is safe for concurrent use.
type Client struct {
	client    *s3.Client
	presigner *s3.PresignClient
	cfg       Config
}

// New creates a Client for the given endpoint configuration.
// Extra optFns are applied after the defaults (useful for custom HTTP clients).
func New(cfg Config, optFns ...func(*s3.Options)) (*Client, error) {
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	opts := append([]func(*s3.Options){
		func(o *s3.Options) {
			o.Region = cfg.Region
			o.Credentials = credentials.NewStaticCredentialsProvider(
				cfg.AccessKey,
				cfg.SecretKey,
				"",
			)
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = !cfg.VirtualHost
		},
	}, optFns...)

	client := s3.New(s3.Options{}, opts...)

	return &Client{
		client:    client,
		presigner: s3.NewPresignClient(client),
		cfg:       cfg,
	}, nil
}

// Endpoint returns the normalized endpoint URL.
func (c *Client) Endpoint() string {
	return c.cfg.Endpoint
}

// PresignGet returns a time-limited URL for an HTTP GET of bucket/key.
// Presigning is computed locally; no request reaches the backend.
func (c *Client) PresignGet(ctx context.Context, bucket, key string, opts ...URLOption) (string, error) {
	if bucket == "" {
		return "", ErrEmptyBucket
	}
	if key == "" {
		return "", ErrEmptyKey
	}

	o := &urlOptions{expiry: c.cfg.PresignExpiry}
	for _, opt := range opts {
		opt(o)
	}

	input := &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}
	if o.downloadName != "" {
		input.ResponseContentDisposition = aws.String(ContentDisposition(o.downloadName))
	}

	result, err := c.presigner.PresignGetObject(ctx, input, func(po *s3.PresignOptions) {
		po.Expires = o.expiry
	})
	if err != nil {
		return "", wrapS3Error(err, ErrPresignFailed)
	}

	return result.URL, nil
}

// Ping lists buckets as a cheap reachability and credential check.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.client.ListBuckets(ctx, &s3.ListBucketsInput{MaxBuckets: aws.Int32(1)})
	if err != nil {
		return wrapS3Error(err, ErrProbeFailed)
	}
	return nil
}

var dispositionEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// ContentDisposition formats an attachment disposition for filename.
func ContentDisposition(filename string) string {
	return `attachment; filename="` + dispositionEscaper.Replace(filename) + `"`
}
