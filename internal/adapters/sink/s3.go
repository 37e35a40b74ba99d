package sink

import (
	"bytes"
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/okian/courtside/internal/config"
	"github.com/okian/courtside/internal/domain/rating"
)

// ObjectPutter is the part of the S3 client the sink uses.
type ObjectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Sink uploads tables to an S3 compatible bucket.
type S3Sink struct {
	client ObjectPutter
	bucket string
	key    string
	format string
}

var _ Sink = (*S3Sink)(nil)

// NewS3Client builds a client from static settings. Empty credentials fall
// back to anonymous access.
func NewS3Client(cfg config.S3Config) *s3.Client {
	opts := s3.Options{
		Region:       cfg.Region,
		UsePathStyle: cfg.UsePathStyle,
	}
	if cfg.AccessKeyID != "" {
		opts.Credentials = aws.NewCredentialsCache(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		))
	} else {
		opts.Credentials = aws.AnonymousCredentials{}
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
	}
	return s3.New(opts)
}

// NewS3Sink returns a sink uploading format encoded tables to bucket under
// the key template.
func NewS3Sink(client ObjectPutter, bucket, key, format string) *S3Sink {
	return &S3Sink{client: client, bucket: bucket, key: key, format: format}
}

// Name implements Sink.
func (s *S3Sink) Name() string { return "s3" }

// Write implements Sink.
func (s *S3Sink) Write(ctx context.Context, table *rating.Table) error {
	var buf bytes.Buffer
	if err := Encode(&buf, s.format, table); err != nil {
		return err
	}
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(Expand(s.key, table)),
		Body:          bytes.NewReader(buf.Bytes()),
		ContentType:   aws.String(ContentType(s.format)),
		ContentLength: aws.Int64(int64(buf.Len())),
	})
	return err
}
