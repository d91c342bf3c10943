package load

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	apperrors "salesetl/internal/errors"
	"salesetl/pkg/contracts/domain"
)

// ObjectPutter is the part of the S3 client used by S3Publisher.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// NewS3Client builds an S3 client from the default AWS credential chain
func NewS3Client(ctx context.Context, region string) (*s3.Client, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to load AWS config", err)
	}
	return s3.NewFromConfig(awsCfg), nil
}

// S3Publisher uploads the CSV and JSON renderings of the processed sales
// to s3://bucket/prefix/<name>.
type S3Publisher struct {
	client   ObjectPutter
	bucket   string
	prefix   string
	csvName  string
	jsonName string
	logger   *slog.Logger
}

// NewS3Publisher creates a publisher. An empty csvName or jsonName skips
// that object.
func NewS3Publisher(client ObjectPutter, bucket, prefix, csvName, jsonName string, logger *slog.Logger) *S3Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &S3Publisher{
		client:   client,
		bucket:   bucket,
		prefix:   prefix,
		csvName:  csvName,
		jsonName: jsonName,
		logger:   logger.With(slog.String("bucket", bucket)),
	}
}

func (p *S3Publisher) Name() string { return "s3" }

// Load renders and uploads each configured object
func (p *S3Publisher) Load(ctx context.Context, sales []domain.ProcessedSale) error {
	objects := []struct {
		name        string
		contentType string
		encode      func(io.Writer, []domain.ProcessedSale) error
	}{
		{p.csvName, "text/csv; charset=utf-8", EncodeCSV},
		{p.jsonName, "application/json", EncodeJSON},
	}

	for _, obj := range objects {
		if obj.name == "" {
			continue
		}

		var buf bytes.Buffer
		if err := obj.encode(&buf, sales); err != nil {
			return apperrors.NewLoadError("failed to render object", err).WithContext("object", obj.name)
		}

		key := p.Key(obj.name)
		_, err := p.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:        aws.String(p.bucket),
			Key:           aws.String(key),
			Body:          bytes.NewReader(buf.Bytes()),
			ContentLength: aws.Int64(int64(buf.Len())),
			ContentType:   aws.String(obj.contentType),
		})
		if err != nil {
			return apperrors.NewStorageError(fmt.Sprintf("failed to upload s3://%s/%s", p.bucket, key), err)
		}

		p.logger.InfoContext(ctx, "Published object",
			slog.String("key", key),
			slog.Int("bytes", buf.Len()))
	}
	return nil
}

// Key returns the object key for name under the configured prefix
func (p *S3Publisher) Key(name string) string {
	if p.prefix == "" {
		return name
	}
	return path.Join(p.prefix, name)
}
