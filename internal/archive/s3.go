package archive

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"classtrack-go/internal/track"
)

// S3Archive stores reports in an S3 bucket under an optional key prefix.
// Credentials come from CLASSTRACK_S3_ACCESS_KEY / CLASSTRACK_S3_SECRET_KEY
// when set, otherwise from the default AWS chain (environment, shared
// config, instance role).
type S3Archive struct {
	uploader *manager.Uploader
	bucket   string
	prefix   string
}

// NewS3Archive creates an archive backed by the given bucket.
func NewS3Archive(bucket, prefix, region string) (*S3Archive, error) {
	opts := []func(*awsconfig.LoadOptions) error{}
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	accessKey := os.Getenv("CLASSTRACK_S3_ACCESS_KEY")
	secretKey := os.Getenv("CLASSTRACK_S3_SECRET_KEY")
	if accessKey != "" && secretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKey, secretKey, "")))
	}

	cfg, err := awsconfig.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg)
	return &S3Archive{
		uploader: manager.NewUploader(client),
		bucket:   bucket,
		prefix:   prefix,
	}, nil
}

// StoreReport uploads the report. The uploader handles multipart splitting
// itself, so the declared size is not forwarded.
func (a *S3Archive) StoreReport(name string, r io.Reader, _ int64) error {
	key := path.Join(a.prefix, name)
	_, err := a.uploader.Upload(context.Background(), &s3.PutObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(key),
		Body:   r,
	})
	if err != nil {
		return fmt.Errorf("uploading report to s3://%s/%s: %w", a.bucket, key, err)
	}
	return nil
}

var _ track.Archive = (*S3Archive)(nil)
