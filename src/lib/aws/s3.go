package aws

import (
	"context"
	"errors"
	"io"
	"log"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

var ErrBucketNotConfigured = errors.New("S3_ASSETS_BUCKET is not set")

var s3Client *s3.Client

func GetS3Client() *s3.Client {
	if s3Client != nil {
		return s3Client
	}
	cfg, err := config.LoadDefaultConfig(context.TODO())
	if err != nil {
		log.Printf("Could not load default config: %s\n", err.Error())
		return nil
	}
	s3Client = s3.NewFromConfig(cfg)
	return s3Client
}

func NewS3Client(c *s3.Client) {
	s3Client = c
}

func assetsBucket() (string, error) {
	bucket := os.Getenv("S3_ASSETS_BUCKET")
	if bucket == "" {
		return "", ErrBucketNotConfigured
	}
	return bucket, nil
}

func S3UploadAsset(ctx context.Context, name string, body io.Reader, contentType string) error {
	bucket, err := assetsBucket()
	if err != nil {
		return err
	}
	client := GetS3Client()
	if client == nil {
		return errors.New("s3 client is not available")
	}
	_, err = client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(name),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		log.Printf("Could not put object to S3 bucket: %s\n", err.Error())
		return err
	}
	log.Printf("Added object '%s' to bucket '%s'", name, bucket)
	return nil
}

func S3DeleteAsset(ctx context.Context, name string) error {
	bucket, err := assetsBucket()
	if err != nil {
		return err
	}
	client := GetS3Client()
	if client == nil {
		return errors.New("s3 client is not available")
	}
	_, err = client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(name),
	})
	if err != nil {
		log.Printf("Could not delete object %s: %s\n", name, err.Error())
	}
	return err
}

// S3PresignAsset returns a time-limited GET URL for an object.
func S3PresignAsset(ctx context.Context, name string, ttl time.Duration) (string, error) {
	bucket, err := assetsBucket()
	if err != nil {
		return "", err
	}
	client := GetS3Client()
	if client == nil {
		return "", errors.New("s3 client is not available")
	}
	pre := s3.NewPresignClient(client)
	r, err := pre.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(name),
	}, func(po *s3.PresignOptions) {
		po.Expires = ttl
	})
	if err != nil {
		log.Printf("Could not generate presigned URL for object [%s]: %s\n", name, err.Error())
		return "", err
	}
	return r.URL, nil
}
