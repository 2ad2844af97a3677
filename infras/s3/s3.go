// Package s3 stores organization logos and proposal PDFs in an S3 compatible
// bucket and hands back their public URLs.
package s3

//go:generate go run go.uber.org/mock/mockgen -source=./s3.go -destination=./mocks/s3_mock.go -package=mocks

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog/log"

	"crm/config"
	"crm/infras/otel"
	"crm/shared/constant"
)

type S3 interface {
	// UploadFileBytes stores fileData under directory/fileName and returns
	// the public URL of the object.
	UploadFileBytes(ctx context.Context, bucketName, directory, fileName, contentType string, fileData []byte) (url string, err error)
	DeleteFile(ctx context.Context, bucketName, directory, objectName string) error
	// GetObjectNameFromURL reverses UploadFileBytes. URLs outside the bucket
	// give an empty name.
	GetObjectNameFromURL(bucketName, url string) (objectName string)
}

type s3Impl struct {
	client *s3.Client
	cfg    *config.Config
	otel   otel.Otel
}

func (svc *s3Impl) bucket(name string) string {
	if name == "" {
		return svc.cfg.External.S3.BucketName
	}

	return name
}

func (svc *s3Impl) scope(ctx context.Context, op, bucket, key string) (context.Context, otel.Scope) {
	ctx, scope := svc.otel.NewScope(ctx, constant.OtelS3ScopeName, constant.OtelS3ScopeName+"."+op)
	scope.SetAttributes(map[string]any{"bucket": bucket, "key": key})

	return ctx, scope
}

func (svc *s3Impl) UploadFileBytes(ctx context.Context, bucketName, directory, fileName, contentType string, fileData []byte) (url string, err error) {
	bucket, key := svc.bucket(bucketName), path.Join(directory, fileName)

	ctx, scope := svc.scope(ctx, "UploadFileBytes", bucket, key)
	defer scope.End()
	defer scope.TraceIfError(&err)

	_, err = svc.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(fileData),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(fileData))),
	})
	if err != nil {
		return "", fmt.Errorf("put object %s: %w", key, err)
	}

	return svc.cfg.External.S3.PublicDomain + "/" + key, nil
}

func (svc *s3Impl) DeleteFile(ctx context.Context, bucketName, directory, objectName string) (err error) {
	bucket, key := svc.bucket(bucketName), path.Join(directory, objectName)

	ctx, scope := svc.scope(ctx, "DeleteFile", bucket, key)
	defer scope.End()
	defer scope.TraceIfError(&err)

	if _, err = svc.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}); err != nil {
		log.Error().Err(err).Str("key", key).Msg("failed to delete object")

		return fmt.Errorf("delete object %s: %w", key, err)
	}

	return nil
}

func (svc *s3Impl) GetObjectNameFromURL(bucketName, url string) string {
	bucket := svc.bucket(bucketName)
	s3cfg := svc.cfg.External.S3

	// bucket scoped prefixes are longer, so they are tried first
	for _, prefix := range []string{
		s3cfg.APIEndpoint + "/" + bucket + "/",
		s3cfg.PublicDomain + "/" + bucket + "/",
		s3cfg.PublicDomain + "/",
	} {
		if strings.HasPrefix(prefix, "/") {
			continue
		}

		if name, ok := strings.CutPrefix(url, prefix); ok {
			return name
		}
	}

	return ""
}

// New builds a client from static credentials. An APIEndpoint switches to
// path style addressing for MinIO or R2.
func New(cfg *config.Config, otel otel.Otel) S3 {
	s3cfg := cfg.External.S3

	awsCfg, err := awsConfig.LoadDefaultConfig(context.Background(),
		awsConfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(s3cfg.AccessKeyID, s3cfg.SecretAccessKey, "")),
		awsConfig.WithRegion(s3cfg.Region),
	)
	if err != nil {
		log.Error().Err(err).Msg("Error loading AWS configuration")
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if s3cfg.APIEndpoint != "" {
			o.BaseEndpoint = aws.String(s3cfg.APIEndpoint)
			o.UsePathStyle = true
		}
	})

	return &s3Impl{client: client, cfg: cfg, otel: otel}
}
