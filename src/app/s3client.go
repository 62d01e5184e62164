package app

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	cfg "gallery/src/configuration"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type ClientMinio interface {
	PresignHeader(ctx context.Context, method string, bucketName string, objectName string, expires time.Duration, reqParams url.Values, extraHeaders http.Header) (*url.URL, error)
}

type MinioS3Client struct {
	endpoint string
	region   string
	client   ClientMinio
}

const (
	// UploadExpiry is how long a presigned upload URL stays valid.
	UploadExpiry = 900 * time.Second
	// UploadContentType is the content type advertised for uploads.
	UploadContentType = "image/*"
)

// NewMinioS3Client creates a new MinioS3Client instance. Without static keys
// it picks up the execution role from AWS_* variables, then from IAM.
func NewMinioS3Client(props cfg.S3Properties) (*MinioS3Client, error) {
	var creds *credentials.Credentials
	if props.AccessKey != "" {
		creds = credentials.NewStaticV4(props.AccessKey, props.SecretKey, "")
	} else {
		creds = credentials.NewChainCredentials([]credentials.Provider{
			&credentials.EnvAWS{},
			&credentials.IAM{Client: &http.Client{Transport: http.DefaultTransport}},
		})
	}

	minioClient, err := minio.New(props.Endpoint, &minio.Options{
		Creds:  creds,
		Secure: props.UseSSL,
		Region: props.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio s3 client for %s: %w", props.Endpoint, err)
	}

	return NewMinioS3ClientWith(minioClient, props.Endpoint, props.Region), nil
}

func NewMinioS3ClientWith(client ClientMinio, endpoint, region string) *MinioS3Client {
	return &MinioS3Client{endpoint: endpoint, region: region, client: client}
}

// PresignUpload returns a signed PUT URL for key in bucket.
//
// A concrete content type is signed into the URL, so the uploader must send
// the same Content-Type. A wildcard family such as image/* cannot be
// expressed by SigV4 and is left unsigned.
func (s3 *MinioS3Client) PresignUpload(ctx context.Context, bucket, key, contentType string, expires time.Duration) (string, error) {
	headers := http.Header{}
	if contentType != "" && !strings.Contains(contentType, "*") {
		headers.Set("Content-Type", contentType)
	}
	presignedURL, err := s3.client.PresignHeader(ctx, http.MethodPut, bucket, key, expires, nil, headers)
	if err != nil {
		return "", fmt.Errorf("can not presign upload of %s/%s: %w", bucket, key, err)
	}
	return presignedURL.String(), nil
}
