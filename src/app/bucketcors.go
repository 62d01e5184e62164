package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/sirupsen/logrus"
)

type BucketCORSAPI interface {
	PutBucketCors(ctx context.Context, params *s3.PutBucketCorsInput, optFns ...func(*s3.Options)) (*s3.PutBucketCorsOutput, error)
}

var _ BucketCORSAPI = (*s3.Client)(nil)

// DefaultCORSRegions are tried after the configured one when the bucket's
// region is not known.
var DefaultCORSRegions = []string{"us-east-1", "eu-west-2", "us-west-2", "eu-west-1"}

// UploadCORSRule lets browsers at origins PUT straight to presigned URLs.
func UploadCORSRule(origins []string) s3types.CORSRule {
	return s3types.CORSRule{
		AllowedMethods: []string{"GET", "PUT", "HEAD", "POST"},
		AllowedOrigins: origins,
		AllowedHeaders: []string{
			"Content-Type",
			"Content-Length",
			"x-amz-content-sha256",
			"x-amz-date",
			"x-amz-security-token",
			"x-amz-checksum-crc32",
			"x-amz-sdk-checksum-algorithm",
		},
		ExposeHeaders: []string{"ETag", "x-amz-request-id"},
		MaxAgeSeconds: aws.Int32(3000),
	}
}

// ApplyBucketCORS puts rule on bucket, walking regions until one accepts it.
// It returns the region that worked.
func ApplyBucketCORS(ctx context.Context, clientFor func(region string) BucketCORSAPI, bucket string, regions []string, rule s3types.CORSRule, log *logrus.Entry) (string, error) {
	var lastErr error
	seen := map[string]bool{}
	for _, region := range regions {
		if region == "" || seen[region] {
			continue
		}
		seen[region] = true

		_, err := clientFor(region).PutBucketCors(ctx, &s3.PutBucketCorsInput{
			Bucket:            aws.String(bucket),
			CORSConfiguration: &s3types.CORSConfiguration{CORSRules: []s3types.CORSRule{rule}},
		})
		if err == nil {
			return region, nil
		}
		lastErr = err

		var apiErr smithy.APIError
		if errors.As(err, &apiErr) && apiErr.ErrorCode() == "PermanentRedirect" {
			log.WithField("region", region).Info("bucket lives elsewhere, trying next region")
			continue
		}
		log.WithError(err).WithField("region", region).Warn("can not update bucket cors")
	}
	if lastErr == nil {
		return "", errors.New("no region to try")
	}
	return "", fmt.Errorf("can not update cors of %s in any region: %w", bucket, lastErr)
}
