package app

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type regionClient struct {
	region string
	calls  *[]string
	err    error
}

func (c regionClient) PutBucketCors(ctx context.Context, params *s3.PutBucketCorsInput, _ ...func(*s3.Options)) (*s3.PutBucketCorsOutput, error) {
	*c.calls = append(*c.calls, c.region+":"+aws.ToString(params.Bucket))
	return &s3.PutBucketCorsOutput{}, c.err
}

func TestApplyBucketCORSWalksRegions(t *testing.T) {
	logger, _ := test.NewNullLogger()
	var calls []string
	redirect := &smithy.GenericAPIError{Code: "PermanentRedirect", Message: "wrong region"}

	clientFor := func(region string) BucketCORSAPI {
		if region == "eu-west-2" {
			return regionClient{region: region, calls: &calls}
		}
		return regionClient{region: region, calls: &calls, err: redirect}
	}

	regions := append([]string{"us-east-1"}, DefaultCORSRegions...)
	region, err := ApplyBucketCORS(context.Background(), clientFor, "images", regions, UploadCORSRule([]string{"http://localhost:3000"}), logrus.NewEntry(logger))
	require.NoError(t, err)
	assert.Equal(t, "eu-west-2", region)
	assert.Equal(t, []string{"us-east-1:images", "eu-west-2:images"}, calls, "duplicates are skipped")
}

func TestApplyBucketCORSFailsEverywhere(t *testing.T) {
	logger, _ := test.NewNullLogger()
	var calls []string
	denied := errors.New("AccessDenied")
	clientFor := func(region string) BucketCORSAPI {
		return regionClient{region: region, calls: &calls, err: denied}
	}

	_, err := ApplyBucketCORS(context.Background(), clientFor, "images", []string{"us-east-1", "eu-west-1"}, UploadCORSRule(nil), logrus.NewEntry(logger))
	assert.ErrorIs(t, err, denied)
	assert.Len(t, calls, 2)

	_, err = ApplyBucketCORS(context.Background(), clientFor, "images", nil, UploadCORSRule(nil), logrus.NewEntry(logger))
	assert.Error(t, err)
}

func TestUploadCORSRule(t *testing.T) {
	rule := UploadCORSRule([]string{"https://gallery.example.com"})
	assert.Contains(t, rule.AllowedMethods, "PUT")
	assert.Contains(t, rule.AllowedHeaders, "Content-Type")
	assert.Equal(t, int32(3000), aws.ToInt32(rule.MaxAgeSeconds))
	assert.Equal(t, []string{"https://gallery.example.com"}, rule.AllowedOrigins)
}
