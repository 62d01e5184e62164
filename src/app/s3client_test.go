package app

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"testing"

	minio_mock "gallery/src/app/mock"
	cfg "gallery/src/configuration"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestPresignUploadWithRealSigner(t *testing.T) {
	client, err := NewMinioS3Client(cfg.S3Properties{
		Region:    "eu-west-2",
		Endpoint:  "s3.amazonaws.com",
		AccessKey: "AKIDEXAMPLE",
		SecretKey: "wJalrXUtnFEMI/K7MDENG+bPxRfiCYEXAMPLEKEY",
		UseSSL:    true,
	})
	require.NoError(t, err)

	raw, err := client.PresignUpload(context.Background(), "gallery-images", "3f1c.jpg", UploadContentType, UploadExpiry)
	require.NoError(t, err)

	signed, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "https", signed.Scheme)
	assert.True(t, strings.HasSuffix(signed.Path, "/3f1c.jpg"), signed.Path)
	assert.Equal(t, "900", signed.Query().Get("X-Amz-Expires"))
	assert.NotEmpty(t, signed.Query().Get("X-Amz-Signature"))
	assert.NotContains(t, signed.Query().Get("X-Amz-SignedHeaders"), "content-type")
}

func TestPresignUploadSignsConcreteContentType(t *testing.T) {
	m := new(minio_mock.MockClient)
	client := NewMinioS3ClientWith(m, "s3.amazonaws.com", "us-east-1")

	m.On("PresignHeader", mock.Anything, http.MethodPut, "bucket", "k.png", UploadExpiry, url.Values(nil),
		mock.MatchedBy(func(h http.Header) bool { return h.Get("Content-Type") == "image/png" })).
		Return(minio_mock.PresignedURL("bucket", "k.png", UploadExpiry), nil).Once()

	raw, err := client.PresignUpload(context.Background(), "bucket", "k.png", "image/png", UploadExpiry)
	require.NoError(t, err)
	assert.Contains(t, raw, "bucket.s3.amazonaws.com/k.png")
	m.AssertExpectations(t)
}

func TestPresignUploadWrapsSignerError(t *testing.T) {
	m := new(minio_mock.MockClient)
	client := NewMinioS3ClientWith(m, "s3.amazonaws.com", "us-east-1")
	cause := errors.New("no credentials")

	m.On("PresignHeader", mock.Anything, http.MethodPut, "bucket", "k", UploadExpiry, url.Values(nil), mock.Anything).
		Return(nil, cause).Once()

	_, err := client.PresignUpload(context.Background(), "bucket", "k", UploadContentType, UploadExpiry)
	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
	m.AssertExpectations(t)
}
