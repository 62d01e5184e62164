package minio_mock

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/stretchr/testify/mock"
)

// MockClient stands in for the minio client behind app.ClientMinio.
type MockClient struct {
	mock.Mock
}

func (m *MockClient) PresignHeader(ctx context.Context, method string, bucketName string, objectName string, expires time.Duration, reqParams url.Values, extraHeaders http.Header) (*url.URL, error) {
	args := m.Called(ctx, method, bucketName, objectName, expires, reqParams, extraHeaders)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*url.URL), args.Error(1)
}

// PresignedURL mimics the shape of a virtual-host style S3 presigned PUT URL.
func PresignedURL(bucketName, objectName string, expires time.Duration) *url.URL {
	query := url.Values{}
	query.Set("X-Amz-Algorithm", "AWS4-HMAC-SHA256")
	query.Set("X-Amz-Expires", strconv.FormatInt(int64(expires/time.Second), 10))
	return &url.URL{
		Scheme:   "https",
		Host:     bucketName + ".s3.amazonaws.com",
		Path:     "/" + objectName,
		RawQuery: query.Encode(),
	}
}
