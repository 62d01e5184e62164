package app

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"gallery/src/repository"
	repository_mock "gallery/src/repository/mock"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockPresigner struct{ mock.Mock }

func (m *mockPresigner) PresignUpload(ctx context.Context, bucket, key, contentType string, expires time.Duration) (string, error) {
	args := m.Called(bucket, key, contentType, expires)
	return args.String(0), args.Error(1)
}

func newTestService(presigner Presigner, store repository.GalleryStore, bucket, cdn string) *ImageService {
	logger, _ := test.NewNullLogger()
	svc := NewImageService(presigner, store, bucket, cdn, logrus.NewEntry(logger))
	svc.newKey = func() string { return "key-1" }
	return svc
}

func TestValidateImageName(t *testing.T) {
	svc := newTestService(nil, nil, "b", "cdn")
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr string
	}{
		{name: "plain", input: "Sunset", want: "Sunset"},
		{name: "trimmed", input: "  Sunset  ", want: "Sunset"},
		{name: "empty", input: "", wantErr: "Image name is required"},
		{name: "blank", input: "   ", wantErr: "Image name is required"},
		{name: "exactly 40", input: strings.Repeat("a", 40), want: strings.Repeat("a", 40)},
		{name: "41", input: strings.Repeat("a", 41), wantErr: "Image name must be 40 characters or less"},
		{name: "40 runes", input: strings.Repeat("é", 40), want: strings.Repeat("é", 40)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.ValidateImageName(tt.input)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Equal(t, KindValidation, KindOf(err))
				assert.Equal(t, tt.wantErr, err.Error())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSubmit(t *testing.T) {
	presigner := new(mockPresigner)
	store := new(repository_mock.MockStore)
	svc := newTestService(presigner, store, "gallery-images", "d111.cloudfront.net")

	presigner.On("PresignUpload", "gallery-images", "key-1", "image/*", 900*time.Second).
		Return("https://gallery-images.s3.amazonaws.com/key-1?X-Amz-Expires=900", nil).Once()
	store.On("InsertImage", mock.Anything, "u1", "key-1", "Sunset").
		Return(repository.Image{ID: 7, Username: "u1", UUIDFilename: "key-1", ImageName: "Sunset"}, nil).Once()

	sub, err := svc.Submit(context.Background(), "u1", " Sunset ")
	require.NoError(t, err)
	assert.Equal(t, Submission{
		ImageID:       7,
		UUIDFilename:  "key-1",
		PresignedURL:  "https://gallery-images.s3.amazonaws.com/key-1?X-Amz-Expires=900",
		CloudfrontURL: "https://d111.cloudfront.net/key-1",
	}, sub)
	presigner.AssertExpectations(t)
	store.AssertExpectations(t)
}

func TestSubmitFailures(t *testing.T) {
	t.Run("too long name inserts nothing", func(t *testing.T) {
		presigner := new(mockPresigner)
		store := new(repository_mock.MockStore)
		_, err := newTestService(presigner, store, "b", "cdn").Submit(context.Background(), "u1", strings.Repeat("x", 41))
		assert.Equal(t, KindValidation, KindOf(err))
		presigner.AssertNotCalled(t, "PresignUpload", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		store.AssertNotCalled(t, "InsertImage", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("missing bucket", func(t *testing.T) {
		_, err := newTestService(nil, nil, "", "cdn").Submit(context.Background(), "u1", "Sunset")
		assert.Equal(t, KindConfiguration, KindOf(err))
		assert.Equal(t, "Server configuration error", err.(*Error).Message)
	})

	t.Run("missing cdn domain", func(t *testing.T) {
		_, err := newTestService(nil, nil, "b", "").Submit(context.Background(), "u1", "Sunset")
		assert.Equal(t, KindConfiguration, KindOf(err))
	})

	t.Run("presign failure skips insert", func(t *testing.T) {
		presigner := new(mockPresigner)
		store := new(repository_mock.MockStore)
		presigner.On("PresignUpload", "b", "key-1", "image/*", UploadExpiry).Return("", errors.New("no creds"))

		_, err := newTestService(presigner, store, "b", "cdn").Submit(context.Background(), "u1", "Sunset")
		assert.Equal(t, KindUpstream, KindOf(err))
		store.AssertNotCalled(t, "InsertImage", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("insert failure", func(t *testing.T) {
		presigner := new(mockPresigner)
		store := new(repository_mock.MockStore)
		cause := errors.New("connection refused")
		presigner.On("PresignUpload", "b", "key-1", "image/*", UploadExpiry).Return("https://signed", nil)
		store.On("InsertImage", mock.Anything, "u1", "key-1", "Sunset").Return(repository.Image{}, cause)

		_, err := newTestService(presigner, store, "b", "cdn").Submit(context.Background(), "u1", "Sunset")
		assert.Equal(t, KindUpstream, KindOf(err))
		assert.ErrorIs(t, err, cause)
	})
}

func TestSubmitKeysAreUnique(t *testing.T) {
	presigner := new(mockPresigner)
	store := new(repository_mock.MockStore)
	logger, _ := test.NewNullLogger()
	svc := NewImageService(presigner, store, "b", "cdn", logrus.NewEntry(logger))

	presigner.On("PresignUpload", "b", mock.Anything, "image/*", UploadExpiry).Return("https://signed", nil)
	store.On("InsertImage", mock.Anything, "u1", mock.Anything, "Sunset").Return(repository.Image{ID: 1}, nil)

	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		sub, err := svc.Submit(context.Background(), "u1", "Sunset")
		require.NoError(t, err)
		assert.False(t, seen[sub.UUIDFilename], "duplicate key %s", sub.UUIDFilename)
		seen[sub.UUIDFilename] = true
		assert.Equal(t, "https://cdn/"+sub.UUIDFilename, sub.CloudfrontURL)
	}
}

func TestGallery(t *testing.T) {
	store := new(repository_mock.MockStore)
	svc := newTestService(nil, store, "b", "https://cdn.example.com/")
	store.On("RecentImages", mock.Anything, 2).Return([]repository.GalleryEntry{
		{ID: 2, Username: "u1", UUIDFilename: "k2", ImageName: "b"},
		{ID: 1, Username: "u2", UUIDFilename: "k1", ImageName: "a"},
	}, nil)

	entries, err := svc.Gallery(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "https://cdn.example.com/k2", entries[0].CloudfrontURL)
	assert.Equal(t, "https://cdn.example.com/k1", entries[1].CloudfrontURL)

	for _, limit := range []int{0, -1, 1001} {
		_, err := svc.Gallery(context.Background(), limit)
		require.Error(t, err)
		assert.Equal(t, "Limit must be between 1 and 1000", err.Error())
	}

	store.On("RecentImages", mock.Anything, 5).Return(nil, errors.New("timeout"))
	_, err = svc.Gallery(context.Background(), 5)
	assert.Equal(t, KindUpstream, KindOf(err))

	_, err = newTestService(nil, store, "b", "").Gallery(context.Background(), 5)
	assert.Equal(t, KindConfiguration, KindOf(err))
}

func TestCDNURL(t *testing.T) {
	assert.Equal(t, "https://d111.cloudfront.net/k", CDNURL("d111.cloudfront.net", "k"))
	assert.Equal(t, "https://d111.cloudfront.net/k", CDNURL("d111.cloudfront.net/", "k"))
	assert.Equal(t, "http://localhost:9000/images/k", CDNURL("http://localhost:9000/images", "k"))
}
