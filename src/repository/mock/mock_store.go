package repository_mock

import (
	"context"

	"gallery/src/repository"

	"github.com/stretchr/testify/mock"
)

type MockStore struct {
	mock.Mock
}

var _ repository.GalleryStore = (*MockStore)(nil)

func (m *MockStore) InsertImage(ctx context.Context, username, uuidFilename, imageName string) (repository.Image, error) {
	args := m.Called(ctx, username, uuidFilename, imageName)
	return args.Get(0).(repository.Image), args.Error(1)
}

func (m *MockStore) RecentImages(ctx context.Context, limit int) ([]repository.GalleryEntry, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.GalleryEntry), args.Error(1)
}

func (m *MockStore) RecordUser(ctx context.Context, username, email string) error {
	args := m.Called(ctx, username, email)
	return args.Error(0)
}
