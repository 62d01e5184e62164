package repository

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type (
	// GalleryStore is everything the services need from the database.
	GalleryStore interface {
		InsertImage(ctx context.Context, username, uuidFilename, imageName string) (Image, error)
		RecentImages(ctx context.Context, limit int) ([]GalleryEntry, error)
		RecordUser(ctx context.Context, username, email string) error
	}

	// GormStore runs each operation on its own connection from the dialer.
	GormStore struct {
		dialer Dialer
		log    *logrus.Entry
	}
)

var _ GalleryStore = (*GormStore)(nil)

func NewGormStore(dialer Dialer, log *logrus.Entry) *GormStore {
	return &GormStore{dialer: dialer, log: log}
}

func (s *GormStore) withConn(ctx context.Context, op func(db *gorm.DB) error) error {
	db, closeConn, err := s.dialer.Dial(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeConn(); err != nil {
			s.log.WithError(err).Warn("closing database connection failed")
		}
	}()
	return op(db)
}

func (s *GormStore) InsertImage(ctx context.Context, username, uuidFilename, imageName string) (Image, error) {
	image := Image{Username: username, UUIDFilename: uuidFilename, ImageName: imageName}
	err := s.withConn(ctx, func(db *gorm.DB) error {
		return db.Create(&image).Error
	})
	if err != nil {
		return Image{}, fmt.Errorf("can not insert image %s: %w", uuidFilename, err)
	}
	return image, nil
}

// RecentImages lists images from every user, newest first. Images whose
// owner has no users row are left out.
func (s *GormStore) RecentImages(ctx context.Context, limit int) ([]GalleryEntry, error) {
	entries := []GalleryEntry{}
	err := s.withConn(ctx, func(db *gorm.DB) error {
		return db.Table("images").
			Select("images.id, images.username, users.nickname, images.uuid_filename, images.image_name, images.created_at").
			Joins("INNER JOIN users ON images.username = users.username").
			Order("images.created_at DESC").
			Limit(limit).
			Scan(&entries).Error
	})
	if err != nil {
		return nil, fmt.Errorf("can not list images: %w", err)
	}
	return entries, nil
}

// RecordUser inserts a users row. An existing username is left untouched.
func (s *GormStore) RecordUser(ctx context.Context, username, email string) error {
	err := s.withConn(ctx, func(db *gorm.DB) error {
		return db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "username"}},
			DoNothing: true,
		}).Create(&User{Username: username, Email: email}).Error
	})
	if err != nil {
		return fmt.Errorf("can not record user %s: %w", username, err)
	}
	return nil
}

// Migrate creates or updates the users and images tables.
func Migrate(ctx context.Context, dialer Dialer) error {
	db, closeConn, err := dialer.Dial(ctx)
	if err != nil {
		return err
	}
	defer closeConn()

	if err := db.AutoMigrate(&User{}, &Image{}); err != nil {
		return fmt.Errorf("can not migrate schema: %w", err)
	}
	return nil
}
