package repository

import "time"

// User is written by the signup recorder. Nickname is never set by this
// system; it is read for the gallery listing only.
type User struct {
	ID        uint      `gorm:"primaryKey"`
	Username  string    `gorm:"uniqueIndex;not null"`
	Email     string    `gorm:"not null"`
	Nickname  *string
	CreatedAt time.Time
}

func (User) TableName() string { return "users" }

type Image struct {
	ID           int64     `gorm:"primaryKey;autoIncrement"`
	Username     string    `gorm:"index;not null"`
	UUIDFilename string    `gorm:"column:uuid_filename;uniqueIndex;not null"`
	ImageName    string    `gorm:"column:image_name;type:varchar(40);not null"`
	CreatedAt    time.Time `gorm:"index"`
}

func (Image) TableName() string { return "images" }

// GalleryEntry is one row of the gallery listing. The storage key stays
// internal; clients get the CDN URL built from it.
type GalleryEntry struct {
	ID            int64     `json:"id"`
	Username      string    `json:"username"`
	Nickname      *string   `json:"nickname"`
	UUIDFilename  string    `json:"-" gorm:"column:uuid_filename"`
	ImageName     string    `json:"image_name" gorm:"column:image_name"`
	CreatedAt     time.Time `json:"created_at" gorm:"column:created_at"`
	CloudfrontURL string    `json:"cloudfront_url" gorm:"-"`
}
