package app

import (
	"context"
	"strings"
	"time"

	"gallery/src/repository"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	DefaultGalleryLimit = 100
	MaxGalleryLimit     = 1000
)

type (
	Presigner interface {
		PresignUpload(ctx context.Context, bucket, key, contentType string, expires time.Duration) (string, error)
	}

	// Submission is what a client needs to upload the file it announced.
	Submission struct {
		ImageID       int64  `json:"imageId"`
		UUIDFilename  string `json:"uuidFilename"`
		PresignedURL  string `json:"presignedUrl"`
		CloudfrontURL string `json:"cloudfrontUrl"`
	}

	ImageService struct {
		presigner Presigner
		store     repository.GalleryStore
		bucket    string
		cdnDomain string
		newKey    func() string
		validate  *validator.Validate
		log       *logrus.Entry
	}

	submitInput struct {
		ImageName string `validate:"required,max=40"`
	}
)

var _ Presigner = (*MinioS3Client)(nil)

func NewImageService(presigner Presigner, store repository.GalleryStore, bucket, cdnDomain string, log *logrus.Entry) *ImageService {
	return &ImageService{
		presigner: presigner,
		store:     store,
		bucket:    bucket,
		cdnDomain: cdnDomain,
		newKey:    uuid.NewString,
		validate:  validator.New(),
		log:       log,
	}
}

// ValidateImageName trims the label and checks it is present and at most 40
// characters long.
func (s *ImageService) ValidateImageName(name string) (string, error) {
	input := submitInput{ImageName: strings.TrimSpace(name)}
	if err := s.validate.Struct(input); err != nil {
		if fieldErrs, ok := err.(validator.ValidationErrors); ok && len(fieldErrs) > 0 && fieldErrs[0].Tag() == "max" {
			return "", Validation("Image name must be 40 characters or less")
		}
		return "", Validation("Image name is required")
	}
	return input.ImageName, nil
}

// Submit issues an upload URL under a fresh key and records the image. The
// row is written as soon as the URL exists; nothing checks that the upload
// happens.
func (s *ImageService) Submit(ctx context.Context, owner, imageName string) (Submission, error) {
	name, err := s.ValidateImageName(imageName)
	if err != nil {
		return Submission{}, err
	}
	if s.bucket == "" {
		return Submission{}, Configuration("S3_BUCKET_NAME environment variable not set")
	}
	if s.cdnDomain == "" {
		return Submission{}, Configuration("CLOUDFRONT_DOMAIN environment variable not set")
	}

	key := s.newKey()
	presignedURL, err := s.presigner.PresignUpload(ctx, s.bucket, key, UploadContentType, UploadExpiry)
	if err != nil {
		return Submission{}, Upstream(err)
	}

	image, err := s.store.InsertImage(ctx, owner, key, name)
	if err != nil {
		return Submission{}, Upstream(err)
	}

	s.log.WithFields(logrus.Fields{"username": owner, "key": key, "image_id": image.ID}).Info("issued upload url")
	return Submission{
		ImageID:       image.ID,
		UUIDFilename:  key,
		PresignedURL:  presignedURL,
		CloudfrontURL: CDNURL(s.cdnDomain, key),
	}, nil
}

// Gallery lists the newest images across all users. limit must already be
// within 1..MaxGalleryLimit.
func (s *ImageService) Gallery(ctx context.Context, limit int) ([]repository.GalleryEntry, error) {
	if limit < 1 || limit > MaxGalleryLimit {
		return nil, Validation("Limit must be between 1 and 1000")
	}
	if s.cdnDomain == "" {
		return nil, Configuration("CLOUDFRONT_DOMAIN environment variable not set")
	}

	entries, err := s.store.RecentImages(ctx, limit)
	if err != nil {
		return nil, Upstream(err)
	}
	for i := range entries {
		entries[i].CloudfrontURL = CDNURL(s.cdnDomain, entries[i].UUIDFilename)
	}
	return entries, nil
}

// CDNURL joins the distribution domain and the storage key. A bare domain
// gets https://.
func CDNURL(domain, key string) string {
	domain = strings.TrimRight(domain, "/")
	if !strings.Contains(domain, "://") {
		domain = "https://" + domain
	}
	return domain + "/" + key
}
