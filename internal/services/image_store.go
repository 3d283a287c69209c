package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	// register the webp decoder for imaging.Decode
	_ "golang.org/x/image/webp"

	"interiors-admin-be/internal/utils"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/disintegration/imaging"
	"github.com/google/uuid"
)

const (
	ThumbnailWidth   = 480
	thumbnailQuality = 82
	MaxImageBytes    = 10 << 20
	portfolioPrefix  = "portfolio"
)

var (
	ErrStorageNotConfigured = errors.New("image storage is not configured")
	ErrUnsupportedImage     = errors.New("unsupported image: use JPG, PNG, GIF or WEBP")
)

var allowedImageExt = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

var allowedImageMime = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// ValidateImage checks the file extension and sniffed content type. It returns
// the detected MIME type.
func ValidateImage(filename string, head []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedImageExt[ext] {
		return "", ErrUnsupportedImage
	}
	detected := http.DetectContentType(head)
	if !allowedImageMime[detected] {
		return "", ErrUnsupportedImage
	}
	return detected, nil
}

// StoredImage describes an uploaded original and its thumbnail.
type StoredImage struct {
	URL          string
	Path         string
	ThumbnailURL string
	ThumbPath    string
}

// ImageStore persists portfolio images.
type ImageStore interface {
	Upload(ctx context.Context, filename string, data []byte) (StoredImage, error)
	Delete(ctx context.Context, paths ...string) error
}

type s3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3ImageStore uploads originals and generated thumbnails to one bucket.
type S3ImageStore struct {
	client     s3API
	bucket     string
	publicBase string
	now        func() time.Time
}

func NewS3ImageStore(ctx context.Context, region, accessKey, secretKey, bucket, publicBase string) (*S3ImageStore, error) {
	if bucket == "" {
		return nil, ErrStorageNotConfigured
	}
	cfg, err := loadAWSConfig(ctx, region, accessKey, secretKey)
	if err != nil {
		return nil, err
	}
	if publicBase == "" {
		publicBase = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", bucket, region)
	}
	return &S3ImageStore{
		client:     s3.NewFromConfig(cfg),
		bucket:     bucket,
		publicBase: strings.TrimRight(publicBase, "/"),
		now:        time.Now,
	}, nil
}

// Upload validates data, stores it under portfolio/<unix>_<uuid>_<name> and adds a
// JPEG thumbnail next to it.
func (s *S3ImageStore) Upload(ctx context.Context, filename string, data []byte) (StoredImage, error) {
	mime, err := ValidateImage(filename, data)
	if err != nil {
		return StoredImage{}, err
	}

	thumb, err := MakeThumbnail(data, ThumbnailWidth)
	if err != nil {
		return StoredImage{}, err
	}

	base := fmt.Sprintf("%d_%s_%s", s.now().Unix(), uuid.NewString(), utils.SafeFileName(filename))
	key := portfolioPrefix + "/" + base
	thumbKey := portfolioPrefix + "/thumbs/" + strings.TrimSuffix(base, filepath.Ext(base)) + ".jpg"

	if err := s.put(ctx, key, data, mime); err != nil {
		return StoredImage{}, err
	}
	if err := s.put(ctx, thumbKey, thumb, "image/jpeg"); err != nil {
		_ = s.Delete(ctx, key)
		return StoredImage{}, err
	}

	return StoredImage{
		URL:          s.publicBase + "/" + key,
		Path:         key,
		ThumbnailURL: s.publicBase + "/" + thumbKey,
		ThumbPath:    thumbKey,
	}, nil
}

func (s *S3ImageStore) put(ctx context.Context, key string, data []byte, contentType string) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(s.bucket),
		Key:          aws.String(key),
		Body:         bytes.NewReader(data),
		ContentType:  aws.String(contentType),
		CacheControl: aws.String("public, max-age=31536000, immutable"),
	})
	if err != nil {
		return fmt.Errorf("putting object %s to S3: %w", key, err)
	}
	return nil
}

// Delete removes the given keys; empty keys are skipped. All keys are attempted
// and the first error is returned.
func (s *S3ImageStore) Delete(ctx context.Context, paths ...string) error {
	var firstErr error
	for _, key := range paths {
		if key == "" {
			continue
		}
		_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(key),
		})
		if err != nil && firstErr == nil {
			firstErr = fmt.Errorf("deleting object %s from S3: %w", key, err)
		}
	}
	return firstErr
}

// MakeThumbnail decodes data, applies the EXIF orientation and re-encodes it as
// a JPEG at most width pixels wide. Smaller images keep their size.
func MakeThumbnail(data []byte, width int) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}
	if img.Bounds().Dx() > width {
		img = imaging.Resize(img, width, 0, imaging.Lanczos)
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(thumbnailQuality)); err != nil {
		return nil, fmt.Errorf("encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}

// DisabledImageStore is used when no bucket is configured.
type DisabledImageStore struct{}

func (DisabledImageStore) Upload(context.Context, string, []byte) (StoredImage, error) {
	return StoredImage{}, ErrStorageNotConfigured
}

func (DisabledImageStore) Delete(context.Context, ...string) error {
	return nil
}
