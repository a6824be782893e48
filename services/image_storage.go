package services

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/lucsky/cuid"
)

// allowedImageTypes maps accepted content types to the extension stored.
var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// ImageStorage keeps uploaded images and returns the reference the
// restaurant or menu item stores.
type ImageStorage interface {
	Save(ctx context.Context, filename, contentType string, body io.Reader) (string, error)
}

// ImageExtension returns the stored extension for contentType, or false when
// the type is not an accepted image.
func ImageExtension(contentType string) (string, bool) {
	ext, ok := allowedImageTypes[strings.ToLower(strings.TrimSpace(contentType))]
	return ext, ok
}

func objectName(filename, contentType string) (string, error) {
	ext, ok := ImageExtension(contentType)
	if !ok {
		return "", fmt.Errorf("unsupported image type %q", contentType)
	}
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		}
		return '-'
	}, base)
	if len(base) > 40 {
		base = base[:40]
	}
	return cuid.New() + "-" + base + ext, nil
}

// LocalImageStorage writes images under Dir and serves them from
// BaseURL + "/uploads/".
type LocalImageStorage struct {
	Dir     string
	BaseURL string
}

func NewLocalImageStorage(dir, baseURL string) *LocalImageStorage {
	return &LocalImageStorage{Dir: dir, BaseURL: strings.TrimRight(baseURL, "/")}
}

func (s *LocalImageStorage) Save(ctx context.Context, filename, contentType string, body io.Reader) (string, error) {
	name, err := objectName(filename, contentType)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return "", fmt.Errorf("error creating upload directory: %w", err)
	}
	f, err := os.Create(filepath.Join(s.Dir, name))
	if err != nil {
		return "", fmt.Errorf("error creating %s: %w", name, err)
	}
	defer f.Close()
	if _, err := io.Copy(f, body); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("error writing %s: %w", name, err)
	}
	return s.BaseURL + "/uploads/" + name, nil
}

// S3PutObjectAPI is the slice of the S3 client the uploader needs.
type S3PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type S3ImageStorage struct {
	Client S3PutObjectAPI
	Bucket string
	Region string
	Prefix string
}

// NewS3ImageStorage loads the default AWS credential chain for region.
func NewS3ImageStorage(ctx context.Context, bucket, region string) (*S3ImageStorage, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %v", err)
	}
	return &S3ImageStorage{
		Client: s3.NewFromConfig(cfg),
		Bucket: bucket,
		Region: region,
		Prefix: "images/",
	}, nil
}

func (s *S3ImageStorage) Save(ctx context.Context, filename, contentType string, body io.Reader) (string, error) {
	name, err := objectName(filename, contentType)
	if err != nil {
		return "", err
	}
	key := s.Prefix + name
	_, err = s.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.Bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("unable to upload %s to S3: %w", key, err)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.Bucket, s.Region, key), nil
}
