package services

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	appconfig "neighbor-aid-backend/internal/config"
	"neighbor-aid-backend/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

const uploadExpiry = 5 * time.Minute

// Photo kinds accepted for upload
const (
	PhotoKindRequest = "request"
	PhotoKindEvent   = "event"
	PhotoKindAvatar  = "avatar"
)

// PhotoService hands out upload URLs for request, event and avatar photos
type PhotoService struct {
	s3Client *s3.Client
	s3Bucket string
	region   string
	endpoint string
}

// NewPhotoService creates a new photo service
func NewPhotoService(ctx context.Context, cfg appconfig.AWSConfig) (*PhotoService, error) {
	opts := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	s3Client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &PhotoService{
		s3Client: s3Client,
		s3Bucket: cfg.S3Bucket,
		region:   cfg.Region,
		endpoint: strings.TrimRight(cfg.Endpoint, "/"),
	}, nil
}

// UploadRequest represents a request to get a pre-signed URL
type UploadRequest struct {
	Kind        string `json:"kind"`
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
}

// UploadResponse represents the response with pre-signed URL
type UploadResponse struct {
	UploadURL string `json:"upload_url"`
	PhotoURL  string `json:"photo_url"`
	ExpiresIn int    `json:"expires_in"`
}

// GetPreSignedURL generates a pre-signed URL for uploading a photo.
// The returned photo URL is what clients store on the request, event or profile.
func (s *PhotoService) GetPreSignedURL(ctx context.Context, userID, kind, filename, contentType string) (*UploadResponse, error) {
	key, err := photoKey(userID, kind, filename)
	if err != nil {
		return nil, err
	}

	presignClient := s3.NewPresignClient(s.s3Client)
	request, err := presignClient.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.s3Bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = uploadExpiry
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate pre-signed URL: %w", err)
	}

	return &UploadResponse{
		UploadURL: request.URL,
		PhotoURL:  s.objectURL(key),
		ExpiresIn: int(uploadExpiry.Seconds()),
	}, nil
}

func (s *PhotoService) objectURL(key string) string {
	if s.endpoint != "" {
		return fmt.Sprintf("%s/%s/%s", s.endpoint, s.s3Bucket, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.s3Bucket, s.region, key)
}

// photoKey builds {kind}s/{user_id}/{uuid}{ext}
func photoKey(userID, kind, filename string) (string, error) {
	switch kind {
	case PhotoKindRequest, PhotoKindEvent, PhotoKindAvatar:
	default:
		return "", models.ErrInvalidPhotoKind
	}

	ext := strings.ToLower(path.Ext(filename))
	if ext == "" {
		ext = ".jpg"
	}
	return fmt.Sprintf("%ss/%s/%s%s", kind, userID, uuid.New().String(), ext), nil
}
