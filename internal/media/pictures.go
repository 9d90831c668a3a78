package media

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/hirelane/recruitment-service/internal/config"
)

// ErrUnsupportedPicture is returned for content types that are not images we accept.
var ErrUnsupportedPicture = errors.New("unsupported picture type")

var allowedPictureTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
)

// Upload describes a presigned request the client uses to send the picture directly to storage.
type Upload struct {
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	Method    string    `json:"method"`
	ExpiresAt time.Time `json:"expires_at"`
}

// PictureStore issues upload slots for profile pictures.
type PictureStore interface {
	PresignUpload(ctx context.Context, userID, filename, contentType string) (Upload, error)
}

// S3PictureStore presigns PUT requests against an S3 compatible bucket.
type S3PictureStore struct {
	cfg config.MediaConfig
	now func() time.Time
}

// NewS3PictureStore builds the store. It does not contact S3 until a URL is requested.
func NewS3PictureStore(cfg config.MediaConfig) *S3PictureStore {
	return &S3PictureStore{cfg: cfg, now: time.Now}
}

func (s *S3PictureStore) presignClient(ctx context.Context) (*s3.PresignClient, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(s.cfg.Region)}
	if s.cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(s.cfg.AccessKey, s.cfg.SecretKey, "")))
	}
	awsCfg, err := loadDefaultAWSConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(awsCfg, func(o *s3.Options) {
		if s.cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(s.cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return newS3PresignClient(client), nil
}

// PresignUpload returns a PUT URL for user_<id>/profile/<filename>.
func (s *S3PictureStore) PresignUpload(ctx context.Context, userID, filename, contentType string) (Upload, error) {
	ext, ok := allowedPictureTypes[strings.ToLower(strings.TrimSpace(contentType))]
	if !ok {
		return Upload{}, ErrUnsupportedPicture
	}

	pc, err := s.presignClient(ctx)
	if err != nil {
		return Upload{}, fmt.Errorf("s3 client: %w", err)
	}

	key := PictureKey(userID, filename, ext)
	ttl := s.cfg.UploadURLTTL
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}

	req, err := presignPutObject(pc, ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.cfg.Bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return Upload{}, err
	}

	return Upload{Key: key, URL: req.URL, Method: req.Method, ExpiresAt: s.now().Add(ttl)}, nil
}

// PictureKey builds the object key for a user's profile picture. The filename is reduced to a
// safe base name and given ext when it has none.
func PictureKey(userID, filename, ext string) string {
	name := path.Base(strings.ReplaceAll(strings.TrimSpace(filename), "\\", "/"))
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			return r
		}
		return '_'
	}, name)
	name = strings.TrimLeft(name, ".")
	if name == "" || name == "_" {
		name = "picture"
	}
	if path.Ext(name) == "" {
		name += ext
	}
	return fmt.Sprintf("user_%s/profile/%s", userID, name)
}
