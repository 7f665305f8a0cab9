package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/h2non/filetype"
	gonanoid "github.com/matoous/go-nanoid/v2"
	cfg "github.com/rohitdas13/postdeck/configs"
	"github.com/rohitdas13/postdeck/internal/transfer"
)

// MediaService stores composer uploads in R2. The returned media ref is what
// the composer attaches to a post's media list.
type MediaService struct {
	config cfg.Config
}

func NewMediaService(cfg cfg.Config) *MediaService {
	return &MediaService{config: cfg}
}

var allowedMediaTypes = map[string]struct{}{
	"jpg": {}, "png": {}, "gif": {}, "webp": {}, "mp4": {}, "mov": {},
}

func (s *MediaService) r2Client(ctx context.Context) (*s3.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(s.config.R2.AccessKey, s.config.R2.SecretKey, "")),
		awsconfig.WithRegion("auto"),
	)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(fmt.Sprintf("https://%s.r2.cloudflarestorage.com", s.config.R2.AccountID))
	}), nil
}

func (s *MediaService) Upload(ctx context.Context, userID string, file []byte) (*transfer.MediaUploadResult, error) {
	if len(file) == 0 {
		return nil, errors.New("file is empty")
	}

	kind, err := filetype.Match(file)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	if _, ok := allowedMediaTypes[kind.Extension]; !ok {
		return nil, fmt.Errorf("unsupported media type %q", kind.Extension)
	}

	name, err := gonanoid.New()
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	key := fmt.Sprintf("%s/%s.%s", userID, name, kind.Extension)

	client, err := s.r2Client(ctx)
	if err != nil {
		return nil, err
	}

	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.config.R2.BucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(file),
		ContentType: aws.String(kind.MIME.Value),
	}

	if _, err := client.PutObject(ctx, input); err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	return &transfer.MediaUploadResult{
		MediaRef: key,
		FileURL:  fmt.Sprintf("https://%s.r2.cloudflarestorage.com/%s/%s", s.config.R2.AccountID, s.config.R2.BucketName, key),
	}, nil
}
