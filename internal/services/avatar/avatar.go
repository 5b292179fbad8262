// Package services загружает аватары пользователей в S3-совместимое хранилище.
package services

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/magabrotheeeer/contacts-api/internal/apperr"
	"github.com/magabrotheeeer/contacts-api/internal/config"
	"github.com/magabrotheeeer/contacts-api/internal/models"
)

// ObjectStorage часть клиента S3, нужная для загрузки.
type ObjectStorage interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// UserRepository сохраняет ссылку на аватар.
type UserRepository interface {
	UpdateAvatar(ctx context.Context, email, url string) (*models.User, error)
}

// UserCache сбрасывает закэшированного пользователя.
type UserCache interface {
	Forget(ctx context.Context, email string)
}

// AvatarService загружает файл и обновляет профиль.
type AvatarService struct {
	storage ObjectStorage
	users   UserRepository
	cache   UserCache
	bucket  string
	baseURL string
	maxSize int64
}

// NewS3Client создаёт клиент S3. Если задан endpoint, используется path-style
// адресация, как требует MinIO.
func NewS3Client(ctx context.Context, cfg config.AvatarStorage) (*s3.Client, error) {
	const op = "services.avatar.NewS3Client"
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3AccessKey,
			cfg.S3SecretKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// NewAvatarService создает новый экземпляр AvatarService.
func NewAvatarService(storage ObjectStorage, users UserRepository, cache UserCache, cfg config.AvatarStorage) *AvatarService {
	baseURL := cfg.S3PublicBaseURL
	if baseURL == "" {
		baseURL = strings.TrimRight(cfg.S3Endpoint, "/") + "/" + cfg.S3Bucket
	}
	return &AvatarService{
		storage: storage,
		users:   users,
		cache:   cache,
		bucket:  cfg.S3Bucket,
		baseURL: strings.TrimRight(baseURL, "/"),
		maxSize: cfg.MaxAvatarSize,
	}
}

// ObjectKey ключ объекта для нового аватара пользователя.
func ObjectKey(userID, filename string) string {
	return fmt.Sprintf("avatars/%s/%s%s", userID, uuid.NewString(), strings.ToLower(path.Ext(filename)))
}

// Update загружает изображение и сохраняет его публичный адрес в профиле.
func (s *AvatarService) Update(ctx context.Context, user *models.User, filename, contentType string,
	body io.Reader, size int64) (*models.User, error) {
	const op = "services.avatar.Update"

	if !strings.HasPrefix(contentType, "image/") {
		return nil, fmt.Errorf("%s: %w: content type %q", op, apperr.ErrVerificationError, contentType)
	}
	if s.maxSize > 0 && size > s.maxSize {
		return nil, fmt.Errorf("%s: %w: file too large", op, apperr.ErrVerificationError)
	}

	key := ObjectKey(user.ID, filename)
	_, err := s.storage.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(size),
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	updated, err := s.users.UpdateAvatar(ctx, user.Email, s.baseURL+"/"+key)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if updated == nil {
		return nil, fmt.Errorf("%s: %w", op, apperr.ErrNotFound)
	}
	s.cache.Forget(ctx, user.Email)
	return updated, nil
}
