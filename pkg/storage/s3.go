// Package storage выгружает отчеты сканирования в S3-совместимое хранилище.
package storage

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog/log"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// S3Config - параметры выгрузки
type S3Config struct {
	Enabled  bool   `yaml:"enabled"`
	Bucket   string `yaml:"bucket"`
	Prefix   string `yaml:"prefix"` // префикс ключа, например "scans/2026"
	Region   string `yaml:"region"`
	Endpoint string `yaml:"endpoint"` // MinIO, Ceph; пустой = AWS

	// Статические ключи; если пусто - цепочка по умолчанию (env, profile, IAM)
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	SessionToken    string `yaml:"session_token"`

	// PathStyle нужен для большинства S3-совместимых серверов
	PathStyle bool `yaml:"path_style"`
}

// Validate проверяет конфигурацию
func (c *S3Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Bucket == "" {
		return fmt.Errorf("s3 bucket is required")
	}
	if (c.AccessKeyID == "") != (c.SecretAccessKey == "") {
		return fmt.Errorf("s3 access_key_id and secret_access_key must be set together")
	}
	return nil
}

// ObjectKey возвращает ключ объекта для локального файла
func (c *S3Config) ObjectKey(file string) string {
	name := filepath.Base(file)
	prefix := strings.Trim(c.Prefix, "/")
	if prefix == "" {
		return name
	}
	return path.Join(prefix, name)
}

// Uploader выгружает файлы в bucket
type Uploader struct {
	config   S3Config
	uploader *manager.Uploader
}

// NewUploader создает клиента S3
func NewUploader(ctx context.Context, cfg S3Config) (*Uploader, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, cfg.SessionToken)))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.PathStyle
	})

	return &Uploader{config: cfg, uploader: manager.NewUploader(client)}, nil
}

// Upload выгружает файл и возвращает его ключ
func (u *Uploader) Upload(ctx context.Context, file string) (string, error) {
	f, err := os.Open(file)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", file, err)
	}
	defer f.Close()

	key := u.config.ObjectKey(file)
	out, err := u.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.config.Bucket),
		Key:         aws.String(key),
		Body:        f,
		ContentType: aws.String(contentType(file)),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s to s3://%s/%s: %w", file, u.config.Bucket, key, err)
	}

	log.Info().Str("bucket", u.config.Bucket).Str("key", key).Str("location", out.Location).Msg("Uploaded to S3")
	return key, nil
}

// UploadAll выгружает файлы по порядку, останавливаясь на первой ошибке
func (u *Uploader) UploadAll(ctx context.Context, files ...string) ([]string, error) {
	keys := make([]string, 0, len(files))
	for _, file := range files {
		key, err := u.Upload(ctx, file)
		if err != nil {
			return keys, err
		}
		keys = append(keys, key)
	}
	return keys, nil
}

func contentType(file string) string {
	switch ext := strings.ToLower(filepath.Ext(file)); ext {
	case ".xlsx":
		return xlsxContentType
	case ".xxh3":
		return "text/plain; charset=utf-8"
	default:
		if t := mime.TypeByExtension(ext); t != "" {
			return t
		}
		return "application/octet-stream"
	}
}
