package service

import (
	"context"
	"errors"
	"io"
	"log"
	"time"

	"docs-admin-console/config"
	"docs-admin-console/internal/util"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3Service : staging загрузок в бакете, общий для всех экземпляров консоли
type S3Service struct {
	objects   *s3.Client
	presigner *s3.PresignClient
	bucket    string
}

func NewS3Service(ctx context.Context, cfg *config.S3Config) (*S3Service, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("s3Config.bucket не задан")
	}

	var objects *s3.Client
	if cfg.Endpoint != "" {
		objects = s3.New(s3.Options{
			Region:       cfg.Region,
			Credentials:  credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
			BaseEndpoint: aws.String(cfg.Endpoint),
			UsePathStyle: true,
		})
	} else {
		awsCfg, err := awsConfig.LoadDefaultConfig(ctx, awsConfig.WithRegion(cfg.Region))
		if err != nil {
			return nil, util.LogError("[S3Service] ошибка загрузки AWS config", err)
		}
		objects = s3.NewFromConfig(awsCfg)
	}

	if err := ensureStagingBucket(ctx, objects, cfg.Bucket); err != nil {
		return nil, err
	}

	log.Printf("[S3Service] staging загрузок в бакете %s", cfg.Bucket)
	return &S3Service{
		objects:   objects,
		presigner: s3.NewPresignClient(objects),
		bucket:    cfg.Bucket,
	}, nil
}

func ensureStagingBucket(ctx context.Context, objects *s3.Client, bucket string) error {
	if _, err := objects.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(bucket)}); err == nil {
		return nil
	}

	_, err := objects.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(bucket)})
	var owned *types.BucketAlreadyOwnedByYou
	if err != nil && !errors.As(err, &owned) {
		return util.LogError("[S3Service] не удалось создать бакет для staging", err)
	}
	return nil
}

// Put : size обязателен, тело из multipart не перематывается
func (s *S3Service) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error {
	if _, err := s.objects.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
	}); err != nil {
		return util.LogError("[S3Service] не удалось положить файл в staging", err)
	}
	return nil
}

// Open : тело закрывает вызывающий после отправки в API
func (s *S3Service) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	object, err := s.objects.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, util.LogError("[S3Service] не удалось прочитать файл из staging", err)
	}
	return object.Body, nil
}

func (s *S3Service) Delete(ctx context.Context, key string) error {
	if _, err := s.objects.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}); err != nil {
		return util.LogError("[S3Service] не удалось удалить файл из staging", err)
	}
	return nil
}

// PresignedGetURL : предпросмотр файла в очереди до отправки
func (s *S3Service) PresignedGetURL(ctx context.Context, key string, expire time.Duration) (string, error) {
	signed, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(expire))
	if err != nil {
		return "", util.LogError("[S3Service] не удалось подписать ссылку предпросмотра", err)
	}
	return signed.URL, nil
}
