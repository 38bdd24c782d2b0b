package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/securechat/internal/common"
	sc "github.com/dmitrijs2005/securechat/internal/server/config"
	"github.com/dmitrijs2005/securechat/internal/server/models"
	"github.com/dmitrijs2005/securechat/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}

	attachmentNow = time.Now
)

// AttachmentKeyPrefix is the object-key namespace owned by username.
func AttachmentKeyPrefix(username string) string {
	return "attachments/" + username + "/"
}

// NewAttachmentKey returns a fresh object key inside username's namespace.
func NewAttachmentKey(username string, t time.Time) string {
	return fmt.Sprintf("%s%d/%02d/%02d/%v", AttachmentKeyPrefix(username), t.Year(), t.Month(), t.Day(), uuid.New())
}

// AttachmentService hands out presigned object-storage URLs for encrypted
// attachments. The server never reads or writes the objects itself.
type AttachmentService struct {
	repomanager repomanager.RepositoryManager
	config      *sc.Config
}

func NewAttachmentService(m repomanager.RepositoryManager, cfg *sc.Config) *AttachmentService {
	return &AttachmentService{repomanager: m, config: cfg}
}

// Enabled reports whether a bucket is configured.
func (s *AttachmentService) Enabled() bool {
	return s.config.S3Bucket != ""
}

func (s *AttachmentService) getPresignClient(ctx context.Context) (*s3.PresignClient, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(s.config.S3Region)}
	if s.config.S3RootUser != "" {
		opts = append(opts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,
			s.config.S3RootPassword,
			"",
		)))
	}

	cfg, err := loadDefaultAWSConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if s.config.S3BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
			o.UsePathStyle = true
		}
	})

	return newS3PresignClient(client), nil
}

// NewUploadSlot reserves a key under the caller's namespace and presigns a
// PUT for it.
func (s *AttachmentService) NewUploadSlot(ctx context.Context, user *models.User) (*models.UploadSlot, error) {
	if !s.Enabled() {
		return nil, common.ErrAttachmentsDisabled
	}

	presignClient, err := s.getPresignClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}

	now := attachmentNow().UTC()
	bucket := s.config.S3Bucket
	key := NewAttachmentKey(user.Username, now)

	req, err := presignPutObject(presignClient, ctx, &s3.PutObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(s.config.AttachmentURLValidityDuration))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}

	return &models.UploadSlot{
		Key:       key,
		URL:       req.URL,
		ExpiresAt: now.Add(s.config.AttachmentURLValidityDuration),
	}, nil
}

// DownloadURL presigns a GET for the attachment of message id. Only the
// sender and the recipient of the message may request it; anyone else gets
// common.ErrorNotFound, the same as for a missing id.
func (s *AttachmentService) DownloadURL(ctx context.Context, user *models.User, id int64) (string, error) {
	if !s.Enabled() {
		return "", common.ErrAttachmentsDisabled
	}

	msg, err := s.repomanager.Messages(s.repomanager.DB()).GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", common.ErrorNotFound
		}
		return "", common.ErrorInternal
	}

	if msg.RecipientUsername != user.Username && msg.SenderUsername != user.Username {
		return "", common.ErrorNotFound
	}
	if msg.AttachmentKey == "" {
		return "", common.ErrorNotFound
	}

	presignClient, err := s.getPresignClient(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}

	bucket := s.config.S3Bucket
	key := msg.AttachmentKey

	req, err := presignGetObject(presignClient, ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(s.config.AttachmentURLValidityDuration))
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}

	return req.URL, nil
}
