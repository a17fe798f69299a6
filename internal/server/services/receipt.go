package services

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"expenses/internal/common"
	sc "expenses/internal/server/config"
	"expenses/internal/server/models"
	"expenses/internal/server/policy"
	"expenses/internal/server/repositories/expenses"
)

// Seams for testing the AWS presign path without a real backend.
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
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

// presignValidity bounds how long issued upload/download URLs stay usable.
const presignValidity = 15 * time.Minute

// ReceiptService attaches receipt objects to expenses. The objects live in
// S3-compatible storage; the service only issues presigned URLs and records
// the storage key on the expense.
type ReceiptService struct {
	repo   expenses.Repository
	config *sc.Config
}

// NewReceiptService constructs a ReceiptService using the store and the
// server's S3 settings.
func NewReceiptService(repo expenses.Repository, config *sc.Config) *ReceiptService {
	return &ReceiptService{repo: repo, config: config}
}

func receiptStorageKey() string {
	d := time.Now()
	return fmt.Sprintf("receipts/%d/%d/%d/%v", d.Year(), d.Month(), d.Day(), uuid.New())
}

func (s *ReceiptService) getPresignClient() (*s3.PresignClient, error) {
	cfg, err := loadDefaultAWSConfig(context.Background(),
		awsconfig.WithRegion(s.config.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3AccessKey,
			s.config.S3SecretKey,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
	})

	return newS3PresignClient(client), nil
}

// RequestUpload issues a presigned PUT URL for the expense's receipt and
// records the storage key on the entity. Only the creator may attach a
// receipt, and only while the expense is still Submitted. The ownership and
// state checks run before the storage backend is contacted, so a denied
// caller never triggers a presign round trip; the authoritative check
// repeats under the store's lock when the key is recorded.
func (s *ReceiptService) RequestUpload(ctx context.Context, caller models.Caller, id string) (string, error) {
	if err := policy.Require(caller, policy.WriteOwnExpenses); err != nil {
		return "", err
	}

	e, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	if err := canAttachReceipt(e, caller); err != nil {
		return "", err
	}

	presignClient, err := s.getPresignClient()
	if err != nil {
		return "", err
	}

	bucket := s.config.S3Bucket
	key := receiptStorageKey()

	req, err := presignPutObject(presignClient, ctx, &s3.PutObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(presignValidity))
	if err != nil {
		return "", err
	}

	if _, err := s.repo.Update(ctx, id, func(e *models.Expense) error {
		if err := canAttachReceipt(e, caller); err != nil {
			return err
		}
		e.ReceiptKey = key
		return nil
	}); err != nil {
		return "", err
	}

	return req.URL, nil
}

func canAttachReceipt(e *models.Expense, caller models.Caller) error {
	if e.CreatedUserID != caller.UserID {
		return common.Forbidden("You can only attach receipts to your own expenses.")
	}
	if e.Status != models.StatusSubmitted {
		return common.Forbidden("You can only attach receipts to submitted expenses.")
	}
	return nil
}

// DownloadURL issues a presigned GET URL for the expense's receipt. The
// creator may always fetch it; any other caller must pass the ReadAllExpenses
// policy.
func (s *ReceiptService) DownloadURL(ctx context.Context, caller models.Caller, id string) (string, error) {
	if err := policy.Require(caller, policy.ReadOwnExpenses); err != nil {
		// Application identities carry no scopes; fall through to the
		// all-access policy below.
		if err2 := policy.Require(caller, policy.ReadAllExpenses); err2 != nil {
			return "", err
		}
	}

	e, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	if e.CreatedUserID != caller.UserID {
		if err := policy.Require(caller, policy.ReadAllExpenses); err != nil {
			return "", common.Forbidden("You can only retrieve receipts of your own expenses.")
		}
	}
	if e.ReceiptKey == "" {
		return "", common.NotFound("The expense has no receipt attached.")
	}

	presignClient, err := s.getPresignClient()
	if err != nil {
		return "", err
	}

	bucket := s.config.S3Bucket
	req, err := presignGetObject(presignClient, ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &e.ReceiptKey,
	}, s3.WithPresignExpires(presignValidity))
	if err != nil {
		return "", err
	}

	return req.URL, nil
}
