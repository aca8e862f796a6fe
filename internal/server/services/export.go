package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// Seams for testing the AWS calls without a live endpoint.
var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		return c.PutObject(ctx, in, optFns...)
	}

	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

// exportedRecord is the snapshot wire form of one ledger entry.
type exportedRecord struct {
	ID         string    `json:"id"`
	CodeValue  string    `json:"code_value"`
	OwnerID    string    `json:"owner_id"`
	RecordedAt time.Time `json:"recorded_at"`
}

func snapshotStorageKey() string {
	d := time.Now()
	return fmt.Sprintf("snapshots/%d/%d/%d/%v.json", d.Year(), d.Month(), d.Day(), uuid.New())
}

func (s *ScanService) getS3Client(ctx context.Context) (*s3.Client, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		awsconfig.WithRegion(s.config.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,
			s.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
		o.UsePathStyle = true
	})

	return client, nil
}

// Export uploads a JSON snapshot of the whole ledger to object storage and
// returns the storage key together with a time-limited download URL.
func (s *ScanService) Export(ctx context.Context) (string, string, error) {
	repo := s.repomanager.Scans(s.db)

	records, err := repo.ListAll(ctx)
	if err != nil {
		return "", "", fmt.Errorf("error listing scans: %w", err)
	}

	exported := make([]exportedRecord, 0, len(records))
	for _, r := range records {
		exported = append(exported, exportedRecord{
			ID:         r.ID,
			CodeValue:  r.CodeValue,
			OwnerID:    r.OwnerID,
			RecordedAt: r.RecordedAt,
		})
	}

	body, err := json.Marshal(exported)
	if err != nil {
		return "", "", err
	}

	client, err := s.getS3Client(ctx)
	if err != nil {
		return "", "", err
	}

	bucket := s.config.S3Bucket
	key := snapshotStorageKey()

	_, err = putObject(client, ctx, &s3.PutObjectInput{
		Bucket:      &bucket,
		Key:         &key,
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", "", fmt.Errorf("error uploading snapshot: %w", err)
	}

	req, err := presignGetObject(newS3PresignClient(client), ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(15*time.Minute))
	if err != nil {
		return "", "", err
	}

	return key, req.URL, nil
}
