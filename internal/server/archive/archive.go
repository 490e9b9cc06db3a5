// Package archive stores snapshots of minted ciphertexts on an S3-compatible
// backend. The snapshot never contains plaintext: the note content is already
// client-encrypted when it reaches the server. The presigned GET URL becomes
// the NFT's pointer so a buyer can fetch the exact bytes the integrity hash
// covers.
package archive

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"notemint/internal/server/config"
)

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

const pointerValidity = 7 * 24 * time.Hour

type Service struct {
	config *config.Config
}

func NewService(cfg *config.Config) *Service {
	return &Service{config: cfg}
}

func storageKey(noteID uint64) string {
	return fmt.Sprintf("notes/%d/%v", noteID, uuid.New())
}

func (s *Service) getClient(ctx context.Context) (*s3.Client, error) {
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

// ArchiveCiphertext uploads the ciphertext snapshot and returns a presigned
// GET URL pointing at it.
func (s *Service) ArchiveCiphertext(ctx context.Context, noteID uint64, ciphertext string) (string, error) {
	client, err := s.getClient(ctx)
	if err != nil {
		return "", err
	}

	bucket := s.config.S3Bucket
	key := storageKey(noteID)

	_, err = putObject(client, ctx, &s3.PutObjectInput{
		Bucket: &bucket,
		Key:    &key,
		Body:   strings.NewReader(ciphertext),
	})
	if err != nil {
		return "", fmt.Errorf("snapshot upload failed: %w", err)
	}

	req, err := presignGetObject(newS3PresignClient(client), ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(pointerValidity))
	if err != nil {
		return "", fmt.Errorf("snapshot presign failed: %w", err)
	}

	return req.URL, nil
}
