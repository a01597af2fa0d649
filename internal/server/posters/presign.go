// Package posters hands out presigned S3 upload URLs for event posters.
package posters

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	sc "github.com/dmitrijs2005/cal/internal/server/config"
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
)

// Upload describes where a poster should be PUT and where it can be read.
type Upload struct {
	Key       string
	UploadURL string
	PublicURL string
}

// Presigner issues poster uploads against the configured bucket.
type Presigner struct {
	config *sc.Config
}

func NewPresigner(c *sc.Config) *Presigner {
	return &Presigner{config: c}
}

// StorageKey builds a dated, collision-free object key that keeps the
// original file extension.
func StorageKey(filename string, now time.Time) string {
	ext := strings.ToLower(path.Ext(filename))
	return fmt.Sprintf("posters/%d/%02d/%s%s", now.Year(), now.Month(), uuid.New(), ext)
}

func (p *Presigner) presignClient(ctx context.Context) (*s3.PresignClient, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(p.config.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			p.config.S3RootUser,
			p.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(p.config.S3BaseEndpoint)
		o.UsePathStyle = true
	})

	return newS3PresignClient(client), nil
}

// PresignPoster returns a fresh storage key for filename, a presigned PUT URL
// valid for the configured poster validity, and the object's public URL.
func (p *Presigner) PresignPoster(ctx context.Context, filename string) (*Upload, error) {
	pc, err := p.presignClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("presign client: %w", err)
	}

	bucket := p.config.S3Bucket
	key := StorageKey(filename, time.Now())

	req, err := presignPutObject(pc, ctx, &s3.PutObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(p.config.PosterURLValidity))
	if err != nil {
		return nil, fmt.Errorf("presign put: %w", err)
	}

	return &Upload{Key: key, UploadURL: req.URL, PublicURL: p.PublicURL(key)}, nil
}

// PublicURL is the path-style URL of key in the poster bucket.
func (p *Presigner) PublicURL(key string) string {
	return strings.TrimRight(p.config.S3BaseEndpoint, "/") + "/" + p.config.S3Bucket + "/" + key
}
