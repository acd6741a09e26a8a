package blobstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/prn-tf/zealine/internal/domain"
)

// S3Config contains S3 gateway settings. Endpoint may point at any
// S3-compatible provider (AWS, MinIO, R2).
type S3Config struct {
	Endpoint        string
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	UsePathStyle    bool

	// PublicBaseURL is the CDN or bucket base used to derive public URLs.
	PublicBaseURL string
}

// S3Gateway implements Gateway on top of an S3-compatible object store.
type S3Gateway struct {
	client    *s3.Client
	presigner *s3.PresignClient
	bucket    string
	publicURL string
	logger    zerolog.Logger
}

// NewS3Gateway creates an S3Gateway.
func NewS3Gateway(ctx context.Context, cfg S3Config, logger zerolog.Logger) (*S3Gateway, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})

	return &S3Gateway{
		client:    client,
		presigner: s3.NewPresignClient(client),
		bucket:    cfg.Bucket,
		publicURL: strings.TrimSuffix(cfg.PublicBaseURL, "/"),
		logger:    logger.With().Str("component", "blobstore.s3").Logger(),
	}, nil
}

// GenerateKey derives a storage key: <kind>s/<owner>/<uuid><ext>.
// The uuid component makes collisions negligible; there is no explicit
// collision handling.
func (g *S3Gateway) GenerateKey(ownerID uuid.UUID, kind domain.MediaKind, mimeType string) string {
	return fmt.Sprintf("%ss/%s/%s%s", kind, ownerID, uuid.New(), ExtensionForMIME(mimeType))
}

// PresignUpload issues a presigned single-part PUT URL.
func (g *S3Gateway) PresignUpload(ctx context.Context, key, mimeType string, ttl time.Duration) (*PresignedUpload, error) {
	req, err := g.presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(g.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(mimeType),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return nil, fmt.Errorf("failed to presign upload: %w", err)
	}

	headers := map[string]string{"Content-Type": mimeType}
	for name, values := range req.SignedHeader {
		if len(values) > 0 {
			headers[name] = values[0]
		}
	}

	return &PresignedUpload{
		URL:       req.URL,
		Headers:   headers,
		ExpiresAt: time.Now().UTC().Add(ttl),
	}, nil
}

// InitiateMultipart starts a multipart session.
func (g *S3Gateway) InitiateMultipart(ctx context.Context, key, mimeType string) (string, error) {
	out, err := g.client.CreateMultipartUpload(ctx, &s3.CreateMultipartUploadInput{
		Bucket:      aws.String(g.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(mimeType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to initiate multipart session: %w", err)
	}
	return aws.ToString(out.UploadId), nil
}

// PresignPartUpload issues a presigned PUT URL for one part.
func (g *S3Gateway) PresignPartUpload(ctx context.Context, key, sessionID string, partNumber int, ttl time.Duration) (string, error) {
	req, err := g.presigner.PresignUploadPart(ctx, &s3.UploadPartInput{
		Bucket:     aws.String(g.bucket),
		Key:        aws.String(key),
		UploadId:   aws.String(sessionID),
		PartNumber: aws.Int32(int32(partNumber)),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", fmt.Errorf("failed to presign part %d: %w", partNumber, err)
	}
	return req.URL, nil
}

// CompleteMultipart finalizes a session. Parts must be sorted by part number.
func (g *S3Gateway) CompleteMultipart(ctx context.Context, key, sessionID string, parts []CompletedPart) (string, error) {
	completed := make([]types.CompletedPart, len(parts))
	for i, p := range parts {
		completed[i] = types.CompletedPart{
			PartNumber: aws.Int32(int32(p.PartNumber)),
			ETag:       aws.String(p.ETag),
		}
	}

	out, err := g.client.CompleteMultipartUpload(ctx, &s3.CompleteMultipartUploadInput{
		Bucket:   aws.String(g.bucket),
		Key:      aws.String(key),
		UploadId: aws.String(sessionID),
		MultipartUpload: &types.CompletedMultipartUpload{
			Parts: completed,
		},
	})
	if err != nil {
		var noSuch *types.NoSuchUpload
		if errors.As(err, &noSuch) {
			return "", ErrSessionNotFound
		}
		return "", fmt.Errorf("failed to complete multipart session: %w", err)
	}
	return aws.ToString(out.Location), nil
}

// AbortMultipart discards a session.
func (g *S3Gateway) AbortMultipart(ctx context.Context, key, sessionID string) error {
	_, err := g.client.AbortMultipartUpload(ctx, &s3.AbortMultipartUploadInput{
		Bucket:   aws.String(g.bucket),
		Key:      aws.String(key),
		UploadId: aws.String(sessionID),
	})
	if err != nil {
		var noSuch *types.NoSuchUpload
		if errors.As(err, &noSuch) {
			return ErrSessionNotFound
		}
		return fmt.Errorf("failed to abort multipart session: %w", err)
	}
	return nil
}

// Exists checks object presence with a HEAD request.
func (g *S3Gateway) Exists(ctx context.Context, key string) (bool, error) {
	_, err := g.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(g.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var notFound *types.NotFound
		if errors.As(err, &notFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check object existence: %w", err)
	}
	return true, nil
}

// PublicURL derives the public URL for a key.
func (g *S3Gateway) PublicURL(key string) string {
	return g.publicURL + "/" + key
}

// Ensure S3Gateway implements Gateway.
var _ Gateway = (*S3Gateway)(nil)
