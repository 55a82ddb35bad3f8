package storage

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"

	"drug-graph/config"
	"drug-graph/models"
)

// ObjectStore ist der Teil des S3-Clients, den die Export-Senke benutzt.
type ObjectStore interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// NewS3Client erstellt einen S3-Client, optional gegen einen eigenen Endpoint (z.B. MinIO).
func NewS3Client(ctx context.Context, cfg *config.Config) (*s3.Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.S3Region),
	}
	if cfg.S3Key != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3Key, cfg.S3Secret, "")))
	}
	if cfg.S3URL != "" {
		resolver := aws.EndpointResolverWithOptionsFunc(
			func(service, region string, options ...interface{}) (aws.Endpoint, error) {
				return aws.Endpoint{
					URL:               cfg.S3URL,
					SigningRegion:     cfg.S3Region,
					HostnameImmutable: true,
				}, nil
			},
		)
		opts = append(opts, awsconfig.WithEndpointResolverWithOptions(resolver))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return s3.NewFromConfig(awsCfg), nil
}

// S3Sink lädt jeden Export als eigenes Objekt hoch und behält nur die letzten Keep Exporte.
type S3Sink struct {
	Client ObjectStore
	Bucket string
	Prefix string
	Keep   int
	Logger *zap.Logger

	now func() time.Time
}

func NewS3Sink(client ObjectStore, cfg *config.Config, logger *zap.Logger) *S3Sink {
	return &S3Sink{
		Client: client,
		Bucket: cfg.S3Bucket,
		Prefix: cfg.S3Prefix,
		Keep:   cfg.S3KeepExports,
		Logger: logger,
		now:    time.Now,
	}
}

func (s *S3Sink) Name() string { return "s3" }

// ExportKey gibt den Objektschlüssel eines Exports zurück.
func (s *S3Sink) ExportKey(runID string, at time.Time) string {
	return fmt.Sprintf("%sgraph-%s-%s.json", s.Prefix, at.UTC().Format("2006-01-02T15-04-05Z"), runID)
}

func (s *S3Sink) Store(ctx context.Context, runID string, edges []models.GraphEdge) error {
	data, err := EncodeEdges(edges)
	if err != nil {
		return err
	}

	key := s.ExportKey(runID, s.now())
	_, err = s.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("s3 upload failed: %w", err)
	}
	s.Logger.Info("Export nach S3 hochgeladen", zap.String("bucket", s.Bucket), zap.String("key", key))

	return s.RotateExports(ctx)
}

// RotateExports löscht alle Exporte unter Prefix bis auf die Keep neuesten.
func (s *S3Sink) RotateExports(ctx context.Context) error {
	if s.Keep <= 0 {
		return nil
	}
	output, err := s.Client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.Bucket),
		Prefix: aws.String(s.Prefix),
	})
	if err != nil {
		return err
	}
	if len(output.Contents) <= s.Keep {
		return nil
	}

	sort.Slice(output.Contents, func(i, j int) bool {
		return aws.ToTime(output.Contents[i].LastModified).After(aws.ToTime(output.Contents[j].LastModified))
	})

	for _, obj := range output.Contents[s.Keep:] {
		s.Logger.Info("Lösche alten Export", zap.String("key", aws.ToString(obj.Key)))
		_, err := s.Client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(s.Bucket),
			Key:    obj.Key,
		})
		if err != nil {
			s.Logger.Warn("Fehler beim Löschen eines alten Exports", zap.String("key", aws.ToString(obj.Key)), zap.Error(err))
		}
	}
	return nil
}
