package objectstore

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"

	"trendcloud/internal/domain/hashtag"
)

// ObjectAPI is the subset of the S3 client used by S3Source
type ObjectAPI interface {
	s3.ListObjectsV2APIClient
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Source loads hashtag documents stored as JSON objects under a bucket prefix
type S3Source struct {
	client ObjectAPI
	bucket string
	prefix string
	log    *zap.Logger
}

// NewS3Client builds an S3 client from the default AWS credential chain
func NewS3Client(ctx context.Context, region string) (*s3.Client, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return s3.NewFromConfig(cfg), nil
}

// NewS3Source creates a new S3 source
func NewS3Source(client ObjectAPI, bucket, prefix string, log *zap.Logger) *S3Source {
	if log == nil {
		log = zap.NewNop()
	}
	return &S3Source{
		client: client,
		bucket: bucket,
		prefix: prefix,
		log:    log,
	}
}

// Name returns the loader name
func (s *S3Source) Name() string {
	return "s3"
}

// Load fetches and decodes every .json object under the prefix, in key order
func (s *S3Source) Load(ctx context.Context) ([]hashtag.Document, error) {
	keys, err := s.listKeys(ctx)
	if err != nil {
		return nil, err
	}

	docs := make([]hashtag.Document, 0, len(keys))
	for _, key := range keys {
		data, err := s.getObject(ctx, key)
		if err != nil {
			return nil, err
		}

		doc, err := hashtag.DecodeDocument(key, data)
		if err != nil {
			s.log.Warn("Malformed hashtag document", zap.String("source", key), zap.Error(err))
		}
		docs = append(docs, doc)
	}

	return docs, nil
}

func (s *S3Source) listKeys(ctx context.Context) ([]string, error) {
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(s.prefix),
	})

	var keys []string
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list s3://%s/%s: %w", s.bucket, s.prefix, err)
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if strings.HasSuffix(strings.ToLower(key), ".json") {
				keys = append(keys, key)
			}
		}
	}

	sort.Strings(keys)
	return keys, nil
}

func (s *S3Source) getObject(ctx context.Context, key string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get s3://%s/%s: %w", s.bucket, key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read s3://%s/%s: %w", s.bucket, key, err)
	}
	return data, nil
}
