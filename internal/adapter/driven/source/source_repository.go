package source

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	awsadapter "github.com/diillson/pe-budget-dashboard-go/internal/adapter/driven/aws"
	"github.com/diillson/pe-budget-dashboard-go/internal/domain/entity"
	"github.com/diillson/pe-budget-dashboard-go/internal/domain/repository"
	"github.com/diillson/pe-budget-dashboard-go/internal/shared/types"
)

// S3ClientProvider hands out S3 clients per profile and region.
type S3ClientProvider interface {
	S3Client(ctx context.Context, profile, region string) (awsadapter.S3API, error)
}

// SourceRepositoryImpl implements SourceRepository for local files and S3 objects.
type SourceRepositoryImpl struct {
	s3 S3ClientProvider
}

// NewSourceRepository creates a new SourceRepository.
func NewSourceRepository(clients S3ClientProvider) repository.SourceRepository {
	return &SourceRepositoryImpl{s3: clients}
}

// LoadRows reads and decodes the rows named by req.URI.
func (r *SourceRepositoryImpl) LoadRows(ctx context.Context, req repository.SourceRequest) ([]entity.FlatRow, error) {
	uri := strings.TrimSpace(req.URI)
	switch {
	case uri == "":
		return nil, types.ErrNoInputSource
	case strings.HasPrefix(uri, "s3://"):
		return r.loadS3(ctx, uri, req)
	case strings.Contains(uri, "://"):
		return nil, fmt.Errorf("%w: %s", types.ErrUnsupportedSource, uri)
	}

	data, err := os.ReadFile(uri)
	if err != nil {
		return nil, fmt.Errorf("error reading input file: %w", err)
	}
	rows, err := DecodeRows(filepath.Ext(uri), data, req.NumericFields)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", uri, err)
	}
	return rows, nil
}

func (r *SourceRepositoryImpl) loadS3(ctx context.Context, uri string, req repository.SourceRequest) ([]entity.FlatRow, error) {
	bucket, key, err := parseS3URI(uri)
	if err != nil {
		return nil, err
	}
	if r.s3 == nil {
		return nil, fmt.Errorf("%w: no S3 client configured for %s", types.ErrUnsupportedSource, uri)
	}

	client, err := r.s3.S3Client(ctx, req.AWSProfile, req.AWSRegion)
	if err != nil {
		return nil, err
	}

	out, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("error fetching %s: %w", uri, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading %s: %w", uri, err)
	}

	rows, err := DecodeRows(path.Ext(key), data, req.NumericFields)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", uri, err)
	}
	return rows, nil
}

// parseS3URI splits s3://bucket/key.
func parseS3URI(uri string) (bucket, key string, err error) {
	rest := strings.TrimPrefix(uri, "s3://")
	bucket, key, ok := strings.Cut(rest, "/")
	if !ok || bucket == "" || key == "" {
		return "", "", fmt.Errorf("%w: expected s3://bucket/key, got %s", types.ErrUnsupportedSource, uri)
	}
	return bucket, key, nil
}
