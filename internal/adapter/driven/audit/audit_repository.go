package audit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs/types"
	awsadapter "github.com/diillson/pe-budget-dashboard-go/internal/adapter/driven/aws"
	"github.com/diillson/pe-budget-dashboard-go/internal/domain/entity"
	"github.com/diillson/pe-budget-dashboard-go/internal/domain/repository"
)

// StreamPrefix prefixes the daily CloudWatch log stream names.
const StreamPrefix = "pe-budget-"

// LogsClientProvider hands out CloudWatch Logs clients per profile and region.
type LogsClientProvider interface {
	LogsClient(ctx context.Context, profile, region string) (awsadapter.LogsAPI, error)
}

// AuditRepositoryImpl writes audit entries to a JSON-lines file and/or a
// CloudWatch Logs group.
type AuditRepositoryImpl struct {
	logs LogsClientProvider
}

// NewAuditRepository creates a new AuditRepository.
func NewAuditRepository(logs LogsClientProvider) repository.AuditRepository {
	return &AuditRepositoryImpl{logs: logs}
}

// Record sends entry to every sink of target. A failing sink does not stop
// the others; their errors are joined.
func (r *AuditRepositoryImpl) Record(ctx context.Context, target repository.AuditTarget, entry entity.AuditEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("error encoding audit entry: %w", err)
	}

	var errs []error
	if target.File != "" {
		if err := appendLine(target.File, data); err != nil {
			errs = append(errs, err)
		}
	}
	if target.LogGroup != "" {
		if err := r.putEvent(ctx, target, entry, data); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func appendLine(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("error creating audit log directory '%s': %w", dir, err)
		}
	}

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("error opening audit log: %w", err)
	}
	defer file.Close()

	if _, err := file.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("error writing audit log: %w", err)
	}
	return nil
}

func (r *AuditRepositoryImpl) putEvent(ctx context.Context, target repository.AuditTarget, entry entity.AuditEntry, data []byte) error {
	if r.logs == nil {
		return fmt.Errorf("no CloudWatch Logs client configured for log group %s", target.LogGroup)
	}
	client, err := r.logs.LogsClient(ctx, target.AWSProfile, target.AWSRegion)
	if err != nil {
		return err
	}

	stream := StreamName(entry)
	_, err = client.CreateLogStream(ctx, &cloudwatchlogs.CreateLogStreamInput{
		LogGroupName:  aws.String(target.LogGroup),
		LogStreamName: aws.String(stream),
	})
	var exists *cwtypes.ResourceAlreadyExistsException
	if err != nil && !errors.As(err, &exists) {
		return fmt.Errorf("error creating log stream %s/%s: %w", target.LogGroup, stream, err)
	}

	_, err = client.PutLogEvents(ctx, &cloudwatchlogs.PutLogEventsInput{
		LogGroupName:  aws.String(target.LogGroup),
		LogStreamName: aws.String(stream),
		LogEvents: []cwtypes.InputLogEvent{{
			Message:   aws.String(string(data)),
			Timestamp: aws.Int64(entry.Time.UnixMilli()),
		}},
	})
	if err != nil {
		return fmt.Errorf("error putting audit event to %s/%s: %w", target.LogGroup, stream, err)
	}
	return nil
}

// StreamName is the daily log stream an entry belongs to.
func StreamName(entry entity.AuditEntry) string {
	return StreamPrefix + entry.Time.UTC().Format("2006-01-02")
}
