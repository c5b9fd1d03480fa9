package repository

import "context"

// AWSRepository defines the AWS account lookups of the dashboard.
type AWSRepository interface {
	GetAWSProfiles() []string
	CallerIdentity(ctx context.Context, profile, region string) (string, error)
}
