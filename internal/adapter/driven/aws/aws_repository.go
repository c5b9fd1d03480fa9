package aws

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

// S3API is the part of the S3 client used to fetch budget files.
type S3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// LogsAPI is the part of the CloudWatch Logs client used by the audit trail.
type LogsAPI interface {
	CreateLogStream(ctx context.Context, params *cloudwatchlogs.CreateLogStreamInput, optFns ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.CreateLogStreamOutput, error)
	PutLogEvents(ctx context.Context, params *cloudwatchlogs.PutLogEventsInput, optFns ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.PutLogEventsOutput, error)
}

// STSAPI is the part of the STS client used to identify the caller.
type STSAPI interface {
	GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error)
}

// AWSRepositoryImpl hands out AWS clients per profile and region, with caching.
type AWSRepositoryImpl struct {
	cfgCache    map[string]aws.Config
	clientCache map[string]interface{}
	mu          sync.Mutex
}

// NewAWSRepository creates a new AWSRepositoryImpl.
func NewAWSRepository() *AWSRepositoryImpl {
	return &AWSRepositoryImpl{
		cfgCache:    make(map[string]aws.Config),
		clientCache: make(map[string]interface{}),
	}
}

func (r *AWSRepositoryImpl) getAWSConfig(ctx context.Context, profile, region string) (aws.Config, error) {
	cacheKey := profile + "|" + region

	r.mu.Lock()
	defer r.mu.Unlock()

	if cfg, ok := r.cfgCache[cacheKey]; ok {
		return cfg, nil
	}

	var opts []func(*config.LoadOptions) error
	if profile != "" {
		opts = append(opts, config.WithSharedConfigProfile(profile))
	}
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load AWS config for profile %q: %w", profile, err)
	}

	r.cfgCache[cacheKey] = cfg
	return cfg, nil
}

func (r *AWSRepositoryImpl) getServiceClient(ctx context.Context, profile, region, service string) (interface{}, error) {
	cacheKey := fmt.Sprintf("%s-%s-%s", profile, region, service)

	r.mu.Lock()
	if client, ok := r.clientCache[cacheKey]; ok {
		r.mu.Unlock()
		return client, nil
	}
	r.mu.Unlock()

	cfg, err := r.getAWSConfig(ctx, profile, region)
	if err != nil {
		return nil, err
	}

	var client interface{}
	switch service {
	case "sts":
		client = sts.NewFromConfig(cfg)
	case "s3":
		client = s3.NewFromConfig(cfg)
	case "logs":
		client = cloudwatchlogs.NewFromConfig(cfg)
	default:
		return nil, fmt.Errorf("unsupported service: %s", service)
	}

	r.mu.Lock()
	r.clientCache[cacheKey] = client
	r.mu.Unlock()

	return client, nil
}

// S3Client returns the S3 client of a profile and region.
func (r *AWSRepositoryImpl) S3Client(ctx context.Context, profile, region string) (S3API, error) {
	client, err := r.getServiceClient(ctx, profile, region, "s3")
	if err != nil {
		return nil, err
	}
	return client.(*s3.Client), nil
}

// LogsClient returns the CloudWatch Logs client of a profile and region.
func (r *AWSRepositoryImpl) LogsClient(ctx context.Context, profile, region string) (LogsAPI, error) {
	client, err := r.getServiceClient(ctx, profile, region, "logs")
	if err != nil {
		return nil, err
	}
	return client.(*cloudwatchlogs.Client), nil
}

// CallerIdentity returns the ARN of the credentials behind a profile.
func (r *AWSRepositoryImpl) CallerIdentity(ctx context.Context, profile, region string) (string, error) {
	client, err := r.getServiceClient(ctx, profile, region, "sts")
	if err != nil {
		return "", err
	}
	return callerARN(ctx, client.(*sts.Client), profile)
}

func callerARN(ctx context.Context, client STSAPI, profile string) (string, error) {
	result, err := client.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return "", fmt.Errorf("error getting caller identity for profile %q: %w", profile, err)
	}
	return aws.ToString(result.Arn), nil
}

// GetAWSProfiles lists the profiles found in the shared credentials and config files.
func (r *AWSRepositoryImpl) GetAWSProfiles() []string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return []string{"default"}
	}
	return profilesFromFiles(
		filepath.Join(homeDir, ".aws", "credentials"),
		filepath.Join(homeDir, ".aws", "config"),
	)
}

var profileRegex = regexp.MustCompile(`\[([^]]+)\]`)

func profilesFromFiles(credentialsPath, configPath string) []string {
	profiles := make(map[string]bool)

	parseFile := func(path string, isConfig bool) {
		content, err := os.ReadFile(path)
		if err != nil {
			return
		}
		matches := profileRegex.FindAllStringSubmatch(string(content), -1)
		for _, match := range matches {
			profileName := match[1]
			if isConfig {
				if strings.HasPrefix(profileName, "sso-session ") || strings.HasPrefix(profileName, "services ") {
					continue
				}
				profileName = strings.TrimPrefix(profileName, "profile ")
			}
			profiles[profileName] = true
		}
	}

	parseFile(credentialsPath, false)
	parseFile(configPath, true)

	if len(profiles) == 0 {
		profiles["default"] = true
	}

	result := make([]string, 0, len(profiles))
	for profile := range profiles {
		result = append(result, profile)
	}
	sort.Strings(result)
	return result
}
