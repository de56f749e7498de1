package main

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"potholes/internal/gate"
	"potholes/internal/notify"
	"potholes/internal/reports"
	"potholes/internal/storage"
	"potholes/pkg/types"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func loadConfig(cCtx *cli.Context) (*types.Config, error) {
	c := new(types.Config)
	if err := envconfig.Process(cCtx.String("env-prefix"), c); err != nil {
		return nil, fmt.Errorf("process environment config: %w", err)
	}

	if c.DatabaseURL == "" {
		return nil, fmt.Errorf("set DATABASE_URL")
	}

	if c.ServerPort == 0 {
		c.ServerPort = 8080
	}

	if c.ReadTimeoutSec == 0 {
		c.ReadTimeoutSec = 10
	}

	if c.WriteTimeoutSec == 0 {
		c.WriteTimeoutSec = 60
	}

	if c.MaxUploadMB <= 0 {
		c.MaxUploadMB = 25
	}

	return c, nil
}

func newLogger(c *types.Config) (*logrus.Logger, error) {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	logger.SetLevel(level)

	return logger, nil
}

func loadAWSConfig(ctx context.Context) (aws.Config, error) {
	awsConfig, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load aws config: %w", err)
	}

	return awsConfig, nil
}

func newBlobStore(ctx context.Context, c *types.Config) (reports.BlobStore, error) {
	switch c.StorageDriver {
	case "supabase":
		if c.SupabaseProjectID == "" || c.SupabaseAPIKey == "" {
			return nil, fmt.Errorf("set SUPABASE_PROJECT_ID and SUPABASE_API_KEY for the supabase storage driver")
		}
		return storage.NewSupabaseStorage(c.SupabaseURL(), c.SupabaseAPIKey, c.StorageBucketName), nil

	case "s3":
		// the amazonaws.com fallback would be written into every report
		if c.S3Endpoint != "" && c.S3PublicBaseURL == "" {
			return nil, fmt.Errorf("set S3_PUBLIC_BASE_URL when S3_ENDPOINT is set")
		}

		awsConfig, err := loadAWSConfig(ctx)
		if err != nil {
			return nil, err
		}

		client := s3.NewFromConfig(awsConfig, func(o *s3.Options) {
			if c.S3Endpoint != "" {
				o.BaseEndpoint = aws.String(c.S3Endpoint)
				o.UsePathStyle = true
			}
		})

		return storage.NewS3Storage(client, c.StorageBucketName, c.S3PublicBaseURL), nil

	default:
		return nil, fmt.Errorf("unknown STORAGE_DRIVER %q, use supabase or s3", c.StorageDriver)
	}
}

func newNotifier(c *types.Config, logger *logrus.Logger) (reports.Notifier, *notify.Dispatcher) {
	if !c.NotifyEnabled || c.SupabaseProjectID == "" {
		logger.Info("report notifications disabled")
		return notify.Noop{}, nil
	}

	timeout := time.Duration(c.NotifyTimeoutSec) * time.Second
	edge := notify.NewEdgeFunctionNotifier(c.SupabaseURL(), c.SupabaseAPIKey, c.NotifyFunctionName, timeout)
	dispatcher := notify.NewDispatcher(logger, edge, timeout)

	return dispatcher, dispatcher
}

func newGate(c *types.Config) (*gate.Gate, error) {
	if c.AdminPassword == "" {
		return nil, fmt.Errorf("set ADMIN_PASSWORD")
	}

	key, err := base64.StdEncoding.DecodeString(c.AdminTokenKey)
	if err != nil {
		return nil, fmt.Errorf("failed to decode ADMIN_TOKEN_KEY: %w", err)
	}

	return gate.New(c.AdminPassword, key, time.Duration(c.SessionMaxAgeSec)*time.Second)
}

func newReportService(c *types.Config, logger *logrus.Logger, repo reports.ReportStore, events reports.StatusEventStore, blobs reports.BlobStore, notifier reports.Notifier) (*reports.Service, error) {
	policy, err := reports.ParseTransitionPolicy(c.StatusPolicy)
	if err != nil {
		return nil, err
	}

	return reports.NewService(logger, repo, events, blobs, notifier, reports.ServiceConfig{
		Policy:        policy,
		MaxImages:     c.MaxImages,
		MaxImageBytes: c.MaxImageMB << 20,
	}), nil
}
