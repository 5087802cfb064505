// Where: cmd/stackdiff/cli.go
// What: CLI dependency wiring helpers.
// Why: Centralize AWS client construction for testability.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation"

	"github.com/stackdiff/stackdiff/internal/app"
	"github.com/stackdiff/stackdiff/internal/stack"
)

// EnvEndpoint points the CloudFormation client at a local emulator for
// integration testing. Static dummy credentials are used in that mode.
const EnvEndpoint = "STACKDIFF_ENDPOINT"

const fallbackRegion = "us-east-1"

var loadDefaultConfig = awsconfig.LoadDefaultConfig

// buildDependencies constructs the runtime dependencies for the CLI.
func buildDependencies() app.Dependencies {
	return app.Dependencies{
		Out:        os.Stdout,
		ErrOut:     os.Stderr,
		NewGateway: newGateway,
	}
}

// newGateway builds the CloudFormation-backed gateway using the ambient
// credential chain, or static dummy credentials when an endpoint override
// targets a local emulator.
func newGateway(ctx context.Context, opts ...stack.Option) (app.StackGateway, error) {
	endpoint := os.Getenv(EnvEndpoint)

	cfg, err := loadAWSConfig(ctx, endpoint != "")
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := cloudformation.NewFromConfig(cfg, func(options *cloudformation.Options) {
		if endpoint != "" {
			options.BaseEndpoint = aws.String(endpoint)
		}
	})
	return stack.New(client, os.Stderr, opts...), nil
}

func loadAWSConfig(ctx context.Context, local bool) (aws.Config, error) {
	if !local {
		return loadDefaultConfig(ctx)
	}

	region := os.Getenv("AWS_REGION")
	if region == "" {
		region = fallbackRegion
	}
	creds := credentials.NewStaticCredentialsProvider("dummy", "dummy", "")
	return loadDefaultConfig(ctx,
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(creds),
	)
}
