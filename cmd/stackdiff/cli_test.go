// Where: cmd/stackdiff/cli_test.go
// What: Tests for CLI dependency wiring.
// Why: Ensure gateway construction works in both ambient and local modes.
package main

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
)

func stubConfigLoader(t *testing.T, cfg aws.Config, err error) *int {
	t.Helper()
	orig := loadDefaultConfig
	t.Cleanup(func() { loadDefaultConfig = orig })

	calls := new(int)
	loadDefaultConfig = func(context.Context, ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		*calls++
		return cfg, err
	}
	return calls
}

func TestBuildDependencies(t *testing.T) {
	deps := buildDependencies()
	if deps.Out == nil || deps.ErrOut == nil {
		t.Fatalf("expected output writers")
	}
	if deps.NewGateway == nil {
		t.Fatalf("expected a gateway factory")
	}
}

func TestNewGatewayAmbientConfig(t *testing.T) {
	t.Setenv(EnvEndpoint, "")
	calls := stubConfigLoader(t, aws.Config{Region: "eu-west-1"}, nil)

	gw, err := newGateway(context.Background())
	if err != nil {
		t.Fatalf("new gateway: %v", err)
	}
	if gw == nil {
		t.Fatalf("expected a gateway")
	}
	if *calls != 1 {
		t.Fatalf("expected one config load, got %d", *calls)
	}
}

func TestNewGatewayEndpointOverride(t *testing.T) {
	t.Setenv(EnvEndpoint, "http://localhost:4566")
	t.Setenv("AWS_REGION", "")
	stubConfigLoader(t, aws.Config{}, nil)

	gw, err := newGateway(context.Background())
	if err != nil {
		t.Fatalf("new gateway: %v", err)
	}
	if gw == nil {
		t.Fatalf("expected a gateway")
	}
}

func TestNewGatewayConfigError(t *testing.T) {
	t.Setenv(EnvEndpoint, "")
	stubConfigLoader(t, aws.Config{}, errors.New("no credentials"))

	if _, err := newGateway(context.Background()); err == nil {
		t.Fatalf("expected error when config loading fails")
	}
}
