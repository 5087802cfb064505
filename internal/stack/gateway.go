// Where: internal/stack/gateway.go
// What: Thin typed client over the CloudFormation changeset API.
// Why: Keep remote plumbing in one place behind a narrow, mockable surface.
package stack

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation/types"

	"github.com/stackdiff/stackdiff/internal/params"
)

// API is the subset of the CloudFormation client the gateway uses. Narrow
// on purpose so tests can inject fakes.
type API interface {
	GetTemplate(ctx context.Context, in *cloudformation.GetTemplateInput, optFns ...func(*cloudformation.Options)) (*cloudformation.GetTemplateOutput, error)
	DescribeStacks(ctx context.Context, in *cloudformation.DescribeStacksInput, optFns ...func(*cloudformation.Options)) (*cloudformation.DescribeStacksOutput, error)
	CreateChangeSet(ctx context.Context, in *cloudformation.CreateChangeSetInput, optFns ...func(*cloudformation.Options)) (*cloudformation.CreateChangeSetOutput, error)
	DescribeChangeSet(ctx context.Context, in *cloudformation.DescribeChangeSetInput, optFns ...func(*cloudformation.Options)) (*cloudformation.DescribeChangeSetOutput, error)
	DeleteChangeSet(ctx context.Context, in *cloudformation.DeleteChangeSetInput, optFns ...func(*cloudformation.Options)) (*cloudformation.DeleteChangeSetOutput, error)
}

var _ API = (*cloudformation.Client)(nil)

const (
	defaultChangesetName = "stackdiff-preview"
	defaultPollInterval  = 500 * time.Millisecond
	defaultPollTimeout   = 5 * time.Minute
)

// DefaultCapabilities are passed on changeset creation so templates carrying
// IAM resources can still be previewed.
var DefaultCapabilities = []types.Capability{
	types.CapabilityCapabilityIam,
	types.CapabilityCapabilityNamedIam,
}

// Handle identifies one created changeset.
type Handle struct {
	StackName     string
	ChangesetName string
}

// Description is the raw terminal state of a changeset, before
// interpretation.
type Description struct {
	Status  types.ChangeSetStatus
	Reason  string
	Changes []types.Change
}

// Gateway wraps the CloudFormation API for one preview run.
type Gateway struct {
	api           API
	changesetName string
	capabilities  []types.Capability
	pollInterval  time.Duration
	pollTimeout   time.Duration
	sleep         func(time.Duration)
	now           func() time.Time
	errOut        io.Writer
}

// Option customizes a Gateway.
type Option func(*Gateway)

// WithChangesetName overrides the fixed changeset name.
func WithChangesetName(name string) Option {
	return func(g *Gateway) {
		if name != "" {
			g.changesetName = name
		}
	}
}

// WithCapabilities overrides the capabilities passed on creation.
func WithCapabilities(capabilities []types.Capability) Option {
	return func(g *Gateway) {
		if len(capabilities) > 0 {
			g.capabilities = capabilities
		}
	}
}

// WithPolling overrides the poll interval and deadline.
func WithPolling(interval, timeout time.Duration) Option {
	return func(g *Gateway) {
		if interval > 0 {
			g.pollInterval = interval
		}
		if timeout > 0 {
			g.pollTimeout = timeout
		}
	}
}

// WithClock injects sleep and now functions for deterministic tests.
func WithClock(sleep func(time.Duration), now func() time.Time) Option {
	return func(g *Gateway) {
		if sleep != nil {
			g.sleep = sleep
		}
		if now != nil {
			g.now = now
		}
	}
}

// WithErrorWriter directs best-effort cleanup warnings somewhere other than
// the default stderr-like writer.
func WithErrorWriter(w io.Writer) Option {
	return func(g *Gateway) {
		if w != nil {
			g.errOut = w
		}
	}
}

// New constructs a Gateway over the given API client.
func New(api API, errOut io.Writer, opts ...Option) *Gateway {
	g := &Gateway{
		api:           api,
		changesetName: defaultChangesetName,
		capabilities:  DefaultCapabilities,
		pollInterval:  defaultPollInterval,
		pollTimeout:   defaultPollTimeout,
		sleep:         time.Sleep,
		now:           time.Now,
		errOut:        errOut,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// FetchCurrentTemplate returns the deployed template body as originally
// submitted, not the processed form.
func (g *Gateway) FetchCurrentTemplate(ctx context.Context, stackName string) (string, error) {
	out, err := g.api.GetTemplate(ctx, &cloudformation.GetTemplateInput{
		StackName:     aws.String(stackName),
		TemplateStage: types.TemplateStageOriginal,
	})
	if err != nil {
		return "", classify("get template", err)
	}
	if out.TemplateBody == nil {
		return "", nil
	}
	return *out.TemplateBody, nil
}

// FetchDeployedParameters returns the stack's current parameter set.
func (g *Gateway) FetchDeployedParameters(ctx context.Context, stackName string) ([]params.Deployed, error) {
	out, err := g.api.DescribeStacks(ctx, &cloudformation.DescribeStacksInput{
		StackName: aws.String(stackName),
	})
	if err != nil {
		return nil, classify("describe stack", err)
	}
	if len(out.Stacks) == 0 {
		return nil, fmt.Errorf("describe stack: %w: %s", ErrStackNotFound, stackName)
	}

	deployed := make([]params.Deployed, 0, len(out.Stacks[0].Parameters))
	for _, param := range out.Stacks[0].Parameters {
		if param.ParameterKey == nil {
			continue
		}
		item := params.Deployed{Key: *param.ParameterKey}
		if param.ParameterValue != nil {
			item.Value = *param.ParameterValue
		}
		deployed = append(deployed, item)
	}
	return deployed, nil
}

// CreateChangeset submits the preview request and returns a handle for the
// created changeset.
func (g *Gateway) CreateChangeset(ctx context.Context, stackName, templateBody string, effective []params.Effective) (Handle, error) {
	parameters := make([]types.Parameter, 0, len(effective))
	for _, param := range effective {
		p := types.Parameter{ParameterKey: aws.String(param.Key)}
		if param.UsePrevious {
			p.UsePreviousValue = aws.Bool(true)
		} else {
			p.ParameterValue = aws.String(param.Value)
		}
		parameters = append(parameters, p)
	}

	_, err := g.api.CreateChangeSet(ctx, &cloudformation.CreateChangeSetInput{
		ChangeSetName: aws.String(g.changesetName),
		StackName:     aws.String(stackName),
		TemplateBody:  aws.String(templateBody),
		Capabilities:  g.capabilities,
		Parameters:    parameters,
		ChangeSetType: types.ChangeSetTypeUpdate,
	})
	if err != nil {
		return Handle{}, classify("create changeset", err)
	}
	return Handle{StackName: stackName, ChangesetName: g.changesetName}, nil
}

// AwaitChangeset polls until the changeset leaves its in-progress states,
// then returns the full description, following pagination. Polling is
// bounded by the configured deadline and the context.
func (g *Gateway) AwaitChangeset(ctx context.Context, handle Handle) (Description, error) {
	deadline := g.now().Add(g.pollTimeout)
	for {
		if err := ctx.Err(); err != nil {
			return Description{}, fmt.Errorf("await changeset: %w", err)
		}

		out, err := g.api.DescribeChangeSet(ctx, &cloudformation.DescribeChangeSetInput{
			ChangeSetName: aws.String(handle.ChangesetName),
			StackName:     aws.String(handle.StackName),
		})
		if err != nil {
			return Description{}, classify("describe changeset", err)
		}

		status := string(out.Status)
		if !strings.HasSuffix(status, "_PROGRESS") && !strings.HasSuffix(status, "_PENDING") {
			return g.collectChanges(ctx, handle, out)
		}

		if g.now().After(deadline) {
			return Description{}, fmt.Errorf("await changeset: %w: still %s after %s", ErrChangesetTimeout, status, g.pollTimeout)
		}
		g.sleep(g.pollInterval)
	}
}

// collectChanges follows DescribeChangeSet pagination so large changesets
// report every record.
func (g *Gateway) collectChanges(ctx context.Context, handle Handle, first *cloudformation.DescribeChangeSetOutput) (Description, error) {
	desc := Description{
		Status:  first.Status,
		Changes: first.Changes,
	}
	if first.StatusReason != nil {
		desc.Reason = *first.StatusReason
	}

	next := first.NextToken
	for next != nil {
		out, err := g.api.DescribeChangeSet(ctx, &cloudformation.DescribeChangeSetInput{
			ChangeSetName: aws.String(handle.ChangesetName),
			StackName:     aws.String(handle.StackName),
			NextToken:     next,
		})
		if err != nil {
			return Description{}, classify("describe changeset", err)
		}
		desc.Changes = append(desc.Changes, out.Changes...)
		next = out.NextToken
	}
	return desc, nil
}

// DeleteChangeset removes the ephemeral changeset. Failure is reported on
// the error writer only; cleanup must never mask the primary result.
func (g *Gateway) DeleteChangeset(ctx context.Context, handle Handle) {
	_, err := g.api.DeleteChangeSet(ctx, &cloudformation.DeleteChangeSetInput{
		ChangeSetName: aws.String(handle.ChangesetName),
		StackName:     aws.String(handle.StackName),
	})
	if err != nil && g.errOut != nil {
		fmt.Fprintf(g.errOut, "warning: delete changeset %s: %v\n", handle.ChangesetName, err)
	}
}
