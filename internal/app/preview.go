// Where: internal/app/preview.go
// What: Orchestration of one preview run.
// Why: Sequence the remote calls, keep the changeset lifecycle scoped, and
//      hand the pieces to the report renderer.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"sigs.k8s.io/yaml"

	"github.com/stackdiff/stackdiff/internal/changeset"
	"github.com/stackdiff/stackdiff/internal/config"
	"github.com/stackdiff/stackdiff/internal/differ"
	"github.com/stackdiff/stackdiff/internal/params"
	"github.com/stackdiff/stackdiff/internal/report"
	"github.com/stackdiff/stackdiff/internal/stack"
	"github.com/stackdiff/stackdiff/internal/template"
	"github.com/stackdiff/stackdiff/internal/ui"
)

var errStackNameRequired = errors.New("stack name is required (--stack-name or stackdiff.yml)")

// notifyContext is swappable so tests run without signal handling.
var notifyContext = func() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// runPreview executes the whole preview flow. Local validation happens
// before the first remote call; the changeset is deleted on every exit path
// after creation, including interrupt.
func runPreview(cli CLI, deps Dependencies, out, errOut io.Writer) error {
	cfg, err := config.Discover(cli.Template)
	if err != nil {
		return err
	}

	stackName := cli.StackName
	if stackName == "" {
		stackName = cfg.Stack
	}
	if stackName == "" {
		return errStackNameRequired
	}

	overrides, err := params.ParseOverrides(cli.Parameters)
	if err != nil {
		return err
	}
	for key, value := range cfg.Parameters {
		if _, ok := overrides[key]; !ok {
			overrides[key] = value
		}
	}

	tmpl, err := template.Load(cli.Template)
	if err != nil {
		return err
	}
	if unknown := tmpl.UndeclaredOverrides(overrides); len(unknown) > 0 {
		fmt.Fprintf(errOut, "Warning: overrides not declared by %s: %s\n", tmpl.Path, strings.Join(unknown, ", "))
	}

	ctx, cancel := notifyContext()
	defer cancel()

	capabilities := cli.Capability
	if len(capabilities) == 0 {
		capabilities = cfg.Capabilities
	}
	if deps.NewGateway == nil {
		return errors.New("gateway factory not configured")
	}
	gw, err := deps.NewGateway(ctx,
		stack.WithChangesetName(cfg.ChangesetName),
		stack.WithCapabilities(stack.ParseCapabilities(capabilities)),
		stack.WithErrorWriter(errOut),
	)
	if err != nil {
		return fmt.Errorf("configure gateway: %w", err)
	}

	remoteBody, err := gw.FetchCurrentTemplate(ctx, stackName)
	if err != nil {
		return err
	}
	deployed, err := gw.FetchDeployedParameters(ctx, stackName)
	if err != nil {
		return err
	}

	effective := params.Reconcile(deployed, overrides)

	result, err := previewChangeset(ctx, gw, stackName, tmpl.Body, effective, cfg.NoChangePatterns, cli.Verbose, out)
	if err != nil {
		return err
	}

	diffTool := os.Getenv(differ.EnvDiffTool)
	if diffTool == "" {
		diffTool = cfg.Differ
	}
	diff, err := differ.Differ{Tool: diffTool}.Diff(remoteBody, cli.Template)
	if err != nil {
		return err
	}

	report.Render(out, report.Report{StackName: stackName, Changes: result, Diff: diff})
	return nil
}

// previewChangeset creates, awaits, interprets, and always deletes the
// changeset. Deletion uses a detached context so an interrupt that
// cancelled the poll still cleans up the remote record.
func previewChangeset(
	ctx context.Context,
	gw StackGateway,
	stackName string,
	templateBody string,
	effective []params.Effective,
	noChangePatterns []string,
	verbose bool,
	out io.Writer,
) (changeset.Result, error) {
	handle, err := gw.CreateChangeset(ctx, stackName, templateBody, effective)
	if err != nil {
		return changeset.Result{}, err
	}
	defer gw.DeleteChangeset(context.WithoutCancel(ctx), handle)

	desc, err := gw.AwaitChangeset(ctx, handle)
	if err != nil {
		return changeset.Result{}, err
	}

	if verbose && len(desc.Changes) > 0 {
		if raw, err := yaml.Marshal(desc.Changes); err == nil {
			ui.New(out).Header("🔍", "Raw changeset description:")
			fmt.Fprintln(out, string(raw))
		}
	}

	in := changeset.Interpreter{NoChangeReasons: noChangePatterns}
	return in.Interpret(desc.Status, desc.Reason, desc.Changes)
}
