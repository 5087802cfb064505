// Where: internal/app/app.go
// What: CLI entrypoint logic.
// Why: Provide a testable command dispatcher.
package app

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"github.com/stackdiff/stackdiff/internal/params"
	"github.com/stackdiff/stackdiff/internal/stack"
	"github.com/stackdiff/stackdiff/internal/ui"
	"github.com/stackdiff/stackdiff/internal/version"
)

// StackGateway is the remote capability set one preview run needs. The
// concrete implementation wraps CloudFormation; tests inject fakes.
type StackGateway interface {
	FetchCurrentTemplate(ctx context.Context, stackName string) (string, error)
	FetchDeployedParameters(ctx context.Context, stackName string) ([]params.Deployed, error)
	CreateChangeset(ctx context.Context, stackName, templateBody string, effective []params.Effective) (stack.Handle, error)
	AwaitChangeset(ctx context.Context, handle stack.Handle) (stack.Description, error)
	DeleteChangeset(ctx context.Context, handle stack.Handle)
}

// GatewayFactory builds the gateway once run-time options (changeset name,
// capabilities, sentinel patterns) are known.
type GatewayFactory func(ctx context.Context, opts ...stack.Option) (StackGateway, error)

// Dependencies holds all injected dependencies required for CLI execution.
// This structure enables dependency injection for testing and allows
// swapping the remote gateway implementation.
type Dependencies struct {
	Out        io.Writer
	ErrOut     io.Writer
	NewGateway GatewayFactory
}

// CLI defines the command-line interface structure parsed by Kong.
type CLI struct {
	StackName  string           `short:"s" name:"stack-name" help:"Name of the CloudFormation stack to diff against"`
	Parameters []string         `short:"p" name:"parameter" help:"Template parameter override in key=value form (repeatable)"`
	Capability []string         `name:"capability" help:"IAM capability passed on changeset creation (repeatable)"`
	Verbose    bool             `short:"v" help:"Dump the raw changeset description as YAML"`
	Version    kong.VersionFlag `help:"Show version information"`
	Template   string           `arg:"" help:"Path to the local template file"`
}

// Run is the main entry point for CLI execution. It parses the arguments,
// runs the preview, and returns the process exit code: 0 on a successful
// preview with or without detected changes, 1 on any failure.
func Run(args []string, deps Dependencies) int {
	out := deps.Out
	if out == nil {
		out = os.Stdout
	}
	errOut := deps.ErrOut
	if errOut == nil {
		errOut = os.Stderr
	}

	// Pick up STACKDIFF_DIFFER and AWS settings from a local .env if present.
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			fmt.Fprintf(errOut, "Warning: failed to load .env: %v\n", err)
		}
	}

	cli := CLI{}
	parser, err := kong.New(&cli,
		kong.Name("stackdiff"),
		kong.Description("Preview a CloudFormation deployment as a changeset summary plus template diff."),
		kong.Vars{"version": version.GetVersion()},
	)
	if err != nil {
		return exitWithError(errOut, err)
	}
	if _, err := parser.Parse(args); err != nil {
		return exitWithError(errOut, err)
	}

	if err := runPreview(cli, deps, out, errOut); err != nil {
		return exitWithError(errOut, err)
	}
	return 0
}

// exitWithError prints an error message and returns exit code 1.
func exitWithError(errOut io.Writer, err error) int {
	ui.New(errOut).Warn(err.Error())
	return 1
}
