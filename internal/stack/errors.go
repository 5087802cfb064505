// Where: internal/stack/errors.go
// What: Error taxonomy and AWS error classification for the gateway.
// Why: Resolve the service's loosely typed failures into the small set of
//      outcomes callers branch on.
package stack

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aws/smithy-go"
)

var (
	// ErrStackNotFound is returned when the named stack does not exist.
	ErrStackNotFound = errors.New("stack not found")
	// ErrRemoteRejected is returned when the service refuses a request,
	// e.g. a malformed template.
	ErrRemoteRejected = errors.New("request rejected")
	// ErrChangesetTimeout is returned when a changeset does not reach a
	// terminal state within the polling deadline.
	ErrChangesetTimeout = errors.New("changeset timed out")
	// ErrRemoteTransient covers network and throttling failures. They are
	// reported immediately rather than retried, so a misconfigured request
	// never hides behind silent retries.
	ErrRemoteTransient = errors.New("transient remote error")
)

// classify maps an SDK error onto the taxonomy, tagged with the failing
// stage. CloudFormation reports missing stacks as a ValidationError whose
// message ends in "does not exist".
func classify(stage string, err error) error {
	if err == nil {
		return nil
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "ValidationError":
			if strings.Contains(apiErr.ErrorMessage(), "does not exist") {
				return fmt.Errorf("%s: %w: %s", stage, ErrStackNotFound, apiErr.ErrorMessage())
			}
			return fmt.Errorf("%s: %w: %s", stage, ErrRemoteRejected, apiErr.ErrorMessage())
		case "Throttling", "ThrottlingException", "RequestLimitExceeded":
			return fmt.Errorf("%s: %w: %s", stage, ErrRemoteTransient, apiErr.ErrorMessage())
		default:
			return fmt.Errorf("%s: %w: %s: %s", stage, ErrRemoteRejected, apiErr.ErrorCode(), apiErr.ErrorMessage())
		}
	}
	return fmt.Errorf("%s: %w: %v", stage, ErrRemoteTransient, err)
}
