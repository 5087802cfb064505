// Where: internal/changeset/interpret.go
// What: Normalization of raw changeset descriptions into a stable report.
// Why: The service neither guarantees ordering nor separates "no changes"
//      from genuine failure; both must be resolved exactly once.
package changeset

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/cloudformation/types"
)

// ErrRemoteRejected is returned when the service refuses or fails a
// changeset for a reason other than "nothing to change".
var ErrRemoteRejected = errors.New("changeset rejected")

// Status classifies the outcome of a computed changeset.
type Status int

const (
	StatusHasChanges Status = iota
	StatusNoChanges
	StatusFailed
)

// Action is the kind of change predicted for one resource.
type Action string

const (
	ActionAdd    Action = "Add"
	ActionModify Action = "Modify"
	ActionRemove Action = "Remove"
	ActionImport Action = "Import"
)

// Record is one predicted resource-level change.
type Record struct {
	LogicalID    string
	PhysicalID   string
	ResourceType string
	Action       Action
	Scope        []string
	// Replacement mirrors the service's indicator: "True", "False" or
	// "Conditional".
	Replacement string
}

// Result is the interpreted outcome of one changeset.
type Result struct {
	Status  Status
	Records []Record
	// Reason carries the service-provided status reason, kept for the
	// no-changes and failure cases.
	Reason string
}

// DefaultNoChangeReasons are substrings CloudFormation uses in the
// StatusReason of a FAILED changeset that found nothing to do. The exact
// wording is provider-owned and has changed before, so the match is a
// configurable, case-insensitive substring test.
var DefaultNoChangeReasons = []string{
	"didn't contain changes",
	"no updates are to be performed",
}

// Interpreter turns a raw changeset description into a Result.
type Interpreter struct {
	// NoChangeReasons overrides DefaultNoChangeReasons when non-empty.
	NoChangeReasons []string
}

// Interpret classifies the changeset status and normalizes its records.
// A FAILED status whose reason matches a no-changes pattern yields
// StatusNoChanges; any other FAILED reason is an ErrRemoteRejected.
func (in Interpreter) Interpret(status types.ChangeSetStatus, reason string, changes []types.Change) (Result, error) {
	switch status {
	case types.ChangeSetStatusCreateComplete:
		records := normalize(changes)
		if len(records) == 0 {
			return Result{Status: StatusNoChanges, Reason: reason}, nil
		}
		return Result{Status: StatusHasChanges, Records: records, Reason: reason}, nil
	case types.ChangeSetStatusFailed:
		if in.isNoChangeReason(reason) {
			return Result{Status: StatusNoChanges, Reason: reason}, nil
		}
		return Result{Status: StatusFailed, Reason: reason}, fmt.Errorf("%w: %s", ErrRemoteRejected, reason)
	default:
		return Result{Status: StatusFailed, Reason: reason}, fmt.Errorf("%w: unexpected changeset status %s: %s", ErrRemoteRejected, status, reason)
	}
}

func (in Interpreter) isNoChangeReason(reason string) bool {
	patterns := in.NoChangeReasons
	if len(patterns) == 0 {
		patterns = DefaultNoChangeReasons
	}
	lowered := strings.ToLower(reason)
	for _, pattern := range patterns {
		if strings.Contains(lowered, strings.ToLower(pattern)) {
			return true
		}
	}
	return false
}

// normalize flattens resource changes and sorts them by logical id. The
// service does not guarantee ordering, so sorting keeps output reproducible
// across runs and fixtures.
func normalize(changes []types.Change) []Record {
	records := make([]Record, 0, len(changes))
	for _, change := range changes {
		if change.Type != types.ChangeTypeResource || change.ResourceChange == nil {
			continue
		}
		rc := change.ResourceChange
		record := Record{
			Action:      Action(rc.Action),
			Replacement: string(rc.Replacement),
		}
		if rc.LogicalResourceId != nil {
			record.LogicalID = *rc.LogicalResourceId
		}
		if rc.PhysicalResourceId != nil {
			record.PhysicalID = *rc.PhysicalResourceId
		}
		if rc.ResourceType != nil {
			record.ResourceType = *rc.ResourceType
		}
		for _, scope := range rc.Scope {
			record.Scope = append(record.Scope, string(scope))
		}
		records = append(records, record)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].LogicalID < records[j].LogicalID
	})
	return records
}
