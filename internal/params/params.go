// Where: internal/params/params.go
// What: Parameter override parsing and reconciliation.
// Why: Decide which values to submit for a preview without resupplying
//      every previously deployed parameter.
package params

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrInvalidParameterFormat is returned when an override argument is not
// parseable as key=value.
var ErrInvalidParameterFormat = errors.New("invalid parameter format")

// Deployed is one parameter as currently recorded on the stack. UsePrevious
// reflects the remote carry-forward marker: the stack can reuse the value
// without the client ever seeing it.
type Deployed struct {
	Key   string
	Value string
}

// Effective is one parameter as submitted for the preview. When UsePrevious
// is set, Value is empty and the remote service carries the deployed value
// forward.
type Effective struct {
	Key         string
	Value       string
	UsePrevious bool
}

// ParseOverrides converts raw key=value arguments into an override map.
// Later duplicates win, matching how repeated flags usually behave.
func ParseOverrides(args []string) (map[string]string, error) {
	overrides := make(map[string]string, len(args))
	for _, arg := range args {
		key, value, found := strings.Cut(arg, "=")
		if !found {
			return nil, fmt.Errorf("%w: no '=' found in %q", ErrInvalidParameterFormat, arg)
		}
		if key == "" {
			return nil, fmt.Errorf("%w: empty key in %q", ErrInvalidParameterFormat, arg)
		}
		overrides[key] = value
	}
	return overrides, nil
}

// Reconcile merges user overrides with the deployed parameter list.
// Every key present in either input appears exactly once in the result:
// overridden keys submit the literal value, untouched deployed keys request
// reuse of the previous value, and brand-new keys submit the literal value.
// The result is sorted by key so output and requests are reproducible.
func Reconcile(deployed []Deployed, overrides map[string]string) []Effective {
	effective := make([]Effective, 0, len(deployed)+len(overrides))
	seen := make(map[string]bool, len(deployed))

	for _, param := range deployed {
		seen[param.Key] = true
		if value, ok := overrides[param.Key]; ok {
			effective = append(effective, Effective{Key: param.Key, Value: value})
			continue
		}
		effective = append(effective, Effective{Key: param.Key, UsePrevious: true})
	}

	for key, value := range overrides {
		if seen[key] {
			continue
		}
		effective = append(effective, Effective{Key: key, Value: value})
	}

	sort.Slice(effective, func(i, j int) bool {
		return effective[i].Key < effective[j].Key
	})
	return effective
}
