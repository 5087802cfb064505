// Where: internal/stack/capabilities.go
// What: Capability name mapping.
// Why: Config and flags carry capability names as strings.
package stack

import "github.com/aws/aws-sdk-go-v2/service/cloudformation/types"

// ParseCapabilities maps capability names onto SDK values. Unknown names
// pass through unchanged so the service reports them precisely.
func ParseCapabilities(names []string) []types.Capability {
	if len(names) == 0 {
		return nil
	}
	capabilities := make([]types.Capability, 0, len(names))
	for _, name := range names {
		capabilities = append(capabilities, types.Capability(name))
	}
	return capabilities
}
