package cleaner

import (
	"errors"
	"strconv"

	"github.com/jmylchreest/nbclean/pkg/notebook"
)

// Rule removes one kind of volatile state from a code cell.
type Rule interface {
	// Apply mutates the cell in place and reports whether anything changed.
	Apply(cell notebook.Cell) bool

	// Name identifies the rule in stats and logs.
	Name() string
}

// Rule names.
const (
	RuleClearOutputs        = "clear-outputs"
	RuleResetExecutionCount = "reset-execution-count"
	RuleDropMetadataKeys    = "drop-metadata-keys"
)

// ClearOutputs replaces a non-empty outputs list with an empty one.
type ClearOutputs struct{}

// Apply clears outputs when present and non-empty.
func (ClearOutputs) Apply(cell notebook.Cell) bool {
	v, ok := cell.Get(notebook.KeyOutputs)
	if !ok || !truthy(v) {
		return false
	}
	cell.Set(notebook.KeyOutputs, []any{})
	return true
}

// Name returns the rule name.
func (ClearOutputs) Name() string { return RuleClearOutputs }

// ResetExecutionCount sets a recorded execution_count back to null.
// Null, the empty string and zero are all treated as already clear.
type ResetExecutionCount struct{}

// Apply resets the execution counter when it carries a value.
func (ResetExecutionCount) Apply(cell notebook.Cell) bool {
	v, ok := cell.Get(notebook.KeyExecutionCount)
	if !ok || unsetMarker(v) {
		return false
	}
	cell.Set(notebook.KeyExecutionCount, nil)
	return true
}

// Name returns the rule name.
func (ResetExecutionCount) Name() string { return RuleResetExecutionCount }

// DropMetadataKeys removes the given keys from the cell metadata object.
type DropMetadataKeys struct {
	Keys []string
}

// Apply deletes every configured key present in the cell metadata.
func (r DropMetadataKeys) Apply(cell notebook.Cell) bool {
	metadata, ok := cell.GetObject(notebook.KeyMetadata)
	if !ok {
		return false
	}
	changed := false
	for _, key := range r.Keys {
		if metadata.Delete(key) {
			changed = true
		}
	}
	return changed
}

// Name returns the rule name.
func (DropMetadataKeys) Name() string { return RuleDropMetadataKeys }

// unsetMarker reports whether an execution marker counts as never run.
// false compares equal to zero, so it is clear too.
func unsetMarker(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return val == ""
	case bool:
		return !val
	case notebook.Number:
		return isZero(val)
	case int:
		return val == 0
	}
	return false
}

// truthy follows the usual JSON-value truthiness: empty containers and
// strings, zero, false and null are false.
func truthy(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case bool:
		return val
	case string:
		return val != ""
	case notebook.Number:
		return !isZero(val)
	case int:
		return val != 0
	case []any:
		return len(val) > 0
	case *notebook.Object:
		return val.Len() > 0
	}
	return true
}

func isZero(n notebook.Number) bool {
	f, err := strconv.ParseFloat(string(n), 64)
	if f == 0 && errors.Is(err, strconv.ErrRange) {
		// Underflow, e.g. 1e-400.
		return true
	}
	return err == nil && f == 0
}
