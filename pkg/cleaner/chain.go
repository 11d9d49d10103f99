package cleaner

import (
	"strings"

	"github.com/jmylchreest/nbclean/pkg/notebook"
)

// Chain applies multiple rules to a cell in sequence.
type Chain struct {
	rules []Rule
}

// NewChain creates a chain that applies rules in the order provided.
//
// Example:
//
//	chain := cleaner.NewChain(
//	    cleaner.ClearOutputs{},
//	    cleaner.DropMetadataKeys{Keys: []string{"_execution"}},
//	)
func NewChain(rules ...Rule) *Chain {
	return &Chain{rules: rules}
}

// Apply runs every rule against the cell and returns the names of the rules
// that changed it. Every rule runs even after an earlier one reported a change.
func (c *Chain) Apply(cell notebook.Cell) []string {
	var changed []string
	for _, rule := range c.rules {
		if rule.Apply(cell) {
			changed = append(changed, rule.Name())
		}
	}
	return changed
}

// Name returns the names of all chained rules.
func (c *Chain) Name() string {
	names := make([]string, len(c.rules))
	for i, rule := range c.rules {
		names[i] = rule.Name()
	}
	return "chain(" + strings.Join(names, "->") + ")"
}
