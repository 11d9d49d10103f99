package cleaner

import "github.com/jmylchreest/nbclean/pkg/notebook"

// DefaultMetadataKey is the non-standard cell metadata key some front ends
// use to record execution timing and state.
const DefaultMetadataKey = "_execution"

// Config controls which volatile fields are cleared and how a changed
// notebook is written back.
type Config struct {
	// ClearOutputs empties the outputs list of code cells.
	ClearOutputs bool `json:"clear_outputs" yaml:"clear_outputs"`

	// ResetExecutionCount sets execution_count of code cells to null.
	ResetExecutionCount bool `json:"reset_execution_count" yaml:"reset_execution_count"`

	// MetadataKeys are removed from the metadata of code cells.
	MetadataKeys []string `json:"metadata_keys" yaml:"metadata_keys" validate:"dive,required"`

	// Indent is the number of spaces per nesting level in rewritten files.
	Indent int `json:"indent" yaml:"indent" validate:"min=0,max=8"`

	// EnsureASCII escapes non-ASCII characters in rewritten files.
	EnsureASCII bool `json:"ensure_ascii" yaml:"ensure_ascii"`

	// DryRun reports what would change without writing any file.
	DryRun bool `json:"dry_run" yaml:"dry_run"`
}

// DefaultConfig returns the standard cleaning behaviour.
func DefaultConfig() *Config {
	return &Config{
		ClearOutputs:        true,
		ResetExecutionCount: true,
		MetadataKeys:        []string{DefaultMetadataKey},
		Indent:              1,
	}
}

// EncodeOptions returns the serialization settings for rewritten files.
func (c *Config) EncodeOptions() notebook.EncodeOptions {
	return notebook.EncodeOptions{
		Indent:      c.Indent,
		EnsureASCII: c.EnsureASCII,
	}
}

// Rules builds the rule chain for this configuration.
func (c *Config) Rules() *Chain {
	var rules []Rule
	if c.ClearOutputs {
		rules = append(rules, ClearOutputs{})
	}
	if c.ResetExecutionCount {
		rules = append(rules, ResetExecutionCount{})
	}
	if len(c.MetadataKeys) > 0 {
		keys := make([]string, len(c.MetadataKeys))
		copy(keys, c.MetadataKeys)
		rules = append(rules, DropMetadataKeys{Keys: keys})
	}
	return NewChain(rules...)
}
