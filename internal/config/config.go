// Package config assembles the nbclean run configuration from viper.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/jmylchreest/nbclean/internal/discover"
	"github.com/jmylchreest/nbclean/pkg/cleaner"
)

// Viper keys.
const (
	KeyDebug              = "debug"
	KeyQuiet              = "quiet"
	KeyLogJSON            = "log_json"
	KeyRoot               = "root"
	KeyExtension          = "extension"
	KeyExclude            = "exclude"
	KeyMetadataKeys       = "metadata_keys"
	KeyKeepOutputs        = "keep_outputs"
	KeyKeepExecutionCount = "keep_execution_count"
	KeyIndent             = "indent"
	KeyEnsureASCII        = "ensure_ascii"
	KeyDryRun             = "dry_run"
	KeyNoColor            = "no_color"
	KeyReportFormat       = "report_format"
	KeyReportFile         = "report_file"
)

// Config is the complete configuration of one run.
type Config struct {
	Debug   bool
	Quiet   bool
	LogJSON bool
	NoColor bool

	// Root overrides repository root discovery.
	Root string

	Extension string   `validate:"required,startswith=."`
	Exclude   []string `validate:"dive,required"`

	Cleaner cleaner.Config

	ReportFormat string `validate:"omitempty,oneof=json jsonl yaml"`
	ReportFile   string
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	def := cleaner.DefaultConfig()
	v.SetDefault(KeyExtension, discover.DefaultExtension)
	v.SetDefault(KeyMetadataKeys, def.MetadataKeys)
	v.SetDefault(KeyIndent, def.Indent)
}

// Load reads the configuration from v and validates it.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Debug:     v.GetBool(KeyDebug),
		Quiet:     v.GetBool(KeyQuiet),
		LogJSON:   v.GetBool(KeyLogJSON),
		NoColor:   v.GetBool(KeyNoColor),
		Root:      v.GetString(KeyRoot),
		Extension: v.GetString(KeyExtension),
		Exclude:   v.GetStringSlice(KeyExclude),
		Cleaner: cleaner.Config{
			ClearOutputs:        !v.GetBool(KeyKeepOutputs),
			ResetExecutionCount: !v.GetBool(KeyKeepExecutionCount),
			MetadataKeys:        v.GetStringSlice(KeyMetadataKeys),
			Indent:              v.GetInt(KeyIndent),
			EnsureASCII:         v.GetBool(KeyEnsureASCII),
			DryRun:              v.GetBool(KeyDryRun),
		},
		ReportFormat: strings.ToLower(v.GetString(KeyReportFormat)),
		ReportFile:   v.GetString(KeyReportFile),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field constraints and exclude pattern syntax.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		msgs := make([]string, len(verrs))
		for i, e := range verrs {
			msgs[i] = fmt.Sprintf("%s %s", fieldName(e), formatValidationError(e))
		}
		return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
	}

	if err := discover.ValidatePatterns(c.Exclude); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// fieldKeys maps struct field names to the config keys a user would set.
var fieldKeys = map[string]string{
	"Extension":    KeyExtension,
	"Exclude":      KeyExclude,
	"MetadataKeys": KeyMetadataKeys,
	"Indent":       KeyIndent,
	"ReportFormat": KeyReportFormat,
}

// fieldName names the failing field by its config key. Element errors from
// dive keep their index suffix, e.g. "exclude[0]".
func fieldName(e validator.FieldError) string {
	name, suffix := e.StructField(), ""
	if i := strings.IndexByte(name, '['); i > 0 {
		name, suffix = name[:i], name[i:]
	}
	if key, ok := fieldKeys[name]; ok {
		return key + suffix
	}
	return e.StructField()
}

// formatValidationError creates a human-readable error message.
func formatValidationError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s", e.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", e.Param())
	case "startswith":
		return fmt.Sprintf("must start with %q", e.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", e.Param())
	default:
		return fmt.Sprintf("failed validation '%s'", e.Tag())
	}
}
