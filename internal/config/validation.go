package config

import (
	"fmt"
	"slices"
	"strings"

	"goanthy/internal/keybind"
	"goanthy/internal/keys"
)

// Accepted enumeration values.
var (
	InputModes     = []string{"hiragana", "katakana", "half_katakana", "latin", "wide_latin"}
	TypingMethods  = []string{"romaji", "kana", "thumb_shift"}
	SegmentModes   = []string{"multi", "single", "immediate_multi", "immediate_single"}
	FocusBehaviors = []string{"commit", "clear", "retain"}
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// ValidateConfig performs comprehensive validation of the configuration.
func ValidateConfig(c *Config) error {
	var errs ValidationErrors

	if c.Version < 1 || c.Version > Version {
		errs = append(errs, ValidationError{
			Field:   "version",
			Message: fmt.Sprintf("unsupported version %d (current: %d)", c.Version, Version),
		})
	}

	errs = append(errs, validateCommon(&c.Common, c.Shortcut)...)
	errs = append(errs, validateThumb(&c.Thumb)...)
	errs = append(errs, validateShortcut(c.Shortcut)...)
	errs = append(errs, validateLearning(&c.Learning)...)
	errs = append(errs, validateLogging(&c.Logging)...)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func oneOf(field, value string, valid []string) ValidationErrors {
	if slices.Contains(valid, value) {
		return nil
	}
	return ValidationErrors{{
		Field:   field,
		Message: fmt.Sprintf("invalid value %q (valid: %s)", value, strings.Join(valid, ", ")),
	}}
}

func validateCommon(c *CommonConfig, shortcuts map[string]map[string][]string) ValidationErrors {
	var errs ValidationErrors
	errs = append(errs, oneOf("common.input_mode", c.InputMode, InputModes)...)
	errs = append(errs, oneOf("common.typing_method", c.TypingMethod, TypingMethods)...)
	errs = append(errs, oneOf("common.segment_mode", c.SegmentMode, SegmentModes)...)
	errs = append(errs, oneOf("common.behavior_on_focus_out", c.BehaviorOnFocusOut, FocusBehaviors)...)

	if _, builtin := keybind.Profiles()[c.ShortcutType]; !builtin {
		if _, custom := shortcuts[c.ShortcutType]; !custom {
			errs = append(errs, ValidationError{
				Field:   "common.shortcut_type",
				Message: fmt.Sprintf("unknown shortcut profile %q", c.ShortcutType),
			})
		}
	}

	if c.PageSize < 1 || c.PageSize > 10 {
		errs = append(errs, *RangeError("common.page_size", 1, 10))
	}

	for i, s := range c.Normalization {
		if s.From == "" {
			errs = append(errs, *RequiredFieldError(fmt.Sprintf("common.normalization[%d].from", i)))
		}
	}
	return errs
}

func validateThumb(t *ThumbConfig) ValidationErrors {
	var errs ValidationErrors

	for field, name := range map[string]string{"thumb.ls": t.LS, "thumb.rs": t.RS} {
		if _, ok := keys.KeyvalFromName(name); !ok {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("unknown key %q", name),
			})
		}
	}
	if t.LS != "" && t.LS == t.RS {
		errs = append(errs, ValidationError{
			Field:   "thumb.rs",
			Message: "left and right thumb keys must differ",
		})
	}

	if t.T1 < 1 || t.T1 > 1000 {
		errs = append(errs, *RangeError("thumb.t1", 1, 1000))
	}
	if t.T2 < 1 || t.T2 > 1000 {
		errs = append(errs, *RangeError("thumb.t2", 1, 1000))
	}

	for name, chars := range t.Layout {
		if _, ok := keys.KeyvalFromName(name); !ok {
			errs = append(errs, ValidationError{
				Field:   "thumb.layout." + name,
				Message: "unknown key",
			})
		}
		if len(chars) == 0 || len(chars) > 3 {
			errs = append(errs, ValidationError{
				Field:   "thumb.layout." + name,
				Message: "want 1 to 3 characters",
			})
		}
	}

	for pair := range t.Chords {
		if len(strings.Fields(pair)) != 2 {
			errs = append(errs, ValidationError{
				Field:   "thumb.chords." + pair,
				Message: "want two space-separated keys",
			})
		}
	}
	return errs
}

func validateShortcut(profiles map[string]map[string][]string) ValidationErrors {
	var errs ValidationErrors
	for profile, table := range profiles {
		for command, names := range table {
			field := fmt.Sprintf("shortcut.%s.%s", profile, command)
			if _, err := keybind.ParseCommand(command); err != nil {
				errs = append(errs, ValidationError{Field: field, Message: "unknown command"})
				continue
			}
			for _, name := range names {
				if _, err := keys.ParseName(name); err != nil {
					errs = append(errs, ValidationError{Field: field, Message: err.Error()})
				}
			}
		}
	}
	slices.SortFunc(errs, func(a, b ValidationError) int { return strings.Compare(a.Field, b.Field) })
	return errs
}

func validateLearning(l *LearningConfig) ValidationErrors {
	if l.Enabled && l.Path == "" {
		return ValidationErrors{*RequiredFieldError("learning.path")}
	}
	return nil
}

func validateLogging(l *LoggingConfig) ValidationErrors {
	var errs ValidationErrors

	switch l.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, ValidationError{
			Field:   "logging.level",
			Message: fmt.Sprintf("invalid log level: %s (valid: debug, info, warn, error)", l.Level),
		})
	}

	switch l.Format {
	case "text", "json":
	default:
		errs = append(errs, ValidationError{
			Field:   "logging.format",
			Message: fmt.Sprintf("invalid log format: %s (valid: text, json)", l.Format),
		})
	}

	switch l.Output {
	case "stdout", "stderr":
	case "file":
		if l.FilePath == "" {
			errs = append(errs, ValidationError{
				Field:   "logging.file_path",
				Message: "file path is required when output is 'file'",
			})
		}
	default:
		errs = append(errs, ValidationError{
			Field:   "logging.output",
			Message: fmt.Sprintf("invalid log output: %q (valid: stdout, stderr, file)", l.Output),
		})
	}

	if l.MaxSizeMB < 1 {
		errs = append(errs, ValidationError{
			Field:   "logging.max_size_mb",
			Message: "max size must be at least 1 MB",
		})
	}
	if l.MaxBackups < 0 {
		errs = append(errs, ValidationError{
			Field:   "logging.max_backups",
			Message: "max backups cannot be negative",
		})
	}
	if l.MaxAgeDays < 0 {
		errs = append(errs, ValidationError{
			Field:   "logging.max_age_days",
			Message: "max age cannot be negative",
		})
	}
	return errs
}

// RequiredFieldError creates a validation error for a missing required field.
func RequiredFieldError(field string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: "required field is missing",
	}
}

// RangeError creates a validation error for a value out of range.
func RangeError(field string, min, max any) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: fmt.Sprintf("value must be between %v and %v", min, max),
	}
}
