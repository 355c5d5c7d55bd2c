package config

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "plan.minimum_step")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// attributeRegex matches Taskwarrior UDA names.
var attributeRegex = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_]*$`)

// MinimumStepFloor is the smallest accepted plan.minimum_step. Rank keys are
// stored with two decimals, so a smaller step would round to nothing.
const MinimumStepFloor = 0.01

// ValidLogLevels returns the list of valid log levels
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// ValidLogFormats returns the list of valid log formats
func ValidLogFormats() []string {
	return []string{"text", "json"}
}

// Validate checks the Config for invalid values and returns all validation errors found
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	errors = append(errors, c.validateTask()...)
	errors = append(errors, c.validateLanes()...)
	errors = append(errors, c.validateRefine()...)
	errors = append(errors, c.validatePlan()...)
	errors = append(errors, c.validateLogging()...)

	return errors
}

func (c *Config) validateTask() []ValidationError {
	var errors []ValidationError

	if !slices.Contains(ValidBackends(), c.Task.Backend) {
		errors = append(errors, ValidationError{
			Field:   "task.backend",
			Value:   c.Task.Backend,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidBackends(), ", ")),
		})
	}

	if c.Task.Backend == BackendTaskwarrior && strings.TrimSpace(c.Task.Binary) == "" {
		errors = append(errors, ValidationError{
			Field:   "task.binary",
			Value:   c.Task.Binary,
			Message: "must not be empty",
		})
	}

	attrs := []struct {
		field string
		value string
	}{
		{"task.rank_attribute", c.Task.RankAttribute},
		{"task.lane_attribute", c.Task.LaneAttribute},
		{"task.estimate_attribute", c.Task.EstimateAttribute},
	}
	seen := make(map[string]string)
	for _, a := range attrs {
		if !attributeRegex.MatchString(a.value) {
			errors = append(errors, ValidationError{
				Field:   a.field,
				Value:   a.value,
				Message: "must start with a letter and contain only letters, digits and underscores",
			})
			continue
		}
		if other, ok := seen[a.value]; ok {
			errors = append(errors, ValidationError{
				Field:   a.field,
				Value:   a.value,
				Message: fmt.Sprintf("must differ from %s", other),
			})
			continue
		}
		seen[a.value] = a.field
	}

	return errors
}

func (c *Config) validateLanes() []ValidationError {
	var errors []ValidationError

	if len(c.Lanes) == 0 {
		return append(errors, ValidationError{
			Field:   "lanes",
			Value:   c.Lanes,
			Message: "must list at least one lane",
		})
	}

	seen := make(map[string]bool, len(c.Lanes))
	for i, lane := range c.Lanes {
		field := fmt.Sprintf("lanes[%d]", i)
		if strings.TrimSpace(lane) == "" || strings.ContainsAny(lane, " \t:") {
			errors = append(errors, ValidationError{
				Field:   field,
				Value:   lane,
				Message: "must be a non-empty word without spaces or colons",
			})
			continue
		}
		if seen[lane] {
			errors = append(errors, ValidationError{
				Field:   field,
				Value:   lane,
				Message: "duplicate lane",
			})
		}
		seen[lane] = true
	}

	return errors
}

func (c *Config) validateRefine() []ValidationError {
	var errors []ValidationError

	if c.Refine.MaxDepth < 1 {
		errors = append(errors, ValidationError{
			Field:   "refine.max_depth",
			Value:   c.Refine.MaxDepth,
			Message: "must be at least 1",
		})
	}

	if c.Refine.ListLimit < 0 {
		errors = append(errors, ValidationError{
			Field:   "refine.list_limit",
			Value:   c.Refine.ListLimit,
			Message: "must be non-negative (0 means unlimited)",
		})
	}

	if c.Refine.Lane != "" && len(c.Lanes) > 0 && !c.HasLane(c.Refine.Lane) {
		errors = append(errors, ValidationError{
			Field:   "refine.lane",
			Value:   c.Refine.Lane,
			Message: fmt.Sprintf("must be empty or one of: %s", strings.Join(c.Lanes, ", ")),
		})
	}

	return errors
}

func (c *Config) validatePlan() []ValidationError {
	var errors []ValidationError

	if c.Plan.MinimumStep < MinimumStepFloor {
		errors = append(errors, ValidationError{
			Field:   "plan.minimum_step",
			Value:   c.Plan.MinimumStep,
			Message: fmt.Sprintf("must be at least %g", MinimumStepFloor),
		})
	}

	if len(c.Lanes) > 0 && !c.HasLane(c.Plan.DefaultLane) {
		errors = append(errors, ValidationError{
			Field:   "plan.default_lane",
			Value:   c.Plan.DefaultLane,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(c.Lanes, ", ")),
		})
	}

	return errors
}

func (c *Config) validateLogging() []ValidationError {
	var errors []ValidationError

	if !slices.Contains(ValidLogLevels(), strings.ToLower(c.Logging.Level)) {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogLevels(), ", ")),
		})
	}

	if !slices.Contains(ValidLogFormats(), strings.ToLower(c.Logging.Format)) {
		errors = append(errors, ValidationError{
			Field:   "logging.format",
			Value:   c.Logging.Format,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogFormats(), ", ")),
		})
	}

	return errors
}
