package config

import (
	"strings"
	"testing"
)

func TestValidationError_Error(t *testing.T) {
	err := ValidationError{
		Field:   "test.field",
		Value:   123,
		Message: "must be greater than zero",
	}

	expected := "test.field: must be greater than zero (got: 123)"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
}

func TestValidationErrors_Error(t *testing.T) {
	t.Run("empty errors", func(t *testing.T) {
		var errs ValidationErrors
		if errs.Error() != "" {
			t.Errorf("Error() for empty = %q, want empty string", errs.Error())
		}
	})

	t.Run("single error", func(t *testing.T) {
		errs := ValidationErrors{
			{Field: "test.field", Value: 123, Message: "is invalid"},
		}
		expected := "test.field: is invalid (got: 123)"
		if errs.Error() != expected {
			t.Errorf("Error() = %q, want %q", errs.Error(), expected)
		}
	})

	t.Run("multiple errors", func(t *testing.T) {
		errs := ValidationErrors{
			{Field: "field1", Value: "bad", Message: "is invalid"},
			{Field: "field2", Value: -1, Message: "must be positive"},
		}
		result := errs.Error()
		if !strings.Contains(result, "2 validation errors") {
			t.Errorf("Error() should mention 2 errors: %s", result)
		}
		if !strings.Contains(result, "field1") || !strings.Contains(result, "field2") {
			t.Errorf("Error() should mention both fields: %s", result)
		}
	})
}

func TestConfig_Validate_DefaultConfig(t *testing.T) {
	cfg := Default()
	errs := cfg.Validate()
	if len(errs) != 0 {
		t.Errorf("Default config should be valid, got %d errors: %v", len(errs), errs)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name      string
		modify    func(*Config)
		wantField string
	}{
		{"unknown backend", func(c *Config) { c.Task.Backend = "jira" }, "task.backend"},
		{"empty binary", func(c *Config) { c.Task.Binary = " " }, "task.binary"},
		{"bad rank attribute", func(c *Config) { c.Task.RankAttribute = "1ord" }, "task.rank_attribute"},
		{"attribute clash", func(c *Config) { c.Task.EstimateAttribute = "ord" }, "task.estimate_attribute"},
		{"no lanes", func(c *Config) { c.Lanes = nil }, "lanes"},
		{"blank lane", func(c *Config) { c.Lanes = []string{"todo", ""} }, "lanes[1]"},
		{"lane with colon", func(c *Config) { c.Lanes = []string{"to:do", "todo"} }, "lanes[0]"},
		{"duplicate lane", func(c *Config) { c.Lanes = []string{"todo", "todo"} }, "lanes[1]"},
		{"zero depth", func(c *Config) { c.Refine.MaxDepth = 0 }, "refine.max_depth"},
		{"negative list limit", func(c *Config) { c.Refine.ListLimit = -1 }, "refine.list_limit"},
		{"unknown refine lane", func(c *Config) { c.Refine.Lane = "review" }, "refine.lane"},
		{"minimum step too small", func(c *Config) { c.Plan.MinimumStep = 0.005 }, "plan.minimum_step"},
		{"default lane not configured", func(c *Config) { c.Plan.DefaultLane = "review" }, "plan.default_lane"},
		{"bad log level", func(c *Config) { c.Logging.Level = "trace" }, "logging.level"},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)

			errs := cfg.Validate()
			if len(errs) != 1 {
				t.Fatalf("Validate() returned %d errors, want 1: %v", len(errs), errs)
			}
			if errs[0].Field != tt.wantField {
				t.Errorf("Validate() field = %q, want %q", errs[0].Field, tt.wantField)
			}
		})
	}
}

func TestConfig_Validate_AcceptsVariants(t *testing.T) {
	cfg := Default()
	cfg.Task.Backend = BackendSQLite
	cfg.Task.Binary = ""
	cfg.Refine.Lane = "doing"
	cfg.Refine.ListLimit = 0
	cfg.Plan.MinimumStep = MinimumStepFloor
	cfg.Logging.Level = "DEBUG"
	cfg.Logging.Format = "JSON"

	if errs := cfg.Validate(); len(errs) != 0 {
		t.Errorf("Validate() returned errors: %v", errs)
	}
}

func TestConfig_Validate_MultipleErrors(t *testing.T) {
	cfg := Default()
	cfg.Refine.MaxDepth = 0
	cfg.Plan.MinimumStep = 0

	if errs := cfg.Validate(); len(errs) != 2 {
		t.Errorf("Validate() returned %d errors, want 2: %v", len(errs), errs)
	}
}
