package form

import (
	"regexp"
	"strings"
	"testing"
)

func TestProcess_TransformRunsBeforeValidators(t *testing.T) {
	fields := []Field{
		{
			Name:       "name",
			Transform:  TrimString,
			Validators: []Validator{MinLen(2, "too short")},
		},
	}

	normalized, errs := Process(fields, map[string]any{"name": "  Jan  "})
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if normalized["name"] != "Jan" {
		t.Fatalf("normalized name = %q, want %q", normalized["name"], "Jan")
	}
}

func TestProcess_FirstFailingValidatorPerField(t *testing.T) {
	fields := []Field{
		{
			Name:      "code",
			Transform: TrimString,
			Validators: []Validator{
				Required("required"),
				MinLen(5, "too short"),
				Match(regexp.MustCompile(`^\d+$`), "digits only"),
			},
		},
	}

	_, errs := Process(fields, map[string]any{"code": "ab"})
	if len(errs) != 1 {
		t.Fatalf("errors = %v, want exactly one", errs)
	}
	if errs[0].Message != "too short" {
		t.Fatalf("message = %q, want %q", errs[0].Message, "too short")
	}
}

func TestProcess_CollectsErrorsAcrossFieldsInDeclarationOrder(t *testing.T) {
	fields := []Field{
		{Name: "first", Transform: TrimString, Validators: []Validator{Required("first required")}},
		{Name: "second", Transform: TrimString, Validators: []Validator{Required("second required")}},
		{Name: "third", Transform: TrimString, Validators: []Validator{Required("third required")}},
	}

	// Порядок в ошибках определяется объявлением полей, а не входной картой.
	_, errs := Process(fields, map[string]any{"third": "", "first": " "})
	if len(errs) != 3 {
		t.Fatalf("errors = %v, want three", errs)
	}
	for i, want := range []string{"first", "second", "third"} {
		if errs[i].Field != want {
			t.Fatalf("errs[%d].Field = %q, want %q", i, errs[i].Field, want)
		}
	}
}

func TestProcess_OptionalEmptySkipsValidators(t *testing.T) {
	fields := []Field{
		{
			Name:       "addressLine2",
			Optional:   true,
			Transform:  TrimString,
			Validators: []Validator{MinLen(3, "too short")},
		},
	}

	_, errs := Process(fields, map[string]any{"addressLine2": "   "})
	if len(errs) != 0 {
		t.Fatalf("optional empty field must skip validators, got %v", errs)
	}

	_, errs = Process(fields, map[string]any{"addressLine2": "ab"})
	if len(errs) != 1 {
		t.Fatalf("optional non-empty field must be validated, got %v", errs)
	}
}

func TestProcess_MissingFieldStillTransformed(t *testing.T) {
	fields := []Field{
		{
			Name:       "city",
			Transform:  TrimString,
			Validators: []Validator{Required("required")},
		},
	}

	normalized, errs := Process(fields, map[string]any{})
	if len(errs) != 1 {
		t.Fatalf("missing required field must fail, got %v", errs)
	}
	if normalized["city"] != "" {
		t.Fatalf("normalized city = %v, want empty string", normalized["city"])
	}
}

func TestProcess_IsBoolRejectsTruthyValues(t *testing.T) {
	fields := []Field{
		{Name: "accepted", Validators: []Validator{IsBool("must be boolean")}},
	}

	for _, value := range []any{"true", 1.0, nil, "yes"} {
		_, errs := Process(fields, map[string]any{"accepted": value})
		if len(errs) != 1 {
			t.Fatalf("value %v must fail boolean check, got %v", value, errs)
		}
	}

	for _, value := range []any{true, false} {
		_, errs := Process(fields, map[string]any{"accepted": value})
		if len(errs) != 0 {
			t.Fatalf("value %v must pass boolean check, got %v", value, errs)
		}
	}
}

func TestProcess_PredicateValidator(t *testing.T) {
	fields := []Field{
		{
			Name:       "word",
			Transform:  TrimString,
			Validators: []Validator{Predicate(func(s string) bool { return strings.HasPrefix(s, "dr") }, "bad prefix")},
		},
	}

	_, errs := Process(fields, map[string]any{"word": " driving "})
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}

	_, errs = Process(fields, map[string]any{"word": "parking"})
	if len(errs) != 1 || errs[0].Message != "bad prefix" {
		t.Fatalf("errors = %v, want single bad prefix", errs)
	}
}
