// Package form aggregates field validators into a pass/fail result and
// reports every problem through the notification layer at once.
package form

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/SahinShazi/HealthSync/internal/notify"
)

const (
	MsgRequired  = "This field is required"
	MsgSubmitted = "Form submitted successfully!"
)

// Rule checks a non-empty field value.
type Rule struct {
	Check   func(string) bool
	Message string
}

type Field struct {
	Name     string `json:"name"`
	Value    string `json:"value"`
	Required bool   `json:"required"`
}

// Selection is a required choice with no text input of its own. A missing
// choice is reported as a banner rather than a field annotation.
type Selection struct {
	Name    string `json:"name"`
	Value   string `json:"value"`
	Message string `json:"message"`
}

type Form struct {
	Fields     []Field     `json:"fields"`
	Selections []Selection `json:"selections"`
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type Result struct {
	Valid   bool         `json:"valid"`
	Errors  []FieldError `json:"errors"`
	Banners []string     `json:"banners"`
}

// Notifier is the part of the notification layer the controller drives.
type Notifier interface {
	AttachFieldError(scope, field, message string)
	ClearFieldError(scope, field string)
	ClearAll(scope string)
	Banner(scope, message string) notify.Token
}

type Controller struct {
	notes  Notifier
	rules  map[string]Rule
	tracer trace.Tracer
}

// NewController returns a controller that applies rules by field name.
// rules may be nil for forms that only check required fields.
func NewController(n Notifier, rules map[string]Rule) *Controller {
	if rules == nil {
		rules = map[string]Rule{}
	}
	return &Controller{
		notes:  n,
		rules:  rules,
		tracer: otel.Tracer("github.com/SahinShazi/HealthSync/internal/form"),
	}
}

// Validate clears the scope's annotations and checks every field. It never
// stops at the first failure.
func (c *Controller) Validate(ctx context.Context, scope string, f Form) Result {
	_, span := c.tracer.Start(ctx, "form.Validate")
	defer span.End()

	c.notes.ClearAll(scope)
	res := Result{Valid: true, Errors: []FieldError{}, Banners: []string{}}

	for _, field := range f.Fields {
		if msg, ok := c.check(field); !ok {
			c.notes.AttachFieldError(scope, field.Name, msg)
			res.Errors = append(res.Errors, FieldError{Field: field.Name, Message: msg})
			res.Valid = false
		}
	}
	for _, sel := range f.Selections {
		if strings.TrimSpace(sel.Value) == "" {
			c.notes.Banner(scope, sel.Message)
			res.Banners = append(res.Banners, sel.Message)
			res.Valid = false
		}
	}

	span.SetAttributes(
		attribute.Bool("form.valid", res.Valid),
		attribute.Int("form.field_errors", len(res.Errors)),
	)
	return res
}

// ValidateField checks one field on its own, attaching or clearing its
// annotation.
func (c *Controller) ValidateField(scope string, field Field) (FieldError, bool) {
	msg, ok := c.check(field)
	if !ok {
		c.notes.AttachFieldError(scope, field.Name, msg)
		return FieldError{Field: field.Name, Message: msg}, false
	}
	c.notes.ClearFieldError(scope, field.Name)
	return FieldError{}, true
}

// check returns the first failure for the field: missing before malformed.
func (c *Controller) check(field Field) (string, bool) {
	value := strings.TrimSpace(field.Value)
	if value == "" {
		if field.Required {
			return MsgRequired, false
		}
		return "", true
	}
	if rule, ok := c.rules[field.Name]; ok && !rule.Check(field.Value) {
		return rule.Message, false
	}
	return "", true
}
