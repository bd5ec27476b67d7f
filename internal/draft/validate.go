package draft

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"propdocs/internal/model"
)

// ValidationError reports a draft that cannot be committed.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	must(v.RegisterValidation("document_type", func(fl validator.FieldLevel) bool {
		return model.DocumentType(fl.Field().String()).Valid()
	}))
	return v
}

func must(err error) {
	if err != nil {
		panic(fmt.Sprintf("draft: register validation: %v", err))
	}
}

func validatePayload(p *Payload) error {
	err := validate.Struct(p)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &ValidationError{Field: "payload", Reason: err.Error()}
	}
	fe := verrs[0]
	return &ValidationError{Field: fieldName(fe.Field()), Reason: reason(fe)}
}

func fieldName(f string) string {
	switch f {
	case "Type":
		return "document_type"
	case "NotificationDays":
		return "notification_period"
	}
	return strings.ToLower(f)
}

func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "document_type":
		return fmt.Sprintf("unknown document type %q", fe.Value())
	case "max", "lte":
		return "must be at most " + fe.Param()
	case "gte":
		return "must be at least " + fe.Param()
	}
	return "failed " + fe.Tag()
}
