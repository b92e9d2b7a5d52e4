package ledger

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Messages shown to the user.
const (
	MessageMissingFields = "Please fill in all fields."
	MessageInvalidPrice  = "Please enter a valid price."
	DeletePrompt         = "Are you sure you want to delete this entry?"
)

// FormInput holds the five values of the entry form.
type FormInput struct {
	Name        string `json:"name"`
	Date        string `json:"date"`
	Product     string `json:"product"`
	Price       string `json:"price"`
	PaymentType string `json:"payment_type"`
}

// ValidationError reports required form fields that were left empty.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "missing required fields: " + strings.Join(e.Fields, ", ")
}

// requiredFields is what the form must carry. Name is checked after trimming;
// date and price must merely be non-empty.
type requiredFields struct {
	Name  string `form:"name" validate:"required"`
	Date  string `form:"date" validate:"required"`
	Price string `form:"price" validate:"required"`
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		return field.Tag.Get("form")
	})
	return v
}

func (l *Ledger) validateForm(in FormInput) error {
	err := l.validate.Struct(requiredFields{
		Name:  strings.TrimSpace(in.Name),
		Date:  in.Date,
		Price: in.Price,
	})
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	verr := &ValidationError{}
	for _, fe := range fieldErrs {
		verr.Fields = append(verr.Fields, fe.Field())
	}
	return verr
}
