package form

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"bjj-tournament/internal/apperr"
)

// ValidationError names the field that stopped a submission.
type ValidationError struct {
	Field   string
	Title   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

const titleValidation = "Error de Validación"

// MaxWeightKg is the largest weight the registration record can hold.
const MaxWeightKg = 300

var validate = validator.New(validator.WithRequiredStructEnabled())

type formatRules struct {
	Email  string `validate:"omitempty,email"`
	DOB    string `validate:"omitempty,datetime=2006-01-02"`
	Weight string `validate:"omitempty,numeric"`
}

// Validate checks st against the schema and returns the first problem found:
// required fields in schema order, then conditional fields, then mandatory
// documents, then value formats.
func (s *Schema) Validate(st *State) error {
	if err := s.checkRequired(st, false); err != nil {
		return err
	}
	if err := s.checkRequired(st, true); err != nil {
		return err
	}
	for _, d := range s.Documents() {
		if d.Required && st.File(d.ID) == nil {
			return fail(d.ID, s.MissingDocsTitle, s.MissingDocsMessage)
		}
	}
	return s.checkFormats(st)
}

func (s *Schema) checkRequired(st *State, conditional bool) error {
	for _, d := range s.Fields {
		if d.IsFile() || !d.Required || (d.When != nil) != conditional {
			continue
		}
		if !d.Visible(st) {
			continue
		}
		if strings.TrimSpace(st.Get(d.ID)) != "" {
			continue
		}
		msg := d.Message
		if msg == "" {
			msg = fmt.Sprintf("Por favor, completa el campo %q.", d.Label)
		}
		return fail(d.ID, titleValidation, msg)
	}
	return nil
}

func (s *Schema) checkFormats(st *State) error {
	rules := formatRules{
		Email: strings.TrimSpace(st.Get(s.EmailField)),
		DOB:   strings.TrimSpace(st.Get(s.DOBField)),
	}
	if s.WeightField != "" {
		rules.Weight = strings.TrimSpace(st.Get(s.WeightField))
	}
	if err := validate.Struct(rules); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return s.formatError(verrs[0])
		}
		return apperr.Wrap(err, apperr.CodeValidation, "formulario inválido")
	}

	if dob, err := ParseDate(rules.DOB); err == nil && dob.After(st.today()) {
		return fail(s.DOBField, titleValidation, "La fecha de nacimiento no puede ser futura.")
	}
	if rules.Weight != "" {
		w, err := strconv.ParseFloat(rules.Weight, 64)
		if err != nil || w <= 0 {
			return fail(s.WeightField, titleValidation, "El peso debe ser un número mayor a cero.")
		}
		if w > MaxWeightKg {
			return fail(s.WeightField, titleValidation, fmt.Sprintf("El peso no puede superar los %d kg.", MaxWeightKg))
		}
	}
	return nil
}

func (s *Schema) formatError(fe validator.FieldError) error {
	switch fe.StructField() {
	case "Email":
		return fail(s.EmailField, titleValidation, "Por favor, ingresa un correo electrónico válido.")
	case "DOB":
		return fail(s.DOBField, titleValidation, "La fecha de nacimiento debe tener el formato AAAA-MM-DD.")
	default:
		return fail(s.WeightField, titleValidation, "El peso debe ser un número mayor a cero.")
	}
}

func fail(field, title, msg string) error {
	return apperr.Wrap(&ValidationError{Field: field, Title: title, Message: msg}, apperr.CodeValidation, msg)
}
