package validator

import (
	"reflect"
	"strings"

	"github.com/SAP-F-2025/interview-service/internal/interview"
	"github.com/go-playground/validator/v10"
)

// Validator combines struct tag validation with question bank checks
type Validator struct {
	structValidator   *validator.Validate
	questionValidator *QuestionValidator
}

func New() *Validator {
	structValidator := validator.New()
	registerCustomValidators(structValidator)

	return &Validator{
		structValidator:   structValidator,
		questionValidator: NewQuestionValidator(),
	}
}

// ValidateStruct validates struct tags only
func (v *Validator) ValidateStruct(s interface{}) error {
	return v.structValidator.Struct(s)
}

// Validate validates struct tags and returns shared ValidationErrors on failure
func (v *Validator) Validate(s interface{}) error {
	if err := v.ValidateStruct(s); err != nil {
		if errs := ToValidationErrors(err); len(errs) > 0 {
			return errs
		}
		return err
	}
	return nil
}

// Engine exposes the underlying validator so gin binding can share tags
func (v *Validator) Engine() *validator.Validate {
	return v.structValidator
}

func (v *Validator) Question() *QuestionValidator {
	return v.questionValidator
}

// RegisterCustomValidators adds the interview tags to an existing engine,
// such as the one gin uses for binding.
func RegisterCustomValidators(validate *validator.Validate) {
	registerCustomValidators(validate)
}

func registerCustomValidators(validate *validator.Validate) {
	validate.RegisterValidation("interview_type", validateInterviewType)
	validate.RegisterValidation("interview_mode", validateInterviewMode)

	// Custom tag name function for better error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

func validateInterviewType(fl validator.FieldLevel) bool {
	return interview.Type(fl.Field().String()).Valid()
}

func validateInterviewMode(fl validator.FieldLevel) bool {
	return interview.Mode(fl.Field().String()).Valid()
}
