package service

import (
	"errors"
	"fmt"
	"reflect"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/msomdec/postboard/internal/domain"
)

// Validator wraps go-playground/validator and reports the first failing
// field as a *domain.ValidationError named after its form field.
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a Validator that names fields by their `form` tag.
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if name := f.Tag.Get("form"); name != "" {
			return name
		}
		return f.Name
	})
	for tag, rule := range lengthRules {
		if err := v.RegisterValidation(tag, rule.check); err != nil {
			panic(fmt.Sprintf("register %s validation: %v", tag, err))
		}
	}
	return &Validator{validate: v}
}

// lengthRule bounds a string's character count. over is an exclusive
// minimum; atMost of zero means no upper bound.
type lengthRule struct {
	over   int
	atMost int
}

var lengthRules = map[string]lengthRule{
	"post_title":   {over: domain.MinTitleLength},
	"post_content": {over: domain.MinContentLength},
	"comment_text": {atMost: domain.MaxCommentLength},
}

func (r lengthRule) check(fl validator.FieldLevel) bool {
	n := utf8.RuneCountInString(fl.Field().String())
	return n > r.over && (r.atMost == 0 || n <= r.atMost)
}

func (r lengthRule) message() string {
	if r.atMost > 0 {
		return fmt.Sprintf("must be at most %d characters", r.atMost)
	}
	return fmt.Sprintf("must be longer than %d characters", r.over)
}

// Struct validates s using its `validate` tags.
func (v *Validator) Struct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return &domain.ValidationError{Field: fe.Field(), Message: describe(fe)}
	}
	return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "eqfield":
		return "does not match"
	default:
		if rule, ok := lengthRules[fe.Tag()]; ok {
			return rule.message()
		}
		return fmt.Sprintf("failed on '%s' validation", fe.Tag())
	}
}

type registerInput struct {
	Email    string `form:"usrEmail" validate:"required,email,max=254"`
	Password string `form:"usrPassword" validate:"required,min=8,max=72"`
}

type passwordInput struct {
	Current  string `form:"currentPassword" validate:"required"`
	Password string `form:"newPassword" validate:"required,min=8,max=72"`
}

type postInput struct {
	Title   string `form:"postTitle" validate:"post_title"`
	Content string `form:"postContent" validate:"post_content"`
}

type commentInput struct {
	Text string `form:"comment" validate:"required,comment_text"`
}
