package api

import (
	"errors"
	"fmt"
	"strings"

	"memories/internal/utils"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// PostRequest is the body of create and update. The creator is never read
// from the body.
type PostRequest struct {
	Title        string   `json:"title" validate:"required,max=200"`
	Message      string   `json:"message" validate:"required,max=10000"`
	Tags         []string `json:"tags" validate:"max=20,dive,max=50"`
	SelectedFile string   `json:"selectedFile"`
}

// Normalize trims text fields and drops empty tags.
func (r *PostRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.Message = strings.TrimSpace(r.Message)

	tags := make([]string, 0, len(r.Tags))
	for _, tag := range r.Tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	r.Tags = tags
}

type CommentRequest struct {
	Text string `json:"text" validate:"required,max=2000"`
}

func (r *CommentRequest) Normalize() {
	r.Text = strings.TrimSpace(r.Text)
}

type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

func (r *RegisterRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (r *LoginRequest) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
}

// Validate checks a request against its struct tags and reports the first
// failing field as an invalid-input error.
func Validate(req interface{}) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return utils.NewAppError(utils.ErrInvalidInput, "Invalid request", err)
	}
	return utils.NewInvalidInputError(describe(fieldErrs[0]))
}

func describe(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return "email must be a valid email address"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		if fe.Kind().String() == "slice" {
			return fmt.Sprintf("%s must have at most %s entries", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
