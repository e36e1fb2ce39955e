package dto

import (
	"encoding/json"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/hongminglow/group-accounts/internal/auth"
	"github.com/hongminglow/group-accounts/internal/models"
)

var usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)

// OptionalString distinguishes an absent JSON field from an explicit null.
type OptionalString struct {
	Set   bool
	Value *string
}

// UnmarshalJSON marks the field as present and records its value, if any.
func (o *OptionalString) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	o.Value = &s
	return nil
}

// Code returns the supplied value, or "" when absent or null.
func (o OptionalString) Code() string {
	if o.Value == nil {
		return ""
	}
	return *o.Value
}

type CreateUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	GroupID  string `json:"group_id"`
}

// Validate checks the payload shape. Business rules are applied by the handler.
func (r CreateUserRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required, validation.Length(1, 150), validation.Match(usernamePattern)),
		validation.Field(&r.Password, validation.Required),
	)
}

type UpdateUserRequest struct {
	Username *string        `json:"username"`
	Password *string        `json:"password"`
	GroupID  OptionalString `json:"group_id"`
}

// Validate checks the payload shape; partial updates make username optional.
func (r UpdateUserRequest) Validate(partial bool) error {
	rules := []validation.Rule{validation.Length(1, 150), validation.Match(usernamePattern)}
	if !partial {
		rules = append([]validation.Rule{validation.NotNil, validation.Required}, rules...)
	}
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, rules...),
	)
}

type CreateUserResponse struct {
	User  models.User    `json:"user"`
	Token auth.TokenPair `json:"token"`
}
