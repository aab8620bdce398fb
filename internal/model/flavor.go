package model

import (
	"reflect"
	"strings"
	"time"

	"github.com/deppfellow/flavors/internal/validation"
	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgtype"
)

// FlavorsTable is the only table the service owns.
const FlavorsTable = "flavors"

// Flavor is a row of the flavors table and the JSON body of every
// flavor response.
//
// IsFavorite is nullable: the column has a default, but an insert that
// passes NULL explicitly stores NULL, and that renders as null.
type Flavor struct {
	ID         int64       `json:"id" db:"id"`
	Name       string      `json:"name" db:"name"`
	IsFavorite pgtype.Bool `json:"is_favorite" db:"is_favorite"`
	CreatedAt  time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at" db:"updated_at"`
}

// validate reports fields under their JSON names.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// FlavorFields is the writable part of a flavor. Fields keep whatever JSON
// value the client sent; the store hands them to Postgres as text.
type FlavorFields struct {
	Name       FieldValue `json:"name"`
	IsFavorite FieldValue `json:"is_favorite"`
}

// typedFlavorFields is the shape FlavorFields must have when fields are
// required.
type typedFlavorFields struct {
	Name       *string `json:"name" validate:"required,max=255"`
	IsFavorite *bool   `json:"is_favorite" validate:"required"`
}

// validateStrict rejects wrong JSON types, then missing or oversized
// fields.
func (f FlavorFields) validateStrict() error {
	var typeErrors validation.CustomValidationErrors
	if !f.Name.IsNull() && f.Name.Kind() != KindString {
		typeErrors = append(typeErrors, validation.CustomValidationError{
			Field:   "name",
			Message: "must be a string, got " + f.Name.Kind().String(),
		})
	}
	if !f.IsFavorite.IsNull() && f.IsFavorite.Kind() != KindBool {
		typeErrors = append(typeErrors, validation.CustomValidationError{
			Field:   "is_favorite",
			Message: "must be a boolean, got " + f.IsFavorite.Kind().String(),
		})
	}
	if typeErrors != nil {
		return typeErrors
	}

	var typed typedFlavorFields
	if f.Name.Kind() == KindString {
		name := f.Name.String()
		typed.Name = &name
	}
	if f.IsFavorite.Kind() == KindBool {
		favorite := f.IsFavorite.String() == "true"
		typed.IsFavorite = &favorite
	}
	return validate.Struct(typed)
}

// ListFlavorsPayload is the (empty) input of GET /api/flavors.
type ListFlavorsPayload struct{}

func (p *ListFlavorsPayload) Validate() error {
	return nil
}

// GetFlavorPayload is the input of GET /api/flavors/:id.
//
// ID stays a string: it is handed to the store untouched, and the store
// decides whether it is a valid key.
type GetFlavorPayload struct {
	ID string `param:"id" json:"-"`
}

func (p *GetFlavorPayload) Validate() error {
	return nil
}

// CreateFlavorPayload is the input of POST /api/flavors.
//
// RequireFields is set by the handler from the configured validation
// policy and is never bound from the request.
type CreateFlavorPayload struct {
	FlavorFields
	RequireFields bool `json:"-"`
}

// IgnoreUnsupportedBody lets a body that is not JSON decode as {} unless
// fields are required.
func (p *CreateFlavorPayload) IgnoreUnsupportedBody() bool {
	return !p.RequireFields
}

func (p *CreateFlavorPayload) Validate() error {
	if !p.RequireFields {
		return nil
	}
	return p.FlavorFields.validateStrict()
}

// UpdateFlavorPayload is the input of PUT /api/flavors/:id.
type UpdateFlavorPayload struct {
	ID string `param:"id" json:"-"`
	FlavorFields
	RequireFields bool `json:"-"`
}

func (p *UpdateFlavorPayload) IgnoreUnsupportedBody() bool {
	return !p.RequireFields
}

func (p *UpdateFlavorPayload) Validate() error {
	if !p.RequireFields {
		return nil
	}
	return p.FlavorFields.validateStrict()
}

// DeleteFlavorPayload is the input of DELETE /api/flavors/:id.
type DeleteFlavorPayload struct {
	ID string `param:"id" json:"-"`
}

func (p *DeleteFlavorPayload) Validate() error {
	return nil
}
