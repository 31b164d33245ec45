package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	MustRegisterSet("testshade", "Red", "Blue")
}

type listingBody struct {
	Name        string   `json:"name" validate:"required,min=3"`
	Description string   `json:"description" validate:"required,min=10"`
	Contact     string   `json:"contact" validate:"omitempty,email"`
	OldPrice    *float64 `json:"oldPrice" validate:"omitempty,gte=0"`
	Shade       *string  `json:"shade" validate:"omitempty,testshade"`
	Size        string   `json:"size" validate:"omitempty,oneof=S M L"`
	Internal    string   `json:"-" validate:"max=2"`
}

type lineBody struct {
	SKU      string `json:"sku" validate:"required"`
	Quantity int    `json:"quantity" validate:"min=1"`
}

type basketBody struct {
	Lines []lineBody `json:"lines" validate:"required,min=1,dive"`
	Total float64    `json:"total" validate:"gt=0"`
}

func fieldsOf(t *testing.T, err error) map[string]string {
	t.Helper()
	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	return valErr.Fields()
}

func ptr[T any](v T) *T { return &v }

func TestValidate_Valid(t *testing.T) {
	body := listingBody{Name: "Desk Lamp", Description: "A warm white desk lamp", Shade: ptr("Blue"), Size: "M"}
	assert.NoError(t, Validate(body))
	assert.NoError(t, Validate(&body))
}

func TestValidate_FieldMessages(t *testing.T) {
	err := Validate(listingBody{
		Name:        "ab",
		Description: "short",
		Contact:     "not-an-email",
		OldPrice:    ptr(-1.0),
		Shade:       ptr("Pink"),
		Size:        "XL",
		Internal:    "xyz",
	})

	assert.Equal(t, map[string]string{
		"name":        "must be at least 3 characters",
		"description": "must be at least 10 characters",
		"contact":     "must be a valid email address",
		"oldPrice":    "must be greater than or equal to 0",
		"shade":       "must be one of: Red, Blue",
		"size":        "must be one of: S, M, L",
		"Internal":    "must be at most 2 characters",
	}, fieldsOf(t, err))
}

func TestValidate_Required(t *testing.T) {
	fields := fieldsOf(t, Validate(listingBody{}))
	assert.Equal(t, "is required", fields["name"])
	assert.Equal(t, "is required", fields["description"])
	assert.NotContains(t, fields, "shade", "nil optional fields are skipped")
}

func TestValidate_NestedPaths(t *testing.T) {
	err := Validate(basketBody{
		Lines: []lineBody{{SKU: "a", Quantity: 1}, {Quantity: 0}},
	})

	assert.Equal(t, map[string]string{
		"lines[1].sku":      "is required",
		"lines[1].quantity": "must be at least 1",
		"total":             "must be greater than 0",
	}, fieldsOf(t, err))
}

func TestValidate_EmptySlice(t *testing.T) {
	fields := fieldsOf(t, Validate(basketBody{Lines: []lineBody{}, Total: 5}))
	assert.Equal(t, "must contain at least 1 items", fields["lines"])
}

func TestValidationError_Error(t *testing.T) {
	err := Validate(basketBody{Lines: []lineBody{{SKU: "a"}}, Total: 1})
	require.Error(t, err)
	assert.Equal(t, "field 'lines[0].quantity' must be at least 1", err.Error())
}

func TestRegisterSet_RejectsEmptyTag(t *testing.T) {
	assert.Error(t, RegisterSet("", "x"))
}

func TestValidate_NonStruct(t *testing.T) {
	err := Validate("plain string")
	require.Error(t, err)

	var valErr *ValidationError
	assert.NotErrorAs(t, err, &valErr)
}
