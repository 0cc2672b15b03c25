package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type sample struct {
	Name  string `validate:"required,max=10"`
	Email string `validate:"required,email"`
	NIC   string `validate:"omitempty,max=20"`
}

func TestStruct(t *testing.T) {
	errs := Struct(sample{Name: "Amara", Email: "amara@example.com"})
	assert.Nil(t, errs)

	errs = Struct(sample{})
	assert.Equal(t, "this field is required", errs["name"])
	assert.Equal(t, "this field is required", errs["email"])

	errs = Struct(sample{Name: "Amara", Email: "not-an-email"})
	assert.Equal(t, "must be a valid email address", errs["email"])
	assert.NotContains(t, errs, "name")
}

func TestStructFieldNamesAreSnakeCase(t *testing.T) {
	errs := Struct(struct {
		BusinessMail string `validate:"required"`
		NIC          string `validate:"required"`
	}{})
	assert.Contains(t, errs, "business_mail")
	assert.Contains(t, errs, "nic")
}

func TestMap(t *testing.T) {
	rules := map[string]string{
		"name":          "required",
		"business_mail": "required,email",
	}

	errs := Map(map[string]interface{}{
		"name":          "Amara",
		"business_mail": "amara@example.com",
	}, rules)
	assert.Nil(t, errs)

	errs = Map(map[string]interface{}{}, rules)
	assert.Equal(t, "this field is required", errs["name"])
	assert.Equal(t, "this field is required", errs["business_mail"])

	errs = Map(map[string]interface{}{
		"name":          "Amara",
		"business_mail": "nope",
	}, rules)
	assert.Contains(t, errs, "business_mail")
	assert.NotContains(t, errs, "name")
}

func TestMapIgnoresUnrequiredMissingFields(t *testing.T) {
	rules := map[string]string{"description": "max=500"}
	assert.Nil(t, Map(map[string]interface{}{}, rules))
}

func TestMapEmptyCollectionsAreMissing(t *testing.T) {
	rules := map[string]string{"images": "required", "meta": "required"}

	errs := Map(map[string]interface{}{
		"images": []interface{}{},
		"meta":   map[string]interface{}{},
	}, rules)
	assert.Equal(t, "this field is required", errs["images"])
	assert.Equal(t, "this field is required", errs["meta"])

	assert.Nil(t, Map(map[string]interface{}{
		"images": []interface{}{"a.jpg"},
		"meta":   map[string]interface{}{"k": "v"},
	}, rules))
}
