package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type usernameForm struct {
	Username string `validate:"required,username"`
}

func TestValidateStruct_Username(t *testing.T) {
	assert.Nil(t, ValidateStruct(usernameForm{Username: "alice_01"}))

	errs := ValidateStruct(usernameForm{Username: "alice smith"})
	assert.Contains(t, errs, "Username")

	errs = ValidateStruct(usernameForm{})
	assert.Equal(t, "This field is required", errs["Username"])
}
