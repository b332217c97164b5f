package merchant

import (
	"errors"
	"testing"

	"github.com/example/shipment-tracking/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestValidateName(t *testing.T) {
	assert.NoError(t, ValidateName("Acme"))
	assert.NoError(t, ValidateName(" Acme "))

	err := ValidateName("   ")
	assert.True(t, domain.IsValidation(err))
	assert.EqualError(t, err, "name: is required")
}

func TestErrMerchantNotFound(t *testing.T) {
	assert.True(t, errors.Is(ErrMerchantNotFound, domain.ErrNotFound))
	assert.Equal(t, "merchant not found", ErrMerchantNotFound.Error())
}
