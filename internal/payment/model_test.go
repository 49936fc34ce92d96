package payment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMethod(t *testing.T) {
	m, err := ParseMethod(" COD ")
	require.NoError(t, err)
	assert.Equal(t, MethodCOD, m)

	m, err = ParseMethod("upi")
	require.NoError(t, err)
	assert.Equal(t, MethodUPI, m)

	_, err = ParseMethod("cheque")
	assert.ErrorIs(t, err, ErrInvalidMethod)

	_, err = ParseMethod("")
	assert.ErrorIs(t, err, ErrInvalidMethod)
}

func TestResult_Validate(t *testing.T) {
	assert.NoError(t, Result{ID: "PAY-1", Status: "COMPLETED"}.Validate())
	assert.ErrorIs(t, Result{Status: "COMPLETED"}.Validate(), ErrInvalidResult)
	assert.ErrorIs(t, Result{ID: "PAY-1", Status: " "}.Validate(), ErrInvalidResult)
}
