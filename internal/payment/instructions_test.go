package payment

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetInstructions(t *testing.T) {
	t.Run("KnownMethodsCarryAmount", func(t *testing.T) {
		for m := range methods {
			steps := GetInstructions(m)
			assert.NotEmpty(t, steps, string(m))
			assert.True(t, strings.Contains(strings.Join(steps, " "), "{{amount}}"), string(m))
		}
	})

	t.Run("UnknownFallsBack", func(t *testing.T) {
		steps := GetInstructions("barter")
		assert.Len(t, steps, 1)
	})
}

func TestInjectVariables(t *testing.T) {
	steps := InjectVariables(GetInstructions(MethodCOD), InstructionVars{
		"amount":       "₹404",
		"order_number": "BT2026000001",
	})

	joined := strings.Join(steps, "\n")
	assert.Contains(t, joined, "₹404")
	assert.Contains(t, joined, "BT2026000001")
	assert.NotContains(t, joined, "{{")

	// templates are left untouched
	assert.Contains(t, GetInstructions(MethodCOD)[1], "{{amount}}")
}
