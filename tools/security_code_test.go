package tools_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petasbytes/entropy-agent/internal/compute"
	"github.com/petasbytes/entropy-agent/tools"
)

func TestSecurityCode_Keypad(t *testing.T) {
	out, err := tools.SecurityCodeDefinition.Function(context.Background(), json.RawMessage(`{"a":512,"b":8}`))
	require.NoError(t, err)
	assert.JSONEq(t, `{"code":4096}`, out)
}

func TestSecurityCode_InvalidInput(t *testing.T) {
	cases := map[string]string{
		"not_json":  `{oops`,
		"missing_b": `{"a":512}`,
		"missing_a": `{"b":8}`,
		"fraction":  `{"a":1.5,"b":2}`,
		"string":    `{"a":"512","b":8}`,
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := tools.SecurityCodeDefinition.Function(context.Background(), json.RawMessage(in))
			assert.Error(t, err)
		})
	}
}

func TestSecurityCode_Overflow(t *testing.T) {
	_, err := tools.SecurityCode(context.Background(), json.RawMessage(`{"a":9223372036854775807,"b":2}`))
	assert.ErrorIs(t, err, compute.ErrIntegerOverflow)
}

func TestSecurityCode_Schema(t *testing.T) {
	s := tools.SecurityCodeInputSchema
	assert.ElementsMatch(t, []string{"a", "b"}, s.Required)

	b, err := json.Marshal(s.Properties)
	require.NoError(t, err)
	var props map[string]map[string]any
	require.NoError(t, json.Unmarshal(b, &props))
	assert.Equal(t, "integer", props["a"]["type"])
	assert.Equal(t, "integer", props["b"]["type"])
}

func TestGenerateSchema_EmptyInput(t *testing.T) {
	s := tools.GenerateSchema[tools.QuantumDoorInput]()
	assert.Empty(t, s.Required)
}
