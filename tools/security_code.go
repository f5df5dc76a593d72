package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/petasbytes/entropy-agent/internal/compute"
)

// SecurityCodeName is the tool name the model calls.
const SecurityCodeName = "calculate_security_code"

type SecurityCodeInput struct {
	A int64 `json:"a" jsonschema_description:"First factor." jsonschema:"first factor"`
	B int64 `json:"b" jsonschema_description:"Second factor." jsonschema:"second factor"`
}

// SecurityCodeOutput is the structured tool result.
type SecurityCodeOutput struct {
	Code int64 `json:"code" jsonschema:"the product of a and b"`
}

var SecurityCodeDefinition = ToolDefinition{
	Name:        SecurityCodeName,
	Description: "Multiply two integers exactly to solve a security keypad. Use this whenever precise math is required instead of guessing.",
	InputSchema: SecurityCodeInputSchema,
	Function:    SecurityCode,
}

var SecurityCodeInputSchema = GenerateSchema[SecurityCodeInput]()

// SecurityCode decodes {"a":..,"b":..} and returns {"code":a*b}.
// Both factors are required and must be integers.
func SecurityCode(_ context.Context, input json.RawMessage) (string, error) {
	var raw struct {
		A *int64 `json:"a"`
		B *int64 `json:"b"`
	}
	if err := json.Unmarshal(input, &raw); err != nil {
		return "", fmt.Errorf("invalid security code input: %w", err)
	}
	if raw.A == nil || raw.B == nil {
		return "", errors.New("both a and b are required")
	}
	out, err := CalculateSecurityCode(SecurityCodeInput{A: *raw.A, B: *raw.B})
	if err != nil {
		return "", err
	}
	return marshalOutput(out)
}

// CalculateSecurityCode multiplies the two factors.
func CalculateSecurityCode(in SecurityCodeInput) (SecurityCodeOutput, error) {
	code, err := compute.Multiply(in.A, in.B)
	if err != nil {
		return SecurityCodeOutput{}, err
	}
	return SecurityCodeOutput{Code: code}, nil
}
