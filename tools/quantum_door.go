package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/petasbytes/entropy-agent/internal/entropy"
)

// QuantumDoorName is the tool name the model calls.
const QuantumDoorName = "get_quantum_random_door"

// DefaultDoors is the number of escape pods in the scenario.
const DefaultDoors = 5

// EntropyResolver is the part of entropy.Resolver the door tool needs.
type EntropyResolver interface {
	Resolve(ctx context.Context, low, high int) (entropy.Result, error)
}

// QuantumDoorInput is empty; the door count is fixed when the tool is built.
type QuantumDoorInput struct{}

// QuantumDoorOutput is the structured tool result.
type QuantumDoorOutput struct {
	ChosenDoor int            `json:"chosen_door" jsonschema:"door number between 1 and the door count"`
	Source     entropy.Source `json:"source,omitempty" jsonschema:"remote for quantum entropy, local for the crypto/rand fallback"`
}

var QuantumDoorInputSchema = GenerateSchema[QuantumDoorInput]()

// QuantumDoorDefinition builds the door tool over r with doors choices.
func QuantumDoorDefinition(r EntropyResolver, doors int) ToolDefinition {
	return ToolDefinition{
		Name: QuantumDoorName,
		Description: fmt.Sprintf(`Pick one of %d indistinguishable doors using true randomness.

Contacts a quantum random number generator; if it is unreachable the door is drawn from local hardware entropy instead. Returns the chosen door number (1-%d) and the entropy source used.`, doors, doors),
		InputSchema: QuantumDoorInputSchema,
		Function: func(ctx context.Context, _ json.RawMessage) (string, error) {
			out, err := ChooseDoor(ctx, r, doors)
			if err != nil {
				return "", err
			}
			return marshalOutput(out)
		},
	}
}

// ChooseDoor resolves a door in [1, doors].
func ChooseDoor(ctx context.Context, r EntropyResolver, doors int) (QuantumDoorOutput, error) {
	res, err := r.Resolve(ctx, 1, doors)
	if err != nil {
		return QuantumDoorOutput{}, fmt.Errorf("choose door: %w", err)
	}
	return QuantumDoorOutput{ChosenDoor: res.Value, Source: res.Source}, nil
}
