// Package tools defines tool contracts and implementations.
//
// Includes:
//   - ToolDefinition: name, description, JSON input schema, handler.
//   - GenerateSchema[T](): derive JSON Schema from Go structs.
//   - get_quantum_random_door: a door number from remote quantum entropy, falling back to crypto/rand.
//   - calculate_security_code: exact integer multiplication.
//
// Tool outputs are JSON objects so the model receives structured results, not prose.
package tools
