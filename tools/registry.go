package tools

// Registry returns all tool definitions wired for the agent
func Registry(r EntropyResolver, doors int) []ToolDefinition {
	return []ToolDefinition{QuantumDoorDefinition(r, doors), SecurityCodeDefinition}
}
