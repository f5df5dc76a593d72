// Package mcpserver exposes the agent's tools over the Model Context Protocol
// so other clients can call them without going through the Messages API.
package mcpserver

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/petasbytes/entropy-agent/internal/metrics"
	"github.com/petasbytes/entropy-agent/tools"
)

const serverName = "entropy-agent"

// Options carries the optional collaborators of New.
type Options struct {
	Logger  *zap.Logger
	Metrics *metrics.Metrics
}

// New builds a server exposing get_quantum_random_door over r and
// calculate_security_code.
func New(r tools.EntropyResolver, doors int, version string, opts Options) *mcp.Server {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	server := mcp.NewServer(&mcp.Implementation{Name: serverName, Version: version}, nil)
	mcp.AddTool(server, quantumDoorTool(doors), quantumDoorHandler(r, doors, opts))
	mcp.AddTool(server, securityCodeTool(), securityCodeHandler(opts))
	return server
}

// Serve runs server on transport until the client disconnects or ctx ends.
// Cancellation is a clean shutdown.
func Serve(ctx context.Context, server *mcp.Server, transport mcp.Transport) error {
	if server == nil {
		return errors.New("mcp server is not configured")
	}
	err := server.Run(ctx, transport)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}

func quantumDoorTool(doors int) *mcp.Tool {
	return &mcp.Tool{
		Name:        tools.QuantumDoorName,
		Description: fmt.Sprintf("Picks one of %d doors using quantum randomness, falling back to local hardware entropy", doors),
	}
}

func securityCodeTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        tools.SecurityCodeName,
		Description: "Multiplies two integers exactly to produce a keypad code",
	}
}

func quantumDoorHandler(r tools.EntropyResolver, doors int, opts Options) mcp.ToolHandlerFor[tools.QuantumDoorInput, tools.QuantumDoorOutput] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, _ tools.QuantumDoorInput) (*mcp.CallToolResult, tools.QuantumDoorOutput, error) {
		out, err := tools.ChooseDoor(ctx, r, doors)
		if err != nil {
			opts.Metrics.ObserveToolCall(tools.QuantumDoorName, "error")
			return nil, tools.QuantumDoorOutput{}, err
		}
		opts.Metrics.ObserveToolCall(tools.QuantumDoorName, "ok")
		opts.Logger.Info("door chosen", zap.Int("door", out.ChosenDoor), zap.String("source", string(out.Source)))
		return nil, out, nil
	}
}

func securityCodeHandler(opts Options) mcp.ToolHandlerFor[tools.SecurityCodeInput, tools.SecurityCodeOutput] {
	return func(_ context.Context, _ *mcp.CallToolRequest, input tools.SecurityCodeInput) (*mcp.CallToolResult, tools.SecurityCodeOutput, error) {
		out, err := tools.CalculateSecurityCode(input)
		if err != nil {
			opts.Metrics.ObserveToolCall(tools.SecurityCodeName, "error")
			return nil, tools.SecurityCodeOutput{}, fmt.Errorf("security code failed: %w", err)
		}
		opts.Metrics.ObserveToolCall(tools.SecurityCodeName, "ok")
		return nil, out, nil
	}
}
