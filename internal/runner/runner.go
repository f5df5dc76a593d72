package runner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"go.uber.org/zap"

	"github.com/petasbytes/entropy-agent/internal/metrics"
	"github.com/petasbytes/entropy-agent/internal/telemetry"
	"github.com/petasbytes/entropy-agent/tools"
)

// ErrMaxSteps is returned by Run when the model keeps requesting tools past the step limit.
var ErrMaxSteps = errors.New("runner: step limit reached")

const defaultMaxTokens = 1024

type Runner struct {
	Client *anthropic.Client
	Tools  []tools.ToolDefinition

	// System is sent as the system prompt when non-empty.
	System    string
	MaxTokens int64

	Out     io.Writer
	Events  *telemetry.Sink
	Metrics *metrics.Metrics
	Logger  *zap.Logger
}

func New(client *anthropic.Client, toolDefs []tools.ToolDefinition) *Runner {
	return &Runner{
		Client:    client,
		Tools:     toolDefs,
		MaxTokens: defaultMaxTokens,
		Out:       os.Stdout,
		Logger:    zap.NewNop(),
	}
}

func (r *Runner) anthropicTools() []anthropic.ToolUnionParam {
	out := make([]anthropic.ToolUnionParam, 0, len(r.Tools))
	for _, t := range r.Tools {
		out = append(out, anthropic.ToolUnionParam{OfTool: &anthropic.ToolParam{
			Name:        t.Name,
			Description: anthropic.String(t.Description),
			InputSchema: t.InputSchema,
		}})
	}
	return out
}

// Run sends conv and keeps answering tool calls until the model replies
// without one. It returns the extended conversation and the assistant text
// produced along the way.
func (r *Runner) Run(ctx context.Context, model anthropic.Model, conv []anthropic.MessageParam, maxSteps int) ([]anthropic.MessageParam, string, error) {
	if _, ok := telemetry.TurnIDFromContext(ctx); !ok {
		ctx = telemetry.WithTurnID(ctx, telemetry.NewTurnID())
	}

	var text []string
	for step := 0; step < maxSteps; step++ {
		msg, toolResults, err := r.RunOneStep(ctx, model, conv)
		if err != nil {
			return conv, strings.Join(text, "\n"), err
		}
		conv = append(conv, msg.ToParam())
		text = append(text, assistantText(msg)...)
		if len(toolResults) == 0 {
			return conv, strings.Join(text, "\n"), nil
		}
		// Provide tool results as a user message back to the model
		conv = append(conv, anthropic.NewUserMessage(toolResults...))
	}
	return conv, strings.Join(text, "\n"), fmt.Errorf("%w after %d steps", ErrMaxSteps, maxSteps)
}

// RunOneStep sends the conversation and either prints text or returns tool results to be appended.
func (r *Runner) RunOneStep(ctx context.Context, model anthropic.Model, conv []anthropic.MessageParam) (*anthropic.Message, []anthropic.ContentBlockParamUnion, error) {
	// Get turnID from context if present, else generate once for this call.
	turnID, ok := telemetry.TurnIDFromContext(ctx)
	if !ok {
		turnID = telemetry.NewTurnID()
		ctx = telemetry.WithTurnID(ctx, turnID)
	}

	r.Events.Emit("request_prepared", map[string]any{
		"turn_id":  turnID,
		"model":    string(model),
		"messages": len(conv),
		"tools":    len(r.Tools),
	})

	params := anthropic.MessageNewParams{
		Model:     model,
		MaxTokens: r.MaxTokens,
		Messages:  conv,
		Tools:     r.anthropicTools(),
	}
	if r.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: r.System}}
	}

	msg, err := r.Client.Messages.New(ctx, params)
	if err != nil {
		return nil, nil, fmt.Errorf("messages: %w", err)
	}
	toolResults := []anthropic.ContentBlockParamUnion{}
	for _, block := range msg.Content {
		switch v := block.AsAny().(type) {
		case anthropic.TextBlock:
			fmt.Fprintf(r.out(), "\u001b[93mClaude\u001b[0m: %s\n", v.Text)
		case anthropic.ToolUseBlock:
			// Pass raw JSON input through to the tool implementation
			input := json.RawMessage(v.JSON.Input.Raw())
			res := r.execTool(ctx, v.ID, v.Name, input)
			toolResults = append(toolResults, res)
		}
	}
	return msg, toolResults, nil
}

func (r *Runner) execTool(ctx context.Context, id, name string, input json.RawMessage) anthropic.ContentBlockParamUnion {
	var def *tools.ToolDefinition
	for i := range r.Tools {
		if r.Tools[i].Name == name {
			def = &r.Tools[i]
			break
		}
	}

	turnID, _ := telemetry.TurnIDFromContext(ctx)

	emit := func(durationMs int64, inputSize int, outputSize int, errStr string) {
		fields := map[string]any{
			"tool_name":   name,
			"duration_ms": durationMs,
			"input_size":  inputSize,
			"output_size": outputSize,
			"turn_id":     turnID,
			"error":       nil,
		}
		if errStr != "" {
			fields["error"] = errStr
		}
		r.Events.Emit("tool_exec", fields)
	}

	start := time.Now()
	inSize := len(input)

	if def == nil {
		emit(time.Since(start).Milliseconds(), inSize, 0, "tool not found")
		r.Metrics.ObserveToolCall(name, "not_found")
		r.logger().Warn("model requested unknown tool", zap.String("tool", name))
		return anthropic.NewToolResultBlock(id, "tool not found", true)
	}

	r.logger().Info("executing tool", zap.String("tool", name), zap.String("turn_id", turnID))
	resp, err := def.Function(ctx, input)
	if err != nil {
		// Keep raw payloads out of telemetry; the model still gets the detail.
		emit(time.Since(start).Milliseconds(), inSize, 0, "tool error")
		r.Metrics.ObserveToolCall(name, "error")
		r.logger().Warn("tool failed", zap.String("tool", name), zap.Error(err))
		return anthropic.NewToolResultBlock(id, err.Error(), true)
	}
	emit(time.Since(start).Milliseconds(), inSize, len(resp), "")
	r.Metrics.ObserveToolCall(name, "ok")
	r.logger().Info("tool completed", zap.String("tool", name), zap.String("result", resp))
	return anthropic.NewToolResultBlock(id, resp, false)
}

func (r *Runner) out() io.Writer {
	if r.Out == nil {
		return io.Discard
	}
	return r.Out
}

func (r *Runner) logger() *zap.Logger {
	if r.Logger == nil {
		return zap.NewNop()
	}
	return r.Logger
}

func assistantText(msg *anthropic.Message) []string {
	var out []string
	for _, b := range msg.Content {
		if tb, ok := b.AsAny().(anthropic.TextBlock); ok && strings.TrimSpace(tb.Text) != "" {
			out = append(out, tb.Text)
		}
	}
	return out
}
