package history

import (
	"encoding/json"
	"testing"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func user(blocks ...anthropic.ContentBlockParamUnion) anthropic.MessageParam {
	return anthropic.NewUserMessage(blocks...)
}

func asst(blocks ...anthropic.ContentBlockParamUnion) anthropic.MessageParam {
	return anthropic.NewAssistantMessage(blocks...)
}

func text(s string) anthropic.ContentBlockParamUnion { return anthropic.NewTextBlock(s) }

func use(id string) anthropic.ContentBlockParamUnion {
	return anthropic.ContentBlockParamUnion{OfToolUse: &anthropic.ToolUseBlockParam{ID: id, Name: "calculate_security_code"}}
}

func useWith(id string, input any) anthropic.ContentBlockParamUnion {
	return anthropic.ContentBlockParamUnion{OfToolUse: &anthropic.ToolUseBlockParam{ID: id, Name: "calculate_security_code", Input: input}}
}

func result(id, s string) anthropic.ContentBlockParamUnion {
	return anthropic.NewToolResultBlock(id, s, false)
}

func TestSplit(t *testing.T) {
	tests := []struct {
		name string
		conv []anthropic.MessageParam
		want []unit
	}{
		{"pair", []anthropic.MessageParam{user(text("go")), asst(use("a")), user(result("a", "x"))},
			[]unit{{0, 1}, {1, 3}}},
		{"parallel uses", []anthropic.MessageParam{asst(use("a"), use("b")), user(result("b", "1"), result("a", "2"), text("note"))},
			[]unit{{0, 2}}},
		{"missing result", []anthropic.MessageParam{asst(use("a"), use("b")), user(result("a", "1"))},
			[]unit{{0, 1}, {1, 2}}},
		{"extra result", []anthropic.MessageParam{asst(use("a")), user(result("a", "1"), result("z", "2"))},
			[]unit{{0, 1}, {1, 2}}},
		{"text before result", []anthropic.MessageParam{asst(use("a")), user(text("hi"), result("a", "1"))},
			[]unit{{0, 1}, {1, 2}}},
		{"trailing use", []anthropic.MessageParam{user(text("go")), asst(use("a"))},
			[]unit{{0, 1}, {1, 2}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, split(tt.conv, zap.NewNop()))
		})
	}
}

func TestSizeOf(t *testing.T) {
	assert.Equal(t, 0, sizeOf(nil))
	assert.Equal(t, 4+5, sizeOf([]anthropic.MessageParam{user(text("héllo"))}))
	assert.Equal(t, 4, sizeOf([]anthropic.MessageParam{asst(use("a"))}))
	assert.Equal(t, 4+len(`{"a":512,"b":8}`), sizeOf([]anthropic.MessageParam{asst(useWith("a", json.RawMessage(`{"a":512,"b":8}`)))}))
	assert.Equal(t, 4+len(`{"a":512,"b":8}`), sizeOf([]anthropic.MessageParam{asst(useWith("a", map[string]int{"a": 512, "b": 8}))}))
	assert.Equal(t, 4+13, sizeOf([]anthropic.MessageParam{user(result("a", `{"code":4096}`))}))
}

func TestWindow_KeepsNewestWholeUnits(t *testing.T) {
	conv := []anthropic.MessageParam{
		user(text("old")),      // 7
		asst(use("a")),         // 4
		user(result("a", "r")), // 5, unit total 9
		user(text("tail")),     // 8
	}
	got, st := Window(conv, 24, nil)
	assert.Equal(t, conv, got)
	assert.Equal(t, Stats{Size: 24, Budget: 24, Kept: 3}, st)

	// The pair cannot be split, so only the tail fits.
	got, st = Window(conv, 16, nil)
	require.Len(t, got, 1)
	assert.Equal(t, Stats{Size: 8, Budget: 16, Kept: 1, Dropped: 2}, st)
}

func TestWindow_StartsWithUser(t *testing.T) {
	conv := []anthropic.MessageParam{
		user(text("old")),      // 7
		asst(use("a")),         // 4
		user(result("a", "r")), // 5, unit total 9
		asst(text("ok")),       // 6
		user(text("tail")),     // 8
	}
	got, st := Window(conv, 30, nil)
	assert.Len(t, got, 5)
	assert.Equal(t, 4, st.Kept)

	// tail, ok and the pair fit, but a window may not open on an assistant turn.
	got, st = Window(conv, 29, nil)
	require.Len(t, got, 1)
	assert.Equal(t, anthropic.MessageParamRoleUser, got[0].Role)
	assert.Equal(t, Stats{Size: 8, Budget: 29, Kept: 1, Dropped: 3}, st)
}

func TestWindow_CountsToolInput(t *testing.T) {
	input := json.RawMessage(`{"a":512,"b":8}`) // 15 runes
	conv := []anthropic.MessageParam{
		user(text("go")),                   // 6
		asst(useWith("a", input)),          // 4 + 15
		user(result("a", `{"code":4096}`)), // 4 + 13
		user(text("next")),                 // 8
	}
	got, st := Window(conv, 44, nil)
	require.Len(t, got, 1)
	assert.Equal(t, 2, st.Dropped)

	got, _ = Window(conv, 50, nil)
	assert.Len(t, got, 4)
}

func TestWindow_Oversize(t *testing.T) {
	conv := []anthropic.MessageParam{user(text("old")), asst(use("a")), user(result("a", "xxxxxx"))}
	got, st := Window(conv, 10, nil)
	assert.Nil(t, got)
	assert.True(t, st.Oversize)
	assert.Equal(t, 2, st.Dropped)
}

func TestWindow_DisabledBudget(t *testing.T) {
	conv := []anthropic.MessageParam{user(text("a")), user(text("b"))}
	got, st := Window(conv, 0, nil)
	assert.Equal(t, conv, got)
	assert.Equal(t, 2, st.Kept)
	assert.Zero(t, st.Dropped)

	got, _ = Window(nil, 100, nil)
	assert.Empty(t, got)
}

func TestWindow_LogsTrim(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	conv := []anthropic.MessageParam{user(text("aaaaaaaaaa")), user(text("b"))}
	_, st := Window(conv, 5, zap.New(core))
	assert.Equal(t, 1, st.Dropped)
	entries := logs.FilterMessage("history trimmed").All()
	require.Len(t, entries, 1)
	assert.EqualValues(t, 1, entries[0].ContextMap()["dropped_units"])
}
