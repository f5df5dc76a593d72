// Package history bounds the conversation the chat loop sends each turn.
//
// A conversation is split into units that must travel together: an assistant
// message carrying tool_use blocks and the user message answering every one
// of them form a single unit; any other message stands alone. Window keeps
// the newest units that fit a size budget and never separates a tool_use
// from its tool_result.
package history

import (
	"encoding/json"
	"unicode/utf8"

	"github.com/anthropics/anthropic-sdk-go"
	"go.uber.org/zap"
)

// blockCost is added per content block so empty blocks still count.
const blockCost = 4

// unit is the half-open message span [start, end).
type unit struct {
	start, end int
}

// Stats describes one Window call.
type Stats struct {
	Size     int
	Budget   int
	Kept     int
	Dropped  int
	Oversize bool // the newest unit alone exceeds Budget
}

// Window returns the longest suffix of conv made of whole units whose
// estimated size is at most budget and which opens with a user message.
// A budget <= 0 disables trimming.
// When the newest unit alone is too large, Window returns nil.
func Window(conv []anthropic.MessageParam, budget int, log *zap.Logger) ([]anthropic.MessageParam, Stats) {
	if log == nil {
		log = zap.NewNop()
	}
	units := split(conv, log)
	if budget <= 0 {
		return conv, Stats{Size: sizeOf(conv), Budget: budget, Kept: len(units)}
	}

	st := Stats{Budget: budget}
	fi := len(units)
	for i := len(units) - 1; i >= 0; i-- {
		cost := sizeOf(conv[units[i].start:units[i].end])
		if st.Size+cost > budget {
			if st.Kept == 0 {
				st.Oversize = true
			}
			break
		}
		st.Size += cost
		st.Kept++
		fi = i
	}
	// The Messages API wants the first message from the user.
	for ; fi < len(units) && conv[units[fi].start].Role != anthropic.MessageParamRoleUser; fi++ {
		st.Size -= sizeOf(conv[units[fi].start:units[fi].end])
		st.Kept--
	}
	st.Dropped = len(units) - st.Kept
	if st.Dropped > 0 {
		log.Debug("history trimmed",
			zap.Int("kept_units", st.Kept), zap.Int("dropped_units", st.Dropped),
			zap.Int("size", st.Size), zap.Int("budget", budget))
	}
	if st.Kept == 0 {
		return nil, st
	}
	return conv[units[fi].start:], st
}

func split(conv []anthropic.MessageParam, log *zap.Logger) []unit {
	units := make([]unit, 0, len(conv))
	for i := 0; i < len(conv); {
		if i+1 < len(conv) && answered(conv[i], conv[i+1]) {
			units = append(units, unit{i, i + 2})
			i += 2
			continue
		}
		if len(toolUseIDs(conv[i])) > 0 {
			log.Debug("tool_use without matching results", zap.Int("index", i))
		}
		units = append(units, unit{i, i + 1})
		i++
	}
	return units
}

// answered reports whether user carries exactly the results for asst's
// tool_use blocks, ahead of any other content.
func answered(asst, user anthropic.MessageParam) bool {
	if asst.Role != anthropic.MessageParamRoleAssistant || user.Role != anthropic.MessageParamRoleUser {
		return false
	}
	uses := toolUseIDs(asst)
	if len(uses) == 0 {
		return false
	}
	seen := 0
	leading := true
	for _, blk := range user.Content {
		tr := blk.OfToolResult
		if tr == nil {
			leading = false
			continue
		}
		if !leading {
			return false
		}
		if _, ok := uses[tr.ToolUseID]; !ok {
			return false
		}
		seen++
	}
	return seen == len(uses)
}

func toolUseIDs(m anthropic.MessageParam) map[string]struct{} {
	ids := make(map[string]struct{})
	for _, blk := range m.Content {
		if tu := blk.OfToolUse; tu != nil && tu.ID != "" {
			ids[tu.ID] = struct{}{}
		}
	}
	return ids
}

// sizeOf estimates msgs in runes of text and tool input plus a fixed cost
// per block.
func sizeOf(msgs []anthropic.MessageParam) int {
	n := 0
	for _, m := range msgs {
		for _, blk := range m.Content {
			n += blockCost
			switch {
			case blk.OfText != nil:
				n += utf8.RuneCountInString(blk.OfText.Text)
			case blk.OfToolUse != nil && blk.OfToolUse.Input != nil:
				if in, err := json.Marshal(blk.OfToolUse.Input); err == nil {
					n += utf8.RuneCount(in)
				}
			case blk.OfToolResult != nil:
				for _, c := range blk.OfToolResult.Content {
					if c.OfText != nil {
						n += utf8.RuneCountInString(c.OfText.Text)
					}
				}
			}
		}
	}
	return n
}
