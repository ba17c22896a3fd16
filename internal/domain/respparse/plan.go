package respparse

import (
	"encoding/json"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/forPelevin/reelcut/internal/types"
)

// "15 января 2025", "3.05.2026" and similar.
var reDate = regexp.MustCompile(`\d{1,2}[\s.][\wа-яА-ЯёЁ]+[\s.]\d{4}`)

// Content shorter than this is treated as noise (bullets, "—", "ок").
const minContentLen = 5

type planStrategy func(text string) []types.PlanEntry

var planCascade = []planStrategy{
	planFromJSONArray,
	planFromLines,
}

// PlanEntries returns the dated entries found in text, or nil.
func PlanEntries(text string) []types.PlanEntry {
	for _, strategy := range planCascade {
		if entries := strategy(text); len(entries) > 0 {
			return entries
		}
	}
	return nil
}

func planFromJSONArray(text string) []types.PlanEntry {
	raw := reBracketed.FindString(text)
	if raw == "" {
		return nil
	}
	var items []map[string]any
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil
	}
	out := make([]types.PlanEntry, 0, len(items))
	for _, it := range items {
		date, _ := it["date"].(string)
		content, _ := it["content"].(string)
		date, content = strings.TrimSpace(date), strings.TrimSpace(content)
		if date == "" || content == "" {
			return nil
		}
		out = append(out, types.PlanEntry{Date: date, Content: content})
	}
	return out
}

// planFromLines pairs each date-bearing line with its content: the rest of the
// same line if long enough, otherwise the next substantial line. Blank lines
// between a date and its content are skipped.
func planFromLines(text string) []types.PlanEntry {
	var (
		out     []types.PlanEntry
		pending types.PlanEntry
	)
	flush := func() {
		if pending.Date != "" && pending.Content != "" {
			out = append(out, pending)
		}
		pending = types.PlanEntry{}
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if loc := reDate.FindStringIndex(line); loc != nil {
			flush()
			pending.Date = line[loc[0]:loc[1]]
			if rest := trimSeparators(line[loc[1]:]); longEnough(rest) {
				pending.Content = rest
				flush()
			}
			continue
		}
		if pending.Date != "" && longEnough(line) {
			pending.Content = line
			flush()
		}
	}
	flush()
	return out
}

func trimSeparators(s string) string {
	return strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(s), "-–—:."))
}

func longEnough(s string) bool {
	return utf8.RuneCountInString(s) > minContentLen
}
