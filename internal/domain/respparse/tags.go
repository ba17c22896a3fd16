// Package respparse pulls structured values out of free-form model output.
// Each parser walks a cascade of increasingly lenient strategies and returns
// the first non-empty result.
package respparse

import (
	"encoding/json"
	"regexp"
	"strings"
)

const TagMarker = "#"

var (
	// First bracketed span, non-greedy so trailing prose with brackets is left alone.
	reBracketed = regexp.MustCompile(`\[[\s\S]*?\]`)
	reTag       = regexp.MustCompile(`#[\wа-яА-ЯёЁ]+`)
)

type tagStrategy func(text string) []string

var tagCascade = []tagStrategy{
	tagsFromJSONArray,
	tagsFromTokens,
	tagsFromLines,
}

// Tags returns the hashtags found in text, or nil when no strategy finds any.
func Tags(text string) []string {
	for _, strategy := range tagCascade {
		if tags := strategy(text); len(tags) > 0 {
			return tags
		}
	}
	return nil
}

func tagsFromJSONArray(text string) []string {
	raw := reBracketed.FindString(text)
	if raw == "" {
		return nil
	}
	var items []any
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		s, ok := it.(string)
		if !ok {
			return nil
		}
		s = strings.TrimSpace(s)
		if s == "" || s == TagMarker {
			continue
		}
		out = append(out, WithMarker(s))
	}
	return out
}

func tagsFromTokens(text string) []string {
	return dedupe(reTag.FindAllString(text, -1))
}

func tagsFromLines(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if !strings.Contains(line, TagMarker) {
			continue
		}
		if m := reTag.FindString(line); m != "" {
			out = append(out, m)
		}
	}
	return dedupe(out)
}

// WithMarker prefixes s with the tag marker unless it already has one.
func WithMarker(s string) string {
	if strings.HasPrefix(s, TagMarker) {
		return s
	}
	return TagMarker + s
}

func dedupe(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
