package content

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/forPelevin/reelcut/internal/domain/respparse"
	"github.com/forPelevin/reelcut/internal/types"
)

const (
	MaxHashtags    = 8
	MaxPlanEntries = 4

	keywordTags   = 5
	commonTagsN   = 3
	planStepDays  = 3
	minKeywordLen = 3
)

var (
	commonTags = []string{"#видео", "#контент", "#тренды", "#креатив", "#монтаж"}

	stopWords = map[string]struct{}{
		"что": {}, "как": {}, "для": {}, "при": {}, "это": {}, "там": {}, "тут": {},
	}

	reNonWord = regexp.MustCompile(`[^\wа-яА-ЯёЁ]`)

	planIdeas = []string{
		"Основной ролик по теме \"%s\"",
		"Нарезка лучших моментов из \"%s\"",
		"Обсуждение ключевых идей из \"%s\"",
		"Ответы на комментарии к \"%s\"",
		"Закулисье съемок \"%s\"",
		"Расширенное объяснение концепции \"%s\"",
		"Интервью с экспертами о теме \"%s\"",
		"Сравнение разных подходов к теме \"%s\"",
	}
)

// FallbackHashtags builds tags from the title and description keywords.
func FallbackHashtags(title, description string) []string {
	seen := make(map[string]struct{})
	var keywords []string
	for _, w := range strings.Fields(title + " " + description) {
		if utf8.RuneCountInString(w) <= minKeywordLen {
			continue
		}
		w = strings.ToLower(w)
		if _, stop := stopWords[w]; stop {
			continue
		}
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		keywords = append(keywords, w)
		if len(keywords) == keywordTags {
			break
		}
	}

	tags := append([]string(nil), commonTags[:commonTagsN]...)
	for _, w := range keywords {
		w = reNonWord.ReplaceAllString(w, "")
		if w == "" {
			continue
		}
		tags = append(tags, respparse.TagMarker+w)
	}
	return normalizeTags(tags)
}

// FallbackPlan schedules four ideas three days apart starting today.
func FallbackPlan(title string, today time.Time) []types.PlanEntry {
	out := make([]types.PlanEntry, 0, MaxPlanEntries)
	for i := 0; i < MaxPlanEntries; i++ {
		out = append(out, types.PlanEntry{
			Date:    FormatLongDate(today.AddDate(0, 0, i*planStepDays)),
			Content: fmt.Sprintf(planIdeas[i%len(planIdeas)], title),
		})
	}
	return out
}

var genitiveMonths = [...]string{
	"января", "февраля", "марта", "апреля", "мая", "июня",
	"июля", "августа", "сентября", "октября", "ноября", "декабря",
}

// FormatLongDate renders t the way ru-RU long dates read: "14 октября 2026 г.".
func FormatLongDate(t time.Time) string {
	return fmt.Sprintf("%d %s %d г.", t.Day(), genitiveMonths[t.Month()-1], t.Year())
}

// normalizeTags trims, marks, dedupes and caps a tag list.
func normalizeTags(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, min(len(in), MaxHashtags))
	for _, t := range in {
		t = strings.TrimSpace(t)
		if t == "" || t == respparse.TagMarker {
			continue
		}
		t = respparse.WithMarker(t)
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
		if len(out) == MaxHashtags {
			break
		}
	}
	return out
}

func capPlan(in []types.PlanEntry) []types.PlanEntry {
	if len(in) > MaxPlanEntries {
		return in[:MaxPlanEntries]
	}
	return in
}
