package content

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/forPelevin/reelcut/internal/domain/respparse"
	"github.com/forPelevin/reelcut/internal/ports"
	"github.com/forPelevin/reelcut/internal/types"
)

var (
	ErrNoGenerator = errors.New("remote text generator is not configured")
	errEmptyReply  = errors.New("remote generator returned empty text")
	errNoEntries   = errors.New("no usable entries in generator reply")
)

type Generator struct {
	llm   ports.TextGenerator
	log   logrus.FieldLogger
	clock func() time.Time
}

type Option func(*Generator)

func WithClock(clock func() time.Time) Option {
	return func(g *Generator) { g.clock = clock }
}

// New returns a generator backed by llm. A nil llm makes every call use the
// local fallback.
func New(llm ports.TextGenerator, log logrus.FieldLogger, opts ...Option) *Generator {
	if log == nil {
		log = logrus.StandardLogger()
	}
	g := &Generator{llm: llm, log: log, clock: time.Now}
	for _, o := range opts {
		o(g)
	}
	return g
}

func (g *Generator) Hashtags(ctx context.Context, title, description string) []string {
	reply := g.ask(ctx, hashtagPrompt(title, description))
	tags := then(reply, func(text string) ([]string, error) {
		tags := normalizeTags(respparse.Tags(text))
		if len(tags) == 0 {
			return nil, errNoEntries
		}
		return tags, nil
	})
	return tags.orElse(func(err error) []string {
		g.log.WithError(err).Warn("hashtag generation failed, using local fallback")
		return FallbackHashtags(title, description)
	})
}

func (g *Generator) Plan(ctx context.Context, title, description string) []types.PlanEntry {
	today := g.clock()
	reply := g.ask(ctx, planPrompt(title, description, today))
	plan := then(reply, func(text string) ([]types.PlanEntry, error) {
		entries := respparse.PlanEntries(text)
		if len(entries) == 0 {
			return nil, errNoEntries
		}
		return capPlan(entries), nil
	})
	return plan.orElse(func(err error) []types.PlanEntry {
		g.log.WithError(err).Warn("content plan generation failed, using local fallback")
		return FallbackPlan(title, today)
	})
}

func (g *Generator) ask(ctx context.Context, prompt string) result[string] {
	if g.llm == nil {
		return result[string]{err: ErrNoGenerator}
	}
	text, err := g.llm.Generate(ctx, prompt)
	if err != nil {
		return result[string]{err: fmt.Errorf("generate: %w", err)}
	}
	if strings.TrimSpace(text) == "" {
		return result[string]{err: errEmptyReply}
	}
	return attempt(text, nil)
}

func hashtagPrompt(title, description string) string {
	return "Ты - помощник по созданию контента.\n" +
		"Сгенерируй 8 релевантных хэштегов для видео на основе его названия и описания.\n" +
		"Хэштеги должны быть на русском языке и начинаться с символа #.\n" +
		"Не используй пробелы в хэштегах.\n\n" +
		fmt.Sprintf("Название видео: %q\n", title) +
		fmt.Sprintf("Описание видео: %q\n\n", description) +
		"Верни ТОЛЬКО JSON-массив хэштегов, без дополнительного текста."
}

func planPrompt(title, description string, today time.Time) string {
	return "Ты - помощник по созданию контента.\n" +
		"Создай контент-план на основе названия и описания видео.\n" +
		fmt.Sprintf("План должен содержать %d идеи для создания контента с указанием дат (начиная с сегодняшней даты: %s).\n",
			MaxPlanEntries, today.Format("02.01.2006")) +
		"Каждая идея должна быть связана с темой видео и содержать конкретное предложение для создания контента.\n\n" +
		fmt.Sprintf("Название видео: %q\n", title) +
		fmt.Sprintf("Описание видео: %q\n\n", description) +
		"Верни результат в формате JSON-массива объектов, где каждый объект содержит поля " +
		"'date' (дата в формате ДД месяц ГГГГ) и 'content' (описание контента).\n" +
		"Не добавляй никакого дополнительного текста или пояснений."
}
