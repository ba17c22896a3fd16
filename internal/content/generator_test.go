package content

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/forPelevin/reelcut/internal/types"
)

type llmMock struct {
	mock.Mock
}

func (m *llmMock) Generate(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

var fixedDay = time.Date(2026, 10, 14, 9, 30, 0, 0, time.UTC)

func newTestGenerator(llm *llmMock) *Generator {
	var g *Generator
	if llm == nil {
		g = New(nil, quietLogger(), WithClock(func() time.Time { return fixedDay }))
	} else {
		g = New(llm, quietLogger(), WithClock(func() time.Time { return fixedDay }))
	}
	return g
}

func TestHashtags_UsesRemoteReply(t *testing.T) {
	llm := new(llmMock)
	llm.On("Generate", mock.Anything, mock.MatchedBy(func(p string) bool {
		return strings.Contains(p, "Горы Алтая") && strings.Contains(p, "хэштегов")
	})).Return(`["#горы", "алтай", "#горы", "#поход"]`, nil).Once()

	got := newTestGenerator(llm).Hashtags(context.Background(), "Горы Алтая", "Поход на неделю")
	require.Equal(t, []string{"#горы", "#алтай", "#поход"}, got)
	llm.AssertExpectations(t)
}

func TestHashtags_CapsRemoteAtEight(t *testing.T) {
	llm := new(llmMock)
	llm.On("Generate", mock.Anything, mock.Anything).
		Return("#a1 #a2 #a3 #a4 #a5 #a6 #a7 #a8 #a9 #a10", nil).Once()

	got := newTestGenerator(llm).Hashtags(context.Background(), "t", "d")
	require.Len(t, got, MaxHashtags)
	require.Equal(t, "#a8", got[7])
}

func TestHashtags_FallbackWhenRemoteFailsOrUnparseable(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		err   error
	}{
		{name: "transport error", err: errors.New("connection refused")},
		{name: "empty reply", reply: "  "},
		{name: "no tags", reply: "Извините, я не могу это сделать."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			llm := new(llmMock)
			llm.On("Generate", mock.Anything, mock.Anything).Return(tt.reply, tt.err).Once()

			got := newTestGenerator(llm).Hashtags(context.Background(), "Путешествие по Байкалу", "Зимний лёд и нерпы")
			require.NotEmpty(t, got)
			require.LessOrEqual(t, len(got), MaxHashtags)
			for _, tag := range got {
				require.True(t, strings.HasPrefix(tag, "#"), "tag %q has no marker", tag)
			}
			require.Equal(t, FallbackHashtags("Путешествие по Байкалу", "Зимний лёд и нерпы"), got)
		})
	}
}

func TestHashtags_NilGeneratorUsesFallback(t *testing.T) {
	got := newTestGenerator(nil).Hashtags(context.Background(), "Hello", "")
	require.Equal(t, []string{"#видео", "#контент", "#тренды", "#hello"}, got)
}

func TestPlan_UsesRemoteReplyAndCaps(t *testing.T) {
	llm := new(llmMock)
	llm.On("Generate", mock.Anything, mock.MatchedBy(func(p string) bool {
		return strings.Contains(p, "14.10.2026")
	})).Return(`[
		{"date": "14 октября 2026", "content": "a"},
		{"date": "17 октября 2026", "content": "b"},
		{"date": "20 октября 2026", "content": "c"},
		{"date": "23 октября 2026", "content": "d"},
		{"date": "26 октября 2026", "content": "e"}
	]`, nil).Once()

	got := newTestGenerator(llm).Plan(context.Background(), "t", "d")
	require.Len(t, got, MaxPlanEntries)
	require.Equal(t, types.PlanEntry{Date: "14 октября 2026", Content: "a"}, got[0])
	llm.AssertExpectations(t)
}

func TestPlan_FallbackOnFailure(t *testing.T) {
	llm := new(llmMock)
	llm.On("Generate", mock.Anything, mock.Anything).Return("", context.DeadlineExceeded).Once()

	got := newTestGenerator(llm).Plan(context.Background(), "Мой ролик", "")
	require.Equal(t, FallbackPlan("Мой ролик", fixedDay), got)
}

func TestFallbackHashtags(t *testing.T) {
	got := FallbackHashtags("Как сделать монтаж видео для TikTok!", "Монтаж, монтаж и ещё раз монтаж... это просто")
	assert.Equal(t, []string{
		"#видео", "#контент", "#тренды",
		"#сделать", "#монтаж", "#tiktok",
	}, got)
}

func TestFallbackHashtags_TakesFiveKeywordsAndCapsAtEight(t *testing.T) {
	got := FallbackHashtags("alpha bravo charlie delta echoes foxtrot", "")
	assert.Equal(t, []string{
		"#видео", "#контент", "#тренды",
		"#alpha", "#bravo", "#charlie", "#delta", "#echoes",
	}, got)
}

func TestFallbackPlan(t *testing.T) {
	plan := FallbackPlan("Байкал", fixedDay)
	require.Len(t, plan, 4)

	wantDates := []string{"14 октября 2026 г.", "17 октября 2026 г.", "20 октября 2026 г.", "23 октября 2026 г."}
	for i, e := range plan {
		assert.Equal(t, wantDates[i], e.Date)
		assert.Contains(t, e.Content, `"Байкал"`)
	}
	assert.Equal(t, `Основной ролик по теме "Байкал"`, plan[0].Content)
	assert.Equal(t, `Ответы на комментарии к "Байкал"`, plan[3].Content)
}

func TestFallbackPlan_DatesThreeDaysApart(t *testing.T) {
	today := time.Date(2026, 12, 30, 0, 0, 0, 0, time.UTC)
	plan := FallbackPlan("x", today)
	for i, e := range plan {
		assert.Equal(t, FormatLongDate(today.AddDate(0, 0, 3*i)), e.Date)
	}
	assert.Equal(t, "2 января 2027 г.", plan[1].Date)
}

func TestResultCombinator(t *testing.T) {
	boom := errors.New("boom")
	r := then(attempt(2, nil), func(v int) (string, error) { return strings.Repeat("x", v), nil })
	assert.Equal(t, "xx", r.orElse(func(error) string { return "fallback" }))

	failed := then(attempt(0, boom), func(int) (string, error) {
		t.Fatal("then must not run after a failure")
		return "", nil
	})
	var seen error
	assert.Equal(t, "fallback", failed.orElse(func(err error) string { seen = err; return "fallback" }))
	assert.ErrorIs(t, seen, boom)
}
