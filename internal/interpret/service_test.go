package interpret

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeCompleter is a scripted Completer that counts invocations.
type fakeCompleter struct {
	mu    sync.Mutex
	calls int
	text  string
	err   error
}

func (f *fakeCompleter) Complete(_ context.Context, system, user string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls++
	if f.err != nil {
		return "", f.err
	}

	return f.text, nil
}

func (f *fakeCompleter) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.calls
}

func newTestService(fake *fakeCompleter) *Service {
	return NewService(fake, NewCache(0, 0), nil)
}

func TestGenerateCacheHitSkipsExternalCall(t *testing.T) {
	fake := &fakeCompleter{text: "The forest is your unconscious."}
	svc := newTestService(fake)
	ctx := context.Background()

	first := svc.Generate(ctx, "prompt text")
	require.Equal(t, "The forest is your unconscious.", first)
	require.Equal(t, 1, fake.callCount())

	second := svc.Generate(ctx, "prompt text")
	require.Equal(t, first, second)
	require.Equal(t, 1, fake.callCount(), "cache hit must not re-invoke")
}

func TestGenerateDistinctPromptsMiss(t *testing.T) {
	fake := &fakeCompleter{text: "An interpretation."}
	svc := newTestService(fake)
	ctx := context.Background()

	svc.Generate(ctx, "prompt one")
	svc.Generate(ctx, "prompt two")

	require.Equal(t, 2, fake.callCount())
}

func TestGenerateTruncatesLongResponses(t *testing.T) {
	words := make([]string, 400)
	for i := range words {
		words[i] = fmt.Sprintf("word%d", i)
	}
	fake := &fakeCompleter{text: strings.Join(words, " ")}
	svc := newTestService(fake)

	got := svc.Generate(context.Background(), "prompt")

	gotWords := strings.Fields(got)
	require.Len(t, gotWords, 250)
	require.True(t, strings.HasSuffix(got, "..."))
	require.Equal(t, "word249...", gotWords[249])
}

func TestGenerateShortResponseUntouched(t *testing.T) {
	fake := &fakeCompleter{text: "Short and sweet."}
	svc := newTestService(fake)

	got := svc.Generate(context.Background(), "prompt")

	require.Equal(t, "Short and sweet.", got)
	require.False(t, strings.HasSuffix(got, "..."))
}

func TestGenerateFailureReturnsFallback(t *testing.T) {
	fake := &fakeCompleter{err: errors.New("quota exceeded")}
	cache := NewCache(0, 0)
	svc := NewService(fake, cache, nil)
	ctx := context.Background()

	got := svc.Generate(ctx, "prompt")
	require.Equal(t, FallbackMessage, got)

	// The fallback must not be cached: an identical retry re-invokes.
	require.True(t, cache.Get(CacheKey("prompt")).IsNone())

	fake.mu.Lock()
	fake.err = nil
	fake.text = "Recovered interpretation."
	fake.mu.Unlock()

	got = svc.Generate(ctx, "prompt")
	require.Equal(t, "Recovered interpretation.", got)
	require.Equal(t, 2, fake.callCount())
}

func TestTruncateWordsBoundary(t *testing.T) {
	exact := strings.Repeat("w ", 249) + "w"
	require.Equal(t, exact, truncateWords(exact, 250))

	over := exact + " extra"
	got := truncateWords(over, 250)
	require.True(t, strings.HasSuffix(got, "..."))
	require.Len(t, strings.Fields(got), 250)
}
