package interpret

import (
	"context"
	"log/slog"
	"strings"
)

const (
	// maxResponseWords is the ceiling on interpretation length. Anything
	// longer is cut and marked with an ellipsis.
	maxResponseWords = 250

	// FallbackMessage is what the visitor sees when the generation call
	// fails for any reason. It is never cached.
	FallbackMessage = "Sorry, we encountered an error while generating " +
		"your interpretation. Please try again later."

	// systemSuffix is appended to the prompt for the system role.
	systemSuffix = "You are a professional dream interpreter."

	// userSuffix is appended to the prompt for the user role, carrying
	// the formatting and length instructions.
	userSuffix = "\n\nLimit the response to 250 words. Use rich text " +
		"formatting with paragraphs, bold where necessary, and bullet " +
		"points if applicable."
)

// Service generates dream interpretations, consulting the cache before
// calling the external completion service.
type Service struct {
	client Completer
	cache  *Cache
	log    *slog.Logger
}

// NewService wires a Completer and Cache into an interpretation service.
func NewService(client Completer, cache *Cache, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}

	return &Service{
		client: client,
		cache:  cache,
		log:    log,
	}
}

// Generate returns the interpretation for the given prompt. On a cache hit
// the external service is not invoked at all. Failures never propagate: the
// error is logged and the visitor gets FallbackMessage, which is not cached
// so an identical retry calls the external service fresh.
func (s *Service) Generate(ctx context.Context, prompt string) string {
	key := CacheKey(prompt)

	if cached := s.cache.Get(key); cached.IsSome() {
		s.log.Info("Returning cached interpretation", "key", key[:12])
		return cached.UnwrapOr("")
	}

	text, err := s.client.Complete(
		ctx, prompt+systemSuffix, prompt+userSuffix,
	)
	if err != nil {
		s.log.Error("Interpretation generation failed",
			"key", key[:12], "err", err)
		return FallbackMessage
	}

	text = truncateWords(text, maxResponseWords)
	s.cache.Set(key, text)

	return text
}

// truncateWords cuts text to at most max words, appending "..." when
// anything was dropped.
func truncateWords(text string, max int) string {
	words := strings.Fields(text)
	if len(words) <= max {
		return text
	}

	return strings.Join(words[:max], " ") + "..."
}
