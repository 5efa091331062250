package questionnaire

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// answerLines extracts the "<label>: <answer>" lines from a built prompt,
// skipping the preamble.
func answerLines(prompt string) []string {
	body := strings.TrimPrefix(prompt, promptPreamble)
	if body == "" {
		return nil
	}
	return strings.Split(strings.TrimRight(body, "\n"), "\n")
}

func TestBuildPromptSkipsBlankAnswers(t *testing.T) {
	answers := []string{"A dark forest", "", "fear", "   ", "", "\t"}

	prompt := BuildPrompt(Labels, answers)

	lines := answerLines(prompt)
	require.Len(t, lines, 2)
	require.Equal(t, Labels[0]+": A dark forest", lines[0])
	require.Equal(t, Labels[2]+": fear", lines[1])
}

func TestBuildPromptAllBlank(t *testing.T) {
	answers := make([]string, len(Questions))

	prompt := BuildPrompt(Labels, answers)

	require.Equal(t, promptPreamble, prompt)
}

func TestBuildPromptStartsWithPreamble(t *testing.T) {
	prompt := BuildPrompt(Labels, []string{"x", "y", "z", "", "", ""})
	require.True(t, strings.HasPrefix(prompt, promptPreamble))
}

// TestBuildPromptLineInvariant verifies that for any answer sequence the
// prompt contains exactly one line per non-blank answer, in label order.
func TestBuildPromptLineInvariant(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := len(Labels)
		answers := make([]string, n)
		for i := range answers {
			// Single-line answers only; the builder emits one line
			// per answer by construction.
			answers[i] = rapid.StringMatching(`[ a-zA-Z0-9]*`).Draw(t, "answer")
		}

		prompt := BuildPrompt(Labels, answers)
		lines := answerLines(prompt)

		var want []string
		for i, a := range answers {
			if strings.TrimSpace(a) == "" {
				continue
			}
			want = append(want, Labels[i]+": "+a)
		}

		if len(want) != len(lines) {
			t.Fatalf("expected %d lines, got %d", len(want), len(lines))
		}
		for i := range want {
			if want[i] != lines[i] {
				t.Fatalf("line %d: expected %q, got %q", i, want[i], lines[i])
			}
		}
	})
}

// TestBuildPromptDeterministic verifies the builder is a pure function of
// its inputs.
func TestBuildPromptDeterministic(t *testing.T) {
	answers := []string{"flying", "a red door", "", "dread", "", "open it"}

	first := BuildPrompt(Labels, answers)
	second := BuildPrompt(Labels, answers)

	require.Equal(t, first, second)
}

func TestQuestionLabelParity(t *testing.T) {
	require.Equal(t, len(Questions), len(Labels))
	require.Equal(t, len(Questions), Count())
}
