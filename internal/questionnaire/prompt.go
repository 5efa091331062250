package questionnaire

import "strings"

// promptPreamble is the fixed instructional header prepended to every built
// prompt before the visitor's answers.
const promptPreamble = "You are a professional dream interpreter. You are " +
	"trained in both the classics and modern schools of thought. " +
	"You take into account spirituality as well as psychology. Try to " +
	"combine meanings between dream elements and interpretations. Do not " +
	"be afraid to make connections between those elements, treat them as " +
	"interconnected. Connect with the user, and speak to them directly. " +
	"Based on the following responses, provide a thoughtful and insightful " +
	"interpretation of the dream. Avoid literal and obvious " +
	"interpretations. Avoid a summary paragraph, but instead end with a " +
	"self-reflective question or insight that encourages deeper personal " +
	"exploration.\n\n"

// BuildPrompt assembles the interpretation prompt from the question labels
// and the visitor's answers. Answers that are blank or whitespace-only are
// skipped entirely, so the prompt contains exactly one "<label>: <answer>"
// line per answered question, in label order. When labels and answers differ
// in length, the extra tail of the longer slice is ignored.
func BuildPrompt(labels, answers []string) string {
	var b strings.Builder
	b.WriteString(promptPreamble)

	n := len(labels)
	if len(answers) < n {
		n = len(answers)
	}

	for i := 0; i < n; i++ {
		if strings.TrimSpace(answers[i]) == "" {
			continue
		}
		b.WriteString(labels[i])
		b.WriteString(": ")
		b.WriteString(answers[i])
		b.WriteString("\n")
	}

	return b.String()
}
