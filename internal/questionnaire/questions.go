// Package questionnaire holds the fixed dream questionnaire and the prompt
// builder that turns a visitor's answers into a single interpretation prompt.
package questionnaire

// Questions is the ordered list of prompts shown to the visitor, one per
// wizard step.
var Questions = []string{
	"Hello! What did you dream about last night? Describe the setting as best you can.",
	"Tell me more about one specific detail, figure, or symbol that stood out to you.",
	"What emotions did you feel throughout the dream?",
	"Did anything in your dream feel particularly meaningful or symbolic?",
	"What thoughts or emotions did you have upon waking up?",
	"If you could step back into the dream right now, what would you do or explore further?",
}

// Labels are the short headings paired with each question when the answers
// are assembled into a prompt. Labels[i] corresponds to Questions[i].
var Labels = []string{
	"Dream Narrative & Atmosphere",
	"Core Focus and Symbolic Anchor",
	"Emotional Undercurrents",
	"Latent Messages, Personal Symbols",
	"Lingering Impact & Subconscious Echo",
	"Unfinished Exploration & Desire",
}

// Count returns the number of questions in the questionnaire.
func Count() int {
	return len(Questions)
}
