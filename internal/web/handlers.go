package web

import (
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/roasbeef/elucidate/internal/interpret"
	"github.com/roasbeef/elucidate/internal/questionnaire"
	"github.com/roasbeef/elucidate/internal/session"
)

// questionPage is the data for the single-question template.
type questionPage struct {
	Question string
	Num      int
	Total    int
}

// reviewItem pairs one question with its current answer for editing.
type reviewItem struct {
	Index    int
	Question string
	Answer   string
}

// reviewPage is the data for the review template.
type reviewPage struct {
	Items  []reviewItem
	Prompt string
}

// resultPage is the data for the result template.
type resultPage struct {
	Interpretation template.HTML
}

// diaryEntryView is one past interpretation on the diary page.
type diaryEntryView struct {
	Interpretation template.HTML
	CreatedAt      time.Time
}

// diaryPage is the data for the diary template.
type diaryPage struct {
	Entries []diaryEntryView
}

// loadingPage is the data for the loading template.
type loadingPage struct {
	JobID string
}

// handleHome renders the welcome page.
func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	// The root pattern matches everything; anything else is a 404.
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	s.render(w, "index.html", nil)
}

// handleStart resets the questionnaire and moves to the first question.
func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	sessionID := s.cookies.SessionID(w, r)

	s.sessions.Put(
		r.Context(), sessionID,
		session.NewState(questionnaire.Count()),
	)

	http.Redirect(w, r, "/question", http.StatusSeeOther)
}

// handleQuestion shows the current question and advances on submission.
func (s *Server) handleQuestion(w http.ResponseWriter, r *http.Request) {
	sessionID := s.cookies.SessionID(w, r)
	state := s.state(r, sessionID)

	if r.Method == http.MethodPost {
		answer := strings.TrimSpace(r.FormValue("answer"))

		// A skip signal forces a blank answer regardless of any text
		// also submitted.
		if r.FormValue("skip") != "" {
			answer = ""
		}

		state.Responses[state.Current] = answer

		if state.Current+1 < questionnaire.Count() {
			state.Current++
			s.sessions.Put(r.Context(), sessionID, state)
			http.Redirect(w, r, "/question", http.StatusSeeOther)
			return
		}

		s.sessions.Put(r.Context(), sessionID, state)
		http.Redirect(w, r, "/review", http.StatusSeeOther)
		return
	}

	s.render(w, "question.html", questionPage{
		Question: questionnaire.Questions[state.Current],
		Num:      state.Current + 1,
		Total:    questionnaire.Count(),
	})
}

// handleReview shows all answers for editing; submission applies the edits
// and enqueues the interpretation job consumed by the loading step.
func (s *Server) handleReview(w http.ResponseWriter, r *http.Request) {
	sessionID := s.cookies.SessionID(w, r)
	state := s.state(r, sessionID)

	if r.Method == http.MethodPost {
		// Overwrite every answer from the form, including
		// reintroducing previously skipped ones.
		for i := range state.Responses {
			state.Responses[i] = strings.TrimSpace(
				r.FormValue(fmt.Sprintf("question_%d", i)),
			)
		}

		prompt := questionnaire.BuildPrompt(
			questionnaire.Labels, state.Responses,
		)
		state.JobID = s.jobs.Start(sessionID, prompt)
		s.sessions.Put(r.Context(), sessionID, state)

		http.Redirect(w, r, "/loading", http.StatusSeeOther)
		return
	}

	items := make([]reviewItem, questionnaire.Count())
	for i := range items {
		items[i] = reviewItem{
			Index:    i,
			Question: questionnaire.Questions[i],
			Answer:   state.Responses[i],
		}
	}

	s.render(w, "review.html", reviewPage{
		Items: items,
		Prompt: questionnaire.BuildPrompt(
			questionnaire.Labels, state.Responses,
		),
	})
}

// handleLoading renders the interstitial that waits for the visitor's
// pending job, forwarding to the result once it completes. Without a
// pending job there is nothing to wait for.
func (s *Server) handleLoading(w http.ResponseWriter, r *http.Request) {
	sessionID := s.cookies.SessionID(w, r)
	state := s.state(r, sessionID)

	if state.JobID == "" {
		http.Redirect(w, r, "/result", http.StatusSeeOther)
		return
	}

	s.render(w, "loading.html", loadingPage{JobID: state.JobID})
}

// handleResult displays the interpretation. The normal path reads the
// completed job; direct navigation without a job falls back to generating
// synchronously from the current responses. Responses are never mutated.
func (s *Server) handleResult(w http.ResponseWriter, r *http.Request) {
	sessionID := s.cookies.SessionID(w, r)
	state := s.state(r, sessionID)

	var text string
	if state.JobID != "" {
		job, ok := s.jobs.Get(state.JobID)
		switch {
		case ok && job.State == interpret.JobDone:
			text = job.Text

		case ok:
			// Still generating; send the visitor back to wait.
			http.Redirect(w, r, "/loading", http.StatusSeeOther)
			return
		}
	}

	if text == "" {
		prompt := questionnaire.BuildPrompt(
			questionnaire.Labels, state.Responses,
		)
		text = s.interp.Generate(r.Context(), prompt)
	}

	s.render(w, "result.html", resultPage{
		Interpretation: interpret.RenderMarkdown(text),
	})
}

// handleDiary lists the visitor's past interpretations, newest first.
func (s *Server) handleDiary(w http.ResponseWriter, r *http.Request) {
	sessionID := s.cookies.SessionID(w, r)

	entries, err := s.diary.ListBySession(r.Context(), sessionID)
	if err != nil {
		s.log.Error("Failed to list diary entries",
			"session_id", sessionID, "err", err)
		http.Error(
			w, "failed to load diary",
			http.StatusInternalServerError,
		)
		return
	}

	page := diaryPage{
		Entries: make([]diaryEntryView, 0, len(entries)),
	}
	for _, entry := range entries {
		page.Entries = append(page.Entries, diaryEntryView{
			Interpretation: interpret.RenderMarkdown(
				entry.Interpretation,
			),
			CreatedAt: entry.CreatedAt,
		})
	}

	s.render(w, "diary.html", page)
}
