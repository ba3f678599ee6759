// Package conversation drives the per-sender chat flow: menu, listing search,
// listing detail, visit booking and free-form questions.
package conversation

import (
	"time"

	"github.com/omriShneor/project_casa/internal/assistant"
)

// Step is where a sender is in the flow.
type Step string

const (
	StepInitial          Step = "initial"
	StepMenu             Step = "menu"
	StepSearching        Step = "searching"
	StepAwaitingName     Step = "awaiting-name"
	StepAwaitingDateTime Step = "awaiting-datetime"
)

// Turn is one line of chat history.
type Turn = assistant.Turn

// Session is the per-sender conversation state. Results and Selected hold
// listing references, never listing copies, so details are always read fresh.
type Session struct {
	Step          Step      `json:"step"`
	Results       []string  `json:"results,omitempty"`
	Selected      string    `json:"selected,omitempty"`
	ClientName    string    `json:"client_name,omitempty"`
	RequestedText string    `json:"requested_text,omitempty"`
	UpdatedAt     time.Time `json:"updated_at"`

	// AwaitingReference is set after menu option 2 so the next bare number
	// picks from Results instead of choosing a menu option.
	AwaitingReference bool `json:"awaiting_reference,omitempty"`
}

// NewSession is the state of a sender we have not talked to yet.
func NewSession() Session {
	return Session{Step: StepInitial}
}

// PendingSelection is true right after a search, until a listing is picked.
func (s Session) PendingSelection() bool {
	return len(s.Results) > 0 && s.Selected == ""
}

// WithResults replaces the search results and drops the current selection.
func (s Session) WithResults(refs []string) Session {
	s.Results = append([]string(nil), refs...)
	s.Selected = ""
	return s
}

// WithSelection marks ref as the listing the sender is looking at.
func (s Session) WithSelection(ref string) Session {
	s.Selected = ref
	return s
}

// IsBlank reports whether there is nothing worth persisting.
func (s Session) IsBlank() bool {
	return (s.Step == StepInitial || s.Step == "") && len(s.Results) == 0 && s.Selected == ""
}
