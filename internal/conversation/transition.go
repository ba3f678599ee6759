package conversation

import (
	"strconv"
	"strings"
	"time"
	"unicode"
)

// ActionKind tells the engine what side effect a turn needs.
type ActionKind int

const (
	ActionShowMenu ActionKind = iota
	ActionPromptSearch
	ActionSearch
	ActionShowListing
	ActionAskReference
	ActionNeedSelection
	ActionAskName
	ActionAskDateTime
	ActionInvalidDateTime
	ActionBook
	ActionContact
	ActionAnswer
)

var actionNames = map[ActionKind]string{
	ActionShowMenu:        "show_menu",
	ActionPromptSearch:    "prompt_search",
	ActionSearch:          "search",
	ActionShowListing:     "show_listing",
	ActionAskReference:    "ask_reference",
	ActionNeedSelection:   "need_selection",
	ActionAskName:         "ask_name",
	ActionAskDateTime:     "ask_datetime",
	ActionInvalidDateTime: "invalid_datetime",
	ActionBook:            "book",
	ActionContact:         "contact",
	ActionAnswer:          "answer",
}

func (k ActionKind) String() string {
	if name, ok := actionNames[k]; ok {
		return name
	}
	return "action(" + strconv.Itoa(int(k)) + ")"
}

// Action is the outcome of Transition.
type Action struct {
	Kind ActionKind
	// Text is the search query, the question or the reference to look up.
	Text         string
	ClearHistory bool
	// Set for ActionBook.
	Booking *BookingRequest
	// Set for ActionInvalidDateTime.
	Err error
}

// BookingRequest carries what is needed to persist a visit.
type BookingRequest struct {
	Reference     string
	ClientName    string
	RequestedText string
	ScheduledAt   time.Time
}

// Input is one inbound message plus the clock it is evaluated against.
type Input struct {
	Text     string
	Now      time.Time
	Location *time.Location
}

var resetKeywords = map[string]bool{
	"hola":   true,
	"menu":   true,
	"menú":   true,
	"inicio": true,
	"hi":     true,
	"hello":  true,
	"start":  true,
}

// IsResetKeyword reports whether text takes the sender back to the menu.
func IsResetKeyword(text string) bool {
	return resetKeywords[strings.ToLower(strings.TrimSpace(text))]
}

// Transition computes the next session and the action to run for in. It has
// no side effects; the engine applies search and lookup results afterwards.
func Transition(s Session, in Input) (Session, Action) {
	text := strings.TrimSpace(in.Text)

	if IsResetKeyword(text) {
		next := Session{Step: StepMenu, Results: s.Results, Selected: s.Selected}
		return next, Action{Kind: ActionShowMenu, ClearHistory: true}
	}

	switch s.Step {
	case StepAwaitingName:
		if text == "" {
			return s, Action{Kind: ActionAskName}
		}
		s.ClientName = text
		s.Step = StepAwaitingDateTime
		return s, Action{Kind: ActionAskDateTime, Text: text}

	case StepAwaitingDateTime:
		if s.Selected == "" {
			s.Step = StepMenu
			s.ClientName = ""
			return s, Action{Kind: ActionNeedSelection}
		}
		at, err := ParseVisitTime(text, in.Now, in.Location)
		if err != nil {
			return s, Action{Kind: ActionInvalidDateTime, Err: err}
		}
		req := &BookingRequest{
			Reference:     s.Selected,
			ClientName:    s.ClientName,
			RequestedText: text,
			ScheduledAt:   at,
		}
		return NewSession(), Action{Kind: ActionBook, Booking: req}

	case StepSearching:
		if text == "" {
			return s, Action{Kind: ActionPromptSearch}
		}
		s.Step = StepMenu
		return s, Action{Kind: ActionSearch, Text: text}

	case StepMenu:
		return menuTransition(s, text)
	}

	// initial, or anything we do not recognise
	s.Step = StepMenu
	return s, Action{Kind: ActionShowMenu, ClearHistory: true}
}

// menuOptions is the number of entries in the main menu.
const menuOptions = 4

func menuTransition(s Session, text string) (Session, Action) {
	awaitingRef := s.AwaitingReference
	s.AwaitingReference = false

	// a number picks from the last results right after a search, after option
	// 2, or whenever it cannot be a menu option
	if n, err := strconv.Atoi(text); err == nil && n >= 1 && n <= len(s.Results) {
		if awaitingRef || s.PendingSelection() || n > menuOptions {
			return s, Action{Kind: ActionShowListing, Text: s.Results[n-1]}
		}
	}
	if awaitingRef && looksLikeReference(text) {
		return s, Action{Kind: ActionShowListing, Text: text}
	}

	switch text {
	case "1":
		s.Step = StepSearching
		return s, Action{Kind: ActionPromptSearch}
	case "2":
		s.AwaitingReference = true
		return s, Action{Kind: ActionAskReference}
	case "3":
		if s.Selected == "" {
			return s, Action{Kind: ActionNeedSelection}
		}
		s.Step = StepAwaitingName
		s.ClientName = ""
		s.RequestedText = ""
		return s, Action{Kind: ActionAskName}
	case "4":
		return s, Action{Kind: ActionContact}
	}

	if looksLikeReference(text) {
		return s, Action{Kind: ActionShowListing, Text: text}
	}
	return s, Action{Kind: ActionAnswer, Text: text}
}

// looksLikeReference matches tokens such as "125355", "A-100" or "REF-20240101-0001".
func looksLikeReference(text string) bool {
	if text == "" || len(text) > 40 {
		return false
	}
	hasDigit := false
	for _, r := range text {
		switch {
		case unicode.IsDigit(r):
			hasDigit = true
		case r == '-' || unicode.IsLetter(r):
		default:
			return false
		}
	}
	return hasDigit
}
