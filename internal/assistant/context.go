// Package assistant assembles the context for free-form client questions and
// turns it into a generated reply.
package assistant

import (
	"strings"

	"github.com/omriShneor/project_casa/internal/database"
	"github.com/omriShneor/project_casa/internal/manual"
	"go.uber.org/zap"
)

const (
	maxContextListings = 3
	maxHistoryTurns    = 6
	// manual excerpts up to this length are noise and are left out of the prompt
	minManualExcerpt = 50
)

// Role is who said a turn of the conversation.
type Role string

const (
	RoleClient    Role = "client"
	RoleAssistant Role = "assistant"
)

// Turn is one entry of a sender's chat history.
type Turn struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// ListingSearcher is the part of the listing store the assembler needs.
type ListingSearcher interface {
	SearchListings(query string) ([]database.Listing, error)
}

// Bundle is everything handed to the generator besides the question.
type Bundle struct {
	Manual   string
	Listings []database.Listing
	History  string
}

type Assembler struct {
	manual   *manual.Manual
	listings ListingSearcher
	logger   *zap.Logger
}

// NewAssembler creates an assembler. m may be nil when no manual is loaded.
func NewAssembler(m *manual.Manual, listings ListingSearcher, logger *zap.Logger) *Assembler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Assembler{manual: m, listings: listings, logger: logger}
}

// Assemble builds a fresh bundle for question. Store failures degrade to no listings.
func (a *Assembler) Assemble(question string, history []Turn) Bundle {
	var b Bundle

	if excerpt := a.manual.Relevant(question); len([]rune(excerpt)) > minManualExcerpt {
		b.Manual = excerpt
	}

	if a.listings != nil {
		found, err := a.listings.SearchListings(question)
		if err != nil {
			a.logger.Warn("listing search failed while assembling context", zap.Error(err))
		}
		if len(found) > maxContextListings {
			found = found[:maxContextListings]
		}
		b.Listings = found
	}

	b.History = RenderHistory(history)
	return b
}

// RenderHistory renders the last six turns as "Cliente:" / "Asistente:" lines.
func RenderHistory(turns []Turn) string {
	if len(turns) > maxHistoryTurns {
		turns = turns[len(turns)-maxHistoryTurns:]
	}
	var sb strings.Builder
	for _, t := range turns {
		if t.Role == RoleClient {
			sb.WriteString("Cliente: ")
		} else {
			sb.WriteString("Asistente: ")
		}
		sb.WriteString(t.Text)
		sb.WriteString("\n")
	}
	return sb.String()
}
