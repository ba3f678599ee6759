package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/omriShneor/project_casa/internal/config"
	"github.com/omriShneor/project_casa/internal/database"
	"github.com/omriShneor/project_casa/internal/manual"
	"github.com/omriShneor/project_casa/internal/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const commissionSection = "COMISIONES\nLa comisión por alquiler es de un mes de alquiler más IVA, a cargo del inquilino."

type stubSearcher struct {
	listings []database.Listing
	err      error
	queries  []string
}

func (s *stubSearcher) SearchListings(query string) ([]database.Listing, error) {
	s.queries = append(s.queries, query)
	return s.listings, s.err
}

func TestAssemble_CommissionSectionVerbatim(t *testing.T) {
	m := manual.New("HORARIO\nAbrimos de lunes a sábado en Pocitos, Montevideo.\n\n"+commissionSection, "manual")
	a := NewAssembler(m, nil, nil)

	b := a.Assemble("¿Cuánto es la comisión?", nil)
	assert.Contains(t, b.Manual, commissionSection)
	assert.NotContains(t, b.Manual, "HORARIO")
}

func TestAssemble_ShortExcerptDropped(t *testing.T) {
	m := manual.New("Comisión: 1 mes.", "manual")
	a := NewAssembler(m, nil, nil)

	assert.Empty(t, a.Assemble("comisión", nil).Manual)
}

func TestAssemble_ExcerptMustExceedFiftyRunes(t *testing.T) {
	exact := "comisión " + strings.Repeat("x", 41)
	require.Len(t, []rune(exact), 50)
	assert.Empty(t, NewAssembler(manual.New(exact, "manual"), nil, nil).Assemble("comisión", nil).Manual)

	longer := exact + "y"
	assert.Equal(t, longer, NewAssembler(manual.New(longer, "manual"), nil, nil).Assemble("comisión", nil).Manual)
}

func TestAssemble_NoManual(t *testing.T) {
	a := NewAssembler(nil, nil, nil)
	b := a.Assemble("comisión", nil)
	assert.Empty(t, b.Manual)
	assert.Empty(t, b.Listings)
}

func TestAssemble_ListingsCappedAtThree(t *testing.T) {
	s := &stubSearcher{}
	for i := range 5 {
		s.listings = append(s.listings, database.Listing{Reference: fmt.Sprintf("A-%d", i)})
	}
	a := NewAssembler(nil, s, nil)

	b := a.Assemble("Pocitos", nil)
	require.Len(t, b.Listings, 3)
	assert.Equal(t, "A-0", b.Listings[0].Reference)
	assert.Equal(t, []string{"Pocitos"}, s.queries)
}

func TestAssemble_SearchErrorDegrades(t *testing.T) {
	a := NewAssembler(nil, &stubSearcher{err: errors.New("db locked")}, nil)
	assert.Empty(t, a.Assemble("Pocitos", nil).Listings)
}

func TestRenderHistory_LastSixTurns(t *testing.T) {
	var turns []Turn
	for i := range 10 {
		role := RoleClient
		if i%2 == 1 {
			role = RoleAssistant
		}
		turns = append(turns, Turn{Role: role, Text: fmt.Sprintf("m%d", i)})
	}

	got := RenderHistory(turns)
	lines := strings.Split(strings.TrimSpace(got), "\n")
	require.Len(t, lines, 6)
	assert.Equal(t, "Cliente: m4", lines[0])
	assert.Equal(t, "Asistente: m9", lines[5])
	assert.Empty(t, RenderHistory(nil))
}

func TestSystemPrompt(t *testing.T) {
	profile := config.DefaultProfile()
	b := Bundle{
		Manual:   commissionSection,
		Listings: []database.Listing{{Reference: "A-100", City: "Montevideo", Bedrooms: 2, ForSale: true, SaleCurrency: "U$S", SalePrice: 150000}},
		History:  "Cliente: hola\n",
	}

	prompt := SystemPrompt(profile, b)
	assert.Contains(t, prompt, "Horario: Lunes a Sábado 9:00-20:00")
	assert.Contains(t, prompt, "según lo habitual en Uruguay")
	assert.Contains(t, prompt, manualEmphasis)
	assert.Contains(t, prompt, commissionSection)
	assert.Contains(t, prompt, "1. REF: A-100 - Montevideo - 2 dorm - U$S 150.000")
	assert.Contains(t, prompt, "Cliente: hola")

	plain := SystemPrompt(profile, Bundle{})
	assert.NotContains(t, plain, manualEmphasis)
	assert.NotContains(t, plain, "PROPIEDADES DISPONIBLES")
}

func TestAnswer(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		err   error
		want  string
	}{
		{name: "success", reply: " Es un mes de alquiler 🏠 ", want: "Es un mes de alquiler 🏠"},
		{name: "backend error", err: errors.New("timeout"), want: FallbackReply},
		{name: "empty output", reply: "   ", want: FallbackReply},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &mocks.MockGenerator{}
			gen.On("Generate", mock.Anything, mock.AnythingOfType("string"), "¿comisión?").Return(tt.reply, tt.err)

			r := NewResponder(gen, nil, time.Second, nil)
			got := r.Answer(context.Background(), "¿comisión?", Bundle{})

			assert.Equal(t, tt.want, got)
			assert.NotEmpty(t, got)
			gen.AssertExpectations(t)
		})
	}
}

func TestAnswer_NoGenerator(t *testing.T) {
	r := NewResponder(nil, nil, 0, nil)
	assert.Equal(t, FallbackReply, r.Answer(context.Background(), "hola", Bundle{}))
}
