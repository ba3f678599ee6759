package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/omriShneor/project_casa/internal/assistant"
	"github.com/omriShneor/project_casa/internal/database"
	"github.com/omriShneor/project_casa/internal/manual"
	"github.com/omriShneor/project_casa/internal/mocks"
	"github.com/omriShneor/project_casa/internal/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const sender = "59899123456@s.whatsapp.net"

type recordingReplier struct {
	mu      sync.Mutex
	replies []string
}

func (r *recordingReplier) Reply(_ context.Context, _ string, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.replies = append(r.replies, text)
	return nil
}

func (r *recordingReplier) last() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.replies) == 0 {
		return ""
	}
	return r.replies[len(r.replies)-1]
}

type recordingNotifier struct {
	mu       sync.Mutex
	bookings []database.Booking
	listings []database.Listing
}

func (n *recordingNotifier) Notify(_ context.Context, b database.Booking, l database.Listing) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.bookings = append(n.bookings, b)
	n.listings = append(n.listings, l)
}

type engineFixture struct {
	engine   *Engine
	db       *database.DB
	store    *MemoryStore
	replier  *recordingReplier
	notifier *recordingNotifier
	gen      *mocks.MockGenerator
}

func newEngineFixture(t *testing.T) *engineFixture {
	t.Helper()
	db := database.NewTestDB(t)
	database.CreateTestListing(t, db, database.Listing{
		Reference: "A-100", City: "Montevideo", Zone: "Pocitos", Bedrooms: 2,
		ForSale: true, SaleCurrency: "U$S", SalePrice: 180000, Description: "Apartamento luminoso en Pocitos",
	})
	database.CreateTestListing(t, db, database.Listing{
		Reference: "A-101", City: "Montevideo", Zone: "Pocitos", Bedrooms: 3,
		ForRent: true, RentCurrency: "$", RentPrice: 35000,
	})

	m := manual.New("COMISIONES\nLa comisión por alquiler es de un mes de alquiler más IVA, a cargo del inquilino.", "manual")
	gen := &mocks.MockGenerator{}

	store := NewMemoryStore()
	notifier := &recordingNotifier{}
	f := &engineFixture{
		db:       db,
		store:    store,
		replier:  &recordingReplier{},
		notifier: notifier,
		gen:      gen,
	}
	f.engine = NewEngine(EngineConfig{
		Sessions:  store.Sessions(),
		History:   store.History(),
		Listings:  db,
		Assembler: assistant.NewAssembler(m, db, nil),
		Responder: assistant.NewResponder(gen, nil, time.Second, nil),
		Notifier:  notifier,
		Now:       func() time.Time { return testNow },
	})
	return f
}

func (f *engineFixture) say(t *testing.T, text string) string {
	t.Helper()
	f.engine.HandleMessage(context.Background(), source.Message{
		SourceType: source.SourceTypeWhatsApp,
		SenderID:   sender,
		Text:       text,
	}, f.replier)
	return f.replier.last()
}

func (f *engineFixture) session(t *testing.T) Session {
	t.Helper()
	s, err := f.store.Sessions().Get(context.Background(), sender)
	require.NoError(t, err)
	return s
}

func TestEngine_FullBookingScenario(t *testing.T) {
	f := newEngineFixture(t)

	assert.Contains(t, f.say(t, "hola"), "1️⃣ Buscar propiedades")
	assert.Equal(t, StepMenu, f.session(t).Step)

	assert.Equal(t, SearchPromptText, f.say(t, "1"))
	assert.Equal(t, StepSearching, f.session(t).Step)

	results := f.say(t, "Pocitos")
	assert.Contains(t, results, "✅ 2 propiedades")
	assert.Contains(t, results, "1) *A-100*")
	assert.Equal(t, []string{"A-100", "A-101"}, f.session(t).Results)

	detail := f.say(t, "1")
	assert.Contains(t, detail, "🏠 *A-100*")
	assert.Contains(t, detail, "U$S 180.000")
	assert.Equal(t, "A-100", f.session(t).Selected)

	assert.Equal(t, AskNameText, f.say(t, "3"))
	assert.Equal(t, StepAwaitingName, f.session(t).Step)

	assert.Contains(t, f.say(t, "Jane Doe"), "Gracias Jane Doe!")
	assert.Equal(t, StepAwaitingDateTime, f.session(t).Step)

	confirmation := f.say(t, "10/03/2026 16:30")
	assert.Contains(t, confirmation, "VISITA AGENDADA")
	assert.Contains(t, confirmation, "A-100")
	assert.Contains(t, confirmation, "Jane Doe")

	f.engine.Wait()

	bookings, err := f.db.ListBookings(10)
	require.NoError(t, err)
	require.Len(t, bookings, 1)
	assert.Equal(t, "A-100", bookings[0].ListingReference)
	assert.Equal(t, "Jane Doe", bookings[0].ClientName)
	assert.Equal(t, "59899123456", bookings[0].ClientContact)
	assert.Equal(t, "10/03/2026 16:30", bookings[0].RequestedText)
	assert.Equal(t, database.BookingStatusPending, bookings[0].Status)

	assert.Equal(t, 0, f.store.Count())
	assert.Equal(t, StepInitial, f.session(t).Step)

	require.Len(t, f.notifier.bookings, 1)
	assert.Equal(t, bookings[0].ID, f.notifier.bookings[0].ID)
	assert.Equal(t, "A-100", f.notifier.listings[0].Reference)
}

func TestEngine_NoResultsGoesBackToMenu(t *testing.T) {
	f := newEngineFixture(t)
	f.say(t, "hola")
	f.say(t, "1")

	assert.Equal(t, NoResultsText, f.say(t, "castillo en Marte"))
	assert.Equal(t, StepMenu, f.session(t).Step)
	assert.Empty(t, f.session(t).Results)
}

func TestEngine_ScheduleWithoutSelection(t *testing.T) {
	f := newEngineFixture(t)
	f.say(t, "hola")

	assert.Equal(t, NeedSelectionText, f.say(t, "3"))
	assert.Equal(t, StepMenu, f.session(t).Step)
}

func TestEngine_ReferenceLookup(t *testing.T) {
	f := newEngineFixture(t)
	f.say(t, "hola")

	assert.Contains(t, f.say(t, "A-101"), "$ 35.000/mes")
	assert.Equal(t, "A-101", f.session(t).Selected)

	assert.Equal(t, NotFoundText, f.say(t, "Z-999"))
	assert.Equal(t, "A-101", f.session(t).Selected)
}

func TestEngine_PickAnotherResultByNumber(t *testing.T) {
	f := newEngineFixture(t)
	f.say(t, "hola")
	f.say(t, "1")
	f.say(t, "Pocitos")

	assert.Contains(t, f.say(t, "1"), "🏠 *A-100*")
	assert.Equal(t, AskReferenceText, f.say(t, "2"))
	assert.Contains(t, f.say(t, "2"), "🏠 *A-101*")
	assert.Equal(t, "A-101", f.session(t).Selected)
	assert.False(t, f.session(t).AwaitingReference)
}

func TestEngine_FreeQuestionUsesManualAndHistory(t *testing.T) {
	f := newEngineFixture(t)
	f.gen.On("Generate", mock.Anything, mock.MatchedBy(func(system string) bool {
		return strings.Contains(system, "La comisión por alquiler es de un mes de alquiler más IVA, a cargo del inquilino.")
	}), "¿Cuál es la comisión?").Return("Un mes de alquiler más IVA 🏠", nil)

	f.say(t, "hola")
	reply := f.say(t, "¿Cuál es la comisión?")

	assert.Equal(t, "Un mes de alquiler más IVA 🏠", reply)
	assert.Contains(t, f.replier.replies, ProgressText)
	f.gen.AssertExpectations(t)

	history, err := f.store.History().Get(context.Background(), sender)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, assistant.RoleClient, history[0].Role)
	assert.Equal(t, assistant.RoleAssistant, history[1].Role)

	// going back to the menu forgets the chat
	f.say(t, "menu")
	history, err = f.store.History().Get(context.Background(), sender)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestEngine_GenerationFailureUsesFallback(t *testing.T) {
	f := newEngineFixture(t)
	f.gen.On("Generate", mock.Anything, mock.Anything, mock.Anything).Return("", errors.New("model offline"))

	f.say(t, "hola")
	assert.Equal(t, assistant.FallbackReply, f.say(t, "¿Aceptan mascotas?"))
	assert.Equal(t, StepMenu, f.session(t).Step)
}

func TestEngine_InvalidDateReprompts(t *testing.T) {
	f := newEngineFixture(t)
	f.say(t, "hola")
	f.say(t, "A-100")
	f.say(t, "3")
	f.say(t, "Jane Doe")

	assert.Contains(t, f.say(t, "el jueves a la tarde"), "No entendí la fecha")
	assert.Equal(t, StepAwaitingDateTime, f.session(t).Step)

	assert.Contains(t, f.say(t, "01/01/2020 10:00"), "Esa fecha ya pasó")
	assert.Equal(t, StepAwaitingDateTime, f.session(t).Step)

	bookings, err := f.db.ListBookings(10)
	require.NoError(t, err)
	assert.Empty(t, bookings)
}

type failingSessions struct{ SessionStore }

func (failingSessions) Get(context.Context, string) (Session, error) {
	return Session{}, errors.New("redis down")
}

func TestEngine_SessionLoadFailureStartsOver(t *testing.T) {
	f := newEngineFixture(t)
	f.engine.sessions = failingSessions{f.store.Sessions()}

	assert.Contains(t, f.say(t, "A-100"), "¡Hola!")
}

func TestEngine_HistoryCapped(t *testing.T) {
	f := newEngineFixture(t)
	f.gen.On("Generate", mock.Anything, mock.Anything, mock.Anything).Return("ok", nil)

	f.say(t, "hola")
	for i := range 8 {
		f.say(t, fmt.Sprintf("pregunta número %d sin referencia", i))
	}

	history, err := f.store.History().Get(context.Background(), sender)
	require.NoError(t, err)
	assert.Len(t, history, maxHistoryEntries)
}

func TestEngine_SerialisesSameSender(t *testing.T) {
	f := newEngineFixture(t)
	f.say(t, "hola")

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			f.say(t, "4")
		}()
	}
	wg.Wait()

	assert.Len(t, f.replier.replies, 21)
	assert.Equal(t, StepMenu, f.session(t).Step)
}

func TestEngine_StoreFailures(t *testing.T) {
	store := &mocks.MockListingStore{}
	store.On("SearchListings", "Pocitos").Return(nil, errors.New("disk I/O error"))
	store.On("GetListingByReference", "Z-1").Return(nil, errors.New("disk I/O error"))
	store.On("GetListingByReference", "A-100").Return(&database.Listing{Reference: "A-100", City: "Montevideo"}, nil)
	store.On("RecordBooking", "A-100", "Jane Doe", "59899123456", "10/03/2026 16:30", mock.Anything, "").
		Return(int64(0), errors.New("database is locked"))

	mem := NewMemoryStore()
	replier := &recordingReplier{}
	engine := NewEngine(EngineConfig{
		Sessions: mem.Sessions(),
		History:  mem.History(),
		Listings: store,
		Now:      func() time.Time { return testNow },
	})
	say := func(text string) string {
		engine.HandleMessage(context.Background(), source.Message{SenderID: sender, Text: text}, replier)
		return replier.last()
	}

	say("hola")
	say("1")
	assert.Equal(t, NoResultsText, say("Pocitos"))
	assert.Equal(t, NotFoundText, say("Z-1"))

	say("A-100")
	say("3")
	say("Jane Doe")
	assert.Equal(t, BookingFailedText, say("10/03/2026 16:30"))
	store.AssertExpectations(t)
}

type panickingListings struct{ ListingStore }

func (panickingListings) SearchListings(string) ([]database.Listing, error) {
	panic("nil catalog")
}

func TestEngine_PanicResetsSession(t *testing.T) {
	f := newEngineFixture(t)
	f.engine.listings = panickingListings{f.db}

	f.say(t, "hola")
	f.say(t, "1")
	assert.Equal(t, ErrorText, f.say(t, "Pocitos"))
	assert.Equal(t, StepInitial, f.session(t).Step)
	assert.Equal(t, 0, f.store.Count())
}
