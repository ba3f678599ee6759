package conversation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/omriShneor/project_casa/internal/assistant"
	"github.com/omriShneor/project_casa/internal/config"
	"github.com/omriShneor/project_casa/internal/database"
	"github.com/omriShneor/project_casa/internal/source"
	"go.uber.org/zap"
)

// ListingStore is the listing and booking persistence the engine uses.
type ListingStore interface {
	SearchListings(query string) ([]database.Listing, error)
	GetListingByReference(reference string) (*database.Listing, error)
	RecordBooking(reference, clientName, clientContact, requestedText string, scheduledAt *time.Time, notes string) (int64, error)
}

// ContextAssembler gathers what the responder needs for a question.
type ContextAssembler interface {
	Assemble(question string, history []Turn) assistant.Bundle
}

// Answerer turns a question and its context into a reply. It never fails.
type Answerer interface {
	Answer(ctx context.Context, question string, b assistant.Bundle) string
}

// BookingNotifier is told about every persisted booking.
type BookingNotifier interface {
	Notify(ctx context.Context, booking database.Booking, listing database.Listing)
}

// EngineConfig holds the engine collaborators. Notifier may be nil.
type EngineConfig struct {
	Sessions  SessionStore
	History   HistoryStore
	Listings  ListingStore
	Assembler ContextAssembler
	Responder Answerer
	Notifier  BookingNotifier
	Profile   *config.Profile
	Logger    *zap.Logger
	// Now defaults to time.Now.
	Now func() time.Time
}

// Engine runs one conversation turn per inbound message.
type Engine struct {
	sessions  SessionStore
	history   HistoryStore
	listings  ListingStore
	assembler ContextAssembler
	responder Answerer
	notifier  BookingNotifier
	profile   *config.Profile
	logger    *zap.Logger
	now       func() time.Time

	locks         *senderLocks
	notifications sync.WaitGroup
}

func NewEngine(cfg EngineConfig) *Engine {
	e := &Engine{
		sessions:  cfg.Sessions,
		history:   cfg.History,
		listings:  cfg.Listings,
		assembler: cfg.Assembler,
		responder: cfg.Responder,
		notifier:  cfg.Notifier,
		profile:   cfg.Profile,
		logger:    cfg.Logger,
		now:       cfg.Now,
		locks:     newSenderLocks(),
	}
	if e.sessions == nil || e.history == nil {
		mem := NewMemoryStore()
		if e.sessions == nil {
			e.sessions = mem.Sessions()
		}
		if e.history == nil {
			e.history = mem.History()
		}
	}
	if e.profile == nil {
		e.profile = config.DefaultProfile()
	}
	if e.logger == nil {
		e.logger = zap.NewNop()
	}
	if e.now == nil {
		e.now = time.Now
	}
	return e
}

// HandleMessage runs a full turn for msg and sends the replies through reply.
func (e *Engine) HandleMessage(ctx context.Context, msg source.Message, reply source.Replier) {
	unlock := e.locks.Lock(msg.SenderID)
	defer unlock()

	log := e.logger.With(
		zap.String("turn", uuid.NewString()),
		zap.String("sender", msg.SenderID),
		zap.String("source", string(msg.SourceType)),
	)

	defer func() {
		if r := recover(); r != nil {
			log.Error("panic during turn", zap.Any("panic", r))
			e.reset(ctx, log, msg.SenderID, reply)
		}
	}()

	current, err := e.sessions.Get(ctx, msg.SenderID)
	if err != nil {
		log.Warn("failed to load session, starting over", zap.Error(err))
		current = NewSession()
	}

	now := e.now()
	next, action := Transition(current, Input{Text: msg.Text, Now: now, Location: e.profile.Location()})
	log.Debug("transition",
		zap.String("from", string(current.Step)),
		zap.String("to", string(next.Step)),
		zap.Stringer("action", action.Kind))

	text, next, err := e.execute(ctx, log, msg, next, action, reply)
	if err != nil {
		log.Error("turn failed", zap.Stringer("action", action.Kind), zap.Error(err))
		e.reset(ctx, log, msg.SenderID, reply)
		return
	}

	next.UpdatedAt = now
	if next.IsBlank() {
		err = e.sessions.Delete(ctx, msg.SenderID)
	} else {
		err = e.sessions.Save(ctx, msg.SenderID, next)
	}
	if err != nil {
		log.Warn("failed to store session", zap.Error(err))
	}

	e.send(ctx, log, reply, msg.SenderID, text)
}

// reset drops the sender back to the initial step and apologises.
func (e *Engine) reset(ctx context.Context, log *zap.Logger, senderID string, reply source.Replier) {
	if err := e.sessions.Delete(ctx, senderID); err != nil {
		log.Warn("failed to drop session", zap.Error(err))
	}
	e.send(ctx, log, reply, senderID, ErrorText)
}

// Wait blocks until in-flight booking notifications finish.
func (e *Engine) Wait() {
	e.notifications.Wait()
}

func (e *Engine) execute(ctx context.Context, log *zap.Logger, msg source.Message, next Session, action Action, reply source.Replier) (string, Session, error) {
	now := e.now()

	switch action.Kind {
	case ActionShowMenu:
		if action.ClearHistory {
			if err := e.history.Clear(ctx, msg.SenderID); err != nil {
				log.Warn("failed to clear history", zap.Error(err))
			}
		}
		return MenuText(e.profile, now), next, nil

	case ActionPromptSearch:
		return SearchPromptText, next, nil

	case ActionSearch:
		found, err := e.listings.SearchListings(action.Text)
		if err != nil {
			log.Error("listing search failed", zap.String("query", action.Text), zap.Error(err))
			found = nil
		}
		if len(found) == 0 {
			return NoResultsText, next, nil
		}
		refs := make([]string, len(found))
		for i, l := range found {
			refs[i] = l.Reference
		}
		return ResultsText(found), next.WithResults(refs), nil

	case ActionShowListing:
		listing, err := e.listings.GetListingByReference(action.Text)
		if err != nil {
			log.Error("listing lookup failed", zap.String("reference", action.Text), zap.Error(err))
			listing = nil
		}
		if listing == nil {
			return NotFoundText, next, nil
		}
		return DetailText(*listing), next.WithSelection(listing.Reference), nil

	case ActionAskReference:
		return AskReferenceText, next, nil

	case ActionNeedSelection:
		return NeedSelectionText, next, nil

	case ActionAskName:
		return AskNameText, next, nil

	case ActionAskDateTime:
		return AskDateTimeText(action.Text, now), next, nil

	case ActionInvalidDateTime:
		return InvalidDateTimeText(action.Err, now), next, nil

	case ActionBook:
		return e.book(ctx, log, msg, action.Booking), next, nil

	case ActionContact:
		return ContactText(e.profile), next, nil

	case ActionAnswer:
		return e.answer(ctx, log, msg, action.Text, reply), next, nil
	}

	return "", next, fmt.Errorf("unhandled action %s", action.Kind)
}

func (e *Engine) book(ctx context.Context, log *zap.Logger, msg source.Message, req *BookingRequest) string {
	if req == nil {
		log.Error("booking action without request")
		return BookingFailedText
	}

	contact := source.Contact(msg.SenderID)
	at := req.ScheduledAt
	id, err := e.listings.RecordBooking(req.Reference, req.ClientName, contact, req.RequestedText, &at, "")
	if err != nil {
		if errors.Is(err, database.ErrListingNotFound) {
			log.Warn("selected listing disappeared before booking", zap.String("reference", req.Reference))
		} else {
			log.Error("failed to record booking", zap.Error(err))
		}
		return BookingFailedText
	}
	log.Info("booking recorded", zap.Int64("booking_id", id), zap.String("reference", req.Reference))

	if e.notifier != nil {
		listing, err := e.listings.GetListingByReference(req.Reference)
		if err != nil || listing == nil {
			log.Warn("skipping booking notification, listing unavailable", zap.Error(err))
		} else {
			booking := database.Booking{
				ID:               id,
				ListingID:        listing.ID,
				ListingReference: listing.Reference,
				ClientName:       req.ClientName,
				ClientContact:    contact,
				RequestedText:    req.RequestedText,
				ScheduledAt:      &at,
				Status:           database.BookingStatusPending,
			}
			notifyCtx := context.WithoutCancel(ctx)
			e.notifications.Add(1)
			go func() {
				defer e.notifications.Done()
				e.notifier.Notify(notifyCtx, booking, *listing)
			}()
		}
	}

	return BookingConfirmedText(*req)
}

func (e *Engine) answer(ctx context.Context, log *zap.Logger, msg source.Message, question string, reply source.Replier) string {
	e.send(ctx, log, reply, msg.SenderID, ProgressText)

	history, err := e.history.Get(ctx, msg.SenderID)
	if err != nil {
		log.Warn("failed to load history", zap.Error(err))
	}

	var bundle assistant.Bundle
	if e.assembler != nil {
		bundle = e.assembler.Assemble(question, history)
	} else {
		bundle.History = assistant.RenderHistory(history)
	}

	text := assistant.FallbackReply
	if e.responder != nil {
		text = e.responder.Answer(ctx, question, bundle)
	}

	err = e.history.Append(ctx, msg.SenderID,
		Turn{Role: assistant.RoleClient, Text: question},
		Turn{Role: assistant.RoleAssistant, Text: text},
	)
	if err != nil {
		log.Warn("failed to append history", zap.Error(err))
	}
	return text
}

func (e *Engine) send(ctx context.Context, log *zap.Logger, reply source.Replier, to, text string) {
	if text == "" || reply == nil {
		return
	}
	if err := reply.Reply(ctx, to, text); err != nil {
		log.Error("failed to send reply", zap.Error(err))
	}
}
