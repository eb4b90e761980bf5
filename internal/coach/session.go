// Package coach runs a guided coaching conversation: it streams assistant
// replies into the conversation log and reconciles the structured document
// in the background after every finished reply.
package coach

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/jonathan/star-coach/internal/conversation"
	"github.com/jonathan/star-coach/internal/document"
	"github.com/jonathan/star-coach/internal/extraction"
	"github.com/jonathan/star-coach/internal/types"
	"github.com/jonathan/star-coach/internal/workflow"
	"go.uber.org/zap"
)

// State is the input state of a session.
type State string

// Session states.
const (
	StateIdle          State = "idle"
	StateAwaitingReply State = "awaiting-reply"
)

const defaultExtractionTimeout = 60 * time.Second

// Config configures a Session.
type Config[D any, U any] struct {
	Workflow  workflow.Workflow[D, U]
	Chat      ChatStreamer
	Extractor extraction.Extractor
	Policy    extraction.Policy
	Hints     types.CoachingContext
	Logger    *zap.Logger

	// Persist is called with a full snapshot after every mutation.
	Persist func(Snapshot[D])
	// ExtractionTimeout bounds each background extraction call.
	ExtractionTimeout time.Duration
}

// Session is the single owner of a coaching conversation's state. All
// methods are safe for concurrent use.
type Session[D any, U any] struct {
	wf         workflow.Workflow[D, U]
	chat       ChatStreamer
	reconciler *extraction.Reconciler[D, U]
	logger     *zap.Logger
	persist    func(Snapshot[D])
	saveMu     sync.Mutex // orders persist calls by capture
	timeout    time.Duration

	mu         sync.Mutex
	conv       *conversation.Store
	doc        *document.Store[D, U]
	section    workflow.Section
	state      State
	errMsg     string
	hints      types.CoachingContext
	generation uint64
	dispatched uint64 // extraction sequence within the generation
	applied    uint64 // highest sequence applied
	listeners  []func(Event)

	baseCtx context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// New creates an idle session showing the workflow's greeting.
func New[D any, U any](cfg Config[D, U]) *Session[D, U] {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.ExtractionTimeout
	if timeout <= 0 {
		timeout = defaultExtractionTimeout
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Session[D, U]{
		wf:         cfg.Workflow,
		chat:       cfg.Chat,
		reconciler: extraction.NewReconciler(cfg.Workflow, cfg.Extractor, cfg.Policy, logger),
		logger:     logger.With(zap.String("workflow", cfg.Workflow.Name)),
		persist:    cfg.Persist,
		timeout:    timeout,
		doc:        document.New(cfg.Workflow.Empty, cfg.Workflow.Merge, cfg.Workflow.Clone),
		section:    cfg.Workflow.Initial(),
		state:      StateIdle,
		hints:      cfg.Hints,
		baseCtx:    ctx,
		cancel:     cancel,
	}
	s.conv = conversation.NewStore(s.bootstrap())
	return s
}

// OnChange registers a listener. Listeners run synchronously on the
// goroutine that made the change, never while the session lock is held.
func (s *Session[D, U]) OnChange(fn func(Event)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Send submits a user turn and streams the reply. It blocks until the reply
// is finished or has failed; extraction then continues in the background.
// A failed reply removes the placeholder, keeps the user's message and sets
// the error returned by Err.
func (s *Session[D, U]) Send(ctx context.Context, content string) error {
	content = strings.TrimSpace(content)
	if content == "" {
		return ErrEmptyMessage
	}

	s.mu.Lock()
	if s.state != StateIdle {
		s.mu.Unlock()
		return ErrTurnInFlight
	}
	gen := s.generation
	section := s.section
	hints := s.hints

	user := s.conv.Append(conversation.Message{Role: types.RoleUser, Content: content, Section: string(section)})
	placeholder, err := s.conv.StartPlaceholder(string(section))
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.state = StateAwaitingReply
	s.errMsg = ""
	turns := s.conv.ModelProjection()
	s.mu.Unlock()

	s.emit(Event{Kind: EventMessage, MessageID: user.ID, Generation: gen})
	s.emit(Event{Kind: EventMessage, MessageID: placeholder.ID, Generation: gen})
	s.save()

	streamErr := s.chat.StreamChat(ctx, types.CoachRequest{
		Workflow:        s.wf.Name,
		Messages:        turns,
		CurrentSection:  string(section),
		CoachingContext: hints,
	}, func(delta string) error {
		s.mu.Lock()
		if s.generation != gen {
			s.mu.Unlock()
			return errSuperseded
		}
		err := s.conv.AppendDelta(placeholder.ID, delta)
		s.mu.Unlock()
		if err != nil {
			return err
		}
		s.emit(Event{Kind: EventDelta, MessageID: placeholder.ID, Delta: delta, Generation: gen})
		return nil
	})

	s.mu.Lock()
	if s.generation != gen {
		s.mu.Unlock()
		s.logger.Debug("discarding reply from before reset", zap.Uint64("generation", gen))
		return ErrSessionReset
	}

	if streamErr != nil {
		_ = s.conv.Abort(placeholder.ID)
		s.state = StateIdle
		s.errMsg = UserMessage(streamErr)
		msg := s.errMsg
		s.mu.Unlock()

		s.logger.Error("chat turn failed", zap.String("section", string(section)), zap.Error(streamErr))
		s.emit(Event{Kind: EventAborted, MessageID: placeholder.ID, Generation: gen})
		s.emit(Event{Kind: EventError, Err: msg, Generation: gen})
		s.save()
		return streamErr
	}

	final, err := s.conv.Finalize(placeholder.ID)
	if err != nil {
		s.state = StateIdle
		s.mu.Unlock()
		return err
	}
	s.state = StateIdle
	s.dispatched++
	seq := s.dispatched
	turns = s.conv.ModelProjection()
	section = s.section
	s.wg.Add(1)
	s.mu.Unlock()

	s.emit(Event{Kind: EventFinalized, MessageID: final.ID, Generation: gen})
	s.save()

	go s.reconcile(gen, seq, turns, section, hints)
	return nil
}

// reconcile runs one background extraction and applies it if the session
// has not been reset and no newer extraction was applied in the meantime.
// The result is merged into the document as it is when the result arrives.
func (s *Session[D, U]) reconcile(gen, seq uint64, turns []types.Turn, section workflow.Section, hints types.CoachingContext) {
	defer s.wg.Done()

	ctx, cancel := context.WithTimeout(s.baseCtx, s.timeout)
	defer cancel()

	res, err := s.reconciler.Extract(ctx, turns, section, hints)
	if err != nil {
		s.logger.Warn("extraction skipped", zap.Uint64("seq", seq), zap.Error(err))
		return
	}

	s.mu.Lock()
	if s.generation != gen {
		s.mu.Unlock()
		s.logger.Debug("discarding extraction from before reset", zap.Uint64("generation", gen))
		return
	}
	if seq < s.applied {
		s.mu.Unlock()
		s.logger.Debug("discarding stale extraction", zap.Uint64("seq", seq), zap.Uint64("applied", s.applied))
		return
	}

	before := s.section
	out := s.reconciler.Next(before, s.doc.Get(), res)
	s.doc.Set(out.Document)
	s.section = out.Section
	s.applied = seq
	s.mu.Unlock()

	s.emit(Event{Kind: EventDocument, Section: out.Section, Generation: gen})
	if out.Section != before {
		s.emit(Event{Kind: EventSection, Section: out.Section, Generation: gen})
	}
	s.save()
}

// Reset starts over with a fresh greeting, an empty document and the initial
// section. Replies and extractions still in flight become no-ops.
func (s *Session[D, U]) Reset() {
	s.ResetWith(s.Hints())
}

// ResetWith resets the session and replaces its context hints, e.g. when
// moving on to the next competency.
func (s *Session[D, U]) ResetWith(hints types.CoachingContext) {
	s.mu.Lock()
	s.generation++
	gen := s.generation
	s.hints = hints
	s.conv.Reset(s.bootstrap())
	s.doc.Reset()
	s.section = s.wf.Initial()
	s.state = StateIdle
	s.errMsg = ""
	s.dispatched = 0
	s.applied = 0
	s.mu.Unlock()

	s.emit(Event{Kind: EventReset, Section: s.wf.Initial(), Generation: gen})
	s.save()
}

// Wait blocks until every background extraction has finished.
func (s *Session[D, U]) Wait() {
	s.wg.Wait()
}

// Close cancels background extractions and waits for them to return.
func (s *Session[D, U]) Close() {
	s.cancel()
	s.wg.Wait()
}

// Messages returns the conversation, including a live placeholder.
func (s *Session[D, U]) Messages() []conversation.Message {
	return s.conv.Messages()
}

// Document returns a copy of the structured document.
func (s *Session[D, U]) Document() D {
	return s.doc.Get()
}

// Section returns the current section.
func (s *Session[D, U]) Section() workflow.Section {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.section
}

// State returns whether the session accepts input.
func (s *Session[D, U]) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Err returns the user-visible error of the last failed turn, or "".
func (s *Session[D, U]) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errMsg
}

// Hints returns the context sent with every request.
func (s *Session[D, U]) Hints() types.CoachingContext {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hints
}

// Generation returns the reset counter.
func (s *Session[D, U]) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

// Workflow returns the session's workflow.
func (s *Session[D, U]) Workflow() workflow.Workflow[D, U] {
	return s.wf
}

func (s *Session[D, U]) bootstrap() conversation.Message {
	return conversation.NewBootstrap(s.wf.Greeting(s.hints), string(s.wf.Initial()))
}

func (s *Session[D, U]) emit(ev Event) {
	s.mu.Lock()
	listeners := make([]func(Event), len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(ev)
	}
}

func (s *Session[D, U]) save() {
	if s.persist == nil {
		return
	}
	// A snapshot taken earlier must not land after a newer one.
	s.saveMu.Lock()
	defer s.saveMu.Unlock()
	s.persist(s.Snapshot())
}
