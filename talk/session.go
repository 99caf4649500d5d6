// Package talk is the Daily Talk screen: it drives a dialogue.Engine in
// response to the learner's choices and turns every step into chat bubbles
// on the bus, with a typing pause before each bot line and optional speech.
package talk

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sat8bit/sembang/bus"
	"github.com/sat8bit/sembang/dialogue"
	"github.com/sat8bit/sembang/message"
	"github.com/sat8bit/sembang/persona"
	"github.com/sat8bit/sembang/speech"
	"github.com/sat8bit/sembang/turn"
)

// Config collects the collaborators of a Session.
type Config struct {
	Bot     *persona.Persona
	Learner *persona.Persona
	Bus     bus.Bus
	Speaker speech.Speaker // nil means silent
	Turns   turn.Manager   // nil means a fresh turn.MutexManager
	Voice   bool
}

// Session is one conversation. It owns its engine; sessions never share state.
type Session struct {
	id      string
	engine  *dialogue.Engine
	bot     *persona.Persona
	learner *persona.Persona
	bus     bus.Bus
	speaker speech.Speaker
	turns   turn.Manager

	mu         sync.Mutex
	transcript []*message.Message
	voice      bool
	delay      time.Duration
}

func NewSession(g *dialogue.Graph, cfg Config) *Session {
	s := &Session{
		id:      uuid.NewString(),
		engine:  dialogue.NewEngine(g),
		bot:     cfg.Bot,
		learner: cfg.Learner,
		bus:     cfg.Bus,
		speaker: cfg.Speaker,
		turns:   cfg.Turns,
		voice:   cfg.Voice,
		delay:   cfg.Bot.TypingDelay(),
	}
	if s.speaker == nil {
		s.speaker = speech.Nop{}
	}
	if s.turns == nil {
		s.turns = turn.NewMutexManager()
	}
	return s
}

func (s *Session) ID() string {
	return s.id
}

// SetTypingDelay overrides the bot persona's typing pause.
func (s *Session) SetTypingDelay(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delay = d
}

func (s *Session) SetVoice(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.voice = on
}

func (s *Session) VoiceEnabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.voice
}

// Transcript returns the bubbles shown so far, oldest first.
func (s *Session) Transcript() []*message.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*message.Message(nil), s.transcript...)
}

// Current returns the node whose options are on screen.
func (s *Session) Current() (*dialogue.Node, error) {
	if err := s.turns.Acquire(context.Background()); err != nil {
		return nil, err
	}
	defer s.turns.Release()
	return s.engine.CurrentNode()
}

// Start opens the conversation. A session with nothing on screen starts over
// from the root; otherwise the conversation resumes where it was left, showing
// the current line again if an interrupted reveal never showed it.
func (s *Session) Start(ctx context.Context) (*dialogue.Node, error) {
	if err := s.turns.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.turns.Release()

	s.mu.Lock()
	var last *message.Message
	if n := len(s.transcript); n > 0 {
		last = s.transcript[n-1]
	}
	s.mu.Unlock()

	if last == nil {
		return s.restart(ctx)
	}
	node, err := s.engine.CurrentNode()
	if err != nil {
		return nil, s.fail(ctx, err)
	}
	slog.DebugContext(ctx, "talk resumed", "session", s.id, "node", node.ID)
	// A reveal cut short leaves the current line unseen.
	if last.Kind != message.KindBot || last.NodeID != string(node.ID) {
		if err := s.reveal(ctx, node); err != nil {
			return nil, err
		}
	}
	return node, nil
}

// Restart clears the screen and starts over from the root.
func (s *Session) Restart(ctx context.Context) (*dialogue.Node, error) {
	if err := s.turns.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.turns.Release()
	return s.restart(ctx)
}

func (s *Session) restart(ctx context.Context) (*dialogue.Node, error) {
	s.mu.Lock()
	s.transcript = nil
	s.mu.Unlock()

	root := s.engine.Reset()
	slog.InfoContext(ctx, "talk started", "session", s.id, "node", root.ID)
	if err := s.reveal(ctx, root); err != nil {
		return nil, err
	}
	return root, nil
}

// Choose picks the option at index (0-based, button order) of the current node.
func (s *Session) Choose(ctx context.Context, index int) (*dialogue.Node, error) {
	if err := s.turns.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.turns.Release()

	node, err := s.engine.CurrentNode()
	if err != nil {
		return nil, s.fail(ctx, err)
	}
	if index < 0 || index >= len(node.Options) {
		_, err := s.engine.SelectIndex(index)
		return nil, s.fail(ctx, err)
	}
	return s.choose(ctx, node.Options[index])
}

// ChooseOption picks opt, which must belong to the current node. A stale
// option, e.g. a button from before a restart, is rejected and the valid
// options are shown again.
func (s *Session) ChooseOption(ctx context.Context, opt dialogue.Option) (*dialogue.Node, error) {
	if err := s.turns.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.turns.Release()
	return s.choose(ctx, opt)
}

func (s *Session) choose(ctx context.Context, opt dialogue.Option) (*dialogue.Node, error) {
	from := s.engine.CurrentID()
	next, err := s.engine.Select(opt)
	if err != nil {
		return nil, s.fail(ctx, err)
	}

	reply := &message.Message{
		From:        s.learner,
		Text:        opt.Text,
		Translation: opt.Translation,
		NodeID:      string(from),
		Kind:        message.KindUser,
	}
	if from == s.engine.Graph().Root() {
		reply.Meta = map[string]string{"topic": opt.Text}
	}
	if err := s.publish(reply); err != nil {
		return nil, err
	}

	slog.DebugContext(ctx, "option chosen", "session", s.id, "from", from, "to", next.ID)
	if err := s.reveal(ctx, next); err != nil {
		return nil, err
	}
	return next, nil
}

// reveal shows the typing indicator, waits, then shows the bot line with
// its options and reads it aloud.
func (s *Session) reveal(ctx context.Context, node *dialogue.Node) error {
	s.mu.Lock()
	delay := s.delay
	voice := s.voice
	s.mu.Unlock()

	if err := s.broadcast(&message.Message{From: s.bot, Kind: message.KindTyping, NodeID: string(node.ID)}); err != nil {
		return err
	}
	if delay > 0 {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return fmt.Errorf("talk: reveal of %s interrupted: %w", node.ID, ctx.Err())
		case <-timer.C:
		}
	}

	if err := s.publish(&message.Message{
		From:        s.bot,
		Text:        node.Text,
		Translation: node.Translation,
		NodeID:      string(node.ID),
		Options:     labels(node),
		Kind:        message.KindBot,
	}); err != nil {
		return err
	}

	if voice {
		// The line is already on screen; a failed voice is not worth ending the talk.
		if err := s.speaker.Speak(ctx, node.Text, s.bot.LanguageCode); err != nil {
			slog.WarnContext(ctx, "speech failed", "session", s.id, "node", node.ID, "error", err)
		}
	}
	return nil
}

// fail reports err and returns it. Invalid transitions re-show the valid
// options; broken content is logged and shown as an error bubble.
func (s *Session) fail(ctx context.Context, err error) error {
	var ite *dialogue.InvalidTransitionError
	switch {
	case errors.As(err, &ite):
		slog.WarnContext(ctx, "stale option rejected", "session", s.id, "node", ite.NodeID, "error", err)
		if node, cerr := s.engine.CurrentNode(); cerr == nil {
			if berr := s.broadcast(&message.Message{
				Text:    "Pilih salah satu jawapan.",
				NodeID:  string(node.ID),
				Options: labels(node),
				Kind:    message.KindSystem,
			}); berr != nil {
				slog.WarnContext(ctx, "failed to re-show options", "session", s.id, "error", berr)
			}
		}
	case errors.Is(err, dialogue.ErrGraphIntegrity):
		slog.ErrorContext(ctx, "dialogue content is broken", "session", s.id, "error", err)
		if berr := s.publish(&message.Message{Text: err.Error(), Kind: message.KindError}); berr != nil {
			slog.ErrorContext(ctx, "failed to publish error", "session", s.id, "error", berr)
		}
	}
	return err
}

// End announces the end of the session.
func (s *Session) End() error {
	return s.broadcast(&message.Message{Kind: message.KindEnd, Text: "end"})
}

// publish shows a bubble and keeps it in the transcript.
func (s *Session) publish(m *message.Message) error {
	if err := s.broadcast(m); err != nil {
		return err
	}
	s.mu.Lock()
	s.transcript = append(s.transcript, m)
	s.mu.Unlock()
	return nil
}

func (s *Session) broadcast(m *message.Message) error {
	m.SessionID = s.id
	if m.At.IsZero() {
		m.At = time.Now()
	}
	if err := s.bus.Broadcast(m); err != nil {
		return fmt.Errorf("talk: failed to broadcast %s message: %w", m.Kind, err)
	}
	return nil
}

func labels(node *dialogue.Node) []string {
	out := make([]string, len(node.Options))
	for i, opt := range node.Options {
		out[i] = opt.Text
	}
	return out
}
