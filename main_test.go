package main

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	buspkg "github.com/sat8bit/sembang/bus"
	"github.com/sat8bit/sembang/config"
	"github.com/sat8bit/sembang/dialogue"
	"github.com/sat8bit/sembang/flags"
	"github.com/sat8bit/sembang/message"
	"github.com/sat8bit/sembang/persona"
	"github.com/sat8bit/sembang/renderer"
	"github.com/sat8bit/sembang/speech"
	"github.com/sat8bit/sembang/talk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drain(ch <-chan *message.Message) []*message.Message {
	var out []*message.Message
	for {
		select {
		case m := <-ch:
			out = append(out, m)
		default:
			return out
		}
	}
}

func openStore(t *testing.T, path string) *flags.FileStore {
	t.Helper()
	store, err := flags.OpenFileStore(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestShowTutorialOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flags.yaml")
	store := openStore(t, path)
	bus := buspkg.NewMemoryBus()
	ch := bus.Subscribe()

	showTutorial(store, bus)
	msgs := drain(ch)
	require.Len(t, msgs, 1)
	assert.Equal(t, message.KindSystem, msgs[0].Kind)
	assert.Equal(t, tutorialTip, msgs[0].Text)

	done, err := store.Get(flags.TutorialCompleted)
	require.NoError(t, err)
	assert.True(t, done)

	showTutorial(store, bus)
	assert.Empty(t, drain(ch))

	// 次回の起動でも表示しない
	showTutorial(openStore(t, path), bus)
	assert.Empty(t, drain(ch))
}

type inputFixture struct {
	session *talk.Session
	console *renderer.ConsoleRenderer
	store   *flags.FileStore
	ch      <-chan *message.Message
}

func newInputFixture(t *testing.T) *inputFixture {
	t.Helper()
	g, err := dialogue.NewGraph("start", []*dialogue.Node{
		{ID: "start", Text: "Hai, Abdi.😊", Options: []dialogue.Option{
			{Text: "Makanan (Food)", Next: "food"},
			{Text: "Cuaca (Weather)", Next: "weather"},
		}},
		{ID: "food", Text: "Abdi dah makan?", Options: []dialogue.Option{{Text: "Sudah.", Next: "start"}}},
		{ID: "weather", Text: "Panas hari ni.", Options: []dialogue.Option{{Text: "Betul.", Next: "start"}}},
	})
	require.NoError(t, err)

	bus := buspkg.NewMemoryBus()
	f := &inputFixture{
		console: renderer.NewConsoleRenderer(io.Discard, 0),
		store:   openStore(t, filepath.Join(t.TempDir(), "flags.yaml")),
		ch:      bus.Subscribe(),
	}
	f.session = talk.NewSession(g, talk.Config{
		Bot:     &persona.Persona{PersonaId: "amir", DisplayName: "Amir", Role: persona.RoleBot},
		Learner: &persona.Persona{PersonaId: "abdi", DisplayName: "Abdi", Role: persona.RoleLearner},
		Bus:     bus,
		Voice:   true,
	})
	_, err = f.session.Start(t.Context())
	require.NoError(t, err)
	drain(f.ch)
	return f
}

func (f *inputFixture) handle(t *testing.T, line string) bool {
	t.Helper()
	quit, err := handleInput(t.Context(), line, f.session, f.console, f.store)
	require.NoError(t, err)
	return quit
}

func currentID(t *testing.T, s *talk.Session) dialogue.NodeID {
	t.Helper()
	node, err := s.Current()
	require.NoError(t, err)
	return node.ID
}

func TestHandleInputVoiceToggleIsSaved(t *testing.T) {
	f := newInputFixture(t)

	assert.False(t, f.handle(t, "v"))
	assert.False(t, f.session.VoiceEnabled())
	disabled, err := f.store.Get(flags.VoiceDisabled)
	require.NoError(t, err)
	assert.True(t, disabled)

	assert.False(t, f.handle(t, "V"))
	assert.True(t, f.session.VoiceEnabled())
	disabled, err = f.store.Get(flags.VoiceDisabled)
	require.NoError(t, err)
	assert.False(t, disabled)
}

func TestHandleInputOutOfRangeShowsOptionsAgain(t *testing.T) {
	f := newInputFixture(t)

	assert.False(t, f.handle(t, "9"))
	assert.Equal(t, dialogue.NodeID("start"), currentID(t, f.session))

	msgs := drain(f.ch)
	require.Len(t, msgs, 1)
	assert.Equal(t, message.KindSystem, msgs[0].Kind)
	assert.Equal(t, []string{"Makanan (Food)", "Cuaca (Weather)"}, msgs[0].Options)
}

func TestHandleInputCommands(t *testing.T) {
	f := newInputFixture(t)

	assert.False(t, f.handle(t, ""))
	assert.Empty(t, drain(f.ch))

	assert.False(t, f.handle(t, "2"))
	assert.Equal(t, dialogue.NodeID("weather"), currentID(t, f.session))

	assert.False(t, f.handle(t, "r"))
	assert.Equal(t, dialogue.NodeID("start"), currentID(t, f.session))
	assert.Len(t, f.session.Transcript(), 1)

	assert.False(t, f.handle(t, "t"))
	assert.True(t, f.console.Translate())
	assert.False(t, f.handle(t, "t"))
	assert.False(t, f.console.Translate())

	assert.True(t, f.handle(t, "q"))
	assert.True(t, f.handle(t, "Q"))
}

type silentSynth struct{}

func (silentSynth) Synthesize(context.Context, string, string) ([]byte, error) {
	return nil, nil
}

func TestSpeakerIgnoresVoiceFlag(t *testing.T) {
	cfg := &config.Config{Voice: false, DataDir: t.TempDir(), Speech: config.SpeechConfig{CacheSize: 8}}

	assert.Equal(t, speech.Nop{}, newSpeaker(t.Context(), cfg))
	assert.IsType(t, &speech.Player{}, playerFor(silentSynth{}, cfg))

	cfg.Speech.CacheSize = 0
	assert.Equal(t, speech.Nop{}, playerFor(silentSynth{}, cfg))
}
