package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"

	buspkg "github.com/sat8bit/sembang/bus"
	"github.com/sat8bit/sembang/buslog"
	"github.com/sat8bit/sembang/config"
	"github.com/sat8bit/sembang/dialogue"
	"github.com/sat8bit/sembang/flags"
	"github.com/sat8bit/sembang/message"
	"github.com/sat8bit/sembang/persona"
	"github.com/sat8bit/sembang/renderer"
	"github.com/sat8bit/sembang/speech"
	"github.com/sat8bit/sembang/supervisor"
	"github.com/sat8bit/sembang/talk"
)

const tutorialTip = "Daily Talk: reply by typing the number of an answer. " +
	"t = translations, v = voice, r = restart, q = quit. It's the fastest way to learn!"

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Ctrl+C シグナルで cancel()
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		cancel()
	}()

	// --- 台本とペルソナを埋め込みリソースから読み込む ---
	graph, err := dialogue.DefaultGraph()
	if err != nil {
		log.Fatalf("failed to load dialogue: %v", err)
	}
	pool, err := persona.NewPool()
	if err != nil {
		log.Fatalf("failed to load persona pool: %v", err)
	}
	bot, err := pool.GetByRole(persona.RoleBot)
	if err != nil {
		log.Fatal(err)
	}
	learner, err := pool.GetByRole(persona.RoleLearner)
	if err != nil {
		log.Fatal(err)
	}

	store, err := openFlags(cfg)
	if err != nil {
		log.Fatalf("failed to open flags: %v", err)
	}
	if cfg.ResetProgress {
		if err := flags.Reset(store); err != nil {
			log.Fatalf("failed to reset progress: %v", err)
		}
	}

	bus := buspkg.NewMemoryBus()
	level := slog.LevelInfo
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	stderr := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})
	slog.SetDefault(slog.New(buslog.NewBusHandler(bus, stderr, level)))

	// --- レンダラーを初期化 ---
	var wg sync.WaitGroup
	console := renderer.NewConsoleRenderer(os.Stdout, cfg.CharDelay)
	console.SetTranslate(cfg.Translate)
	console.SetVerbose(cfg.Verbose)
	renderers := []renderer.Renderer{console}
	if cfg.OutDir != "" {
		renderers = append(renderers, renderer.NewMarkdownRenderer(cfg.OutDir))
	}
	if cfg.Sheet != "" {
		renderers = append(renderers, renderer.NewXLSXRenderer(cfg.Sheet))
	}
	for _, r := range renderers {
		if err := r.Render(bus, &wg); err != nil {
			log.Fatalf("failed to initialize renderer: %v", err)
		}
	}

	sup := supervisor.NewSupervisor(cfg.Turns, bus, cancel)
	sup.Start()

	speaker := newSpeaker(ctx, cfg)
	voiceDisabled, err := store.Get(flags.VoiceDisabled)
	if err != nil {
		slog.Warn("failed to read voice flag", "error", err)
	}

	session := talk.NewSession(graph, talk.Config{
		Bot:     bot,
		Learner: learner,
		Bus:     bus,
		Speaker: speaker,
		Voice:   cfg.Voice && !voiceDisabled,
	})

	showTutorial(store, bus)

	exitCode := 0
	if err := run(ctx, cfg, session, console, store); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("talk ended with error", "session", session.ID(), "error", err)
		exitCode = 1
	}

	if err := session.End(); err != nil {
		slog.Warn("failed to announce end", "error", err)
	}
	bus.Close()
	wg.Wait()

	for _, r := range renderers {
		if err := r.Finalize(); err != nil {
			fmt.Fprintf(os.Stderr, "failed to finalize renderer: %v\n", err)
		}
	}
	if err := store.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to close flags: %v\n", err)
	}
	fmt.Printf("%d replies.\n", sup.GetCurrentTurn())
	if exitCode != 0 {
		cancel()
		os.Exit(exitCode)
	}
}

func run(ctx context.Context, cfg *config.Config, session *talk.Session, console *renderer.ConsoleRenderer, store flags.Store) error {
	if _, err := session.Start(ctx); err != nil {
		return err
	}
	if cfg.Topic > 0 {
		if _, err := session.Choose(ctx, cfg.Topic-1); err != nil && !errors.Is(err, dialogue.ErrInvalidTransition) {
			return err
		}
	}

	if cfg.Auto {
		for ctx.Err() == nil {
			if _, err := session.Choose(ctx, 0); err != nil {
				return err
			}
		}
		return ctx.Err()
	}

	lines := readLines(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			quit, err := handleInput(ctx, strings.TrimSpace(line), session, console, store)
			if err != nil {
				return err
			}
			if quit {
				return nil
			}
		}
	}
}

func handleInput(ctx context.Context, line string, session *talk.Session, console *renderer.ConsoleRenderer, store flags.Store) (bool, error) {
	switch strings.ToLower(line) {
	case "":
		return false, nil
	case "q":
		return true, nil
	case "r":
		_, err := session.Restart(ctx)
		return false, err
	case "t":
		console.SetTranslate(!console.Translate())
		return false, nil
	case "v":
		on := !session.VoiceEnabled()
		session.SetVoice(on)
		if err := store.Set(flags.VoiceDisabled, !on); err != nil {
			slog.Warn("failed to save voice flag", "error", err)
		}
		return false, nil
	}

	n, err := strconv.Atoi(line)
	if err != nil {
		fmt.Println("?")
		return false, nil
	}
	_, err = session.Choose(ctx, n-1)
	if errors.Is(err, dialogue.ErrInvalidTransition) {
		// The session already showed the valid answers again.
		return false, nil
	}
	return false, err
}

func readLines(ctx context.Context) <-chan string {
	ch := make(chan string)
	go func() {
		defer close(ch)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			select {
			case ch <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch
}

func openFlags(cfg *config.Config) (flags.Store, error) {
	if cfg.FlagsBackend == config.FlagsBackendSQLite {
		return flags.OpenSQLiteStore(cfg.FlagsPath())
	}
	return flags.OpenFileStore(cfg.FlagsPath())
}

// newSpeaker builds the speech pipeline whenever credentials exist, even with
// -voice=false: the session decides whether to speak, so `v` can turn it on.
func newSpeaker(ctx context.Context, cfg *config.Config) speech.Speaker {
	if !cfg.Speech.Enabled() {
		return speech.Nop{}
	}
	gemini, err := speech.NewGemini(ctx, cfg.Speech.ProjectID, cfg.Speech.Location, cfg.Speech.Model, cfg.Speech.Voice)
	if err != nil {
		slog.Warn("speech disabled", "error", err)
		return speech.Nop{}
	}
	return playerFor(gemini, cfg)
}

func playerFor(synth speech.Synthesizer, cfg *config.Config) speech.Speaker {
	cached, err := speech.NewCached(synth, cfg.Speech.CacheSize)
	if err != nil {
		slog.Warn("speech disabled", "error", err)
		return speech.Nop{}
	}
	return speech.NewPlayer(cached, cfg.VoiceDir())
}

// showTutorial shows the Daily Talk tip on the first run only.
func showTutorial(store flags.Store, bus buspkg.Bus) {
	done, err := store.Get(flags.TutorialCompleted)
	if err != nil {
		slog.Warn("failed to read tutorial flag", "error", err)
	}
	if done {
		return
	}
	if err := bus.Broadcast(&message.Message{Kind: message.KindSystem, Text: tutorialTip}); err != nil {
		slog.Warn("failed to show tutorial", "error", err)
		return
	}
	if err := store.Set(flags.TutorialCompleted, true); err != nil {
		slog.Warn("failed to save tutorial flag", "error", err)
	}
}
