package config

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	FlagsBackendFile   = "file"
	FlagsBackendSQLite = "sqlite"
)

// AutoTurns caps -auto runs that do not pass -turns.
const AutoTurns = 20

type Config struct {
	Auto          bool
	Turns         int
	Topic         int
	Translate     bool
	Voice         bool
	Verbose       bool
	OutDir        string
	Sheet         string
	ResetProgress bool
	CharDelay     time.Duration

	DataDir      string
	FlagsBackend string
	Speech       SpeechConfig
}

type SpeechConfig struct {
	ProjectID string
	Location  string
	Model     string
	Voice     string
	CacheSize int
}

// Enabled reports whether Vertex AI credentials are configured.
func (s SpeechConfig) Enabled() bool {
	return s.ProjectID != "" && s.Location != ""
}

// FlagsPath is where the persisted flags live for the chosen backend.
func (c *Config) FlagsPath() string {
	if c.FlagsBackend == FlagsBackendSQLite {
		return filepath.Join(c.DataDir, "flags.db")
	}
	return filepath.Join(c.DataDir, "flags.yaml")
}

// VoiceDir is where synthesised lines are saved.
func (c *Config) VoiceDir() string {
	return filepath.Join(c.DataDir, "voice")
}

// Load reads .env (if present), the environment and the command line.
func Load(args []string) (*Config, error) {
	_ = godotenv.Load()

	fs := flag.NewFlagSet("sembang", flag.ContinueOnError)
	var (
		auto      = fs.Bool("auto", false, "Pick the first reply every turn")
		turns     = fs.Int("turns", 0, "Stop after this many replies (0 = no limit; -auto defaults to 20)")
		topic     = fs.Int("topic", 0, "Open with the n-th topic of the first menu (0 = ask)")
		translate = fs.Bool("translate", false, "Show translations under every line")
		voice     = fs.Bool("voice", true, "Read bot lines aloud when speech is configured")
		verbose   = fs.Bool("verbose", false, "Show log lines in the chat")
		outDir    = fs.String("out", "", "Write the transcript as Markdown into this directory")
		sheet     = fs.String("sheet", "", "Write a phrase study sheet (.xlsx) to this path")
		reset     = fs.Bool("reset-progress", false, "Clear saved progress flags before starting")
		charDelay = fs.Duration("char-delay", 30*time.Millisecond, "Typewriter delay per character (-auto defaults to 0)")
	)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if *turns < 0 {
		return nil, fmt.Errorf("-turns must not be negative: %d", *turns)
	}
	if *topic < 0 {
		return nil, fmt.Errorf("-topic must not be negative: %d", *topic)
	}

	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if *auto {
		// 自動モードは入力待ちがないので、タイプライターが吹き出しに追いつけない
		if !set["turns"] {
			*turns = AutoTurns
		}
		if !set["char-delay"] {
			*charDelay = 0
		}
	}

	backend := strings.ToLower(firstNonEmpty(strings.TrimSpace(os.Getenv("SEMBANG_FLAGS_BACKEND")), FlagsBackendFile))
	if backend != FlagsBackendFile && backend != FlagsBackendSQLite {
		return nil, fmt.Errorf("unknown SEMBANG_FLAGS_BACKEND %q", backend)
	}

	return &Config{
		Auto:          *auto,
		Turns:         *turns,
		Topic:         *topic,
		Translate:     *translate,
		Voice:         *voice,
		Verbose:       *verbose,
		OutDir:        *outDir,
		Sheet:         *sheet,
		ResetProgress: *reset,
		CharDelay:     *charDelay,
		DataDir:       firstNonEmpty(strings.TrimSpace(os.Getenv("SEMBANG_DATA_DIR")), "./data"),
		FlagsBackend:  backend,
		Speech: SpeechConfig{
			ProjectID: strings.TrimSpace(os.Getenv("PROJECT_ID")),
			Location:  strings.TrimSpace(os.Getenv("LOCATION")),
			Model:     strings.TrimSpace(os.Getenv("SEMBANG_TTS_MODEL")),
			Voice:     strings.TrimSpace(os.Getenv("SEMBANG_TTS_VOICE")),
			CacheSize: 256,
		},
	}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
