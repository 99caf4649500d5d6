package speech

import (
	"context"
	"encoding/binary"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// SampleRate of the PCM produced by the Gemini speech models.
const SampleRate = 24000

// Player is a Speaker that synthesises a line and saves it as a WAV file
// in dir, one file per utterance.
type Player struct {
	synth Synthesizer
	dir   string

	mu  sync.Mutex
	seq int
}

func NewPlayer(synth Synthesizer, dir string) *Player {
	return &Player{synth: synth, dir: dir}
}

func (p *Player) Speak(ctx context.Context, text, languageCode string) error {
	pcm, err := p.synth.Synthesize(ctx, text, languageCode)
	if err != nil {
		return err
	}
	if len(pcm) == 0 {
		return nil
	}

	if err := os.MkdirAll(p.dir, 0755); err != nil {
		return fmt.Errorf("failed to create voice directory: %w", err)
	}

	p.mu.Lock()
	p.seq++
	path := filepath.Join(p.dir, fmt.Sprintf("%04d.wav", p.seq))
	p.mu.Unlock()

	if err := writeWAV(path, pcm, SampleRate); err != nil {
		return fmt.Errorf("failed to write voice file: %w", err)
	}
	slog.DebugContext(ctx, "voice saved", "path", path, "bytes", len(pcm))
	return nil
}

// writeWAV saves 16-bit little-endian mono PCM as a WAV file. A trailing
// odd byte is dropped.
func writeWAV(path string, pcm []byte, rate int) (err error) {
	const (
		channels      = 1
		bitsPerSample = 16
		formatPCM     = 1
	)
	samples := make([]int, len(pcm)/2)
	for i := range samples {
		samples[i] = int(int16(binary.LittleEndian.Uint16(pcm[2*i:])))
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	enc := wav.NewEncoder(f, rate, bitsPerSample, channels, formatPCM)
	if err := enc.Write(&audio.IntBuffer{
		Format:         &audio.Format{NumChannels: channels, SampleRate: rate},
		Data:           samples,
		SourceBitDepth: bitsPerSample,
	}); err != nil {
		return err
	}
	return enc.Close()
}

var _ Speaker = (*Player)(nil)
