package speech

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Cached remembers synthesised audio so that a line the bot repeats, such as
// the greeting at the root of the script, is only synthesised once.
type Cached struct {
	next  Synthesizer
	cache *lru.Cache[string, []byte]
}

func NewCached(next Synthesizer, size int) (*Cached, error) {
	cache, err := lru.New[string, []byte](size)
	if err != nil {
		return nil, fmt.Errorf("speech.NewCached: %w", err)
	}
	return &Cached{next: next, cache: cache}, nil
}

func (c *Cached) Synthesize(ctx context.Context, text, languageCode string) ([]byte, error) {
	key := languageCode + "\x00" + text
	if audio, ok := c.cache.Get(key); ok {
		return audio, nil
	}
	audio, err := c.next.Synthesize(ctx, text, languageCode)
	if err != nil {
		return nil, err
	}
	if len(audio) > 0 {
		c.cache.Add(key, audio)
	}
	return audio, nil
}

// Len returns the number of cached utterances.
func (c *Cached) Len() int {
	return c.cache.Len()
}

var _ Synthesizer = (*Cached)(nil)
