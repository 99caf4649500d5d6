package renderer

import (
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sat8bit/sembang/bus"
	"github.com/sat8bit/sembang/message"
)

// ConsoleRenderer は吹き出しをターミナルに表示します。
type ConsoleRenderer struct {
	out       io.Writer
	charDelay time.Duration // 1文字ずつ表示する間隔

	translate atomic.Bool
	verbose   bool
}

func NewConsoleRenderer(out io.Writer, charDelay time.Duration) *ConsoleRenderer {
	return &ConsoleRenderer{out: out, charDelay: charDelay}
}

// SetTranslate は訳の表示を切り替えます（元のアプリのタップ表示に相当）。
func (c *ConsoleRenderer) SetTranslate(on bool) {
	c.translate.Store(on)
}

// Translate は訳を表示しているかどうかを返します。
func (c *ConsoleRenderer) Translate() bool {
	return c.translate.Load()
}

// SetVerbose は KindLog のメッセージも表示するかどうかを設定します。
func (c *ConsoleRenderer) SetVerbose(on bool) {
	c.verbose = on
}

func (c *ConsoleRenderer) Render(bus bus.Bus, wg *sync.WaitGroup) error {
	ch := bus.Subscribe()

	wg.Add(1)
	go func() {
		defer wg.Done()
		for m := range ch {
			c.print(m)
		}
	}()
	return nil
}

func (c *ConsoleRenderer) print(m *message.Message) {
	switch m.Kind {
	case message.KindSystem:
		fmt.Fprintf(c.out, "[System] %s\n", m.Text)
		c.printOptions(m)
	case message.KindError:
		fmt.Fprintf(c.out, "[Error] %s\n", m.Text)
	case message.KindLog:
		if c.verbose {
			fmt.Fprintf(c.out, "[Log] %s\n", m.Text)
		}
	case message.KindEnd:
		fmt.Fprintln(c.out, "[System] Jumpa lagi!")
	case message.KindTyping:
		fmt.Fprintf(c.out, "%s: ...\n", m.SpeakerName())
	default:
		fmt.Fprintf(c.out, "%s: ", m.SpeakerName())
		for _, r := range m.Text {
			fmt.Fprint(c.out, string(r))
			if c.charDelay > 0 {
				time.Sleep(c.charDelay)
			}
		}
		fmt.Fprintln(c.out)
		if c.Translate() && m.Translation != "" {
			fmt.Fprintf(c.out, "    (%s)\n", m.Translation)
		}
		c.printOptions(m)
	}
}

func (c *ConsoleRenderer) printOptions(m *message.Message) {
	for i, label := range m.Options {
		fmt.Fprintf(c.out, "  [%d] %s\n", i+1, label)
	}
}

func (c *ConsoleRenderer) Finalize() error {
	return nil
}

var _ Renderer = (*ConsoleRenderer)(nil)
