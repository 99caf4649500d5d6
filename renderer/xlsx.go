package renderer

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/sat8bit/sembang/bus"
	"github.com/sat8bit/sembang/message"
	"github.com/xuri/excelize/v2"
)

const phraseSheet = "Phrases"

// XLSXRenderer は、会話に出てきたフレーズと訳を復習用のシートに書き出します。
// 同じフレーズは一度だけ載せます。
type XLSXRenderer struct {
	path string

	mu   sync.Mutex
	rows [][]interface{}
	seen map[string]bool
}

func NewXLSXRenderer(path string) *XLSXRenderer {
	return &XLSXRenderer{path: path, seen: make(map[string]bool)}
}

func (x *XLSXRenderer) Render(bus bus.Bus, wg *sync.WaitGroup) error {
	ch := bus.Subscribe()

	wg.Add(1)
	go func() {
		defer wg.Done()
		for msg := range ch {
			if msg.Kind != message.KindBot && msg.Kind != message.KindUser {
				continue
			}
			x.add(msg)
		}
	}()
	return nil
}

func (x *XLSXRenderer) add(msg *message.Message) {
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.seen[msg.Text] {
		return
	}
	x.seen[msg.Text] = true
	x.rows = append(x.rows, []interface{}{msg.SpeakerName(), msg.Text, msg.Translation, msg.NodeID})
}

func (x *XLSXRenderer) Finalize() error {
	x.mu.Lock()
	defer x.mu.Unlock()

	if len(x.rows) == 0 {
		return nil
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", phraseSheet); err != nil {
		return fmt.Errorf("failed to name phrase sheet: %w", err)
	}
	sw, err := f.NewStreamWriter(phraseSheet)
	if err != nil {
		return fmt.Errorf("failed to open stream writer: %w", err)
	}
	if err := sw.SetRow("A1", []interface{}{"Speaker", "Phrase", "Translation", "Node"}); err != nil {
		return err
	}
	for i, row := range x.rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := sw.SetRow(cell, row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}
	if err := sw.Flush(); err != nil {
		return fmt.Errorf("failed to flush phrase sheet: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(x.path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := f.SaveAs(x.path); err != nil {
		return fmt.Errorf("failed to save phrase sheet: %w", err)
	}

	slog.Info("Phrase sheet generated", "path", x.path, "phrases", len(x.rows))
	return nil
}

var _ Renderer = (*XLSXRenderer)(nil)
