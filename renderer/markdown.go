package renderer

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"text/template"
	"time"

	"github.com/sat8bit/sembang/bus"
	"github.com/sat8bit/sembang/message"
)

const markdownTemplate = `+++
title = {{ .Title }}
date = {{ .Date }}
tags = {{ .Tags }}
+++

{{ .Body }}
`

// MarkdownRenderer は、会話のログを Hugo 用の Markdown として書き出します。
type MarkdownRenderer struct {
	outputDir string
	now       func() time.Time

	mu       sync.Mutex
	messages []*message.Message
	path     string
}

func NewMarkdownRenderer(outputDir string) *MarkdownRenderer {
	return &MarkdownRenderer{outputDir: outputDir, now: time.Now}
}

// Render はバスを購読してログを集めます。書き出しは Finalize で行います。
func (r *MarkdownRenderer) Render(bus bus.Bus, wg *sync.WaitGroup) error {
	ch := bus.Subscribe()

	wg.Add(1)
	go func() {
		defer wg.Done()
		for msg := range ch {
			if msg.Kind != message.KindBot && msg.Kind != message.KindUser && msg.Kind != message.KindError {
				continue
			}
			r.mu.Lock()
			r.messages = append(r.messages, msg)
			r.mu.Unlock()
		}
	}()
	return nil
}

// Path は最後に書き出したファイルのパスです。
func (r *MarkdownRenderer) Path() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.path
}

func (r *MarkdownRenderer) Finalize() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, msg := range r.messages {
		if msg.Kind == message.KindError {
			slog.Info("Error message detected, skipping markdown generation.")
			return nil
		}
	}
	// 最初のあいさつだけのログは書き出さない
	if len(r.messages) < 2 {
		return nil
	}

	now := r.now()
	var topics []string
	participants := make(map[string]bool)
	var names []string
	var body strings.Builder

	body.WriteString("## Daily Talk\n\n")
	for _, msg := range r.messages {
		name := msg.SpeakerName()
		if !participants[name] {
			participants[name] = true
			names = append(names, name)
		}
		if t := msg.Meta["topic"]; t != "" {
			topics = append(topics, t)
		}
		fmt.Fprintf(&body, "**%s**: %s\n", name, msg.Text)
		if msg.Translation != "" {
			fmt.Fprintf(&body, "> %s\n", msg.Translation)
		}
		body.WriteString("\n")
	}

	title := "Daily Talk"
	if len(topics) > 0 {
		title = fmt.Sprintf("Daily Talk: %s", strings.Join(topics, ", "))
	}

	var tags []string
	for _, n := range names {
		tags = append(tags, fmt.Sprintf("%q", n))
	}

	tmpl, err := template.New("markdown").Parse(markdownTemplate)
	if err != nil {
		return fmt.Errorf("failed to parse markdown template: %w", err)
	}
	data := struct {
		Title string
		Date  string
		Tags  string
		Body  string
	}{
		Title: fmt.Sprintf("%q", title),
		Date:  fmt.Sprintf("%q", now.Format(time.RFC3339)),
		Tags:  fmt.Sprintf("[%s]", strings.Join(tags, ", ")),
		Body:  body.String(),
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}

	if err := os.MkdirAll(r.outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	path := filepath.Join(r.outputDir, now.Format("20060102-150405")+".md")
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write markdown file: %w", err)
	}
	r.path = path

	slog.Info("Markdown file generated", "path", path)
	return nil
}

var _ Renderer = (*MarkdownRenderer)(nil)
