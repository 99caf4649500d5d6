package message

import (
	"time"

	"github.com/sat8bit/sembang/persona"
)

type Kind string

const (
	KindSystem Kind = "system"
	KindBot    Kind = "bot"    // 台本のセリフ
	KindUser   Kind = "user"   // 学習者が選んだ返事
	KindTyping Kind = "typing" // タイピング中の表示
	KindError  Kind = "error"
	KindLog    Kind = "log"
	KindEnd    Kind = "end"
)

// Message は、チャット画面に並ぶ吹き出し一つ分です。
type Message struct {
	SessionID   string
	From        *persona.Persona
	Text        string
	Translation string   // タップで表示する訳
	NodeID      string   // KindBot のときのノード
	Options     []string // KindBot のときに並べるボタン
	At          time.Time
	Kind        Kind
	Meta        map[string]string
}

// IsSystemMessage は、会話そのものではないメッセージかどうかを返します。
func (m *Message) IsSystemMessage() bool {
	switch m.Kind {
	case KindSystem, KindLog, KindEnd:
		return true
	}
	return false
}

// SpeakerName は、表示用の話者名です。
func (m *Message) SpeakerName() string {
	if m.From == nil || m.From.DisplayName == "" {
		return "System"
	}
	return m.From.DisplayName
}
