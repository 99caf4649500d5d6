package persona

import "time"

// Role は、会話の中でのペルソナの立場です。
type Role string

const (
	// RoleBot は台本のセリフを話す側（Amir）です。
	RoleBot Role = "bot"
	// RoleLearner は選択肢から返事を選ぶ学習者（Abdi）です。
	RoleLearner Role = "learner"
)

// Persona は、トークセッションの話者を定義します。
type Persona struct {
	PersonaId     string `yaml:"personaId"`
	DisplayName   string `yaml:"displayName"`
	Role          Role   `yaml:"role"`
	Tagline       string `yaml:"tagline"`
	Voice         string `yaml:"voice,omitempty"`        // 音声合成のプリセット名
	LanguageCode  string `yaml:"languageCode,omitempty"` // e.g. "ms-MY"
	TypingDelayMs int    `yaml:"typingDelayMs,omitempty"`
}

// TypingDelay は、返事を表示する前にタイピング表示を出しておく時間です。
func (p *Persona) TypingDelay() time.Duration {
	if p == nil || p.TypingDelayMs <= 0 {
		return 0
	}
	return time.Duration(p.TypingDelayMs) * time.Millisecond
}
