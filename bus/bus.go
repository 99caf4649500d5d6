package bus

import (
	"github.com/sat8bit/sembang/message"
)

// Bus はチャットの吹き出しを購読者に配る責務を持つ
type Bus interface {
	Broadcast(m *message.Message) error
	Subscribe() <-chan *message.Message
	Close()
}
