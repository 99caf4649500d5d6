package bus

import (
	"errors"
	"sync"

	"github.com/sat8bit/sembang/message"
)

// ErrClosed は、閉じたバスに送信したときに返ります。
var ErrClosed = errors.New("bus is closed")

// DefaultBufferSize は購読チャネルのバッファサイズです。
const DefaultBufferSize = 64

// MemoryBus は Bus のインメモリ実装です。
// ブロードキャストされたメッセージをすべての購読者に配送します。
type MemoryBus struct {
	subscribers []chan *message.Message
	bufferSize  int

	mu       sync.RWMutex
	isClosed bool
}

// NewMemoryBus は新しい MemoryBus を生成します。
func NewMemoryBus() *MemoryBus {
	return NewMemoryBusSize(DefaultBufferSize)
}

// NewMemoryBusSize は購読チャネルのバッファサイズを指定して MemoryBus を生成します。
func NewMemoryBusSize(bufferSize int) *MemoryBus {
	if bufferSize < 1 {
		bufferSize = 1
	}
	return &MemoryBus{bufferSize: bufferSize}
}

// Broadcast はノンブロッキングです。
// 購読者のバッファが一杯の場合、その購読者へのメッセージはドロップされます。
func (b *MemoryBus) Broadcast(m *message.Message) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.isClosed {
		return ErrClosed
	}

	for _, ch := range b.subscribers {
		select {
		case ch <- m:
		default:
		}
	}
	return nil
}

// Subscribe は新しい購読チャネルを返します。閉じたバスでは閉じたチャネルを返します。
func (b *MemoryBus) Subscribe() <-chan *message.Message {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan *message.Message, b.bufferSize)
	if b.isClosed {
		close(ch)
		return ch
	}
	b.subscribers = append(b.subscribers, ch)
	return ch
}

// Close はすべての購読チャネルを閉じます。二回目以降は何もしません。
func (b *MemoryBus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.isClosed {
		return
	}
	b.isClosed = true
	for _, ch := range b.subscribers {
		close(ch)
	}
	b.subscribers = nil
}

var _ Bus = (*MemoryBus)(nil)
