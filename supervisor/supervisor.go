package supervisor

import (
	"context"
	"sync"

	"github.com/sat8bit/sembang/bus"
	"github.com/sat8bit/sembang/message"
)

// Supervisor は、学習者の選択回数を数え、上限に達したら停止信号を送ります。
// maxTurns が 0 のときは上限なしです。
type Supervisor struct {
	maxTurns   int
	turnCount  int
	bus        bus.Bus
	cancelFunc context.CancelFunc
	mu         sync.Mutex
}

// NewSupervisor は、新しい Supervisor を生成します。
func NewSupervisor(maxTurns int, bus bus.Bus, cancelFunc context.CancelFunc) *Supervisor {
	return &Supervisor{
		maxTurns:   maxTurns,
		bus:        bus,
		cancelFunc: cancelFunc,
	}
}

// Start は、会話の監視を開始します。
func (s *Supervisor) Start() {
	ch := s.bus.Subscribe()

	go func() {
		for msg := range ch {
			// 学習者の返事だけを数える
			if msg.Kind != message.KindUser {
				continue
			}

			s.mu.Lock()
			s.turnCount++
			reached := s.maxTurns > 0 && s.turnCount >= s.maxTurns
			s.mu.Unlock()

			if reached {
				s.cancelFunc()
				return
			}
		}
	}()
}

// GetCurrentTurn は、現在のターン数を返します。
func (s *Supervisor) GetCurrentTurn() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.turnCount
}

// GetMaxTurns は、最大ターン数を返します。
func (s *Supervisor) GetMaxTurns() int {
	return s.maxTurns
}
