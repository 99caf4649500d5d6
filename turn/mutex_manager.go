package turn

import (
	"context"
	"fmt"
)

// MutexManager は turn.Manager の実装です。
// バッファサイズ1のチャネルをセマフォとして使います。
type MutexManager struct {
	turnCh chan struct{}
}

// NewMutexManager は新しい MutexManager を生成します。
func NewMutexManager() *MutexManager {
	return &MutexManager{
		turnCh: make(chan struct{}, 1),
	}
}

// Acquire はターンを取得します。
// 他の誰かがターンを保持している場合は、解放されるかコンテキストが終わるまでブロックします。
func (m *MutexManager) Acquire(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("failed to acquire turn: %w", ctx.Err())
	case m.turnCh <- struct{}{}:
		return nil
	}
}

// Release は保持しているターンを解放します。保持していなければ何もしません。
func (m *MutexManager) Release() {
	select {
	case <-m.turnCh:
	default:
	}
}

var _ Manager = (*MutexManager)(nil)
