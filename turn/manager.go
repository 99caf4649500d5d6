package turn

import (
	"context"
)

// Manager は会話のターンを管理します。
// ボットの返事を表示している間に、学習者の次の選択が割り込まないようにします。
type Manager interface {
	Acquire(ctx context.Context) error
	Release()
}
