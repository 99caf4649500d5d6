package renderer

import (
	"sync"

	"github.com/sat8bit/sembang/bus"
)

// Renderer は、チャットの吹き出しを表示・記録するコンポーネントが満たすべきインターフェースです。
type Renderer interface {
	// Render はバスを購読し、レンダリング用のゴルーチンを wg に登録して開始します。
	Render(bus bus.Bus, wg *sync.WaitGroup) error

	// Finalize は、バスが閉じられ wg が終わった後の最終処理を行います。
	Finalize() error
}
