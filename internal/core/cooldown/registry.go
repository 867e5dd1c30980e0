package cooldown

import (
	"context"
	"sync"
	"time"
)

// Registry はスキャン地点(デバイス)ごとの Coordinator を保持します。
// モジュールレベルの共有状態を持たず、キオスクやテストが互いの
// クールダウンに影響しないようデバイス単位で分離します。
type Registry struct {
	mu      sync.Mutex
	clock   Clock
	first   time.Duration
	second  time.Duration
	devices map[string]*Coordinator
}

// NewRegistry は Registry を生成します。
func NewRegistry(clock Clock, first, second time.Duration) *Registry {
	return &Registry{
		clock:   clock,
		first:   first,
		second:  second,
		devices: make(map[string]*Coordinator),
	}
}

// ForDevice はデバイスに対応する Coordinator を返します。未登録の
// 場合は新規に作成します。
func (r *Registry) ForDevice(deviceID string) *Coordinator {
	r.mu.Lock()
	defer r.mu.Unlock()

	coord, ok := r.devices[deviceID]
	if !ok {
		coord = NewCoordinator(r.clock, r.first, r.second)
		r.devices[deviceID] = coord
	}
	return coord
}

// Run は interval ごとに全デバイスの Coordinator へ Tick を配信します。
// リスナーへの通知はこのループが駆動します。ctx のキャンセルで
// ティッカーを確実に停止して戻ります。
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = defaultTickInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			for _, coord := range r.snapshot() {
				coord.Tick(now)
			}
		}
	}
}

func (r *Registry) snapshot() []*Coordinator {
	r.mu.Lock()
	defer r.mu.Unlock()

	coords := make([]*Coordinator, 0, len(r.devices))
	for _, coord := range r.devices {
		coords = append(coords, coord)
	}
	return coords
}
