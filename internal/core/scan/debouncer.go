package scan

import (
	"sync"
	"time"
)

// defaultWindow は同一バッジの再スキャンを抑止する既定の時間幅です。
const defaultWindow = 1500 * time.Millisecond

type lastScan struct {
	value string
	at    time.Time
}

// Debouncer は物理スキャン1回につき1度だけ処理が走ることを保証します。
// 同一デバイス・同一デコード値の再スキャンを時間幅内で抑止し、さらに
// デバイスごとに未完了の打刻呼び出しを高々1つに制限します。
type Debouncer struct {
	mu       sync.Mutex
	window   time.Duration
	last     map[string]lastScan
	inFlight map[string]bool
}

// NewDebouncer は Debouncer を生成します。0以下の window には既定の
// 1.5秒が使われます。
func NewDebouncer(window time.Duration) *Debouncer {
	if window <= 0 {
		window = defaultWindow
	}
	return &Debouncer{
		window:   window,
		last:     make(map[string]lastScan),
		inFlight: make(map[string]bool),
	}
}

// TryAcquire はスキャンの処理権を取得します。抑止された場合は
// ErrScanDebounced、前回の処理が未完了の場合は ErrScanInFlight を
// 返します。取得に成功したら Release で必ず解放してください。
func (d *Debouncer) TryAcquire(deviceID, value string, now time.Time) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.inFlight[deviceID] {
		return ErrScanInFlight
	}

	if prev, ok := d.last[deviceID]; ok {
		if prev.value == value && now.Sub(prev.at) < d.window {
			return ErrScanDebounced
		}
	}

	d.inFlight[deviceID] = true
	return nil
}

// Release は処理権を解放し、デコード値を抑止窓の基準として記録します。
func (d *Debouncer) Release(deviceID, value string, now time.Time) {
	d.mu.Lock()
	defer d.mu.Unlock()

	delete(d.inFlight, deviceID)
	d.last[deviceID] = lastScan{value: value, at: now}
}
