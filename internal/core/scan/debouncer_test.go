package scan

import (
	"errors"
	"testing"
	"time"
)

func TestDebouncer_SuppressesRepeatWithinWindow(t *testing.T) {
	t.Parallel()

	d := NewDebouncer(0)
	base := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	if err := d.TryAcquire("kiosk-1", "emp-1", base); err != nil {
		t.Fatalf("first acquire returned error: %v", err)
	}
	d.Release("kiosk-1", "emp-1", base)

	if err := d.TryAcquire("kiosk-1", "emp-1", base.Add(time.Second)); !errors.Is(err, ErrScanDebounced) {
		t.Fatalf("expected ErrScanDebounced within window, got %v", err)
	}

	if err := d.TryAcquire("kiosk-1", "emp-1", base.Add(1500*time.Millisecond)); err != nil {
		t.Fatalf("expected acquire after window, got %v", err)
	}
	d.Release("kiosk-1", "emp-1", base.Add(1500*time.Millisecond))
}

func TestDebouncer_DifferentValuePasses(t *testing.T) {
	t.Parallel()

	d := NewDebouncer(0)
	base := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	if err := d.TryAcquire("kiosk-1", "emp-1", base); err != nil {
		t.Fatalf("first acquire returned error: %v", err)
	}
	d.Release("kiosk-1", "emp-1", base)

	if err := d.TryAcquire("kiosk-1", "emp-2", base.Add(200*time.Millisecond)); err != nil {
		t.Fatalf("different badge must not be debounced, got %v", err)
	}
}

func TestDebouncer_SingleOutstandingCallPerDevice(t *testing.T) {
	t.Parallel()

	d := NewDebouncer(0)
	base := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	if err := d.TryAcquire("kiosk-1", "emp-1", base); err != nil {
		t.Fatalf("first acquire returned error: %v", err)
	}

	// 処理中は別のバッジでも同一デバイスからは受け付けない。
	if err := d.TryAcquire("kiosk-1", "emp-2", base.Add(100*time.Millisecond)); !errors.Is(err, ErrScanInFlight) {
		t.Fatalf("expected ErrScanInFlight, got %v", err)
	}

	// 別デバイスは影響を受けない。
	if err := d.TryAcquire("kiosk-2", "emp-2", base); err != nil {
		t.Fatalf("other device must not be blocked, got %v", err)
	}

	d.Release("kiosk-1", "emp-1", base.Add(time.Second))

	if err := d.TryAcquire("kiosk-1", "emp-2", base.Add(2*time.Second)); err != nil {
		t.Fatalf("expected acquire after release, got %v", err)
	}
}
