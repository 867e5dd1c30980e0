package cooldown

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Kalpa111334/qr-with-dutch/internal/core/attendance"
)

type stubClock struct {
	mu  sync.Mutex
	now time.Time
}

func (s *stubClock) Now() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

func (s *stubClock) Advance(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = s.now.Add(d)
}

func newTestCoordinator() (*Coordinator, *stubClock) {
	clock := &stubClock{now: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)}
	return NewCoordinator(clock, 0, 0), clock
}

func TestCoordinator_StartFirstSession(t *testing.T) {
	t.Parallel()

	coord, _ := newTestCoordinator()
	coord.Start(TypeFirstSession)

	state := coord.State()
	if state == nil {
		t.Fatal("expected active state after Start")
	}
	if state.Type != TypeFirstSession {
		t.Errorf("unexpected type: %s", state.Type)
	}
	if state.Remaining != 180*time.Second {
		t.Errorf("expected 180s remaining, got %v", state.Remaining)
	}
	if state.Duration != 3*time.Minute {
		t.Errorf("expected 3m duration, got %v", state.Duration)
	}
}

func TestCoordinator_CountdownIsMonotonic(t *testing.T) {
	t.Parallel()

	coord, clock := newTestCoordinator()
	coord.Start(TypeFirstSession)

	previous := coord.State().Remaining
	for i := 0; i < 179; i++ {
		clock.Advance(time.Second)
		coord.Tick(clock.Now())

		state := coord.State()
		if state == nil {
			t.Fatalf("cooldown expired early at tick %d", i+1)
		}
		if state.Remaining >= previous {
			t.Fatalf("remaining did not decrease: %v -> %v", previous, state.Remaining)
		}
		previous = state.Remaining
	}

	clock.Advance(time.Second)
	coord.Tick(clock.Now())

	if coord.State() != nil {
		t.Error("expected idle state at deadline")
	}
}

func TestCoordinator_CanPerformBlocksOnlyComplementaryCheckOut(t *testing.T) {
	t.Parallel()

	coord, clock := newTestCoordinator()
	coord.Start(TypeFirstSession)

	if coord.CanPerform(attendance.ActionFirstCheckOut) {
		t.Error("first_check_out must be blocked during first_session cooldown")
	}

	// 他のアクションはクールダウン中でも常に許可される。
	for _, action := range []attendance.Action{attendance.ActionFirstCheckIn, attendance.ActionSecondCheckIn, attendance.ActionSecondCheckOut} {
		if !coord.CanPerform(action) {
			t.Errorf("action %s must be permitted during first_session cooldown", action)
		}
	}

	clock.Advance(179 * time.Second)
	if coord.CanPerform(attendance.ActionFirstCheckOut) {
		t.Error("first_check_out must stay blocked one second before the deadline")
	}

	// 期限ちょうどで許可に転じる。
	clock.Advance(time.Second)
	if !coord.CanPerform(attendance.ActionFirstCheckOut) {
		t.Error("first_check_out must be permitted exactly at the deadline")
	}
}

func TestCoordinator_SecondSessionDuration(t *testing.T) {
	t.Parallel()

	coord, _ := newTestCoordinator()
	coord.Start(TypeSecondSession)

	state := coord.State()
	if state == nil || state.Remaining != 120*time.Second {
		t.Fatalf("expected 120s remaining for second session, got %+v", state)
	}

	if coord.CanPerform(attendance.ActionSecondCheckOut) {
		t.Error("second_check_out must be blocked during second_session cooldown")
	}
	if !coord.CanPerform(attendance.ActionFirstCheckOut) {
		t.Error("first_check_out must be permitted during second_session cooldown")
	}
}

func TestCoordinator_StartResetsPreviousCooldown(t *testing.T) {
	t.Parallel()

	coord, clock := newTestCoordinator()
	coord.Start(TypeFirstSession)

	clock.Advance(time.Minute)
	coord.Start(TypeSecondSession)

	state := coord.State()
	if state == nil || state.Type != TypeSecondSession {
		t.Fatalf("expected second_session state, got %+v", state)
	}
	if state.Remaining != 120*time.Second {
		t.Errorf("expected fresh 120s countdown, got %v", state.Remaining)
	}
}

func TestCoordinator_Cancel(t *testing.T) {
	t.Parallel()

	coord, _ := newTestCoordinator()
	coord.Start(TypeFirstSession)
	coord.Cancel()

	if coord.State() != nil {
		t.Error("expected idle state after cancel")
	}
	if !coord.CanPerform(attendance.ActionFirstCheckOut) {
		t.Error("expected all actions permitted after cancel")
	}
}

func TestCoordinator_SubscribeReceivesTicksAndFinalNil(t *testing.T) {
	t.Parallel()

	coord, clock := newTestCoordinator()

	var mu sync.Mutex
	var updates []*State
	unsubscribe := coord.Subscribe(func(s *State) {
		mu.Lock()
		defer mu.Unlock()
		updates = append(updates, s)
	})

	coord.Start(TypeSecondSession)
	for i := 0; i < 120; i++ {
		clock.Advance(time.Second)
		coord.Tick(clock.Now())
	}

	mu.Lock()
	total := len(updates)
	last := updates[total-1]
	mu.Unlock()

	// Start 時の通知 + 119回の tick + Idle 遷移時の nil。
	if total != 121 {
		t.Fatalf("expected 121 notifications, got %d", total)
	}
	if last != nil {
		t.Errorf("expected final notification to be nil, got %+v", last)
	}

	unsubscribe()
	coord.Start(TypeFirstSession)

	mu.Lock()
	after := len(updates)
	mu.Unlock()

	if after != total {
		t.Error("expected no notifications after unsubscribe")
	}
}

func TestCoordinator_Message(t *testing.T) {
	t.Parallel()

	coord, clock := newTestCoordinator()

	if coord.Message() != "" {
		t.Errorf("expected empty message when idle, got %q", coord.Message())
	}

	coord.Start(TypeFirstSession)
	if got := coord.Message(); got != "first session check-out locked for another 3m 0s" {
		t.Errorf("unexpected message: %q", got)
	}

	clock.Advance(150 * time.Second)
	if got := coord.Message(); got != "first session check-out locked for another 0m 30s" {
		t.Errorf("unexpected message: %q", got)
	}
}

func TestRegistry_IsolatesDevices(t *testing.T) {
	t.Parallel()

	clock := &stubClock{now: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)}
	registry := NewRegistry(clock, 0, 0)

	kioskA := registry.ForDevice("kiosk-a")
	kioskB := registry.ForDevice("kiosk-b")

	kioskA.Start(TypeFirstSession)

	if kioskA.CanPerform(attendance.ActionFirstCheckOut) {
		t.Error("kiosk-a must be blocked")
	}
	if !kioskB.CanPerform(attendance.ActionFirstCheckOut) {
		t.Error("kiosk-b must not share kiosk-a cooldown state")
	}

	if registry.ForDevice("kiosk-a") != kioskA {
		t.Error("expected the same coordinator instance per device")
	}
}

func TestRegistry_RunDeliversTicksAndStopsOnCancel(t *testing.T) {
	t.Parallel()

	// 実時間のティッカーを使うため、期限の長いクールダウンと
	// 短いティック間隔で駆動する。
	registry := NewRegistry(nil, time.Minute, time.Minute)
	coord := registry.ForDevice("kiosk-1")

	var (
		mu    sync.Mutex
		ticks int
	)
	unsubscribe := coord.Subscribe(func(state *State) {
		if state == nil {
			return
		}
		mu.Lock()
		ticks++
		mu.Unlock()
	})
	defer unsubscribe()

	coord.Start(TypeFirstSession)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		registry.Run(ctx, time.Millisecond)
		close(done)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for {
		mu.Lock()
		n := ticks
		mu.Unlock()
		// Start 時の1回に加え、ループ由来の通知が複数届くこと。
		if n >= 3 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("run loop never delivered ticks, got %d notifications", n)
		}
		time.Sleep(time.Millisecond)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after context cancel")
	}
}
