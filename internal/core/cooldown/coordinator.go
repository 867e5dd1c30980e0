// Package cooldown はチェックイン直後の対となるチェックアウトを一定時間
// 拒否するクールダウン調整器を実装します。誤った連続スキャンによる
// ほぼ長さゼロのセッションを防ぐための、スキャン地点単位のゲートです。
package cooldown

import (
	"fmt"
	"sync"
	"time"

	"github.com/Kalpa111334/qr-with-dutch/internal/core/attendance"
)

// Type はクールダウンの種別です。
type Type string

const (
	TypeFirstSession  Type = "first_session"
	TypeSecondSession Type = "second_session"
)

const (
	defaultFirstDuration  = 3 * time.Minute
	defaultSecondDuration = 2 * time.Minute
	defaultTickInterval   = time.Second
)

// TypeForAction はチェックインアクションに対応するクールダウン種別を
// 返します。チェックアウト系のアクションには対応しません。
func TypeForAction(a attendance.Action) (Type, bool) {
	switch a {
	case attendance.ActionFirstCheckIn:
		return TypeFirstSession, true
	case attendance.ActionSecondCheckIn:
		return TypeSecondSession, true
	default:
		return "", false
	}
}

// blockedAction はクールダウン中に拒否される唯一のアクションです。
func (t Type) blockedAction() attendance.Action {
	if t == TypeSecondSession {
		return attendance.ActionSecondCheckOut
	}
	return attendance.ActionFirstCheckOut
}

// Clock は現在時刻を提供します。
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}

// State はアクティブなクールダウンのスナップショットです。
type State struct {
	Type      Type
	StartedAt time.Time
	Duration  time.Duration
	Remaining time.Duration
}

// Listener はアクティブ中の各 tick と Idle への遷移時(nil)に呼ばれます。
type Listener func(*State)

type activeCooldown struct {
	typ       Type
	startedAt time.Time
	deadline  time.Time
}

// Coordinator はスキャン地点1つにつき1インスタンス保持される
// クールダウン状態機械です。Idle と Active の2状態を持ち、期限到達か
// 明示的なキャンセルで Idle に戻ります。
type Coordinator struct {
	mu        sync.Mutex
	clock     Clock
	durations map[Type]time.Duration
	active    *activeCooldown
	listeners map[int]Listener
	nextID    int
}

// NewCoordinator は Coordinator を生成します。0以下の期間には既定値
// (第一セッション3分・第二セッション2分)が使われます。
func NewCoordinator(clock Clock, first, second time.Duration) *Coordinator {
	if clock == nil {
		clock = realClock{}
	}
	if first <= 0 {
		first = defaultFirstDuration
	}
	if second <= 0 {
		second = defaultSecondDuration
	}
	return &Coordinator{
		clock: clock,
		durations: map[Type]time.Duration{
			TypeFirstSession:  first,
			TypeSecondSession: second,
		},
		listeners: make(map[int]Listener),
	}
}

// Start は種別に応じた期間でクールダウンを開始します。既存の
// クールダウンは破棄されます。
func (c *Coordinator) Start(t Type) {
	c.mu.Lock()
	defer c.mu.Unlock()

	duration, ok := c.durations[t]
	if !ok {
		return
	}

	now := c.clock.Now()
	c.active = &activeCooldown{
		typ:       t,
		startedAt: now,
		deadline:  now.Add(duration),
	}

	c.notifyLocked(c.stateLocked(now))
}

// Cancel はアクティブなクールダウンを破棄して Idle に戻します。
func (c *Coordinator) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active == nil {
		return
	}

	c.active = nil
	c.notifyLocked(nil)
}

// State は現在のスナップショットを返します。Idle の場合は nil です。
func (c *Coordinator) State() *State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked(c.clock.Now())
}

// CanPerform は要求されたアクションが実行可能かを返します。拒否される
// のはアクティブなクールダウンと対になるチェックアウトのみで、それ
// 以外のアクションは常に許可されます(シーケンスの正否はシーケンサが
// 判断します)。期限ちょうどで許可に転じます。
func (c *Coordinator) CanPerform(action attendance.Action) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active == nil {
		return true
	}
	if action != c.active.typ.blockedAction() {
		return true
	}
	return !c.clock.Now().Before(c.active.deadline)
}

// Subscribe はリスナーを登録し、解除用の関数を返します。
func (c *Coordinator) Subscribe(fn Listener) func() {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextID
	c.nextID++
	c.listeners[id] = fn

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.listeners, id)
	}
}

// Message はクールダウン中の案内文を返します。Idle の場合は空文字列です。
func (c *Coordinator) Message() string {
	state := c.State()
	if state == nil {
		return ""
	}

	session := "first"
	if state.Type == TypeSecondSession {
		session = "second"
	}

	remaining := int(state.Remaining.Round(time.Second).Seconds())
	return fmt.Sprintf("%s session check-out locked for another %dm %ds", session, remaining/60, remaining%60)
}

// Tick は時間を1段階進めます。期限に達していれば Idle へ遷移し、
// リスナーへ最後に nil を通知します。
func (c *Coordinator) Tick(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active == nil {
		return
	}

	if !now.Before(c.active.deadline) {
		c.active = nil
		c.notifyLocked(nil)
		return
	}

	c.notifyLocked(c.stateLocked(now))
}

func (c *Coordinator) stateLocked(now time.Time) *State {
	if c.active == nil {
		return nil
	}

	remaining := c.active.deadline.Sub(now)
	if remaining <= 0 {
		return nil
	}

	return &State{
		Type:      c.active.typ,
		StartedAt: c.active.startedAt,
		Duration:  c.durations[c.active.typ],
		Remaining: remaining,
	}
}

func (c *Coordinator) notifyLocked(state *State) {
	for _, fn := range c.listeners {
		fn(state)
	}
}
