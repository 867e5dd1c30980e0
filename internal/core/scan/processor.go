// Package scan はデコード済みバッジ値の処理パイプラインを実装します。
// データフローは デバウンサ → クールダウンゲート → シーケンサ の順で、
// ゲートで拒否されたスキャンはシーケンサに到達しません。
package scan

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Kalpa111334/qr-with-dutch/internal/core/attendance"
	"github.com/Kalpa111334/qr-with-dutch/internal/core/cooldown"
	"github.com/google/uuid"
)

// Clock は現在時刻を提供します。
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}

// Result は1回のスキャン処理の結果です。ScanID はログ・通知の相関用です。
type Result struct {
	ScanID   string
	DeviceID string
	*attendance.Result
}

// Processor はスキャン地点からの打刻要求を調整します。
type Processor struct {
	sequencer attendance.UseCase
	cooldowns *cooldown.Registry
	debouncer *Debouncer
	clock     Clock
}

// NewProcessor は Processor を生成します。
func NewProcessor(sequencer attendance.UseCase, cooldowns *cooldown.Registry, debouncer *Debouncer, clock Clock) *Processor {
	if clock == nil {
		clock = realClock{}
	}
	if debouncer == nil {
		debouncer = NewDebouncer(0)
	}
	return &Processor{
		sequencer: sequencer,
		cooldowns: cooldowns,
		debouncer: debouncer,
		clock:     clock,
	}
}

// Process は1回の物理スキャンを処理します。デバウンス、クールダウン
// ゲートを通過したスキャンのみがシーケンサへ渡り、チェックイン成功時は
// そのデバイスのクールダウンを開始します。
func (p *Processor) Process(ctx context.Context, deviceID, employeeID string) (*Result, error) {
	deviceID = strings.TrimSpace(deviceID)
	if deviceID == "" {
		return nil, ErrInvalidDevice
	}

	now := p.clock.Now()
	if err := p.debouncer.TryAcquire(deviceID, employeeID, now); err != nil {
		return nil, err
	}
	defer func() {
		p.debouncer.Release(deviceID, employeeID, p.clock.Now())
	}()

	coord := p.cooldowns.ForDevice(deviceID)

	// 次アクションを予測し、クールダウン対象のチェックアウトであれば
	// シーケンサに到達する前に拒否する。
	next, ok, err := p.sequencer.GetNextAction(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	if ok && !coord.CanPerform(next) {
		return nil, fmt.Errorf("%w: %s", ErrCooldownActive, coord.Message())
	}

	res, err := p.sequencer.RecordAttendance(ctx, attendance.RecordAttendanceInput{EmployeeID: employeeID})
	if err != nil {
		return nil, err
	}

	if cooldownType, isCheckIn := cooldown.TypeForAction(res.Action); isCheckIn {
		coord.Start(cooldownType)
	}

	return &Result{
		ScanID:   uuid.NewString(),
		DeviceID: deviceID,
		Result:   res,
	}, nil
}
