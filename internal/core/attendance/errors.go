package attendance

import "errors"

var (
	// ErrTransitionFailed は遷移プリミティブの失敗、または結果の検証に
	// 失敗した場合に返却されます。自動リトライは行いません。
	ErrTransitionFailed = errors.New("attendance: transition failed")
	// ErrMaxSequenceReached は当日のタイムスタンプが4つ埋まった後の
	// スキャンに対して返却されます。
	ErrMaxSequenceReached = errors.New("attendance: daily attendance limit reached")
	// ErrNoActiveRoster はロスターが割り当てられているのに有効な
	// ロスターが見つからない場合に返却されます。
	ErrNoActiveRoster = errors.New("attendance: no active roster found, contact your supervisor")
	// ErrRecordNotFound は当日のレコードが存在しない場合に返却されます。
	ErrRecordNotFound = errors.New("attendance: record not found")
)
