package roster

import "errors"

var (
	// ErrRosterNotFound はロスターが存在しない場合に返却されます。
	ErrRosterNotFound = errors.New("roster: not found")
	// ErrInvalidTimeOfDay は "HH:MM" 形式でない時刻設定の場合に返却されます。
	ErrInvalidTimeOfDay = errors.New("roster: invalid time of day")
)
