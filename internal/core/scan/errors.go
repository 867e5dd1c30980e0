package scan

import "errors"

var (
	// ErrScanDebounced は同一デバイスでの短時間の再スキャンに対して
	// 返却されます。レコードには一切触れません。
	ErrScanDebounced = errors.New("scan: duplicate scan ignored")
	// ErrScanInFlight はデバイスの前回のスキャン処理が完了していない
	// 場合に返却されます。同時実行は許可されません。
	ErrScanInFlight = errors.New("scan: previous scan still processing")
	// ErrCooldownActive はクールダウン中の対となるチェックアウトが
	// 要求された場合に返却されます。
	ErrCooldownActive = errors.New("scan: cooldown active")
	// ErrInvalidDevice はデバイスIDが不正な場合に返却されます。
	ErrInvalidDevice = errors.New("scan: invalid device id")
)
