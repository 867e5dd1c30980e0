package attendance

import (
	"fmt"
	"time"
)

// LateMinutes は猶予時間込みの始業時刻に対する遅刻分数を返します。
// 早く出勤しても負の値にはなりません。
func LateMinutes(checkIn, scheduledStart time.Time, grace time.Duration) int {
	deadline := scheduledStart.Add(grace)
	if !checkIn.After(deadline) {
		return 0
	}
	return int(checkIn.Sub(deadline) / time.Minute)
}

// BreakMinutes は午前のチェックアウトから午後のチェックインまでの
// 休憩分数を返します。どちらかが未打刻の場合は0です。
func BreakMinutes(firstCheckOut, secondCheckIn *time.Time) int {
	if firstCheckOut == nil || secondCheckIn == nil {
		return 0
	}
	if secondCheckIn.Before(*firstCheckOut) {
		return 0
	}
	return int(secondCheckIn.Sub(*firstCheckOut) / time.Minute)
}

// WorkingMinutes は両セッションの実働分数を合算します。未完了の
// セッションは now までを計上するため、勤務中の表示が逐次更新されます。
// セッションをまたいだ二重計上はありません。
func WorkingMinutes(rec *Record, now time.Time) int {
	if rec == nil {
		return 0
	}

	total := sessionMinutes(rec.FirstCheckInTime, rec.FirstCheckOutTime, now)
	total += sessionMinutes(rec.SecondCheckInTime, rec.SecondCheckOutTime, now)
	return total
}

func sessionMinutes(checkIn, checkOut *time.Time, now time.Time) int {
	if checkIn == nil {
		return 0
	}

	end := now
	if checkOut != nil {
		end = *checkOut
	}
	if end.Before(*checkIn) {
		return 0
	}
	return int(end.Sub(*checkIn) / time.Minute)
}

// ComplianceRate は実働分数の期待分数に対する割合を 0〜100 に
// クランプして返します。期待分数が不明な場合は0です。
func ComplianceRate(actualMinutes, expectedMinutes int) float64 {
	if expectedMinutes <= 0 || actualMinutes <= 0 {
		return 0
	}

	rate := float64(actualMinutes) / float64(expectedMinutes) * 100
	if rate > 100 {
		return 100
	}
	return rate
}

// FormatDuration は分数を "{H}h {M}m" 形式にします。1時間未満の
// 場合は時間部を省略します("45m")。
func FormatDuration(minutes int) string {
	if minutes < 0 {
		minutes = 0
	}

	hours := minutes / 60
	mins := minutes % 60
	if hours == 0 {
		return fmt.Sprintf("%dm", mins)
	}
	return fmt.Sprintf("%dh %dm", hours, mins)
}
