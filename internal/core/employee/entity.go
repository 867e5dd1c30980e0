package employee

import "time"

// Status は従業員の状態を表します。
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// Employee は従業員エンティティです。従業員の作成・更新は
// 外部の管理システムが行い、本コアからは参照のみを行います。
type Employee struct {
	ID         string
	Name       string
	Department string
	Position   string
	RosterID   *string
	Status     Status
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// IsActive は従業員が在籍中かどうかを返します。
func (e *Employee) IsActive() bool {
	return e.Status == StatusActive
}
