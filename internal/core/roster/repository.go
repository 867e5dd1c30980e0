package roster

import "context"

// Repository はロスター参照の抽象です。
type Repository interface {
	FindByID(ctx context.Context, id string) (*Roster, error)
}
