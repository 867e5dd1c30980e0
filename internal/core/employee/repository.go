package employee

import "context"

// Repository は従業員参照の抽象です。本コアは読み取りのみを行うため
// 検索系の操作だけを要求します。
type Repository interface {
	FindByID(ctx context.Context, id string) (*Employee, error)
}
