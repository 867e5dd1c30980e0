package employee

import "errors"

var (
	// ErrEmployeeNotFound は従業員が存在しない場合に返却されます。
	ErrEmployeeNotFound = errors.New("employee: not found")
	// ErrEmployeeInactive は退職済みの従業員を参照した場合に返却されます。
	ErrEmployeeInactive = errors.New("employee: inactive")
	// ErrInvalidID はIDが不正な場合に返却されます。
	ErrInvalidID = errors.New("employee: invalid id")
)
