package errors

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// uniqueViolation PostgreSQL SQLSTATE: unique_violation
const uniqueViolation = "23505"

// IsDuplicateKey 判断错误是否为唯一约束冲突
// 兼容 gorm TranslateError 翻译后的错误与未翻译的 pgconn 原始错误
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == uniqueViolation
	}
	return false
}
