// Package repotest 提供基于内存 SQLite 的测试数据库
package repotest

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"que-aula/backend/internal/model"
)

// NewDB 创建一个独立的内存数据库并完成建表
// 单连接保证整个测试内使用同一个内存库，事务内不得再使用外层连接
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:?_foreign_keys=on"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("打开 SQLite 失败: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("获取底层 sql.DB 失败: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
		t.Fatalf("开启外键失败: %v", err)
	}

	if err := db.AutoMigrate(
		&model.Subject{},
		&model.Teacher{},
		&model.Classroom{},
		&model.ClassGroup{},
		&model.ClassSchedule{},
	); err != nil {
		t.Fatalf("AutoMigrate 失败: %v", err)
	}

	return db
}
