package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repository 所有 Repository 的聚合入口
type Repository struct {
	db *gorm.DB

	Subject    SubjectRepository
	Teacher    TeacherRepository
	Classroom  ClassroomRepository
	ClassGroup ClassGroupRepository
	Schedule   ClassScheduleRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db:         db,
		Subject:    NewSubjectRepo(db),
		Teacher:    NewTeacherRepo(db),
		Classroom:  NewClassroomRepo(db),
		ClassGroup: NewClassGroupRepo(db),
		Schedule:   NewClassScheduleRepo(db),
	}
}

// BeginTx 开启事务；未绑定数据库（单元测试 mock）时返回 nil
func (r *Repository) BeginTx(ctx context.Context) (*gorm.DB, error) {
	if r.db == nil {
		return nil, nil
	}
	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	return tx, nil
}

// WithTx 返回绑定到事务连接的 Repository 副本
// tx 为 nil 时返回自身
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return NewRepository(tx)
}

// SavePoint 在当前事务中设置保存点，仅对 WithTx 返回的副本有意义
func (r *Repository) SavePoint(name string) error {
	if r.db == nil {
		return nil
	}
	return r.db.SavePoint(name).Error
}

// RollbackTo 回滚到保存点，事务本身继续可用
func (r *Repository) RollbackTo(name string) error {
	if r.db == nil {
		return nil
	}
	return r.db.RollbackTo(name).Error
}
