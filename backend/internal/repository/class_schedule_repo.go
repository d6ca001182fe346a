package repository

import (
	"context"

	"gorm.io/gorm"

	"que-aula/backend/internal/model"
)

// ClassScheduleRepository 上课时段数据访问接口
type ClassScheduleRepository interface {
	Create(ctx context.Context, schedule *model.ClassSchedule) error
	DeleteBySubject(ctx context.Context, subjectID uint) error
	DeleteAll(ctx context.Context) error
}

type classScheduleRepo struct {
	db *gorm.DB
}

// NewClassScheduleRepo 创建 ClassScheduleRepository 实例
func NewClassScheduleRepo(db *gorm.DB) ClassScheduleRepository {
	return &classScheduleRepo{db: db}
}

func (r *classScheduleRepo) Create(ctx context.Context, schedule *model.ClassSchedule) error {
	return r.db.WithContext(ctx).Create(schedule).Error
}

func (r *classScheduleRepo) DeleteBySubject(ctx context.Context, subjectID uint) error {
	// 硬删除：替换场景无需保留旧时段
	return r.db.WithContext(ctx).
		Where("subject_id = ?", subjectID).
		Delete(&model.ClassSchedule{}).Error
}

func (r *classScheduleRepo) DeleteAll(ctx context.Context) error {
	return r.db.WithContext(ctx).Where("1 = 1").Delete(&model.ClassSchedule{}).Error
}
