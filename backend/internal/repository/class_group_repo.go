package repository

import (
	"context"

	"gorm.io/gorm"

	"que-aula/backend/internal/model"
)

// ClassGroupRepository 班组数据访问接口
type ClassGroupRepository interface {
	Create(ctx context.Context, group *model.ClassGroup) error
	ListBySubject(ctx context.Context, subjectID uint) ([]model.ClassGroup, error)
	DeleteBySubject(ctx context.Context, subjectID uint) error
	DeleteAll(ctx context.Context) error
}

type classGroupRepo struct {
	db *gorm.DB
}

// NewClassGroupRepo 创建 ClassGroupRepository 实例
func NewClassGroupRepo(db *gorm.DB) ClassGroupRepository {
	return &classGroupRepo{db: db}
}

func (r *classGroupRepo) Create(ctx context.Context, group *model.ClassGroup) error {
	return r.db.WithContext(ctx).Create(group).Error
}

func (r *classGroupRepo) ListBySubject(ctx context.Context, subjectID uint) ([]model.ClassGroup, error) {
	var groups []model.ClassGroup
	err := r.db.WithContext(ctx).
		Where("subject_id = ?", subjectID).
		Order("group_code ASC").
		Find(&groups).Error
	return groups, err
}

func (r *classGroupRepo) DeleteBySubject(ctx context.Context, subjectID uint) error {
	return r.db.WithContext(ctx).
		Where("subject_id = ?", subjectID).
		Delete(&model.ClassGroup{}).Error
}

func (r *classGroupRepo) DeleteAll(ctx context.Context) error {
	return r.db.WithContext(ctx).Where("1 = 1").Delete(&model.ClassGroup{}).Error
}
