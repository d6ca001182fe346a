package repository

import (
	"context"

	"gorm.io/gorm"

	"que-aula/backend/internal/model"
)

// TeacherRepository 教师数据访问接口
type TeacherRepository interface {
	// FindByName 按名称精确（大小写敏感）查找，不存在返回 gorm.ErrRecordNotFound
	FindByName(ctx context.Context, name string) (*model.Teacher, error)
	Create(ctx context.Context, teacher *model.Teacher) error
	DeleteAll(ctx context.Context) error
}

type teacherRepo struct {
	db *gorm.DB
}

// NewTeacherRepo 创建 TeacherRepository 实例
func NewTeacherRepo(db *gorm.DB) TeacherRepository {
	return &teacherRepo{db: db}
}

func (r *teacherRepo) FindByName(ctx context.Context, name string) (*model.Teacher, error) {
	var teacher model.Teacher
	err := r.db.WithContext(ctx).
		Where("name = ?", name).
		First(&teacher).Error
	if err != nil {
		return nil, err
	}
	return &teacher, nil
}

func (r *teacherRepo) Create(ctx context.Context, teacher *model.Teacher) error {
	return r.db.WithContext(ctx).Create(teacher).Error
}

func (r *teacherRepo) DeleteAll(ctx context.Context) error {
	return r.db.WithContext(ctx).Where("1 = 1").Delete(&model.Teacher{}).Error
}
