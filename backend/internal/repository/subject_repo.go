package repository

import (
	"context"

	"gorm.io/gorm"

	"que-aula/backend/internal/model"
)

// SubjectRepository 课程数据访问接口
// 所有按 code 的查询均大小写不敏感
type SubjectRepository interface {
	ListCodes(ctx context.Context) ([]string, error)
	Create(ctx context.Context, subject *model.Subject) error
	GetByCode(ctx context.Context, code string) (*model.Subject, error)
	UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) error
	DeleteByCode(ctx context.Context, code string) (int64, error)
	DeleteAll(ctx context.Context) error
	// ListRows 返回全部课程的扁平 JOIN 行，按 code、班组、星期、起始节次排序
	ListRows(ctx context.Context) ([]model.SubjectRow, error)
	// ListRowsByCode 返回单门课程的扁平 JOIN 行
	ListRowsByCode(ctx context.Context, code string) ([]model.SubjectRow, error)
}

type subjectRepo struct {
	db *gorm.DB
}

// NewSubjectRepo 创建 SubjectRepository 实例
func NewSubjectRepo(db *gorm.DB) SubjectRepository {
	return &subjectRepo{db: db}
}

const subjectRowColumns = `s.id, s.code, s.name, s.semester, s.multi_class, s.on_strike,
	cg.id AS class_group_id, cg.group_code,
	cs.week_day, cs.start_period, cs.end_period,
	t.name AS teacher_name, cl.name AS classroom_name`

func (r *subjectRepo) ListCodes(ctx context.Context) ([]string, error) {
	var codes []string
	err := r.db.WithContext(ctx).
		Model(&model.Subject{}).
		Pluck("code", &codes).Error
	return codes, err
}

func (r *subjectRepo) Create(ctx context.Context, subject *model.Subject) error {
	return r.db.WithContext(ctx).Create(subject).Error
}

func (r *subjectRepo) GetByCode(ctx context.Context, code string) (*model.Subject, error) {
	var subject model.Subject
	err := r.db.WithContext(ctx).
		Where("LOWER(code) = LOWER(?)", code).
		First(&subject).Error
	if err != nil {
		return nil, err
	}
	return &subject, nil
}

func (r *subjectRepo) UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&model.Subject{}).
		Where("id = ?", id).
		Updates(fields).Error
}

func (r *subjectRepo) DeleteByCode(ctx context.Context, code string) (int64, error) {
	// 班组与时段由外键 ON DELETE CASCADE 级联删除
	result := r.db.WithContext(ctx).
		Where("LOWER(code) = LOWER(?)", code).
		Delete(&model.Subject{})
	return result.RowsAffected, result.Error
}

func (r *subjectRepo) DeleteAll(ctx context.Context) error {
	return r.db.WithContext(ctx).Where("1 = 1").Delete(&model.Subject{}).Error
}

func (r *subjectRepo) ListRows(ctx context.Context) ([]model.SubjectRow, error) {
	var rows []model.SubjectRow
	err := r.joinedRows(ctx).
		Order("s.code, cg.group_code, cs.week_day, cs.start_period").
		Scan(&rows).Error
	return rows, err
}

func (r *subjectRepo) ListRowsByCode(ctx context.Context, code string) ([]model.SubjectRow, error) {
	var rows []model.SubjectRow
	err := r.joinedRows(ctx).
		Where("LOWER(s.code) = LOWER(?)", code).
		Order("cg.group_code, cs.week_day, cs.start_period").
		Scan(&rows).Error
	return rows, err
}

func (r *subjectRepo) joinedRows(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("subjects AS s").
		Select(subjectRowColumns).
		Joins("LEFT JOIN class_groups cg ON s.id = cg.subject_id").
		Joins("LEFT JOIN class_schedules cs ON cg.id = cs.class_group_id").
		Joins("LEFT JOIN teachers t ON cs.teacher_id = t.id").
		Joins("LEFT JOIN classrooms cl ON cs.classroom_id = cl.id")
}
