package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"que-aula/backend/internal/model"
	"que-aula/backend/internal/repository"
)

// EntityResolver 将时段中引用的教师/教室名称解析为持久化 ID
//
// 同一次操作内，同一名称最多触发一次插入：先查缓存，再按名称精确查找，最后才插入。
// Checkpoint/Restore 与事务保存点配合使用：回滚到保存点后，
// 保存点之后新插入的名称必须从缓存中移除，否则后续条目会引用已被回滚的 ID。
type EntityResolver interface {
	Teacher(ctx context.Context, name string) (uint, error)
	Classroom(ctx context.Context, name string) (uint, error)
	Checkpoint()
	Restore()
}

// ResolverFactory 为一次操作（绑定到事务的 Repository）创建新的解析器
type ResolverFactory func(repo *repository.Repository) EntityResolver

// NewNameResolver 按名称精确匹配（大小写敏感）的默认解析器
func NewNameResolver(repo *repository.Repository) EntityResolver {
	return &nameResolver{
		repo:       repo,
		teachers:   make(map[string]uint),
		classrooms: make(map[string]uint),
	}
}

type journalEntry struct {
	teacher bool
	name    string
}

type nameResolver struct {
	repo       *repository.Repository
	teachers   map[string]uint
	classrooms map[string]uint

	// 自上次 Checkpoint 以来插入的名称
	journal []journalEntry
}

func (r *nameResolver) Teacher(ctx context.Context, name string) (uint, error) {
	if id, ok := r.teachers[name]; ok {
		return id, nil
	}

	existing, err := r.repo.Teacher.FindByName(ctx, name)
	switch {
	case err == nil:
		r.teachers[name] = existing.ID
		return existing.ID, nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return 0, fmt.Errorf("查询教师失败: %w", err)
	}

	teacher := &model.Teacher{Name: name}
	if err := r.repo.Teacher.Create(ctx, teacher); err != nil {
		return 0, fmt.Errorf("创建教师失败: %w", err)
	}
	r.teachers[name] = teacher.ID
	r.journal = append(r.journal, journalEntry{teacher: true, name: name})
	return teacher.ID, nil
}

func (r *nameResolver) Classroom(ctx context.Context, name string) (uint, error) {
	if id, ok := r.classrooms[name]; ok {
		return id, nil
	}

	existing, err := r.repo.Classroom.FindByName(ctx, name)
	switch {
	case err == nil:
		r.classrooms[name] = existing.ID
		return existing.ID, nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return 0, fmt.Errorf("查询教室失败: %w", err)
	}

	classroom := &model.Classroom{Name: name}
	if err := r.repo.Classroom.Create(ctx, classroom); err != nil {
		return 0, fmt.Errorf("创建教室失败: %w", err)
	}
	r.classrooms[name] = classroom.ID
	r.journal = append(r.journal, journalEntry{name: name})
	return classroom.ID, nil
}

func (r *nameResolver) Checkpoint() {
	r.journal = r.journal[:0]
}

func (r *nameResolver) Restore() {
	for _, e := range r.journal {
		if e.teacher {
			delete(r.teachers, e.name)
		} else {
			delete(r.classrooms, e.name)
		}
	}
	r.journal = r.journal[:0]
}
