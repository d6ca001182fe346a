package service

import (
	"errors"

	"que-aula/backend/internal/dto"
)

// ── 批量导入结果累加器 ──
// 单条失败是数据而非控制流：逐条写入 outcome，系统性失败时整体丢弃

// 对外原因文案
const (
	ReasonSubjectExists = "Subject already exists"
	ReasonMissingFields   = "Missing required fields (name, description, semester)"
	ReasonInvalidSchedule = "Invalid schedule"
	unknownSubjectName    = "Unknown"
)

// ReasonGroupNotFound 时段引用了未创建的班组
func ReasonGroupNotFound(groupCode string) string {
	return "Class group '" + groupCode + "' not found for schedule"
}

// ReasonDuplicateGroup classList 中同一班组出现多次
func ReasonDuplicateGroup(groupCode string) string {
	return "Class group '" + groupCode + "' is listed more than once"
}

// failureReason 单门课程意外失败时对外给出的原因
// 内部错误链只用于日志，对外只保留最内层原因
func failureReason(err error) string {
	var dup *duplicateGroupError
	switch {
	case errors.As(err, &dup):
		return ReasonDuplicateGroup(dup.code)
	case errors.Is(err, ErrInvalidSchedule):
		return ReasonInvalidSchedule + ": " + rootCause(err).Error()
	}
	return rootCause(err).Error()
}

// rootCause 沿包装链取最内层错误；多重包装取最后一个
func rootCause(err error) error {
	for {
		switch x := err.(type) {
		case interface{ Unwrap() error }:
			next := x.Unwrap()
			if next == nil {
				return err
			}
			err = next
		case interface{ Unwrap() []error }:
			errs := x.Unwrap()
			if len(errs) == 0 {
				return err
			}
			err = errs[len(errs)-1]
		default:
			return err
		}
	}
}

type outcome struct {
	res dto.BatchResult
}

func newOutcome() *outcome {
	return &outcome{res: dto.BatchResult{
		Created: []dto.CreatedItem{},
		Skipped: []dto.ItemReason{},
		Errors:  []dto.ItemReason{},
	}}
}

func (o *outcome) created(item dto.CreatedItem) {
	o.res.Created = append(o.res.Created, item)
}

func (o *outcome) skip(name, reason string) {
	o.res.Skipped = append(o.res.Skipped, dto.ItemReason{Name: displayName(name), Reason: reason})
}

func (o *outcome) fail(name, reason string) {
	o.res.Errors = append(o.res.Errors, dto.ItemReason{Name: displayName(name), Reason: reason})
}

func (o *outcome) result() *dto.BatchResult {
	r := o.res
	return &r
}

func displayName(name string) string {
	if name == "" {
		return unknownSubjectName
	}
	return name
}
