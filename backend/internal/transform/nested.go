package transform

import (
	"sort"
	"strconv"

	"que-aula/backend/internal/dto"
	"que-aula/backend/internal/model"
)

// subjectAccumulator 单门课程在分组过程中的中间状态
type subjectAccumulator struct {
	subject dto.NestedSubject
	groups  map[string]struct{}
}

// ToNested 将扁平 JOIN 行重建为嵌套课程列表
//
//  1. 按课程代码分组，保持首次出现顺序
//  2. 星期与教师均非空的行生成一个时段，多班课程附带 whichClass
//  3. 收集所有出现过的班组代码（无论是否有时段）
//  4. 多班且班组集合非空时输出按字典序排序的 classList
func ToNested(rows []model.SubjectRow) []dto.NestedSubject {
	order := make([]string, 0)
	byCode := make(map[string]*subjectAccumulator)

	for i := range rows {
		row := &rows[i]

		acc, ok := byCode[row.Code]
		if !ok {
			acc = &subjectAccumulator{
				subject: dto.NestedSubject{
					Name:        row.Code,
					Description: row.Name,
					Semester:    row.Semester,
					MultiClass:  row.MultiClass,
					Greve:       row.OnStrike,
					Classes:     []dto.NestedSchedule{},
				},
				groups: make(map[string]struct{}),
			}
			byCode[row.Code] = acc
			order = append(order, row.Code)
		}

		if row.WeekDay != nil && row.TeacherName != nil {
			acc.subject.Classes = append(acc.subject.Classes, scheduleFromRow(row))
		}

		if row.GroupCode != nil {
			acc.groups[*row.GroupCode] = struct{}{}
		}
	}

	result := make([]dto.NestedSubject, 0, len(order))
	for _, code := range order {
		acc := byCode[code]
		if acc.subject.MultiClass && len(acc.groups) > 0 {
			list := make([]string, 0, len(acc.groups))
			for g := range acc.groups {
				list = append(list, g)
			}
			sort.Strings(list)
			acc.subject.ClassList = list
		}
		result = append(result, acc.subject)
	}
	return result
}

// ToNestedSingle 重建单门课程，没有任何行时返回 nil
func ToNestedSingle(rows []model.SubjectRow) *dto.NestedSubject {
	if len(rows) == 0 {
		return nil
	}
	subjects := ToNested(rows)
	if len(subjects) == 0 {
		return nil
	}
	return &subjects[0]
}

func scheduleFromRow(row *model.SubjectRow) dto.NestedSchedule {
	var start, end int
	if row.StartPeriod != nil {
		start = *row.StartPeriod
	}
	if row.EndPeriod != nil {
		end = *row.EndPeriod
	}

	schedule := dto.NestedSchedule{
		WeekDay: strconv.Itoa(*row.WeekDay),
		Period:  Expand(start, end),
		Teacher: *row.TeacherName,
	}
	if row.ClassroomName != nil {
		schedule.Classroom = *row.ClassroomName
	}
	if row.MultiClass && row.GroupCode != nil {
		schedule.WhichClass = *row.GroupCode
	}
	return schedule
}
