package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"que-aula/backend/internal/dto"
	"que-aula/backend/internal/repository"
	"que-aula/backend/internal/transform"
)

// ── 导出模块业务错误 ──

var (
	ErrExportNoSubjects   = errors.New("暂无课程可导出")
	ErrExportGenerateFail = errors.New("生成 Excel 文件失败")
)

// ExportService 导出业务接口
//
// 设计说明：
//   - 数据来源与 List 相同（联表行 → 嵌套结构），保证导出与接口返回一致
//   - 按学期分 Sheet，每个时段一行；没有时段的课程也占一行，时段列留空
//   - 以 bytes.Buffer 返回，由 Handler 层设置下载响应头
type ExportService interface {
	ExportClasses(ctx context.Context) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, logger: logger, now: time.Now}
}

var exportHeaders = []string{
	"Code", "Description", "Semester", "Class", "Week Day", "Periods", "Teacher", "Classroom",
}

func (s *exportService) ExportClasses(ctx context.Context) (*bytes.Buffer, string, error) {
	rows, err := s.repo.Subject.ListRows(ctx)
	if err != nil {
		s.logger.Error("查询课程失败", zap.Error(err))
		return nil, "", err
	}
	subjects := transform.ToNested(rows)
	if len(subjects) == 0 {
		return nil, "", ErrExportNoSubjects
	}

	// 1. 按学期分组，学期名升序
	bySemester := make(map[string][]dto.NestedSubject)
	for _, subj := range subjects {
		bySemester[subj.Semester] = append(bySemester[subj.Semester], subj)
	}
	semesters := make([]string, 0, len(bySemester))
	for sem := range bySemester {
		semesters = append(semesters, sem)
	}
	sort.Strings(semesters)

	// 2. 生成 Excel
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	for i, sem := range semesters {
		sheet := sheetName(sem)
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sheet); err != nil {
				s.logger.Error("创建 Sheet 失败", zap.Error(err))
				return nil, "", ErrExportGenerateFail
			}
		} else if _, err := f.NewSheet(sheet); err != nil {
			s.logger.Error("创建 Sheet 失败", zap.Error(err))
			return nil, "", ErrExportGenerateFail
		}

		if err := f.SetSheetRow(sheet, "A1", &exportHeaders); err != nil {
			return nil, "", ErrExportGenerateFail
		}
		last, _ := excelize.ColumnNumberToName(len(exportHeaders))
		f.SetCellStyle(sheet, "A1", last+"1", headerStyle)
		f.SetColWidth(sheet, "A", "A", 12)
		f.SetColWidth(sheet, "B", "B", 40)
		f.SetColWidth(sheet, "C", "F", 12)
		f.SetColWidth(sheet, "G", "H", 24)

		row := 2
		for _, subj := range bySemester[sem] {
			for _, values := range exportRows(subj) {
				cell, _ := excelize.CoordinatesToCellName(1, row)
				if err := f.SetSheetRow(sheet, cell, &values); err != nil {
					s.logger.Error("写入导出行失败", zap.String("code", subj.Name), zap.Error(err))
					return nil, "", ErrExportGenerateFail
				}
				row++
			}
		}
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("classes_%s.xlsx", s.now().Format("20060102"))
	return buf, filename, nil
}

// exportRows 每个时段一行
func exportRows(subj dto.NestedSubject) [][]interface{} {
	if len(subj.Classes) == 0 {
		return [][]interface{}{{subj.Name, subj.Description, subj.Semester, "", "", "", "", ""}}
	}
	out := make([][]interface{}, 0, len(subj.Classes))
	for _, c := range subj.Classes {
		group := c.WhichClass
		if group == "" {
			group = "-"
		}
		out = append(out, []interface{}{
			subj.Name, subj.Description, subj.Semester, group,
			c.WeekDay, strings.Join(c.Period, ","), c.Teacher, c.Classroom,
		})
	}
	return out
}

// sheetName Excel 的 Sheet 名不允许 : \ / ? * [ ]，且不超过 31 个字符
func sheetName(semester string) string {
	name := strings.NewReplacer(":", "-", "\\", "-", "/", "-", "?", "", "*", "", "[", "(", "]", ")").
		Replace("Semester " + semester)
	if len(name) > 31 {
		name = name[:31]
	}
	return name
}
