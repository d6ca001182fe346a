package service

import (
	"context"
	"database/sql/driver"
	"errors"
	"reflect"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"que-aula/backend/internal/dto"
	"que-aula/backend/internal/model"
	"que-aula/backend/internal/repository"
	"que-aula/backend/internal/repository/repotest"
	"que-aula/backend/pkg/metrics"
)

// ── 测试辅助 ──

func setupTestClassService(t *testing.T) (ClassService, *gorm.DB) {
	t.Helper()
	db := repotest.NewDB(t)
	repo := repository.NewRepository(db)
	svc := NewClassService(repo, nil, nil, metrics.New(prometheus.NewRegistry()), zap.NewNop())
	return svc, db
}

func schedule(weekDay string, periods []string, teacher, room, which string) dto.NestedSchedule {
	return dto.NestedSchedule{
		WeekDay:    weekDay,
		Period:     periods,
		Teacher:    teacher,
		Classroom:  room,
		WhichClass: which,
	}
}

func subject(code, semester string, classes ...dto.NestedSchedule) dto.NestedSubject {
	return dto.NestedSubject{
		Name:        code,
		Description: "Disciplina " + code,
		Semester:    semester,
		Classes:     classes,
	}
}

func countRows(t *testing.T, db *gorm.DB, m interface{}, where string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	q := db.Model(m)
	if where != "" {
		q = q.Where(where, args...)
	}
	if err := q.Count(&n).Error; err != nil {
		t.Fatalf("统计行数失败: %v", err)
	}
	return n
}

// ── CreateClasses 测试 ──

func TestClassService_CreateClasses_EmptyBatch(t *testing.T) {
	svc, _ := setupTestClassService(t)

	_, err := svc.CreateClasses(context.Background(), nil)
	if !errors.Is(err, ErrEmptyBatch) {
		t.Errorf("期望 ErrEmptyBatch，实际: %v", err)
	}
}

func TestClassService_CreateClasses_IdempotentSkip(t *testing.T) {
	svc, _ := setupTestClassService(t)
	ctx := context.Background()
	batch := []dto.NestedSubject{
		subject("MAT101", "1", schedule("2", []string{"1", "2"}, "Dr. Silva", "PAT 101", "")),
		subject("FIS001", "2"),
	}

	first, err := svc.CreateClasses(ctx, batch)
	if err != nil {
		t.Fatalf("首次导入失败: %v", err)
	}
	if len(first.Created) != 2 {
		t.Fatalf("首次导入期望创建 2 门，实际 %d", len(first.Created))
	}

	second, err := svc.CreateClasses(ctx, batch)
	if err != nil {
		t.Fatalf("重复导入失败: %v", err)
	}
	if len(second.Created) != 0 {
		t.Errorf("重复导入不应创建课程，实际 %d", len(second.Created))
	}
	if len(second.Skipped) != 2 {
		t.Fatalf("期望跳过 2 门，实际 %d", len(second.Skipped))
	}
	for _, s := range second.Skipped {
		if s.Reason != ReasonSubjectExists {
			t.Errorf("跳过原因错误: %q", s.Reason)
		}
	}
}

func TestClassService_CreateClasses_SkipIsCaseInsensitive(t *testing.T) {
	svc, _ := setupTestClassService(t)
	ctx := context.Background()

	res, err := svc.CreateClasses(ctx, []dto.NestedSubject{
		subject("MAT101", "1"),
		subject("mat101", "1"),
	})
	if err != nil {
		t.Fatalf("导入失败: %v", err)
	}
	if len(res.Created) != 1 || len(res.Skipped) != 1 {
		t.Errorf("期望 1 创建 1 跳过，实际 created=%d skipped=%d", len(res.Created), len(res.Skipped))
	}
	if res.Skipped[0].Name != "mat101" {
		t.Errorf("跳过条目应保留原始代码，实际 %q", res.Skipped[0].Name)
	}
}

func TestClassService_CreateClasses_PartialBatchTolerance(t *testing.T) {
	svc, db := setupTestClassService(t)
	ctx := context.Background()

	missing := subject("QUI001", "")
	res, err := svc.CreateClasses(ctx, []dto.NestedSubject{
		subject("MAT101", "1"),
		missing,
		subject("FIS001", "2"),
	})
	if err != nil {
		t.Fatalf("导入失败: %v", err)
	}
	if len(res.Created) != 2 || len(res.Errors) != 1 {
		t.Fatalf("期望 2 创建 1 错误，实际 created=%d errors=%d", len(res.Created), len(res.Errors))
	}
	if res.Errors[0].Name != "QUI001" || res.Errors[0].Reason != ReasonMissingFields {
		t.Errorf("错误条目不符合预期: %+v", res.Errors[0])
	}
	if n := countRows(t, db, &model.Subject{}, ""); n != 2 {
		t.Errorf("期望持久化 2 门课程，实际 %d", n)
	}
}

func TestClassService_CreateClasses_SkipCheckedBeforeValidation(t *testing.T) {
	svc, _ := setupTestClassService(t)
	ctx := context.Background()

	if _, err := svc.CreateClasses(ctx, []dto.NestedSubject{subject("MAT101", "1")}); err != nil {
		t.Fatalf("导入失败: %v", err)
	}

	// 已存在且缺少字段：报告为跳过而非错误
	res, err := svc.CreateClasses(ctx, []dto.NestedSubject{{Name: "MAT101"}, {Description: "x"}})
	if err != nil {
		t.Fatalf("导入失败: %v", err)
	}
	if len(res.Skipped) != 1 || res.Skipped[0].Name != "MAT101" {
		t.Errorf("期望 MAT101 被跳过，实际 %+v", res.Skipped)
	}
	if len(res.Errors) != 1 || res.Errors[0].Name != "Unknown" {
		t.Errorf("缺少代码的条目应报告为 Unknown，实际 %+v", res.Errors)
	}
}

func TestClassService_CreateClasses_TeacherDedup(t *testing.T) {
	svc, db := setupTestClassService(t)
	ctx := context.Background()

	var classes []dto.NestedSchedule
	for day := 1; day <= 5; day++ {
		classes = append(classes, schedule(string(rune('0'+day)), []string{"1", "2"}, "Dr. Silva", "PAT 101", ""))
	}
	res, err := svc.CreateClasses(ctx, []dto.NestedSubject{subject("MAT101", "1", classes...)})
	if err != nil {
		t.Fatalf("导入失败: %v", err)
	}
	if res.Created[0].Schedules != 5 {
		t.Errorf("期望摘要 schedules=5，实际 %d", res.Created[0].Schedules)
	}
	if n := countRows(t, db, &model.Teacher{}, "name = ?", "Dr. Silva"); n != 1 {
		t.Errorf("期望 1 位教师 Dr. Silva，实际 %d", n)
	}
	if n := countRows(t, db, &model.Classroom{}, ""); n != 1 {
		t.Errorf("期望 1 间教室，实际 %d", n)
	}
	if n := countRows(t, db, &model.ClassSchedule{}, ""); n != 5 {
		t.Errorf("期望 5 个时段，实际 %d", n)
	}
}

func TestClassService_CreateClasses_ReusesExistingTeacher(t *testing.T) {
	svc, db := setupTestClassService(t)
	ctx := context.Background()

	if err := db.Create(&model.Teacher{Name: "Dr. Silva"}).Error; err != nil {
		t.Fatalf("预置教师失败: %v", err)
	}
	_, err := svc.CreateClasses(ctx, []dto.NestedSubject{
		subject("MAT101", "1", schedule("2", []string{"1"}, "Dr. Silva", "PAT 101", "")),
	})
	if err != nil {
		t.Fatalf("导入失败: %v", err)
	}
	if n := countRows(t, db, &model.Teacher{}, ""); n != 1 {
		t.Errorf("已存在的教师不应重复插入，实际 %d", n)
	}
}

func TestClassService_CreateClasses_TeacherNamesAreCaseSensitive(t *testing.T) {
	svc, db := setupTestClassService(t)
	ctx := context.Background()

	_, err := svc.CreateClasses(ctx, []dto.NestedSubject{
		subject("MAT101", "1",
			schedule("2", []string{"1"}, "Ana", "R1", ""),
			schedule("3", []string{"1"}, "ANA", "R1", ""),
		),
	})
	if err != nil {
		t.Fatalf("导入失败: %v", err)
	}
	if n := countRows(t, db, &model.Teacher{}, ""); n != 2 {
		t.Errorf("Ana 与 ANA 应为两位教师，实际 %d", n)
	}
}

func TestClassService_CreateClasses_GroupNotFoundIsSoft(t *testing.T) {
	svc, db := setupTestClassService(t)
	ctx := context.Background()

	item := subject("FIS001", "2",
		schedule("2", []string{"1", "2"}, "Ana", "R1", "A"),
		schedule("3", []string{"3", "4"}, "Ana", "R1", "Z"),
	)
	item.MultiClass = true
	item.ClassList = []string{"A", "B"}

	res, err := svc.CreateClasses(ctx, []dto.NestedSubject{item})
	if err != nil {
		t.Fatalf("导入失败: %v", err)
	}
	if len(res.Created) != 1 {
		t.Fatalf("课程应照常创建，实际 created=%d", len(res.Created))
	}
	if len(res.Errors) != 1 || res.Errors[0].Reason != "Class group 'Z' not found for schedule" {
		t.Errorf("错误条目不符合预期: %+v", res.Errors)
	}
	if n := countRows(t, db, &model.ClassGroup{}, ""); n != 2 {
		t.Errorf("期望 2 个班组，实际 %d", n)
	}
	if n := countRows(t, db, &model.ClassSchedule{}, ""); n != 1 {
		t.Errorf("期望 1 个时段，实际 %d", n)
	}
}

func TestClassService_CreateClasses_FailedSubjectRolledBackToSavepoint(t *testing.T) {
	svc, db := setupTestClassService(t)
	ctx := context.Background()

	res, err := svc.CreateClasses(ctx, []dto.NestedSubject{
		// 教师 Novo 已插入后才因节次非法失败，应随保存点一起回滚
		subject("BAD001", "1",
			schedule("2", []string{"1"}, "Novo", "R9", ""),
			schedule("3", []string{"x"}, "Novo", "R9", ""),
		),
		subject("MAT101", "1", schedule("4", []string{"1"}, "Novo", "R9", "")),
	})
	if err != nil {
		t.Fatalf("导入失败: %v", err)
	}
	if len(res.Errors) != 1 || res.Errors[0].Name != "BAD001" {
		t.Fatalf("期望 BAD001 报错，实际 %+v", res.Errors)
	}
	if want := ReasonInvalidSchedule + `: invalid period "x"`; res.Errors[0].Reason != want {
		t.Errorf("错误原因应只保留最内层原因，期望 %q，实际 %q", want, res.Errors[0].Reason)
	}
	if n := countRows(t, db, &model.Subject{}, "code = ?", "BAD001"); n != 0 {
		t.Errorf("失败课程不应残留，实际 %d", n)
	}
	if n := countRows(t, db, &model.Teacher{}, "name = ?", "Novo"); n != 1 {
		t.Errorf("回滚后教师应由后续课程重新插入一次，实际 %d", n)
	}
	if n := countRows(t, db, &model.ClassSchedule{}, ""); n != 1 {
		t.Errorf("期望 1 个时段，实际 %d", n)
	}
}

func TestClassService_CreateClasses_StorageCheckViolationIsSoft(t *testing.T) {
	svc, db := setupTestClassService(t)
	ctx := context.Background()

	res, err := svc.CreateClasses(ctx, []dto.NestedSubject{
		subject("BAD001", "1", schedule("9", []string{"1"}, "Ana", "R1", "")),
		subject("MAT101", "1"),
	})
	if err != nil {
		t.Fatalf("导入失败: %v", err)
	}
	if len(res.Created) != 1 || len(res.Errors) != 1 {
		t.Errorf("期望 1 创建 1 错误，实际 created=%d errors=%d", len(res.Created), len(res.Errors))
	}
	if n := countRows(t, db, &model.Subject{}, ""); n != 1 {
		t.Errorf("期望仅 MAT101 持久化，实际 %d", n)
	}
}

func TestClassService_CreateClasses_DuplicateGroupReason(t *testing.T) {
	svc, db := setupTestClassService(t)
	ctx := context.Background()

	item := subject("FIS001", "2", schedule("2", []string{"1"}, "Ana", "R1", "A"))
	item.MultiClass = true
	item.ClassList = []string{"A", "A"}

	res, err := svc.CreateClasses(ctx, []dto.NestedSubject{item, subject("MAT101", "1")})
	if err != nil {
		t.Fatalf("导入失败: %v", err)
	}
	if len(res.Errors) != 1 {
		t.Fatalf("期望 1 个错误，实际 %+v", res.Errors)
	}
	if got, want := res.Errors[0].Reason, ReasonDuplicateGroup("A"); got != want {
		t.Errorf("期望原因 %q，实际 %q", want, got)
	}
	if n := countRows(t, db, &model.Subject{}, "code = ?", "FIS001"); n != 0 {
		t.Errorf("失败课程不应残留，实际 %d", n)
	}
	if len(res.Created) != 1 || res.Created[0].Name != "MAT101" {
		t.Errorf("后续课程应照常创建，实际 %+v", res.Created)
	}
}

func TestClassService_CreateClasses_CallerCancelDoesNotAbort(t *testing.T) {
	svc, db := setupTestClassService(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := svc.CreateClasses(ctx, []dto.NestedSubject{
		subject("MAT101", "1", schedule("2", []string{"1", "2"}, "Dr. Silva", "PAT 101", "")),
		subject("", "1"),
	})
	if err != nil {
		t.Fatalf("调用方取消不应中止导入: %v", err)
	}
	if len(res.Created) != 1 || len(res.Errors) != 1 {
		t.Errorf("期望 1 创建 1 错误，实际 created=%d errors=%d", len(res.Created), len(res.Errors))
	}
	if n := countRows(t, db, &model.Subject{}, "code = ?", "MAT101"); n != 1 {
		t.Errorf("有效课程应已提交，实际 %d", n)
	}
	if n := countRows(t, db, &model.ClassSchedule{}, ""); n != 1 {
		t.Errorf("期望 1 个时段，实际 %d", n)
	}
}

// failingResolver 模拟连接中断
type failingResolver struct{}

func (failingResolver) Teacher(context.Context, string) (uint, error) {
	return 0, driver.ErrBadConn
}
func (failingResolver) Classroom(context.Context, string) (uint, error) {
	return 0, driver.ErrBadConn
}
func (failingResolver) Checkpoint() {}
func (failingResolver) Restore()    {}

func TestClassService_CreateClasses_SystemicErrorRollsBackAll(t *testing.T) {
	db := repotest.NewDB(t)
	repo := repository.NewRepository(db)
	svc := NewClassService(repo, func(*repository.Repository) EntityResolver {
		return failingResolver{}
	}, nil, nil, zap.NewNop())

	res, err := svc.CreateClasses(context.Background(), []dto.NestedSubject{
		subject("MAT101", "1"),
		subject("FIS001", "1", schedule("2", []string{"1"}, "Ana", "R1", "")),
	})
	if !errors.Is(err, driver.ErrBadConn) {
		t.Fatalf("期望系统性错误，实际: %v", err)
	}
	if res != nil {
		t.Error("系统性错误不应返回部分结果")
	}
	if n := countRows(t, db, &model.Subject{}, ""); n != 0 {
		t.Errorf("整批应回滚，实际残留 %d 门课程", n)
	}
}

// ── 读回 ──

func TestClassService_DefaultGroupRoundTrip(t *testing.T) {
	svc, _ := setupTestClassService(t)
	ctx := context.Background()

	_, err := svc.CreateClasses(ctx, []dto.NestedSubject{
		subject("MAT101", "1", schedule("2", []string{"3", "4", "5"}, "Dr. Silva", "PAT 101", "")),
	})
	if err != nil {
		t.Fatalf("导入失败: %v", err)
	}

	got, err := svc.GetByCode(ctx, "mat101")
	if err != nil {
		t.Fatalf("GetByCode 失败: %v", err)
	}
	if got.ClassList != nil {
		t.Errorf("单班课程不应有 classList: %v", got.ClassList)
	}
	if len(got.Classes) != 1 || got.Classes[0].WhichClass != "" {
		t.Fatalf("期望 1 个无 whichClass 的时段，实际 %+v", got.Classes)
	}
	want := schedule("2", []string{"3", "4", "5"}, "Dr. Silva", "PAT 101", "")
	if !reflect.DeepEqual(got.Classes[0], want) {
		t.Errorf("时段读回不一致: %+v", got.Classes[0])
	}
}

func TestClassService_MultiClassRoundTrip(t *testing.T) {
	svc, _ := setupTestClassService(t)
	ctx := context.Background()

	item := subject("FIS001", "2",
		schedule("3", []string{"1", "2"}, "Ana", "R1", "B"),
		schedule("2", []string{"1", "2"}, "Ana", "R1", "A"),
	)
	item.MultiClass = true
	item.ClassList = []string{"B", "A"}
	if _, err := svc.CreateClasses(ctx, []dto.NestedSubject{item}); err != nil {
		t.Fatalf("导入失败: %v", err)
	}

	got, err := svc.GetByCode(ctx, "FIS001")
	if err != nil {
		t.Fatalf("GetByCode 失败: %v", err)
	}
	if !reflect.DeepEqual(got.ClassList, []string{"A", "B"}) {
		t.Errorf("classList 应排序，实际 %v", got.ClassList)
	}
	if len(got.Classes) != 2 {
		t.Fatalf("期望 2 个时段，实际 %d", len(got.Classes))
	}
	for _, c := range got.Classes {
		if (c.WhichClass == "A" && c.WeekDay != "2") || (c.WhichClass == "B" && c.WeekDay != "3") {
			t.Errorf("whichClass 与时段不匹配: %+v", c)
		}
	}
}

func TestClassService_GetByCode_NotFound(t *testing.T) {
	svc, _ := setupTestClassService(t)

	_, err := svc.GetByCode(context.Background(), "NOPE")
	if !errors.Is(err, ErrSubjectNotFound) {
		t.Errorf("期望 ErrSubjectNotFound，实际: %v", err)
	}
}

func TestClassService_List(t *testing.T) {
	svc, _ := setupTestClassService(t)
	ctx := context.Background()

	empty, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("List 失败: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("空库应返回空列表，实际 %d", len(empty))
	}

	_, err = svc.CreateClasses(ctx, []dto.NestedSubject{subject("MAT101", "1"), subject("FIS001", "2")})
	if err != nil {
		t.Fatalf("导入失败: %v", err)
	}
	list, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("List 失败: %v", err)
	}
	if len(list) != 2 || list[0].Name != "FIS001" || list[1].Name != "MAT101" {
		t.Errorf("列表应按代码排序，实际 %+v", list)
	}
}

// ── Update 测试 ──

func seedMultiClass(t *testing.T, svc ClassService) {
	t.Helper()
	item := subject("FIS001", "2",
		schedule("2", []string{"1", "2"}, "Ana", "R1", "A"),
		schedule("3", []string{"1", "2"}, "Ana", "R1", "B"),
	)
	item.MultiClass = true
	item.ClassList = []string{"A", "B"}
	if _, err := svc.CreateClasses(context.Background(), []dto.NestedSubject{item}); err != nil {
		t.Fatalf("预置课程失败: %v", err)
	}
}

func TestClassService_Update_NotFound(t *testing.T) {
	svc, _ := setupTestClassService(t)

	_, err := svc.Update(context.Background(), "NOPE", &dto.UpdateClassRequest{})
	if !errors.Is(err, ErrSubjectNotFound) {
		t.Errorf("期望 ErrSubjectNotFound，实际: %v", err)
	}
}

func TestClassService_Update_Fields(t *testing.T) {
	svc, db := setupTestClassService(t)
	ctx := context.Background()
	seedMultiClass(t, svc)

	desc, sem, greve := "Física Geral", "3", true
	res, err := svc.Update(ctx, "fis001", &dto.UpdateClassRequest{
		Description: &desc,
		Semester:    &sem,
		Greve:       &greve,
	})
	if err != nil {
		t.Fatalf("Update 失败: %v", err)
	}
	if res.Updated.Name != "FIS001" || res.Updated.Description != desc || res.Updated.Semester != sem {
		t.Errorf("更新摘要不符合预期: %+v", res.Updated)
	}
	if res.Updated.Schedules != nil {
		t.Error("未提交 classes 时 schedules 应为 null")
	}

	var stored model.Subject
	if err := db.Where("code = ?", "FIS001").First(&stored).Error; err != nil {
		t.Fatalf("读取课程失败: %v", err)
	}
	if !stored.OnStrike || !stored.MultiClass {
		t.Errorf("字段更新不符合预期: %+v", stored)
	}
	// 未提交班组/时段时保持不变
	if n := countRows(t, db, &model.ClassSchedule{}, ""); n != 2 {
		t.Errorf("时段不应被修改，实际 %d", n)
	}
}

func TestClassService_Update_ClassListReplacesGroups(t *testing.T) {
	svc, db := setupTestClassService(t)
	ctx := context.Background()
	seedMultiClass(t, svc)

	list := []string{"C", "D"}
	if _, err := svc.Update(ctx, "FIS001", &dto.UpdateClassRequest{ClassList: &list}); err != nil {
		t.Fatalf("Update 失败: %v", err)
	}

	got, err := svc.GetByCode(ctx, "FIS001")
	if err != nil {
		t.Fatalf("GetByCode 失败: %v", err)
	}
	if !reflect.DeepEqual(got.ClassList, []string{"C", "D"}) {
		t.Errorf("班组应被替换，实际 %v", got.ClassList)
	}
	if n := countRows(t, db, &model.ClassSchedule{}, ""); n != 0 {
		t.Errorf("替换班组应清空时段，实际 %d", n)
	}
}

func TestClassService_Update_ClassListWithSingleClassFallsBackToDefault(t *testing.T) {
	svc, db := setupTestClassService(t)
	ctx := context.Background()
	seedMultiClass(t, svc)

	multi := false
	list := []string{"C"}
	if _, err := svc.Update(ctx, "FIS001", &dto.UpdateClassRequest{MultiClass: &multi, ClassList: &list}); err != nil {
		t.Fatalf("Update 失败: %v", err)
	}

	var groups []model.ClassGroup
	if err := db.Find(&groups).Error; err != nil {
		t.Fatalf("读取班组失败: %v", err)
	}
	if len(groups) != 1 || groups[0].GroupCode != model.DefaultGroupCode {
		t.Errorf("期望仅 DEFAULT 班组，实际 %+v", groups)
	}
}

func TestClassService_Update_ClassesReplacesSchedules(t *testing.T) {
	svc, db := setupTestClassService(t)
	ctx := context.Background()
	seedMultiClass(t, svc)

	classes := []dto.NestedSchedule{
		schedule("5", []string{"7", "8"}, "Bruno", "R2", "B"),
		schedule("6", []string{"1"}, "Bruno", "R2", "Z"),
	}
	res, err := svc.Update(ctx, "FIS001", &dto.UpdateClassRequest{Classes: &classes})
	if err != nil {
		t.Fatalf("Update 失败: %v", err)
	}
	if res.Updated.Schedules == nil || *res.Updated.Schedules != 2 {
		t.Errorf("schedules 应为提交数量 2，实际 %v", res.Updated.Schedules)
	}
	if len(res.Errors) != 1 || res.Errors[0].Reason != "Class group 'Z' not found for schedule" {
		t.Errorf("过期班组应记为软错误: %+v", res.Errors)
	}

	got, err := svc.GetByCode(ctx, "FIS001")
	if err != nil {
		t.Fatalf("GetByCode 失败: %v", err)
	}
	if len(got.Classes) != 1 || got.Classes[0].WhichClass != "B" || got.Classes[0].Teacher != "Bruno" {
		t.Errorf("时段应被替换，实际 %+v", got.Classes)
	}
	if n := countRows(t, db, &model.Teacher{}, "name = ?", "Bruno"); n != 1 {
		t.Errorf("期望 1 位教师 Bruno，实际 %d", n)
	}
}

func TestClassService_Update_ClassListThenClasses(t *testing.T) {
	svc, db := setupTestClassService(t)
	ctx := context.Background()
	seedMultiClass(t, svc)

	multi := true
	list := []string{"X", "Y"}
	classes := []dto.NestedSchedule{
		schedule("4", []string{"3", "4"}, "Ana", "R1", "X"),
		schedule("5", []string{"1"}, "Ana", "R1", ""),
	}
	res, err := svc.Update(ctx, "FIS001", &dto.UpdateClassRequest{
		MultiClass: &multi,
		ClassList:  &list,
		Classes:    &classes,
	})
	if err != nil {
		t.Fatalf("Update 失败: %v", err)
	}
	if len(res.Errors) != 1 || res.Errors[0].Reason != ReasonGroupNotFound(model.DefaultGroupCode) {
		t.Errorf("DEFAULT 不在新班组中，应记为软错误: %+v", res.Errors)
	}

	got, err := svc.GetByCode(ctx, "FIS001")
	if err != nil {
		t.Fatalf("GetByCode 失败: %v", err)
	}
	if !reflect.DeepEqual(got.ClassList, []string{"X", "Y"}) {
		t.Errorf("班组应先被替换，实际 %v", got.ClassList)
	}
	if len(got.Classes) != 1 || got.Classes[0].WhichClass != "X" {
		t.Errorf("时段应挂在新班组 X 上，实际 %+v", got.Classes)
	}
	if n := countRows(t, db, &model.ClassGroup{}, "group_code IN ?", []string{"A", "B"}); n != 0 {
		t.Errorf("旧班组应被删除，实际 %d", n)
	}
}

func TestClassService_Update_InvalidScheduleRollsBack(t *testing.T) {
	svc, db := setupTestClassService(t)
	ctx := context.Background()
	seedMultiClass(t, svc)

	desc := "changed"
	classes := []dto.NestedSchedule{schedule("2", nil, "Ana", "R1", "A")}
	_, err := svc.Update(ctx, "FIS001", &dto.UpdateClassRequest{Description: &desc, Classes: &classes})
	if !errors.Is(err, ErrInvalidSchedule) {
		t.Fatalf("期望 ErrInvalidSchedule，实际: %v", err)
	}

	var stored model.Subject
	if err := db.Where("code = ?", "FIS001").First(&stored).Error; err != nil {
		t.Fatalf("读取课程失败: %v", err)
	}
	if stored.Name == desc {
		t.Error("更新失败时字段修改应一并回滚")
	}
	if n := countRows(t, db, &model.ClassSchedule{}, ""); n != 2 {
		t.Errorf("更新失败时原有时段应保留，实际 %d", n)
	}
}

// ── Delete / Clean 测试 ──

func TestClassService_Delete(t *testing.T) {
	svc, db := setupTestClassService(t)
	ctx := context.Background()
	seedMultiClass(t, svc)

	if err := svc.Delete(ctx, "fis001"); err != nil {
		t.Fatalf("Delete 失败: %v", err)
	}
	if n := countRows(t, db, &model.ClassGroup{}, ""); n != 0 {
		t.Errorf("班组应级联删除，实际 %d", n)
	}
	if n := countRows(t, db, &model.ClassSchedule{}, ""); n != 0 {
		t.Errorf("时段应级联删除，实际 %d", n)
	}
	if n := countRows(t, db, &model.Teacher{}, ""); n != 1 {
		t.Errorf("教师不应被删除，实际 %d", n)
	}

	if err := svc.Delete(ctx, "FIS001"); !errors.Is(err, ErrSubjectNotFound) {
		t.Errorf("重复删除期望 ErrSubjectNotFound，实际: %v", err)
	}
}

func TestClassService_Clean(t *testing.T) {
	svc, db := setupTestClassService(t)
	ctx := context.Background()
	seedMultiClass(t, svc)

	if err := svc.Clean(ctx); err != nil {
		t.Fatalf("Clean 失败: %v", err)
	}
	for _, m := range []interface{}{&model.Subject{}, &model.ClassGroup{}, &model.ClassSchedule{}, &model.Teacher{}, &model.Classroom{}} {
		if n := countRows(t, db, m, ""); n != 0 {
			t.Errorf("%T 应被清空，实际 %d", m, n)
		}
	}
}

// ── 列表缓存 ──

type fakeListCache struct {
	data        []byte
	gets        int
	invalidated int
}

func (c *fakeListCache) GetClassList(context.Context) ([]byte, bool, error) {
	c.gets++
	return c.data, c.data != nil, nil
}

func (c *fakeListCache) SetClassList(_ context.Context, data []byte) error {
	c.data = data
	return nil
}

func (c *fakeListCache) InvalidateClassList(context.Context) error {
	c.invalidated++
	c.data = nil
	return nil
}

func TestClassService_ListCache(t *testing.T) {
	db := repotest.NewDB(t)
	cache := &fakeListCache{}
	svc := NewClassService(repository.NewRepository(db), nil, cache, nil, zap.NewNop())
	ctx := context.Background()

	if _, err := svc.CreateClasses(ctx, []dto.NestedSubject{subject("MAT101", "1")}); err != nil {
		t.Fatalf("导入失败: %v", err)
	}
	if _, err := svc.List(ctx); err != nil {
		t.Fatalf("List 失败: %v", err)
	}
	if cache.data == nil {
		t.Fatal("List 未命中时应写入缓存")
	}

	// 绕过服务直接改库：命中缓存时仍返回旧数据
	if err := db.Model(&model.Subject{}).Where("code = ?", "MAT101").Update("name", "direct").Error; err != nil {
		t.Fatalf("直接更新失败: %v", err)
	}
	list, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("List 失败: %v", err)
	}
	if list[0].Description == "direct" {
		t.Error("缓存命中时不应查询数据库")
	}

	// 写操作提交后失效
	before := cache.invalidated
	if err := svc.Delete(ctx, "MAT101"); err != nil {
		t.Fatalf("Delete 失败: %v", err)
	}
	if cache.invalidated != before+1 || cache.data != nil {
		t.Error("删除后应清除列表缓存")
	}
}
