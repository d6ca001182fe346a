package service

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"que-aula/backend/internal/dto"
	"que-aula/backend/internal/model"
	"que-aula/backend/internal/repository"
	"que-aula/backend/internal/transform"
	apperrors "que-aula/backend/pkg/errors"
	"que-aula/backend/pkg/metrics"
)

// ── 课程模块业务错误 ──

var (
	ErrSubjectNotFound  = errors.New("课程不存在")
	ErrEmptyBatch       = errors.New("批量导入数据不能为空")
	ErrInvalidSchedule  = errors.New("时段数据不合法")
	errSubjectDuplicate = errors.New("课程代码已存在")
)

// duplicateGroupError classList 中同一班组代码出现多次
type duplicateGroupError struct {
	code string
}

func (e *duplicateGroupError) Error() string {
	return fmt.Sprintf("班组 %s 重复", e.code)
}

// ListCache 课程列表读缓存，由 pkg/redis 实现；未启用时传 nil
type ListCache interface {
	GetClassList(ctx context.Context) ([]byte, bool, error)
	SetClassList(ctx context.Context, data []byte) error
	InvalidateClassList(ctx context.Context) error
}

// ClassService 课程同步业务接口
type ClassService interface {
	List(ctx context.Context) ([]dto.NestedSubject, error)
	GetByCode(ctx context.Context, code string) (*dto.NestedSubject, error)
	CreateClasses(ctx context.Context, batch []dto.NestedSubject) (*dto.BatchResult, error)
	Update(ctx context.Context, code string, req *dto.UpdateClassRequest) (*dto.UpdateResult, error)
	Delete(ctx context.Context, code string) error
	// Clean 清空全部课程、教师与教室
	Clean(ctx context.Context) error
}

type classService struct {
	repo      *repository.Repository
	resolvers ResolverFactory
	cache     ListCache
	metrics   *metrics.Metrics
	validate  *validator.Validate
	logger    *zap.Logger
}

// NewClassService 创建 ClassService 实例
// resolvers 为 nil 时使用按名称精确匹配的默认解析器
func NewClassService(
	repo *repository.Repository,
	resolvers ResolverFactory,
	cache ListCache,
	m *metrics.Metrics,
	logger *zap.Logger,
) ClassService {
	if resolvers == nil {
		resolvers = NewNameResolver
	}
	return &classService{
		repo:      repo,
		resolvers: resolvers,
		cache:     cache,
		metrics:   m,
		validate:  validator.New(),
		logger:    logger,
	}
}

// ────────────────────── List ──────────────────────

func (s *classService) List(ctx context.Context) ([]dto.NestedSubject, error) {
	if cached, ok := s.cachedList(ctx); ok {
		return cached, nil
	}

	start := time.Now()
	rows, err := s.repo.Subject.ListRows(ctx)
	s.metrics.ObserveOperation("list", start, err)
	if err != nil {
		s.logger.Error("查询课程列表失败", zap.Error(err))
		return nil, err
	}

	subjects := transform.ToNested(rows)
	s.storeList(ctx, subjects)
	return subjects, nil
}

func (s *classService) cachedList(ctx context.Context) ([]dto.NestedSubject, bool) {
	if s.cache == nil {
		return nil, false
	}
	data, ok, err := s.cache.GetClassList(ctx)
	if err != nil {
		s.metrics.CacheLookup("error")
		s.logger.Warn("读取课程列表缓存失败", zap.Error(err))
		return nil, false
	}
	if !ok {
		s.metrics.CacheLookup("miss")
		return nil, false
	}

	var subjects []dto.NestedSubject
	if err := json.Unmarshal(data, &subjects); err != nil {
		s.metrics.CacheLookup("error")
		s.logger.Warn("课程列表缓存内容损坏", zap.Error(err))
		return nil, false
	}
	s.metrics.CacheLookup("hit")
	return subjects, true
}

func (s *classService) storeList(ctx context.Context, subjects []dto.NestedSubject) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(subjects)
	if err != nil {
		return
	}
	if err := s.cache.SetClassList(ctx, data); err != nil {
		s.logger.Warn("写入课程列表缓存失败", zap.Error(err))
	}
}

// invalidateList 在写操作提交后调用，失败只记录日志
func (s *classService) invalidateList(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateClassList(context.WithoutCancel(ctx)); err != nil {
		s.logger.Warn("清除课程列表缓存失败", zap.Error(err))
	}
}

// ────────────────────── GetByCode ──────────────────────

func (s *classService) GetByCode(ctx context.Context, code string) (*dto.NestedSubject, error) {
	rows, err := s.repo.Subject.ListRowsByCode(ctx, code)
	if err != nil {
		s.logger.Error("查询课程失败", zap.String("code", code), zap.Error(err))
		return nil, err
	}

	subject := transform.ToNestedSingle(rows)
	if subject == nil {
		return nil, ErrSubjectNotFound
	}
	return subject, nil
}

// ═══════════════════════════════════════════════════════════
// CreateClasses 批量导入嵌套课程
// ═══════════════════════════════════════════════════════════
//
// 整批在一个事务内执行，每门课程各自一个保存点：
//   - 已存在（含本批次先前已创建）→ skipped
//   - 缺少必填字段或单门课程写入失败 → errors，回滚到该课程的保存点
//   - 时段引用不存在的班组 → errors，仅跳过该时段，课程照常创建
//   - 连接中断、保存点回滚失败等系统性错误 → 整体回滚并返回 error，不返回部分结果

func (s *classService) CreateClasses(ctx context.Context, batch []dto.NestedSubject) (*dto.BatchResult, error) {
	if len(batch) == 0 {
		return nil, ErrEmptyBatch
	}

	start := time.Now()
	out := newOutcome()

	err := s.inTx(ctx, func(ctx context.Context, repo *repository.Repository) error {
		codes, err := repo.Subject.ListCodes(ctx)
		if err != nil {
			return fmt.Errorf("查询已有课程代码失败: %w", err)
		}
		existing := make(map[string]struct{}, len(codes)+len(batch))
		for _, c := range codes {
			existing[strings.ToLower(c)] = struct{}{}
		}

		resolver := s.resolvers(repo)
		for i := range batch {
			if err := s.ingestOne(ctx, repo, resolver, existing, i, &batch[i], out); err != nil {
				return err
			}
		}
		return nil
	})
	s.metrics.ObserveOperation("create", start, err)
	if err != nil {
		s.logger.Error("批量导入课程失败，已整体回滚", zap.Int("total", len(batch)), zap.Error(err))
		return nil, err
	}

	res := out.result()
	s.metrics.IngestItem(metrics.OutcomeCreated, len(res.Created))
	s.metrics.IngestItem(metrics.OutcomeSkipped, len(res.Skipped))
	s.metrics.IngestItem(metrics.OutcomeError, len(res.Errors))
	if len(res.Created) > 0 {
		s.invalidateList(ctx)
	}

	s.logger.Info("批量导入课程完成",
		zap.Int("total", len(batch)),
		zap.Int("created", len(res.Created)),
		zap.Int("skipped", len(res.Skipped)),
		zap.Int("errors", len(res.Errors)),
	)
	return res, nil
}

// ingestOne 处理单门课程，只有系统性错误才返回 error
func (s *classService) ingestOne(
	ctx context.Context,
	repo *repository.Repository,
	resolver EntityResolver,
	existing map[string]struct{},
	index int,
	item *dto.NestedSubject,
	out *outcome,
) error {
	key := strings.ToLower(item.Name)
	if _, ok := existing[key]; ok {
		out.skip(item.Name, ReasonSubjectExists)
		return nil
	}

	if err := s.validate.Struct(item); err != nil {
		out.fail(item.Name, ReasonMissingFields)
		return nil
	}

	savepoint := fmt.Sprintf("subject_%d", index)
	if err := repo.SavePoint(savepoint); err != nil {
		return fmt.Errorf("设置保存点失败: %w", err)
	}
	resolver.Checkpoint()

	missing, err := s.insertSubject(ctx, repo, resolver, item)
	if err != nil {
		if isSystemic(err) {
			return err
		}
		if rbErr := repo.RollbackTo(savepoint); rbErr != nil {
			return fmt.Errorf("回滚到保存点失败: %w", rbErr)
		}
		resolver.Restore()

		if errors.Is(err, errSubjectDuplicate) {
			out.skip(item.Name, ReasonSubjectExists)
			existing[key] = struct{}{}
			return nil
		}
		s.logger.Warn("课程导入失败", zap.String("code", item.Name), zap.Error(err))
		out.fail(item.Name, failureReason(err))
		return nil
	}

	for _, groupCode := range missing {
		out.fail(item.Name, ReasonGroupNotFound(groupCode))
	}
	out.created(dto.CreatedItem{
		Name:        item.Name,
		Description: item.Description,
		Semester:    item.Semester,
		Schedules:   len(item.Classes),
	})
	existing[key] = struct{}{}
	return nil
}

// insertSubject 写入课程、班组与时段，返回找不到班组的时段所引用的班组代码
func (s *classService) insertSubject(
	ctx context.Context,
	repo *repository.Repository,
	resolver EntityResolver,
	item *dto.NestedSubject,
) ([]string, error) {
	subject := &model.Subject{
		Code:       item.Name,
		Name:       item.Description,
		Semester:   item.Semester,
		MultiClass: item.MultiClass,
		OnStrike:   item.Greve,
	}
	if err := repo.Subject.Create(ctx, subject); err != nil {
		if apperrors.IsDuplicateKey(err) {
			return nil, errSubjectDuplicate
		}
		return nil, fmt.Errorf("创建课程失败: %w", err)
	}

	groups, err := createGroups(ctx, repo, subject.ID, item.MultiClass, item.ClassList)
	if err != nil {
		return nil, err
	}

	return createSchedules(ctx, repo, resolver, subject.ID, groups, item.Classes)
}

// createGroups 按多班规则创建班组，返回 group_code → id
func createGroups(
	ctx context.Context,
	repo *repository.Repository,
	subjectID uint,
	multiClass bool,
	classList []string,
) (map[string]uint, error) {
	codes := transform.GroupCodes(multiClass, classList)
	groups := make(map[string]uint, len(codes))
	for _, code := range codes {
		group := &model.ClassGroup{SubjectID: subjectID, GroupCode: code}
		if err := repo.ClassGroup.Create(ctx, group); err != nil {
			if apperrors.IsDuplicateKey(err) {
				return nil, &duplicateGroupError{code: code}
			}
			return nil, fmt.Errorf("创建班组 %s 失败: %w", code, err)
		}
		groups[code] = group.ID
	}
	return groups, nil
}

// createSchedules 逐条解析并写入时段
// 班组不存在的时段被跳过，其班组代码按出现顺序返回
func createSchedules(
	ctx context.Context,
	repo *repository.Repository,
	resolver EntityResolver,
	subjectID uint,
	groups map[string]uint,
	schedules []dto.NestedSchedule,
) ([]string, error) {
	var missing []string
	for _, sc := range schedules {
		teacherID, err := resolver.Teacher(ctx, sc.Teacher)
		if err != nil {
			return nil, err
		}
		classroomID, err := resolver.Classroom(ctx, sc.Classroom)
		if err != nil {
			return nil, err
		}

		groupCode := transform.TargetGroup(sc.WhichClass)
		groupID, ok := groups[groupCode]
		if !ok {
			missing = append(missing, groupCode)
			continue
		}

		startPeriod, endPeriod, err := transform.Collapse(sc.Period)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidSchedule, err)
		}
		weekDay, err := transform.ParseWeekDay(sc.WeekDay)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidSchedule, err)
		}

		entry := &model.ClassSchedule{
			SubjectID:    subjectID,
			ClassGroupID: groupID,
			TeacherID:    teacherID,
			ClassroomID:  classroomID,
			WeekDay:      weekDay,
			StartPeriod:  startPeriod,
			EndPeriod:    endPeriod,
		}
		if err := repo.Schedule.Create(ctx, entry); err != nil {
			return nil, fmt.Errorf("创建时段失败: %w", err)
		}
	}
	return missing, nil
}

// isSystemic 判断错误是否应中止整个操作
func isSystemic(err error) bool {
	return errors.Is(err, driver.ErrBadConn)
}

// ═══════════════════════════════════════════════════════════
// Update 部分更新课程
// ═══════════════════════════════════════════════════════════
//
// 字段补丁只识别 description/semester/multiClass/greve；
// classList 出现即重建班组（同时清空时段），classes 出现即基于当前班组重建时段。
// 班组不存在的时段记入 errors 并跳过，其余任何错误整体回滚。

func (s *classService) Update(ctx context.Context, code string, req *dto.UpdateClassRequest) (*dto.UpdateResult, error) {
	start := time.Now()
	result := &dto.UpdateResult{Errors: []dto.ItemReason{}}

	err := s.inTx(ctx, func(ctx context.Context, repo *repository.Repository) error {
		subject, err := repo.Subject.GetByCode(ctx, code)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSubjectNotFound
			}
			return fmt.Errorf("查询课程失败: %w", err)
		}

		if fields := patchFields(req); len(fields) > 0 {
			fields["updated_at"] = time.Now()
			if err := repo.Subject.UpdateFields(ctx, subject.ID, fields); err != nil {
				return fmt.Errorf("更新课程字段失败: %w", err)
			}
		}

		multiClass := subject.MultiClass
		if req.MultiClass != nil {
			multiClass = *req.MultiClass
		}

		if req.ClassList != nil {
			if err := repo.Schedule.DeleteBySubject(ctx, subject.ID); err != nil {
				return fmt.Errorf("清空时段失败: %w", err)
			}
			if err := repo.ClassGroup.DeleteBySubject(ctx, subject.ID); err != nil {
				return fmt.Errorf("清空班组失败: %w", err)
			}
			if _, err := createGroups(ctx, repo, subject.ID, multiClass, *req.ClassList); err != nil {
				return err
			}
		}

		if req.Classes != nil {
			current, err := repo.ClassGroup.ListBySubject(ctx, subject.ID)
			if err != nil {
				return fmt.Errorf("查询班组失败: %w", err)
			}
			groups := make(map[string]uint, len(current))
			for _, g := range current {
				groups[g.GroupCode] = g.ID
			}

			if err := repo.Schedule.DeleteBySubject(ctx, subject.ID); err != nil {
				return fmt.Errorf("清空时段失败: %w", err)
			}

			// TODO: 引用已失效班组的时段目前只记入 errors，待确认是否应整体拒绝更新
			missing, err := createSchedules(ctx, repo, s.resolvers(repo), subject.ID, groups, *req.Classes)
			if err != nil {
				return err
			}
			for _, groupCode := range missing {
				result.Errors = append(result.Errors, dto.ItemReason{
					Name:   subject.Code,
					Reason: ReasonGroupNotFound(groupCode),
				})
			}
		}

		updated, err := repo.Subject.GetByCode(ctx, subject.Code)
		if err != nil {
			return fmt.Errorf("读取更新后课程失败: %w", err)
		}
		result.Updated = &dto.UpdatedItem{
			Name:        updated.Code,
			Description: updated.Name,
			Semester:    updated.Semester,
		}
		if req.Classes != nil {
			n := len(*req.Classes)
			result.Updated.Schedules = &n
		}
		return nil
	})
	s.metrics.ObserveOperation("update", start, err)
	if err != nil {
		if !errors.Is(err, ErrSubjectNotFound) {
			s.logger.Error("更新课程失败，已回滚", zap.String("code", code), zap.Error(err))
		}
		return nil, err
	}

	s.invalidateList(ctx)
	s.logger.Info("更新课程完成", zap.String("code", code), zap.Int("errors", len(result.Errors)))
	return result, nil
}

// patchFields 只映射可识别的字段
func patchFields(req *dto.UpdateClassRequest) map[string]interface{} {
	fields := make(map[string]interface{})
	if req.Description != nil {
		fields["name"] = *req.Description
	}
	if req.Semester != nil {
		fields["semester"] = *req.Semester
	}
	if req.MultiClass != nil {
		fields["multi_class"] = *req.MultiClass
	}
	if req.Greve != nil {
		fields["on_strike"] = *req.Greve
	}
	return fields
}

// ────────────────────── Delete ──────────────────────

func (s *classService) Delete(ctx context.Context, code string) error {
	start := time.Now()
	var affected int64

	err := s.inTx(ctx, func(ctx context.Context, repo *repository.Repository) error {
		n, err := repo.Subject.DeleteByCode(ctx, code)
		if err != nil {
			return fmt.Errorf("删除课程失败: %w", err)
		}
		if n == 0 {
			return ErrSubjectNotFound
		}
		affected = n
		return nil
	})
	s.metrics.ObserveOperation("delete", start, err)
	if err != nil {
		if !errors.Is(err, ErrSubjectNotFound) {
			s.logger.Error("删除课程失败", zap.String("code", code), zap.Error(err))
		}
		return err
	}

	s.invalidateList(ctx)
	s.logger.Info("课程已删除", zap.String("code", code), zap.Int64("rows", affected))
	return nil
}

// ────────────────────── Clean ──────────────────────

func (s *classService) Clean(ctx context.Context) error {
	err := s.inTx(ctx, func(ctx context.Context, repo *repository.Repository) error {
		// 按外键依赖顺序删除
		steps := []struct {
			table string
			fn    func(context.Context) error
		}{
			{"class_schedules", repo.Schedule.DeleteAll},
			{"class_groups", repo.ClassGroup.DeleteAll},
			{"subjects", repo.Subject.DeleteAll},
			{"teachers", repo.Teacher.DeleteAll},
			{"classrooms", repo.Classroom.DeleteAll},
		}
		for _, step := range steps {
			if err := step.fn(ctx); err != nil {
				return fmt.Errorf("清空 %s 失败: %w", step.table, err)
			}
		}
		return nil
	})
	if err != nil {
		s.logger.Error("清空数据失败", zap.Error(err))
		return err
	}

	s.invalidateList(ctx)
	s.logger.Info("课程数据已清空")
	return nil
}

// ── 事务 ──

// inTx 在单个事务中执行 fn，fn 返回 error 或 panic 时回滚
// 事务一旦开启即执行到提交或回滚，请求取消不会中断它
func (s *classService) inTx(ctx context.Context, fn func(ctx context.Context, repo *repository.Repository) error) error {
	ctx = context.WithoutCancel(ctx)
	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("开启事务失败: %w", err)
	}
	if tx == nil {
		return fn(ctx, s.repo)
	}

	committed := false
	defer func() {
		if !committed {
			tx.Rollback()
		}
	}()

	if err := fn(ctx, s.repo.WithTx(tx)); err != nil {
		return err
	}
	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("提交事务失败: %w", err)
	}
	committed = true
	return nil
}
