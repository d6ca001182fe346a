package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"que-aula/backend/internal/dto"
	"que-aula/backend/internal/service"
	"que-aula/backend/pkg/response"
)

// ClassHandler 课程模块 HTTP 处理器
type ClassHandler struct {
	classSvc service.ClassService
}

// NewClassHandler 创建 ClassHandler
func NewClassHandler(classSvc service.ClassService) *ClassHandler {
	return &ClassHandler{classSvc: classSvc}
}

const batchCompletedMessage = "Class creation process completed"

// ListClasses 获取全部课程（嵌套结构）
// GET /api/v1/classes
func (h *ClassHandler) ListClasses(c *gin.Context) {
	classes, err := h.classSvc.List(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, classes)
}

// GetClass 按课程代码获取（大小写不敏感）
// GET /api/v1/classes/:code
func (h *ClassHandler) GetClass(c *gin.Context) {
	code := strings.TrimSpace(c.Param("code"))
	if code == "" {
		response.BadRequest(c, 10001, "课程代码不能为空")
		return
	}

	class, err := h.classSvc.GetByCode(c.Request.Context(), code)
	if err != nil {
		h.handleClassError(c, err)
		return
	}

	response.OK(c, class)
}

// CreateClasses 批量导入课程
// POST /api/v1/classes
//
// 请求体可以是课程数组，也可以是 { "classes": [...] }。
// 状态码：有创建 → 201；无创建仅有跳过 → 200；无创建且有错误 → 400
func (h *ClassHandler) CreateClasses(c *gin.Context) {
	batch, ok := bindBatch(c)
	if !ok {
		return
	}

	results, err := h.classSvc.CreateClasses(c.Request.Context(), batch)
	if err != nil {
		h.handleClassError(c, err)
		return
	}

	status := http.StatusCreated
	switch {
	case len(results.Created) == 0 && len(results.Errors) > 0:
		status = http.StatusBadRequest
	case len(results.Created) == 0 && len(results.Skipped) > 0:
		status = http.StatusOK
	}

	response.Status(c, status, dto.CreateClassesResponse{
		Message: batchCompletedMessage,
		Summary: dto.BatchSummary{
			Total:   len(batch),
			Created: len(results.Created),
			Skipped: len(results.Skipped),
			Errors:  len(results.Errors),
		},
		Results: results,
	})
}

// bindBatch 解析数组或对象两种请求体
func bindBatch(c *gin.Context) ([]dto.NestedSubject, bool) {
	raw, err := c.GetRawData()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Error(c, http.StatusRequestEntityTooLarge, 10005, "请求体过大")
			return nil, false
		}
		response.BadRequest(c, 10001, "读取请求体失败")
		return nil, false
	}

	raw = bytes.TrimSpace(raw)
	var batch []dto.NestedSubject
	if len(raw) > 0 && raw[0] == '[' {
		if err := json.Unmarshal(raw, &batch); err != nil {
			response.BadRequest(c, 10001, "参数校验失败")
			return nil, false
		}
	} else {
		var req struct {
			Classes *[]dto.NestedSubject `json:"classes"`
		}
		if err := json.Unmarshal(raw, &req); err != nil || req.Classes == nil {
			response.BadRequest(c, 10001, "请求体必须是课程数组或包含 classes 数组")
			return nil, false
		}
		batch = *req.Classes
	}

	if len(batch) == 0 {
		response.BadRequest(c, 10002, "课程数组不能为空")
		return nil, false
	}
	return batch, true
}

// UpdateClass 部分更新课程
// PUT /api/v1/classes/:code
func (h *ClassHandler) UpdateClass(c *gin.Context) {
	code := strings.TrimSpace(c.Param("code"))
	if code == "" {
		response.BadRequest(c, 10001, "课程代码不能为空")
		return
	}

	var req dto.UpdateClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.classSvc.Update(c.Request.Context(), code, &req)
	if err != nil {
		h.handleClassError(c, err)
		return
	}

	response.OK(c, result)
}

// DeleteClass 删除课程（班组与时段级联删除）
// DELETE /api/v1/classes/:code
func (h *ClassHandler) DeleteClass(c *gin.Context) {
	code := strings.TrimSpace(c.Param("code"))
	if code == "" {
		response.BadRequest(c, 10001, "课程代码不能为空")
		return
	}

	if err := h.classSvc.Delete(c.Request.Context(), code); err != nil {
		h.handleClassError(c, err)
		return
	}

	response.NoContent(c)
}

// handleClassError 统一处理课程模块业务错误
func (h *ClassHandler) handleClassError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSubjectNotFound):
		response.NotFound(c, 20001, "课程不存在")
	case errors.Is(err, service.ErrEmptyBatch):
		response.BadRequest(c, 10002, "课程数组不能为空")
	case errors.Is(err, service.ErrInvalidSchedule):
		response.ErrorWithDetails(c, http.StatusBadRequest, 20002, "时段数据不合法", err.Error())
	default:
		response.InternalError(c)
	}
}
