package service

import (
	"go.uber.org/zap"

	"que-aula/backend/internal/repository"
	"que-aula/backend/pkg/metrics"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Class  ClassService
	Export ExportService
}

// NewService 创建 Service 聚合
// cache 为 nil 时不启用列表缓存
func NewService(
	repo *repository.Repository,
	cache ListCache,
	m *metrics.Metrics,
	logger *zap.Logger,
) *Service {
	return &Service{
		Class:  NewClassService(repo, NewNameResolver, cache, m, logger),
		Export: NewExportService(repo, logger),
	}
}
