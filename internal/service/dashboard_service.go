package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-research-portal/internal/models"
)

const dashboardCacheKey = "dashboard:counts"

type departmentCounter interface {
	List(ctx context.Context) ([]models.Department, error)
}

type studentCounter interface {
	Count(ctx context.Context) (int64, error)
}

type adviserCounter interface {
	CountAdvisers(ctx context.Context) (active, archived int64, err error)
}

type submissionCounter interface {
	Totals(ctx context.Context) (count, views int64, err error)
}

// Dashboard is the admin landing payload.
type Dashboard struct {
	Counts models.DashboardCounts `json:"counts"`
	System models.SystemMetrics   `json:"system"`
}

// DashboardService assembles the admin dashboard.
type DashboardService struct {
	departments departmentCounter
	students    studentCounter
	advisers    adviserCounter
	submissions submissionCounter
	cache       *CacheService
	metrics     *MetricsService
	ttl         time.Duration
	logger      *zap.Logger
}

// NewDashboardService constructs the service.
func NewDashboardService(departments departmentCounter, students studentCounter, advisers adviserCounter, submissions submissionCounter, cache *CacheService, metrics *MetricsService, ttl time.Duration, logger *zap.Logger) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{
		departments: departments,
		students:    students,
		advisers:    advisers,
		submissions: submissions,
		cache:       cache,
		metrics:     metrics,
		ttl:         ttl,
		logger:      logger,
	}
}

// Get returns headline counts, cached briefly, plus a live metrics snapshot.
func (s *DashboardService) Get(ctx context.Context, actor *models.Principal) (*Dashboard, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	var counts models.DashboardCounts
	if hit, _ := s.cache.Get(ctx, dashboardCacheKey, &counts); !hit {
		var err error
		if counts, err = s.count(ctx); err != nil {
			return nil, internalError(err, "failed to load dashboard")
		}
		_ = s.cache.Set(ctx, dashboardCacheKey, counts, s.ttl)
	}
	return &Dashboard{Counts: counts, System: s.metrics.Snapshot()}, nil
}

func (s *DashboardService) count(ctx context.Context) (models.DashboardCounts, error) {
	var out models.DashboardCounts
	depts, err := s.departments.List(ctx)
	if err != nil {
		return out, err
	}
	out.Departments = int64(len(depts))
	if out.Students, err = s.students.Count(ctx); err != nil {
		return out, err
	}
	if out.ActiveAdvisers, out.ArchivedAdvisers, err = s.advisers.CountAdvisers(ctx); err != nil {
		return out, err
	}
	if out.Submissions, out.TotalViews, err = s.submissions.Totals(ctx); err != nil {
		return out, err
	}
	return out, nil
}
