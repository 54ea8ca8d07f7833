package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"repairdesk/models"

	"github.com/go-redis/redis/v8"
	"github.com/jinzhu/now"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

const (
	trailingMonths = 6
	topProblems    = 5
	recentRequests = 10
)

var tracer = otel.Tracer("repairdesk/services/analytics")

// pendingStatuses are the requests still moving through the shop.
var pendingStatuses = map[models.RequestStatus]bool{
	models.StatusPending:        true,
	models.StatusAccepted:       true,
	models.StatusInProgress:     true,
	models.StatusPaymentPending: true,
}

// AnalyticsService builds shop-facing earnings reports. It never mutates requests.
type AnalyticsService interface {
	ShopAnalytics(ctx context.Context, shopID string, timeRange models.TimeRange) (*models.ShopAnalytics, error)
	InvalidateShop(ctx context.Context, shopID string)
}

// RequestFinder is the read the report needs from the request store.
type RequestFinder interface {
	FindForAnalytics(ctx context.Context, shopID string, since *time.Time) ([]models.ServiceRequest, error)
}

type DefaultAnalyticsService struct {
	Repo RequestFinder
	// Cache is optional; nil computes every report fresh.
	Cache  *redis.Client
	TTL    time.Duration
	Logger *zap.Logger
	Now    func() time.Time
}

func NewDefaultAnalyticsService(repo RequestFinder, cache *redis.Client, ttl time.Duration, logger *zap.Logger) *DefaultAnalyticsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DefaultAnalyticsService{Repo: repo, Cache: cache, TTL: ttl, Logger: logger, Now: time.Now}
}

func cacheKey(shopID string, r models.TimeRange) string {
	return fmt.Sprintf("analytics:%s:%s", shopID, r)
}

// generationKey is bumped on every invalidation of the shop.
func generationKey(shopID string) string {
	return fmt.Sprintf("analytics:%s:gen", shopID)
}

// errStaleReport marks a report computed across an invalidation.
var errStaleReport = errors.New("analytics: shop invalidated during compute")

// windowStart returns the lower createdAt bound of a range, nil meaning unbounded.
func windowStart(r models.TimeRange, at time.Time) *time.Time {
	var since time.Time
	switch r {
	case models.RangeMonth:
		since = at.AddDate(0, -1, 0)
	case models.RangeWeek:
		since = at.AddDate(0, 0, -7)
	default:
		return nil
	}
	return &since
}

func (s *DefaultAnalyticsService) ShopAnalytics(ctx context.Context, shopID string, timeRange models.TimeRange) (_ *models.ShopAnalytics, err error) {
	ctx, span := tracer.Start(ctx, "analytics.ShopAnalytics")
	span.SetAttributes(attribute.String("shopId", shopID), attribute.String("timeRange", string(timeRange)))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	if timeRange == "" {
		timeRange = models.RangeAll
	}
	if !timeRange.Valid() {
		return nil, models.NewValidationError("timeRange", fmt.Sprintf("unknown range %q", timeRange))
	}

	if cached := s.fromCache(ctx, shopID, timeRange); cached != nil {
		span.SetAttributes(attribute.Bool("cacheHit", true))
		return cached, nil
	}

	gen, cacheable := s.generation(ctx, shopID)
	at := s.Now().UTC()
	rows, err := s.Repo.FindForAnalytics(ctx, shopID, windowStart(timeRange, at))
	if err != nil {
		return nil, fmt.Errorf("failed to load requests for analytics: %w", err)
	}

	report := Compute(rows, at)
	report.ShopID = shopID
	report.TimeRange = timeRange
	if cacheable {
		s.toCache(ctx, shopID, timeRange, report, gen)
	}
	return report, nil
}

func (s *DefaultAnalyticsService) fromCache(ctx context.Context, shopID string, r models.TimeRange) *models.ShopAnalytics {
	if s.Cache == nil {
		return nil
	}
	raw, err := s.Cache.Get(ctx, cacheKey(shopID, r)).Bytes()
	if err != nil {
		if err != redis.Nil {
			s.Logger.Warn("Analytics cache read failed", zap.String("shopId", shopID), zap.Error(err))
		}
		return nil
	}
	var report models.ShopAnalytics
	if err := json.Unmarshal(raw, &report); err != nil {
		return nil
	}
	return &report
}

// generation reads the shop's invalidation counter; false disables the write-back.
func (s *DefaultAnalyticsService) generation(ctx context.Context, shopID string) (int64, bool) {
	if s.Cache == nil || s.TTL <= 0 {
		return 0, false
	}
	gen, err := s.Cache.Get(ctx, generationKey(shopID)).Int64()
	if err == redis.Nil {
		return 0, true
	}
	if err != nil {
		s.Logger.Warn("Analytics cache read failed", zap.String("shopId", shopID), zap.Error(err))
		return 0, false
	}
	return gen, true
}

// toCache stores the report only if the shop was not invalidated since gen was read.
func (s *DefaultAnalyticsService) toCache(ctx context.Context, shopID string, r models.TimeRange, report *models.ShopAnalytics, gen int64) {
	raw, err := json.Marshal(report)
	if err != nil {
		return
	}
	genKey := generationKey(shopID)
	err = s.Cache.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, genKey).Int64()
		if err != nil && err != redis.Nil {
			return err
		}
		if cur != gen {
			return errStaleReport
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, cacheKey(shopID, r), raw, s.TTL)
			return nil
		})
		return err
	}, genKey)

	switch {
	case err == nil:
	case errors.Is(err, errStaleReport), errors.Is(err, redis.TxFailedErr):
		s.Logger.Debug("Skipped caching stale analytics", zap.String("shopId", shopID), zap.String("timeRange", string(r)))
	default:
		s.Logger.Warn("Analytics cache write failed", zap.String("shopId", shopID), zap.Error(err))
	}
}

// InvalidateShop drops every cached range of a shop and bumps its generation so
// reports computed before the call are not written back.
func (s *DefaultAnalyticsService) InvalidateShop(ctx context.Context, shopID string) {
	if s.Cache == nil {
		return
	}
	pipe := s.Cache.TxPipeline()
	pipe.Incr(ctx, generationKey(shopID))
	pipe.Del(ctx,
		cacheKey(shopID, models.RangeAll),
		cacheKey(shopID, models.RangeMonth),
		cacheKey(shopID, models.RangeWeek),
	)
	if _, err := pipe.Exec(ctx); err != nil {
		s.Logger.Warn("Analytics cache invalidation failed", zap.String("shopId", shopID), zap.Error(err))
	}
}

func earning(r models.ServiceRequest) float64 {
	if r.Payment == nil {
		return 0
	}
	return r.Payment.Amount
}

// Compute derives the report from rows already restricted to the shop and window.
func Compute(rows []models.ServiceRequest, at time.Time) *models.ShopAnalytics {
	report := &models.ShopAnalytics{
		TotalRequests:  len(rows),
		TopProblems:    []models.ProblemStat{},
		RecentRequests: []models.ServiceRequest{},
	}

	byProblem := map[string]*models.ProblemStat{}
	for _, r := range rows {
		if pendingStatuses[r.Status] {
			report.PendingRequests++
		}
		if r.Status != models.StatusPaid {
			continue
		}
		report.CompletedRequests++
		report.TotalEarnings += earning(r)

		stat, ok := byProblem[r.Problem]
		if !ok {
			stat = &models.ProblemStat{Problem: r.Problem}
			byProblem[r.Problem] = stat
		}
		stat.Count++
		stat.Earnings += earning(r)
	}

	if report.CompletedRequests > 0 {
		report.AverageEarning = report.TotalEarnings / float64(report.CompletedRequests)
	}
	if report.TotalRequests > 0 {
		report.SuccessRate = int(math.Round(100 * float64(report.CompletedRequests) / float64(report.TotalRequests)))
	}

	for _, stat := range byProblem {
		report.TopProblems = append(report.TopProblems, *stat)
	}
	sort.Slice(report.TopProblems, func(i, j int) bool {
		a, b := report.TopProblems[i], report.TopProblems[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		if a.Earnings != b.Earnings {
			return a.Earnings > b.Earnings
		}
		return a.Problem < b.Problem
	})
	if len(report.TopProblems) > topProblems {
		report.TopProblems = report.TopProblems[:topProblems]
	}

	report.MonthlyEarnings = monthlyEarnings(rows, at)

	recent := make([]models.ServiceRequest, len(rows))
	copy(recent, rows)
	sort.SliceStable(recent, func(i, j int) bool { return recent[i].CreatedAt.After(recent[j].CreatedAt) })
	if len(recent) > recentRequests {
		recent = recent[:recentRequests]
	}
	report.RecentRequests = recent
	return report
}

// monthlyEarnings buckets paid earnings into the trailing calendar months, oldest first,
// current month inclusive.
func monthlyEarnings(rows []models.ServiceRequest, at time.Time) []models.MonthlyEarning {
	current := now.With(at).BeginningOfMonth()
	buckets := make([]models.MonthlyEarning, 0, trailingMonths)
	for i := trailingMonths - 1; i >= 0; i-- {
		start := current.AddDate(0, -i, 0)
		end := now.With(start).EndOfMonth()

		bucket := models.MonthlyEarning{
			Month: start.Format("2006-01"),
			Label: start.Format("Jan 2006"),
		}
		for _, r := range rows {
			if r.Status != models.StatusPaid || r.CreatedAt.Before(start) || r.CreatedAt.After(end) {
				continue
			}
			bucket.Earnings += earning(r)
			bucket.Count++
		}
		buckets = append(buckets, bucket)
	}
	return buckets
}
