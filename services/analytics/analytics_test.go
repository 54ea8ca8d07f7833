package analytics

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"repairdesk/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockFinder struct {
	rows  []models.ServiceRequest
	since *time.Time
}

func (m *MockFinder) FindForAnalytics(ctx context.Context, shopID string, since *time.Time) ([]models.ServiceRequest, error) {
	m.since = since
	out := []models.ServiceRequest{}
	for _, r := range m.rows {
		if r.ShopID != shopID {
			continue
		}
		if since != nil && r.CreatedAt.Before(*since) {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

var fixedNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func paid(problem string, amount float64, created time.Time) models.ServiceRequest {
	return models.ServiceRequest{
		ShopID:    "S",
		Problem:   problem,
		Status:    models.StatusPaid,
		Payment:   &models.Payment{Amount: amount, Status: models.PaymentPaid},
		CreatedAt: created,
	}
}

func withStatus(status models.RequestStatus, created time.Time) models.ServiceRequest {
	return models.ServiceRequest{ShopID: "S", Problem: "other", Status: status, CreatedAt: created}
}

func TestComputeEmptyHasZeroGuards(t *testing.T) {
	report := Compute(nil, fixedNow)

	assert.Equal(t, 0, report.TotalRequests)
	assert.Equal(t, 0.0, report.AverageEarning)
	assert.Equal(t, 0, report.SuccessRate)
	assert.Empty(t, report.TopProblems)
	assert.Empty(t, report.RecentRequests)
	assert.Len(t, report.MonthlyEarnings, trailingMonths)
}

func TestComputeCountsAndRates(t *testing.T) {
	day := 24 * time.Hour
	rows := []models.ServiceRequest{
		paid("screen cracked", 600, fixedNow.Add(-1*day)),
		paid("screen cracked", 400, fixedNow.Add(-2*day)),
		paid("battery", 300, fixedNow.Add(-3*day)),
		withStatus(models.StatusPending, fixedNow.Add(-4*day)),
		withStatus(models.StatusAccepted, fixedNow.Add(-5*day)),
		withStatus(models.StatusInProgress, fixedNow.Add(-6*day)),
		withStatus(models.StatusPaymentPending, fixedNow.Add(-7*day)),
		withStatus(models.StatusDeclined, fixedNow.Add(-8*day)),
		withStatus(models.StatusCompleted, fixedNow.Add(-9*day)),
	}

	report := Compute(rows, fixedNow)

	assert.Equal(t, 9, report.TotalRequests)
	assert.Equal(t, 3, report.CompletedRequests)
	assert.Equal(t, 4, report.PendingRequests)
	assert.Equal(t, 1300.0, report.TotalEarnings)
	assert.InDelta(t, 433.33, report.AverageEarning, 0.01)
	assert.Equal(t, 33, report.SuccessRate)

	require.Len(t, report.TopProblems, 2)
	assert.Equal(t, models.ProblemStat{Problem: "screen cracked", Count: 2, Earnings: 1000}, report.TopProblems[0])
	assert.Equal(t, models.ProblemStat{Problem: "battery", Count: 1, Earnings: 300}, report.TopProblems[1])
}

func TestComputeTopProblemsCapsAtFive(t *testing.T) {
	var rows []models.ServiceRequest
	for i := 0; i < 7; i++ {
		for j := 0; j <= i; j++ {
			rows = append(rows, paid(fmt.Sprintf("p%d", i), 10, fixedNow))
		}
	}

	report := Compute(rows, fixedNow)
	require.Len(t, report.TopProblems, topProblems)
	assert.Equal(t, "p6", report.TopProblems[0].Problem)
	assert.Equal(t, 7, report.TopProblems[0].Count)
	assert.Equal(t, "p2", report.TopProblems[4].Problem)
}

func TestComputeMonthlyBuckets(t *testing.T) {
	rows := []models.ServiceRequest{
		paid("a", 100, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)),
		paid("a", 50, time.Date(2025, 6, 14, 0, 0, 0, 0, time.UTC)),
		paid("a", 70, time.Date(2025, 5, 31, 23, 59, 0, 0, time.UTC)),
		paid("a", 20, time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)),
		paid("a", 999, time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)), // outside the window
		withStatus(models.StatusPaymentPending, time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)),
	}

	report := Compute(rows, fixedNow)
	require.Len(t, report.MonthlyEarnings, 6)

	months := []string{}
	for _, m := range report.MonthlyEarnings {
		months = append(months, m.Month)
	}
	assert.Equal(t, []string{"2025-01", "2025-02", "2025-03", "2025-04", "2025-05", "2025-06"}, months)
	assert.Equal(t, 20.0, report.MonthlyEarnings[0].Earnings)
	assert.Equal(t, 70.0, report.MonthlyEarnings[4].Earnings)
	assert.Equal(t, 150.0, report.MonthlyEarnings[5].Earnings)
	assert.Equal(t, 2, report.MonthlyEarnings[5].Count)
	assert.Equal(t, "Jun 2025", report.MonthlyEarnings[5].Label)
}

func TestComputeRecentRequestsNewestTen(t *testing.T) {
	var rows []models.ServiceRequest
	for i := 0; i < 15; i++ {
		rows = append(rows, withStatus(models.StatusPending, fixedNow.Add(-time.Duration(i)*time.Hour)))
	}
	// Reverse so the input is oldest first.
	for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
		rows[i], rows[j] = rows[j], rows[i]
	}

	report := Compute(rows, fixedNow)
	require.Len(t, report.RecentRequests, recentRequests)
	assert.Equal(t, fixedNow, report.RecentRequests[0].CreatedAt)
	assert.Equal(t, fixedNow.Add(-9*time.Hour), report.RecentRequests[9].CreatedAt)
}

func TestShopAnalyticsWindows(t *testing.T) {
	tests := []struct {
		timeRange models.TimeRange
		wantSince *time.Time
		wantTotal int
	}{
		{models.RangeAll, nil, 3},
		{"", nil, 3},
		{models.RangeMonth, ptr(time.Date(2025, 5, 15, 12, 0, 0, 0, time.UTC)), 2},
		{models.RangeWeek, ptr(time.Date(2025, 6, 8, 12, 0, 0, 0, time.UTC)), 1},
	}

	for _, tt := range tests {
		t.Run(string(tt.timeRange), func(t *testing.T) {
			finder := &MockFinder{rows: []models.ServiceRequest{
				paid("a", 10, fixedNow.AddDate(0, 0, -2)),
				paid("a", 10, fixedNow.AddDate(0, 0, -20)),
				paid("a", 10, fixedNow.AddDate(0, -3, 0)),
				{ShopID: "OTHER", Status: models.StatusPaid, CreatedAt: fixedNow},
			}}
			svc := NewDefaultAnalyticsService(finder, nil, 0, zap.NewNop())
			svc.Now = func() time.Time { return fixedNow }

			report, err := svc.ShopAnalytics(context.Background(), "S", tt.timeRange)
			require.NoError(t, err)
			assert.Equal(t, tt.wantSince, finder.since)
			assert.Equal(t, tt.wantTotal, report.TotalRequests)
			assert.Equal(t, "S", report.ShopID)
		})
	}
}

func TestShopAnalyticsRejectsUnknownRange(t *testing.T) {
	svc := NewDefaultAnalyticsService(&MockFinder{}, nil, 0, zap.NewNop())
	_, err := svc.ShopAnalytics(context.Background(), "S", "year")
	assert.True(t, errors.Is(err, models.ErrValidation))
}

func TestInvalidateWithoutCacheIsNoop(t *testing.T) {
	svc := NewDefaultAnalyticsService(&MockFinder{}, nil, time.Minute, zap.NewNop())
	assert.NotPanics(t, func() { svc.InvalidateShop(context.Background(), "S") })
	assert.Equal(t, "analytics:S:week", cacheKey("S", models.RangeWeek))
}

func ptr(t time.Time) *time.Time { return &t }
