package models

// TimeRange scopes an analytics report.
type TimeRange string

const (
	RangeAll   TimeRange = "all"
	RangeMonth TimeRange = "month"
	RangeWeek  TimeRange = "week"
)

func (r TimeRange) Valid() bool {
	switch r {
	case RangeAll, RangeMonth, RangeWeek:
		return true
	}
	return false
}

type ProblemStat struct {
	Problem  string  `json:"problem"`
	Count    int     `json:"count"`
	Earnings float64 `json:"earnings"`
}

type MonthlyEarning struct {
	Month    string  `json:"month"` // "2006-01"
	Label    string  `json:"label"` // "Jan 2006"
	Earnings float64 `json:"earnings"`
	Count    int     `json:"count"`
}

// ShopAnalytics is the shop-facing earnings report.
type ShopAnalytics struct {
	ShopID            string           `json:"shopId"`
	TimeRange         TimeRange        `json:"timeRange"`
	TotalRequests     int              `json:"totalRequests"`
	CompletedRequests int              `json:"completedRequests"`
	PendingRequests   int              `json:"pendingRequests"`
	TotalEarnings     float64          `json:"totalEarnings"`
	AverageEarning    float64          `json:"averageEarning"`
	SuccessRate       int              `json:"successRate"`
	TopProblems       []ProblemStat    `json:"topProblems"`
	MonthlyEarnings   []MonthlyEarning `json:"monthlyEarnings"`
	RecentRequests    []ServiceRequest `json:"recentRequests"`
}
