package entities

import "time"

// PaperCounts - разбивка статей по статусам, типам и разделам (разделы только у одобренных).
type PaperCounts struct {
	Total       uint64            `json:"total"`
	ByStatus    map[string]uint64 `json:"by_status"`
	ByType      map[string]uint64 `json:"by_type"`
	ByPartition map[string]uint64 `json:"by_partition"`
}

func NewPaperCounts() PaperCounts {
	return PaperCounts{
		ByStatus: map[string]uint64{
			PaperStatusDraft: 0, PaperStatusPending: 0, PaperStatusApproved: 0, PaperStatusRejected: 0,
		},
		ByType: map[string]uint64{
			PaperTypeJournal: 0, PaperTypeConference: 0, PaperTypeDegree: 0,
		},
		ByPartition: map[string]uint64{
			"Q1": 0, "Q2": 0, "Q3": 0, "Q4": 0, PartitionNone: 0,
		},
	}
}

const PartitionNone = "none"

// Add учитывает count статей с данными статусом, типом и разделом.
func (c *PaperCounts) Add(status, paperType, partition string, count uint64) {
	c.Total += count
	c.ByStatus[status] += count
	c.ByType[paperType] += count
	if status == PaperStatusApproved {
		c.ByPartition[partition] += count
	}
}

type OverviewStats struct {
	Counts       PaperCounts    `json:"counts"`
	AuthorCount  uint64         `json:"author_count"`
	ApprovalRate float64        `json:"approval_rate"`
	TopAuthors   []RankingEntry `json:"top_authors"`
	RecentPapers []Paper        `json:"recent_papers"`
}

type TrendPoint struct {
	Period   string `json:"period"`
	Total    uint64 `json:"total"`
	Approved uint64 `json:"approved"`
	Pending  uint64 `json:"pending"`
	Rejected uint64 `json:"rejected"`
	Q1       uint64 `json:"q1"`
	Q2       uint64 `json:"q2"`
}

type DepartmentStats struct {
	DepartmentID   uint64 `json:"department_id"`
	DepartmentName string `json:"department_name"`
	Total          uint64 `json:"total"`
	Approved       uint64 `json:"approved"`
	Pending        uint64 `json:"pending"`
	Rejected       uint64 `json:"rejected"`
	Journal        uint64 `json:"journal"`
	Conference     uint64 `json:"conference"`
	Q1             uint64 `json:"q1"`
	Q2             uint64 `json:"q2"`
	ActiveUsers    uint64 `json:"active_users"`
	TotalUsers     uint64 `json:"total_users"`
}

type PersonalUser struct {
	ID             uint64     `json:"id"`
	Name           string     `json:"name"`
	Username       string     `json:"username"`
	DepartmentID   *uint64    `json:"department_id"`
	DepartmentName *string    `json:"department_name"`
	JoinDate       *time.Time `json:"join_date"`
}

type PersonalStats struct {
	User          PersonalUser `json:"user"`
	Counts        PaperCounts  `json:"counts"`
	MonthlyTrends []TrendPoint `json:"monthly_trends"`
}

type RankingEntry struct {
	Rank           int     `json:"rank"`
	UserID         uint64  `json:"user_id"`
	Name           string  `json:"name"`
	Username       string  `json:"username"`
	DepartmentName *string `json:"department_name"`
	Total          uint64  `json:"total"`
	Approved       uint64  `json:"approved"`
	Q1             uint64  `json:"q1"`
	Q2             uint64  `json:"q2"`
}
