package monitor

import (
	"runtime"
	"sync"
	"time"
)

// OnlineWindow - пользователь считается онлайн, если был активен за это время.
const OnlineWindow = 15 * time.Minute

type Clock func() time.Time

// Monitor - счётчики запросов и онлайн-пользователей за текущие UTC-сутки.
type Monitor struct {
	mu        sync.Mutex
	now       Clock
	startedAt time.Time
	day       string

	lastSeen      map[uint64]time.Time
	dailyRequests uint64
	dailyErrors   uint64
	totalRequests uint64
}

type Snapshot struct {
	OnlineUsers   int     `json:"online_users"`
	DailyRequests uint64  `json:"daily_requests"`
	DailyErrors   uint64  `json:"daily_errors"`
	TotalRequests uint64  `json:"total_requests"`
	QPS           float64 `json:"qps"`
	UptimeSeconds int64   `json:"uptime_seconds"`
	Goroutines    int     `json:"goroutines"`
	MemoryAllocMB float64 `json:"memory_alloc_mb"`
	Day           string  `json:"day"`
}

func New(clock Clock) *Monitor {
	if clock == nil {
		clock = time.Now
	}
	now := clock()
	return &Monitor{
		now:       clock,
		startedAt: now,
		day:       dayKey(now),
		lastSeen:  make(map[uint64]time.Time),
	}
}

func dayKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// rollover обнуляет дневные счётчики при смене UTC-суток. Вызывается под mu.
func (m *Monitor) rollover(now time.Time) {
	if d := dayKey(now); d != m.day {
		m.day = d
		m.dailyRequests = 0
		m.dailyErrors = 0
	}
}

func (m *Monitor) RecordRequest(isError bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.rollover(m.now())
	m.dailyRequests++
	m.totalRequests++
	if isError {
		m.dailyErrors++
	}
}

func (m *Monitor) UserSeen(userID uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastSeen[userID] = m.now()
}

func (m *Monitor) UserOffline(userID uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.lastSeen, userID)
}

// Reset обнуляет дневные счётчики и список онлайн-пользователей.
func (m *Monitor) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.day = dayKey(m.now())
	m.dailyRequests = 0
	m.dailyErrors = 0
	m.lastSeen = make(map[uint64]time.Time)
}

func (m *Monitor) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	m.rollover(now)

	online := 0
	for id, seen := range m.lastSeen {
		if now.Sub(seen) <= OnlineWindow {
			online++
		} else {
			delete(m.lastSeen, id)
		}
	}

	uptime := now.Sub(m.startedAt)
	qps := 0.0
	if uptime > 0 {
		qps = float64(m.totalRequests) / uptime.Seconds()
	}

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	return Snapshot{
		OnlineUsers:   online,
		DailyRequests: m.dailyRequests,
		DailyErrors:   m.dailyErrors,
		TotalRequests: m.totalRequests,
		QPS:           qps,
		UptimeSeconds: int64(uptime.Seconds()),
		Goroutines:    runtime.NumGoroutine(),
		MemoryAllocMB: float64(mem.Alloc) / 1024 / 1024,
		Day:           m.day,
	}
}
