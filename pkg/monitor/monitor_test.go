package monitor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func TestMonitor_DailyRolloverAtUTCMidnight(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 5, 1, 23, 50, 0, 0, time.UTC)}
	m := New(clock.Now)

	m.RecordRequest(false)
	m.RecordRequest(true)
	snap := m.Snapshot()
	assert.Equal(t, uint64(2), snap.DailyRequests)
	assert.Equal(t, uint64(1), snap.DailyErrors)

	clock.Advance(15 * time.Minute)
	m.RecordRequest(false)

	snap = m.Snapshot()
	assert.Equal(t, "2024-05-02", snap.Day)
	assert.Equal(t, uint64(1), snap.DailyRequests)
	assert.Equal(t, uint64(0), snap.DailyErrors)
	assert.Equal(t, uint64(3), snap.TotalRequests)
}

func TestMonitor_OnlineUsersExpire(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)}
	m := New(clock.Now)

	m.UserSeen(1)
	m.UserSeen(2)
	m.UserSeen(2)
	assert.Equal(t, 2, m.Snapshot().OnlineUsers)

	m.UserOffline(1)
	assert.Equal(t, 1, m.Snapshot().OnlineUsers)

	clock.Advance(OnlineWindow + time.Second)
	assert.Equal(t, 0, m.Snapshot().OnlineUsers)
}

func TestMonitor_Reset(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)}
	m := New(clock.Now)

	m.UserSeen(7)
	m.RecordRequest(true)
	m.Reset()

	snap := m.Snapshot()
	assert.Zero(t, snap.OnlineUsers)
	assert.Zero(t, snap.DailyRequests)
	assert.Zero(t, snap.DailyErrors)
	assert.Equal(t, uint64(1), snap.TotalRequests)
}
