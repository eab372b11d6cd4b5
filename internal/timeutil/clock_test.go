package timeutil

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRealClockIsUTC(t *testing.T) {
	before := time.Now()
	now := RealClock{}.Now()
	assert.Equal(t, time.UTC, now.Location())
	assert.False(t, now.Before(before.Truncate(time.Second)))
}

func TestMockClockAdvance(t *testing.T) {
	start := time.Date(2023, 2, 17, 20, 18, 44, 0, time.UTC)
	clock := NewMockClock(start)
	assert.Equal(t, start, clock.Now())

	clock.Advance(90 * time.Second)
	assert.Equal(t, start.Add(90*time.Second), clock.Now())
}

func TestMockClockConcurrentAdvance(t *testing.T) {
	clock := NewMockClock(time.Unix(0, 0))
	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			clock.Advance(time.Second)
		}()
	}
	wg.Wait()
	assert.Equal(t, int64(10), clock.Now().Unix())
}

func TestRunStamp(t *testing.T) {
	tests := []struct {
		in   time.Time
		want string
	}{
		{time.Date(2026, 1, 15, 10, 30, 0, 0, time.UTC), "20260115T103000Z"},
		{time.Date(2023, 2, 17, 21, 18, 44, 0, time.FixedZone("CET", 3600)), "20230217T201844Z"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RunStamp(tt.in))
	}
}
