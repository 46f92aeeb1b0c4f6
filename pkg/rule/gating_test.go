package rule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func gday(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

func TestShouldRunAlwaysEligibleWithoutPriorRun(t *testing.T) {
	assert.True(t, ShouldRun(Monthly, nil, gday(2024, 1, 1)))
}

func TestShouldRunOnceNeverRunsAgainAfterItsFirstRun(t *testing.T) {
	start := gday(2024, 1, 1)
	assert.False(t, ShouldRun(Once, &start, gday(2024, 1, 2)))
	assert.False(t, ShouldRun(Once, &start, gday(2025, 1, 1)))
}

func TestShouldRunOnceWithoutPriorRunIsEligible(t *testing.T) {
	assert.True(t, ShouldRun(Once, nil, gday(2024, 1, 1)))
}

func TestShouldRunGatesBeforeFrequencyElapses(t *testing.T) {
	start := gday(2024, 1, 1)
	assert.False(t, ShouldRun(Weekly, &start, gday(2024, 1, 5)))
}

func TestShouldRunEligibleOnceFrequencyElapses(t *testing.T) {
	start := gday(2024, 1, 1)
	assert.True(t, ShouldRun(Weekly, &start, gday(2024, 1, 8)))
}

func TestShouldRunExactBoundaryIsEligible(t *testing.T) {
	start := gday(2024, 1, 1)
	assert.True(t, ShouldRun(Daily, &start, gday(2024, 1, 2)))
}
