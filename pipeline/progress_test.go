package pipeline

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgressTrackerReports(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 4, 1)
	tracker.Start()

	tracker.Increment(1, "a.pdf")
	tracker.Increment(1, "b.pdf")

	current, label := tracker.Current()
	assert.Equal(t, 2, current)
	assert.Equal(t, "b.pdf", label)

	tracker.Finish()

	out := buf.String()
	assert.Contains(t, out, "Progress: 1/4 (25.0%)")
	assert.Contains(t, out, "a.pdf")
	assert.Contains(t, out, "Progress: 4/4 (100.0%)")
	assert.True(t, strings.HasSuffix(out, "\n"), "final progress ends with a newline")
}

func TestProgressTrackerReportInterval(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 10, 5)
	tracker.Start()

	for i := 0; i < 4; i++ {
		tracker.Increment(1, "doc")
	}
	assert.Empty(t, buf.String(), "below the interval nothing is reported")

	tracker.Increment(1, "doc")
	assert.Contains(t, buf.String(), "Progress: 5/10")
}

func TestProgressTrackerClampsAtTotal(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 2, 1)
	tracker.Start()

	tracker.Increment(5, "doc")
	current, _ := tracker.Current()
	assert.Equal(t, 2, current)
}

func TestProgressTrackerIgnoredBeforeStart(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 2, 1)

	tracker.Increment(1, "doc")
	tracker.Finish()

	current, _ := tracker.Current()
	assert.Equal(t, 0, current)
	assert.Empty(t, buf.String())
}

func TestProgressTrackerConcurrentIncrements(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 100, 10)
	tracker.Start()

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tracker.Increment(1, "doc")
		}()
	}
	wg.Wait()

	current, _ := tracker.Current()
	require.Equal(t, 100, current)
}
