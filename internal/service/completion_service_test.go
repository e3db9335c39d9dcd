package service

import (
	"context"
	"coursetrack_backend/pkg/logger"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type recordingNotifier struct {
	mu     sync.Mutex
	events []CompletionEvent
}

func (n *recordingNotifier) Notify(ctx context.Context, event CompletionEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.events)
}

func TestViewTrackerNotifiesOnceOnCompletion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	course, l := f.course(t, 1, 100, 3)
	notifier := &recordingNotifier{}
	tracker := NewViewTracker(f.progress, notifier)

	summary, completed, err := tracker.TrackView(ctx, 7, course.ID, l[0])
	require.NoError(t, err)
	assert.False(t, completed)
	assert.Equal(t, 33, summary.PercentComplete)

	_, completed, err = tracker.TrackView(ctx, 7, course.ID, l[1])
	require.NoError(t, err)
	assert.False(t, completed)

	summary, completed, err = tracker.TrackView(ctx, 7, course.ID, l[2])
	require.NoError(t, err)
	assert.True(t, completed)
	assert.True(t, summary.IsComplete)
	require.Equal(t, 1, notifier.count())
	assert.Equal(t, uint(7), notifier.events[0].StudentID)
	assert.Equal(t, course.ID, notifier.events[0].CourseID)

	// 已完成后重复观看不再触发
	_, completed, err = tracker.TrackView(ctx, 7, course.ID, l[0])
	require.NoError(t, err)
	assert.False(t, completed)
	assert.Equal(t, 1, notifier.count())

	// 重置后重新学完会再次触发
	_, err = f.progress.ResetCourse(ctx, 7, course.ID)
	require.NoError(t, err)
	for _, lecture := range l {
		_, _, err = tracker.TrackView(ctx, 7, course.ID, lecture)
		require.NoError(t, err)
	}
	assert.Equal(t, 2, notifier.count())
}

func TestViewTrackerPropagatesInvalidLecture(t *testing.T) {
	f := newFixture(t)
	course, _ := f.course(t, 1, 100, 1)
	notifier := &recordingNotifier{}
	tracker := NewViewTracker(f.progress, notifier)

	_, completed, err := tracker.TrackView(context.Background(), 7, course.ID, 9999)
	assert.Error(t, err)
	assert.False(t, completed)
	assert.Equal(t, 0, notifier.count())
}

func TestCompletionNotifierWithoutRedis(t *testing.T) {
	n := NewCompletionNotifier(nil, "")
	assert.Equal(t, "course_completed", n.Channel)
	assert.Nil(t, n.Redis)
	assert.NotPanics(t, func() {
		n.Notify(context.Background(), CompletionEvent{StudentID: 1, CourseID: 2})
	})
}

func TestViewTrackerConcurrentCompletionNotifiesOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	course, l := f.course(t, 1, 100, 2)
	notifier := &recordingNotifier{}
	tracker := NewViewTracker(f.progress, notifier)

	for round := 1; round <= 5; round++ {
		_, err := f.progress.ResetCourse(ctx, 7, course.ID)
		require.NoError(t, err)

		var wg sync.WaitGroup
		completions := make(chan bool, len(l))
		for _, lecture := range l {
			wg.Add(1)
			go func(lecture uint) {
				defer wg.Done()
				_, completed, err := tracker.TrackView(ctx, 7, course.ID, lecture)
				assert.NoError(t, err)
				completions <- completed
			}(lecture)
		}
		wg.Wait()
		close(completions)

		justCompleted := 0
		for c := range completions {
			if c {
				justCompleted++
			}
		}
		assert.Equal(t, 1, justCompleted, "round %d", round)
		assert.Equal(t, round, notifier.count())
	}
}

func TestCompletionNotifierPublishes(t *testing.T) {
	rdb := newFakeRedis()
	n := &CompletionNotifier{Redis: rdb, Channel: "course_completed"}
	at := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)

	n.Notify(context.Background(), CompletionEvent{StudentID: 7, CourseID: 3, CompletedAt: at})

	require.Len(t, rdb.published, 1)
	assert.Equal(t, "course_completed", rdb.published[0].channel)
	var event CompletionEvent
	require.NoError(t, json.Unmarshal(rdb.published[0].payload, &event))
	assert.Equal(t, CompletionEvent{StudentID: 7, CourseID: 3, CompletedAt: at}, event)
}

func TestCompletionNotifierLogsPublishFailure(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	prev := logger.Log
	logger.Log = zap.New(core)
	t.Cleanup(func() { logger.Log = prev })

	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 100 * time.Millisecond, MaxRetries: -1})
	defer rdb.Close()
	n := NewCompletionNotifier(rdb, "done")
	require.NotNil(t, n.Redis)

	assert.NotPanics(t, func() {
		n.Notify(context.Background(), CompletionEvent{StudentID: 1, CourseID: 2})
	})
	entries := logs.FilterMessage("Failed to publish completion event").All()
	require.Len(t, entries, 1)
	assert.Equal(t, uint64(2), entries[0].ContextMap()["courseId"])
}
