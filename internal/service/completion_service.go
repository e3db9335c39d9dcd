package service

import (
	"context"
	"coursetrack_backend/internal/model"
	"coursetrack_backend/pkg/logger"
	"coursetrack_backend/pkg/monitoring"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// CompletionEvent 课程完成事件，由通知层负责投递（证书、邮件、前端提示等）
type CompletionEvent struct {
	StudentID   uint      `json:"studentId"`
	CourseID    uint      `json:"courseId"`
	CompletedAt time.Time `json:"completedAt"`
}

// CompletionNotifier 将完成事件写日志并通过 Redis 发布；未配置 Redis 时只写日志
type CompletionNotifier struct {
	Redis   redis.Cmdable
	Channel string
}

func NewCompletionNotifier(rdb *redis.Client, channel string) *CompletionNotifier {
	if channel == "" {
		channel = "course_completed"
	}
	n := &CompletionNotifier{Channel: channel}
	// nil 的 *redis.Client 不能直接赋给接口字段
	if rdb != nil {
		n.Redis = rdb
	}
	return n
}

// Notify 投递失败只记录日志，不影响观看请求
func (n *CompletionNotifier) Notify(ctx context.Context, event CompletionEvent) {
	monitoring.CourseCompletions.Inc()
	logger.Log.Info("Course completed",
		zap.Uint("studentId", event.StudentID),
		zap.Uint("courseId", event.CourseID),
		zap.Time("completedAt", event.CompletedAt))

	if n.Redis == nil {
		return
	}

	payload, err := json.Marshal(event)
	if err != nil {
		logger.Log.Error("Failed to encode completion event", zap.Error(err))
		return
	}
	if err := n.Redis.Publish(ctx, n.Channel, payload).Err(); err != nil {
		logger.Log.Warn("Failed to publish completion event",
			zap.Uint("studentId", event.StudentID),
			zap.Uint("courseId", event.CourseID),
			zap.Error(err))
	}
}

// Notifier 便于测试替换
type Notifier interface {
	Notify(ctx context.Context, event CompletionEvent)
}

// ViewTracker 观看事件的调用方：在同一把进度锁内记录观看并比较前后摘要，
// 只在 isComplete 由 false 变为 true 时触发一次完成通知
type ViewTracker struct {
	Progress *ProgressService
	Notifier Notifier
	now      func() time.Time
}

func NewViewTracker(progress *ProgressService, notifier Notifier) *ViewTracker {
	return &ViewTracker{Progress: progress, Notifier: notifier, now: time.Now}
}

// TrackView 返回观看后的摘要以及本次是否刚好完成课程。
// 同一学生多端并发看完最后几节课时只有一个请求返回 true
func (t *ViewTracker) TrackView(ctx context.Context, studentID, courseID, lectureID uint) (*model.CourseProgressSummary, bool, error) {
	prev, next, err := t.Progress.RecordViewTransition(ctx, studentID, courseID, lectureID)
	if err != nil {
		return nil, false, err
	}

	completed := CompletionEdge(prev, next)
	if completed && t.Notifier != nil {
		t.Notifier.Notify(ctx, CompletionEvent{
			StudentID:   studentID,
			CourseID:    courseID,
			CompletedAt: t.now(),
		})
	}
	return next, completed, nil
}
