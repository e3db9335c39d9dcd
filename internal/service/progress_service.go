package service

import (
	"context"
	"coursetrack_backend/internal/model"
	"coursetrack_backend/internal/util"
	"coursetrack_backend/pkg/lock"
	"coursetrack_backend/pkg/logger"
	"coursetrack_backend/pkg/monitoring"
	"coursetrack_backend/pkg/tracing"
	"fmt"
	"math"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ProgressService 计算续播位置、完成状态，并执行幂等的进度变更。
// 摘要每次都从存储实时计算，不做缓存
type ProgressService struct {
	Progress   ProgressStore
	Curriculum CurriculumProvider
	Locker     lock.Locker
}

func NewProgressService(progress ProgressStore, curriculum CurriculumProvider, locker lock.Locker) *ProgressService {
	if locker == nil {
		locker = lock.NewMemoryLocker()
	}
	return &ProgressService{
		Progress:   progress,
		Curriculum: curriculum,
		Locker:     locker,
	}
}

// RecordView 标记某节课已观看，重复调用不会改变状态也不会报错
func (s *ProgressService) RecordView(ctx context.Context, studentID, courseID, lectureID uint) error {
	ctx, span := tracing.Tracer.Start(ctx, "ProgressService.RecordView")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("student.id", int64(studentID)),
		attribute.Int64("course.id", int64(courseID)),
		attribute.Int64("lecture.id", int64(lectureID)),
	)

	if _, _, err := s.recordView(ctx, studentID, courseID, lectureID, false); err != nil {
		tracing.RecordError(span, err)
		return err
	}
	return nil
}

// RecordViewTransition 与 RecordView 相同，另外返回写入前后的摘要。
// 两次摘要与写入在同一把 (学生, 课程) 锁内完成，两个会话同时看完最后几节课时
// 只有一次调用会得到 prev 未完成、next 已完成
func (s *ProgressService) RecordViewTransition(ctx context.Context, studentID, courseID, lectureID uint) (prev, next *model.CourseProgressSummary, err error) {
	ctx, span := tracing.Tracer.Start(ctx, "ProgressService.RecordViewTransition")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("student.id", int64(studentID)),
		attribute.Int64("course.id", int64(courseID)),
		attribute.Int64("lecture.id", int64(lectureID)),
	)

	prev, next, err = s.recordView(ctx, studentID, courseID, lectureID, true)
	if err != nil {
		tracing.RecordError(span, err)
		return nil, nil, err
	}
	return prev, next, nil
}

func (s *ProgressService) recordView(ctx context.Context, studentID, courseID, lectureID uint, summarize bool) (prev, next *model.CourseProgressSummary, err error) {
	curriculum, err := s.Curriculum.GetCurriculum(ctx, courseID)
	if err != nil {
		monitoring.LectureViews.WithLabelValues("error").Inc()
		return nil, nil, storageError("load curriculum", err)
	}

	if !containsLecture(curriculum, lectureID) {
		monitoring.LectureViews.WithLabelValues("invalid").Inc()
		return nil, nil, util.ErrInvalidLecture
	}

	// 与 ResetCourse 共用同一把锁，重置不会插在写入与回读之间
	unlock, err := s.Locker.Acquire(ctx, progressLockKey(studentID, courseID))
	if err != nil {
		monitoring.LectureViews.WithLabelValues("error").Inc()
		return nil, nil, storageError("acquire progress lock", err)
	}
	defer unlock()

	if summarize {
		if prev, err = s.summarize(ctx, studentID, courseID, curriculum); err != nil {
			monitoring.LectureViews.WithLabelValues("error").Inc()
			return nil, nil, err
		}
	}

	if _, err := s.Progress.UpsertViewed(ctx, studentID, courseID, lectureID); err != nil {
		logger.Log.Error("Failed to mark lecture viewed",
			zap.Uint("studentId", studentID),
			zap.Uint("courseId", courseID),
			zap.Uint("lectureId", lectureID),
			zap.Error(err))
		monitoring.LectureViews.WithLabelValues("error").Inc()
		return nil, nil, storageError("upsert viewed", err)
	}
	monitoring.LectureViews.WithLabelValues("ok").Inc()

	if summarize {
		if next, err = s.summarize(ctx, studentID, courseID, curriculum); err != nil {
			return nil, nil, err
		}
	}
	return prev, next, nil
}

// ComputeSummary 从当前观看记录和课程大纲计算进度摘要
func (s *ProgressService) ComputeSummary(ctx context.Context, studentID, courseID uint) (*model.CourseProgressSummary, error) {
	ctx, span := tracing.Tracer.Start(ctx, "ProgressService.ComputeSummary")
	defer span.End()

	curriculum, err := s.Curriculum.GetCurriculum(ctx, courseID)
	if err != nil {
		err = storageError("load curriculum", err)
		tracing.RecordError(span, err)
		return nil, err
	}

	summary, err := s.summarize(ctx, studentID, courseID, curriculum)
	if err != nil {
		tracing.RecordError(span, err)
		return nil, err
	}
	return summary, nil
}

func (s *ProgressService) summarize(ctx context.Context, studentID, courseID uint, curriculum []uint) (*model.CourseProgressSummary, error) {
	records, err := s.Progress.GetProgress(ctx, studentID, courseID)
	if err != nil {
		return nil, storageError("load progress", err)
	}
	summary := Summarize(studentID, courseID, curriculum, records)
	return &summary, nil
}

// ResetCourse 清空学生在该课程的全部进度并返回新的摘要。
// 与同一 (学生, 课程) 的观看写入通过锁串行执行
func (s *ProgressService) ResetCourse(ctx context.Context, studentID, courseID uint) (*model.CourseProgressSummary, error) {
	ctx, span := tracing.Tracer.Start(ctx, "ProgressService.ResetCourse")
	defer span.End()

	// 先确认课程存在，避免为不存在的课程加锁
	if _, err := s.Curriculum.GetCurriculum(ctx, courseID); err != nil {
		err = storageError("load curriculum", err)
		tracing.RecordError(span, err)
		return nil, err
	}

	unlock, err := s.Locker.Acquire(ctx, progressLockKey(studentID, courseID))
	if err != nil {
		err = storageError("acquire progress lock", err)
		tracing.RecordError(span, err)
		return nil, err
	}
	err = s.Progress.ResetAll(ctx, studentID, courseID)
	unlock()
	if err != nil {
		logger.Log.Error("Failed to reset course progress",
			zap.Uint("studentId", studentID),
			zap.Uint("courseId", courseID),
			zap.Error(err))
		err = storageError("reset progress", err)
		tracing.RecordError(span, err)
		return nil, err
	}

	monitoring.ProgressResets.Inc()
	logger.Log.Info("Course progress reset", zap.Uint("studentId", studentID), zap.Uint("courseId", courseID))

	return s.ComputeSummary(ctx, studentID, courseID)
}

// LectureStates 返回按大纲顺序排列的每节课观看状态
func (s *ProgressService) LectureStates(ctx context.Context, studentID, courseID uint) ([]model.LectureState, error) {
	curriculum, err := s.Curriculum.GetCurriculum(ctx, courseID)
	if err != nil {
		return nil, storageError("load curriculum", err)
	}

	records, err := s.Progress.GetProgress(ctx, studentID, courseID)
	if err != nil {
		return nil, storageError("load progress", err)
	}

	viewed := viewedIndex(records)
	states := make([]model.LectureState, 0, len(curriculum))
	for i, lectureID := range curriculum {
		state := model.LectureState{LectureID: lectureID, Position: i + 1}
		if rec, ok := viewed[lectureID]; ok {
			state.Viewed = true
			state.ViewedAt = rec.ViewedAt
		}
		states = append(states, state)
	}
	return states, nil
}

// Summarize 纯函数：由有序大纲和观看记录得出摘要。
// 不在大纲中的记录（章节已被删除）不参与计算
func Summarize(studentID, courseID uint, curriculum []uint, records []model.LectureProgress) model.CourseProgressSummary {
	summary := model.CourseProgressSummary{
		CourseID:      courseID,
		StudentID:     studentID,
		TotalLectures: len(curriculum),
	}
	if len(curriculum) == 0 {
		return summary
	}

	viewed := viewedIndex(records)
	var resume uint
	for _, lectureID := range curriculum {
		if _, ok := viewed[lectureID]; ok {
			summary.ViewedLectures++
			continue
		}
		if resume == 0 {
			resume = lectureID
		}
	}

	summary.PercentComplete = int(math.Round(100 * float64(summary.ViewedLectures) / float64(summary.TotalLectures)))
	summary.IsComplete = summary.ViewedLectures == summary.TotalLectures

	// 全部看完后从第一节开始重看
	if summary.IsComplete {
		resume = curriculum[0]
	}
	summary.ResumeLectureID = resume
	return summary
}

// CompletionEdge 比较写入前后的摘要，只有从未完成变为完成时返回 true
func CompletionEdge(prev, next *model.CourseProgressSummary) bool {
	if next == nil || !next.IsComplete {
		return false
	}
	return prev == nil || !prev.IsComplete
}

func viewedIndex(records []model.LectureProgress) map[uint]model.LectureProgress {
	idx := make(map[uint]model.LectureProgress, len(records))
	for _, rec := range records {
		if rec.Viewed {
			idx[rec.LectureID] = rec
		}
	}
	return idx
}

func containsLecture(curriculum []uint, lectureID uint) bool {
	for _, id := range curriculum {
		if id == lectureID {
			return true
		}
	}
	return false
}

func progressLockKey(studentID, courseID uint) string {
	return fmt.Sprintf("progress:%d:%d", studentID, courseID)
}
