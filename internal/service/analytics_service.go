package service

import (
	"context"
	"coursetrack_backend/internal/model"
	"coursetrack_backend/internal/util"
	"coursetrack_backend/pkg/monitoring"
	"coursetrack_backend/pkg/tracing"
	"sort"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
)

// EnrollmentScope 最近选课查询的范围，CourseID 与 InstructorID 二选一
type EnrollmentScope struct {
	CourseID     uint
	InstructorID uint
}

// AnalyticsService 统计全部在读时从选课记录和进度摘要重新计算，不维护计数器
type AnalyticsService struct {
	Courses     CourseCatalog
	Enrollments EnrollmentStore
	Progress    *ProgressService

	recentDefaultLimit atomic.Int64
	recentMaxLimit     atomic.Int64
	concurrency        atomic.Int64
}

func NewAnalyticsService(courses CourseCatalog, enrollments EnrollmentStore, progress *ProgressService) *AnalyticsService {
	s := &AnalyticsService{
		Courses:     courses,
		Enrollments: enrollments,
		Progress:    progress,
	}
	s.SetLimits(10, 100, 8)
	return s
}

// SetLimits 设置最近选课条数和摘要计算并发度，支持配置热更新
func (s *AnalyticsService) SetLimits(recentDefault, recentMax, concurrency int) {
	if recentDefault <= 0 {
		recentDefault = 10
	}
	if recentMax < recentDefault {
		recentMax = recentDefault
	}
	if concurrency <= 0 {
		concurrency = 1
	}
	s.recentDefaultLimit.Store(int64(recentDefault))
	s.recentMaxLimit.Store(int64(recentMax))
	s.concurrency.Store(int64(concurrency))
}

// CourseStats 单门课程的学生数、收入、平均评分和完课率
func (s *AnalyticsService) CourseStats(ctx context.Context, courseID uint) (*model.CourseStats, error) {
	ctx, span := tracing.Tracer.Start(ctx, "AnalyticsService.CourseStats")
	defer span.End()
	span.SetAttributes(attribute.Int64("course.id", int64(courseID)))
	defer monitoring.ObserveSince("course_stats", time.Now())

	course, err := s.Courses.GetCourse(ctx, courseID)
	if err != nil {
		err = storageError("load course", err)
		tracing.RecordError(span, err)
		return nil, err
	}

	stats, err := s.courseStats(ctx, course)
	if err != nil {
		tracing.RecordError(span, err)
		return nil, err
	}
	return stats, nil
}

// InstructorStats 汇总教师名下全部课程，平均评分按评分人数加权
func (s *AnalyticsService) InstructorStats(ctx context.Context, instructorID uint) (*model.InstructorStats, error) {
	ctx, span := tracing.Tracer.Start(ctx, "AnalyticsService.InstructorStats")
	defer span.End()
	defer monitoring.ObserveSince("instructor_stats", time.Now())

	courses, err := s.Courses.ListByInstructor(ctx, instructorID)
	if err != nil {
		err = storageError("list instructor courses", err)
		tracing.RecordError(span, err)
		return nil, err
	}

	perCourse, err := s.statsForCourses(ctx, courses)
	if err != nil {
		tracing.RecordError(span, err)
		return nil, err
	}

	total := rollUp(perCourse)
	return &model.InstructorStats{
		InstructorID:      instructorID,
		TotalCourses:      len(courses),
		TotalStudents:     total.TotalStudents,
		TotalRevenue:      total.TotalRevenue,
		AverageRating:     total.AverageRating,
		RatedEnrollments:  total.RatedEnrollments,
		CompletedStudents: total.CompletedStudents,
		CompletionRate:    total.CompletionRate,
		Courses:           perCourse,
	}, nil
}

// PlatformStats 全平台汇总（管理员视图）
func (s *AnalyticsService) PlatformStats(ctx context.Context) (*model.PlatformStats, error) {
	ctx, span := tracing.Tracer.Start(ctx, "AnalyticsService.PlatformStats")
	defer span.End()
	defer monitoring.ObserveSince("platform_stats", time.Now())

	courses, err := s.Courses.ListAll(ctx)
	if err != nil {
		err = storageError("list courses", err)
		tracing.RecordError(span, err)
		return nil, err
	}

	perCourse, err := s.statsForCourses(ctx, courses)
	if err != nil {
		tracing.RecordError(span, err)
		return nil, err
	}

	total := rollUp(perCourse)
	return &model.PlatformStats{
		TotalCourses:      len(courses),
		TotalEnrollments:  total.TotalStudents,
		TotalRevenue:      total.TotalRevenue,
		AverageRating:     total.AverageRating,
		RatedEnrollments:  total.RatedEnrollments,
		CompletedStudents: total.CompletedStudents,
		CompletionRate:    total.CompletionRate,
	}, nil
}

// RecentEnrollments 按选课时间倒序返回最近的记录，时间相同按插入顺序。
// limit 非正数时取默认条数，超过上限时按上限截断
func (s *AnalyticsService) RecentEnrollments(ctx context.Context, scope EnrollmentScope, limit int) ([]model.Enrollment, error) {
	if (scope.CourseID == 0) == (scope.InstructorID == 0) {
		return nil, util.ErrInvalidScope
	}
	limit = s.clampLimit(limit)

	var courseIDs []uint
	if scope.CourseID != 0 {
		if _, err := s.Courses.GetCourse(ctx, scope.CourseID); err != nil {
			return nil, storageError("load course", err)
		}
		courseIDs = []uint{scope.CourseID}
	} else {
		courses, err := s.Courses.ListByInstructor(ctx, scope.InstructorID)
		if err != nil {
			return nil, storageError("list instructor courses", err)
		}
		for _, c := range courses {
			courseIDs = append(courseIDs, c.ID)
		}
	}

	enrollments, err := s.Enrollments.ListRecent(ctx, courseIDs, limit)
	if err != nil {
		return nil, storageError("list recent enrollments", err)
	}
	sortRecent(enrollments)
	return enrollments, nil
}

// RecentEnrollmentsAll 全平台最近选课
func (s *AnalyticsService) RecentEnrollmentsAll(ctx context.Context, limit int) ([]model.Enrollment, error) {
	enrollments, err := s.Enrollments.ListRecentAll(ctx, s.clampLimit(limit))
	if err != nil {
		return nil, storageError("list recent enrollments", err)
	}
	sortRecent(enrollments)
	return enrollments, nil
}

func (s *AnalyticsService) clampLimit(limit int) int {
	if limit <= 0 {
		return int(s.recentDefaultLimit.Load())
	}
	if maxLimit := int(s.recentMaxLimit.Load()); limit > maxLimit {
		return maxLimit
	}
	return limit
}

func (s *AnalyticsService) statsForCourses(ctx context.Context, courses []model.Course) ([]model.CourseStats, error) {
	perCourse := make([]model.CourseStats, 0, len(courses))
	for i := range courses {
		stats, err := s.courseStats(ctx, &courses[i])
		if err != nil {
			return nil, err
		}
		perCourse = append(perCourse, *stats)
	}
	return perCourse, nil
}

func (s *AnalyticsService) courseStats(ctx context.Context, course *model.Course) (*model.CourseStats, error) {
	enrollments, err := s.Enrollments.ListByCourse(ctx, course.ID)
	if err != nil {
		return nil, storageError("list course enrollments", err)
	}

	completed, err := s.countCompleted(ctx, course.ID, enrollments)
	if err != nil {
		return nil, err
	}

	stats := BuildCourseStats(course.ID, enrollments, completed)
	stats.Title = course.Title
	return &stats, nil
}

// countCompleted 并发计算每个学生的进度摘要，任何一个失败则整体失败
func (s *AnalyticsService) countCompleted(ctx context.Context, courseID uint, enrollments []model.Enrollment) (int, error) {
	var completed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(int(s.concurrency.Load()))
	for _, e := range enrollments {
		studentID := e.StudentID
		g.Go(func() error {
			summary, err := s.Progress.ComputeSummary(gctx, studentID, courseID)
			if err != nil {
				return err
			}
			if summary.IsComplete {
				completed.Add(1)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}
	return int(completed.Load()), nil
}

// BuildCourseStats 纯函数：收入按成交价累加，无评分时平均分为 N/A，无学生时完课率为 0
func BuildCourseStats(courseID uint, enrollments []model.Enrollment, completed int) model.CourseStats {
	stats := model.CourseStats{
		CourseID:          courseID,
		TotalStudents:     len(enrollments),
		CompletedStudents: completed,
	}
	for _, e := range enrollments {
		stats.TotalRevenue += e.PriceAtEnrollment
		if e.Rating != nil {
			stats.RatingSum += int64(*e.Rating)
			stats.RatedEnrollments++
		}
	}
	stats.AverageRating = model.NewAverageRating(stats.RatingSum, stats.RatedEnrollments)
	if stats.TotalStudents > 0 {
		stats.CompletionRate = float64(completed) / float64(stats.TotalStudents)
	}
	return stats
}

// rollUp 跨课程汇总：评分按评分人数加权，完课率按学生数加权
func rollUp(perCourse []model.CourseStats) model.CourseStats {
	var total model.CourseStats
	for _, c := range perCourse {
		total.TotalStudents += c.TotalStudents
		total.TotalRevenue += c.TotalRevenue
		total.RatingSum += c.RatingSum
		total.RatedEnrollments += c.RatedEnrollments
		total.CompletedStudents += c.CompletedStudents
	}
	total.AverageRating = model.NewAverageRating(total.RatingSum, total.RatedEnrollments)
	if total.TotalStudents > 0 {
		total.CompletionRate = float64(total.CompletedStudents) / float64(total.TotalStudents)
	}
	return total
}

// sortRecent 选课时间倒序，稳定排序保留存储返回的插入顺序
func sortRecent(enrollments []model.Enrollment) {
	sort.SliceStable(enrollments, func(i, j int) bool {
		return enrollments[i].EnrolledAt.After(enrollments[j].EnrolledAt)
	})
}

// CourseInstructor 返回课程所属教师，用于接口层的归属校验
func (s *AnalyticsService) CourseInstructor(ctx context.Context, courseID uint) (uint, error) {
	course, err := s.Courses.GetCourse(ctx, courseID)
	if err != nil {
		return 0, storageError("load course", err)
	}
	return course.InstructorID, nil
}
