package service

import (
	"context"
	"coursetrack_backend/internal/model"
	"coursetrack_backend/pkg/tracing"

	"golang.org/x/sync/errgroup"
)

// DashboardService 各角色仪表盘的只读投影，底层统一复用 ProgressService 与 AnalyticsService
type DashboardService struct {
	Courses     CourseCatalog
	Enrollments EnrollmentStore
	Progress    *ProgressService
	Analytics   *AnalyticsService
}

func NewDashboardService(courses CourseCatalog, enrollments EnrollmentStore, progress *ProgressService, analytics *AnalyticsService) *DashboardService {
	return &DashboardService{
		Courses:     courses,
		Enrollments: enrollments,
		Progress:    progress,
		Analytics:   analytics,
	}
}

// StudentDashboard 学生（或家长查看孩子）已选课程及进度
func (s *DashboardService) StudentDashboard(ctx context.Context, studentID uint) (*model.StudentDashboard, error) {
	ctx, span := tracing.Tracer.Start(ctx, "DashboardService.StudentDashboard")
	defer span.End()

	enrollments, err := s.Enrollments.ListByStudent(ctx, studentID)
	if err != nil {
		err = storageError("list student enrollments", err)
		tracing.RecordError(span, err)
		return nil, err
	}

	items := make([]model.StudentCourseProgress, len(enrollments))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(int(s.Analytics.concurrency.Load()))
	for i, e := range enrollments {
		i, e := i, e
		g.Go(func() error {
			course, err := s.Courses.GetCourse(gctx, e.CourseID)
			if err != nil {
				return storageError("load course", err)
			}
			summary, err := s.Progress.ComputeSummary(gctx, studentID, e.CourseID)
			if err != nil {
				return err
			}
			items[i] = model.StudentCourseProgress{
				CourseID:   e.CourseID,
				Title:      course.Title,
				EnrolledAt: e.EnrolledAt,
				Rating:     e.Rating,
				Progress:   *summary,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		tracing.RecordError(span, err)
		return nil, err
	}

	dashboard := &model.StudentDashboard{StudentID: studentID, Courses: items}
	for _, item := range items {
		switch {
		case item.Progress.IsComplete:
			dashboard.CompletedCourses++
		case item.Progress.ViewedLectures > 0:
			dashboard.InProgressCourses++
		default:
			dashboard.NotStartedCourses++
		}
	}
	return dashboard, nil
}

// InstructorDashboard 教师课程卡片、汇总数据和最近选课动态
func (s *DashboardService) InstructorDashboard(ctx context.Context, instructorID uint) (*model.InstructorDashboard, error) {
	stats, err := s.Analytics.InstructorStats(ctx, instructorID)
	if err != nil {
		return nil, err
	}

	recent, err := s.Analytics.RecentEnrollments(ctx, EnrollmentScope{InstructorID: instructorID}, 0)
	if err != nil {
		return nil, err
	}

	cards := make([]model.InstructorCourseCard, 0, len(stats.Courses))
	for _, c := range stats.Courses {
		status := model.CourseStatusNoStudents
		if c.TotalStudents > 0 {
			status = model.CourseStatusActive
		}
		cards = append(cards, model.InstructorCourseCard{CourseStats: c, Status: status})
	}

	return &model.InstructorDashboard{
		InstructorID:      instructorID,
		TotalStudents:     stats.TotalStudents,
		TotalRevenue:      stats.TotalRevenue,
		AverageRating:     stats.AverageRating,
		CompletionRate:    stats.CompletionRate,
		Courses:           cards,
		RecentEnrollments: recent,
	}, nil
}

// AdminOverview 平台汇总与全站最近选课
func (s *DashboardService) AdminOverview(ctx context.Context) (*model.AdminOverview, error) {
	stats, err := s.Analytics.PlatformStats(ctx)
	if err != nil {
		return nil, err
	}

	recent, err := s.Analytics.RecentEnrollmentsAll(ctx, 0)
	if err != nil {
		return nil, err
	}

	return &model.AdminOverview{Stats: *stats, RecentEnrollments: recent}, nil
}
