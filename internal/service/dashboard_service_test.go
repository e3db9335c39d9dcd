package service

import (
	"context"
	"coursetrack_backend/internal/model"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStudentDashboard(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	base := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	done, doneLectures := f.course(t, 1, 100, 2)
	started, startedLectures := f.course(t, 1, 100, 3)
	fresh, _ := f.course(t, 2, 100, 2)

	f.enroll(t, 10, done.ID, 100, base, intPtr(5))
	f.enroll(t, 10, started.ID, 100, base.Add(time.Hour), nil)
	f.enroll(t, 10, fresh.ID, 100, base.Add(2*time.Hour), nil)
	f.viewAll(t, 10, done.ID, doneLectures)
	f.viewAll(t, 10, started.ID, startedLectures[:1])

	dashboard, err := f.dashboard.StudentDashboard(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, uint(10), dashboard.StudentID)
	require.Len(t, dashboard.Courses, 3)
	assert.Equal(t, 1, dashboard.CompletedCourses)
	assert.Equal(t, 1, dashboard.InProgressCourses)
	assert.Equal(t, 1, dashboard.NotStartedCourses)

	// 最近选课在前
	assert.Equal(t, fresh.ID, dashboard.Courses[0].CourseID)
	assert.Equal(t, started.ID, dashboard.Courses[1].CourseID)
	assert.Equal(t, 33, dashboard.Courses[1].Progress.PercentComplete)
	assert.Equal(t, startedLectures[1], dashboard.Courses[1].Progress.ResumeLectureID)
	assert.True(t, dashboard.Courses[2].Progress.IsComplete)
	assert.Equal(t, done.Title, dashboard.Courses[2].Title)

	empty, err := f.dashboard.StudentDashboard(ctx, 99)
	require.NoError(t, err)
	assert.Empty(t, empty.Courses)
}

func TestInstructorDashboard(t *testing.T) {
	f := newFixture(t)
	now := time.Now().UTC()
	active, _ := f.course(t, 1, 100, 1)
	idle, _ := f.course(t, 1, 100, 1)
	f.enroll(t, 10, active.ID, 100, now, intPtr(4))

	dashboard, err := f.dashboard.InstructorDashboard(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 1, dashboard.TotalStudents)
	assert.Equal(t, int64(100), dashboard.TotalRevenue)
	require.Len(t, dashboard.Courses, 2)
	assert.Equal(t, active.ID, dashboard.Courses[0].CourseID)
	assert.Equal(t, model.CourseStatusActive, dashboard.Courses[0].Status)
	assert.Equal(t, idle.ID, dashboard.Courses[1].CourseID)
	assert.Equal(t, model.CourseStatusNoStudents, dashboard.Courses[1].Status)
	require.Len(t, dashboard.RecentEnrollments, 1)
	assert.Equal(t, uint(10), dashboard.RecentEnrollments[0].StudentID)
}

func TestAdminOverview(t *testing.T) {
	f := newFixture(t)
	now := time.Now().UTC()
	course, _ := f.course(t, 1, 250, 1)
	f.enroll(t, 10, course.ID, 250, now, nil)
	f.enroll(t, 11, course.ID, 250, now.Add(time.Minute), nil)

	overview, err := f.dashboard.AdminOverview(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, overview.Stats.TotalCourses)
	assert.Equal(t, int64(500), overview.Stats.TotalRevenue)
	assert.Equal(t, model.RatingNA, overview.Stats.AverageRating.String())
	require.Len(t, overview.RecentEnrollments, 2)
	assert.Equal(t, uint(11), overview.RecentEnrollments[0].StudentID)
}
