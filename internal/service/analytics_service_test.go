package service

import (
	"context"
	"coursetrack_backend/internal/model"
	"coursetrack_backend/internal/util"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCourseStatsRevenueUsesPriceAtEnrollment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	course, _ := f.course(t, 1, 100, 2)

	_, err := f.enrollment.Enroll(ctx, 10, course.ID)
	require.NoError(t, err)
	require.NoError(t, f.courses.UpdatePrice(ctx, course.ID, 150))
	_, err = f.enrollment.Enroll(ctx, 11, course.ID)
	require.NoError(t, err)

	stats, err := f.analytics.CourseStats(ctx, course.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalStudents)
	assert.Equal(t, int64(250), stats.TotalRevenue)
}

func TestCourseStatsWithoutEnrollments(t *testing.T) {
	f := newFixture(t)
	course, _ := f.course(t, 1, 100, 2)

	stats, err := f.analytics.CourseStats(context.Background(), course.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalStudents)
	assert.Equal(t, int64(0), stats.TotalRevenue)
	assert.False(t, stats.AverageRating.Valid)
	assert.Equal(t, model.RatingNA, stats.AverageRating.String())
	assert.Equal(t, 0.0, stats.CompletionRate)

	raw, err := json.Marshal(stats)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"averageRating":"N/A"`)
	assert.NotContains(t, string(raw), "RatingSum")
}

func TestCourseStatsCompletionRate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	course, l := f.course(t, 1, 100, 2)
	now := time.Now().UTC()

	for _, student := range []uint{10, 11, 12, 13} {
		f.enroll(t, student, course.ID, 100, now, nil)
	}
	f.viewAll(t, 10, course.ID, l)
	f.viewAll(t, 11, course.ID, l[:1])

	stats, err := f.analytics.CourseStats(ctx, course.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.CompletedStudents)
	assert.InDelta(t, 0.25, stats.CompletionRate, 1e-9)

	// 无评分时平均分保持 N/A
	assert.False(t, stats.AverageRating.Valid)

	require.NoError(t, f.enrollment.RateCourse(ctx, 10, course.ID, 4))
	require.NoError(t, f.enrollment.RateCourse(ctx, 11, course.ID, 5))
	stats, err = f.analytics.CourseStats(ctx, course.ID)
	require.NoError(t, err)
	assert.True(t, stats.AverageRating.Valid)
	assert.InDelta(t, 4.5, stats.AverageRating.Value, 1e-9)
	assert.Equal(t, 2, stats.RatedEnrollments)
}

func TestCourseStatsUnknownCourse(t *testing.T) {
	f := newFixture(t)
	_, err := f.analytics.CourseStats(context.Background(), 404)
	assert.ErrorIs(t, err, util.ErrCourseNotFound)
}

func TestCourseStatsFailsWhenAnySummaryFails(t *testing.T) {
	f := newFixture(t)
	course, _ := f.course(t, 1, 100, 2)
	now := time.Now().UTC()
	f.enroll(t, 10, course.ID, 100, now, nil)
	f.enroll(t, 11, course.ID, 100, now, nil)

	f.progress.Progress = &failingProgressStore{err: errors.New("disk I/O error")}

	_, err := f.analytics.CourseStats(context.Background(), course.ID)
	assert.ErrorIs(t, err, util.ErrStorageUnavailable)
}

func TestInstructorStatsWeightsRatingsByCount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	now := time.Now().UTC()

	popular, l := f.course(t, 1, 100, 1)
	niche, _ := f.course(t, 1, 200, 1)
	unrated, _ := f.course(t, 1, 300, 1)
	f.course(t, 2, 999, 1)

	f.enroll(t, 10, popular.ID, 100, now, intPtr(5))
	f.enroll(t, 11, popular.ID, 100, now, intPtr(5))
	f.enroll(t, 12, popular.ID, 100, now, intPtr(5))
	f.enroll(t, 13, niche.ID, 200, now, intPtr(1))
	f.viewAll(t, 10, popular.ID, l)

	stats, err := f.analytics.InstructorStats(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalCourses)
	assert.Equal(t, 4, stats.TotalStudents)
	assert.Equal(t, int64(500), stats.TotalRevenue)
	assert.Equal(t, 4, stats.RatedEnrollments)
	// (5+5+5+1)/4，而不是两门课均分的平均值 3
	assert.InDelta(t, 4.0, stats.AverageRating.Value, 1e-9)
	assert.InDelta(t, 0.25, stats.CompletionRate, 1e-9)
	require.Len(t, stats.Courses, 3)
	assert.Equal(t, unrated.ID, stats.Courses[2].CourseID)
	assert.Equal(t, model.RatingNA, stats.Courses[2].AverageRating.String())

	empty, err := f.analytics.InstructorStats(ctx, 77)
	require.NoError(t, err)
	assert.Equal(t, 0, empty.TotalCourses)
	assert.False(t, empty.AverageRating.Valid)
	assert.Equal(t, 0.0, empty.CompletionRate)
}

func TestPlatformStats(t *testing.T) {
	f := newFixture(t)
	now := time.Now().UTC()
	a, _ := f.course(t, 1, 100, 1)
	b, _ := f.course(t, 2, 200, 1)
	f.enroll(t, 10, a.ID, 100, now, intPtr(3))
	f.enroll(t, 10, b.ID, 200, now, nil)

	stats, err := f.analytics.PlatformStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalCourses)
	assert.Equal(t, 2, stats.TotalEnrollments)
	assert.Equal(t, int64(300), stats.TotalRevenue)
	assert.InDelta(t, 3.0, stats.AverageRating.Value, 1e-9)
}

func TestRecentEnrollments(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	a, _ := f.course(t, 1, 100, 1)
	b, _ := f.course(t, 1, 100, 1)
	other, _ := f.course(t, 2, 100, 1)

	f.enroll(t, 10, a.ID, 100, base, nil)
	f.enroll(t, 11, b.ID, 100, base.Add(time.Hour), nil)
	f.enroll(t, 12, a.ID, 100, base.Add(time.Hour), nil)
	f.enroll(t, 13, other.ID, 100, base.Add(2*time.Hour), nil)

	byInstructor, err := f.analytics.RecentEnrollments(ctx, EnrollmentScope{InstructorID: 1}, 0)
	require.NoError(t, err)
	require.Len(t, byInstructor, 3)
	assert.Equal(t, []uint{11, 12, 10}, studentIDs(byInstructor))

	byCourse, err := f.analytics.RecentEnrollments(ctx, EnrollmentScope{CourseID: a.ID}, 1)
	require.NoError(t, err)
	assert.Equal(t, []uint{12}, studentIDs(byCourse))

	none, err := f.analytics.RecentEnrollments(ctx, EnrollmentScope{InstructorID: 99}, 5)
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = f.analytics.RecentEnrollments(ctx, EnrollmentScope{}, 5)
	assert.ErrorIs(t, err, util.ErrInvalidScope)
	_, err = f.analytics.RecentEnrollments(ctx, EnrollmentScope{CourseID: a.ID, InstructorID: 1}, 5)
	assert.ErrorIs(t, err, util.ErrInvalidScope)
	_, err = f.analytics.RecentEnrollments(ctx, EnrollmentScope{CourseID: 404}, 5)
	assert.ErrorIs(t, err, util.ErrCourseNotFound)

	all, err := f.analytics.RecentEnrollmentsAll(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, []uint{13, 11}, studentIDs(all))
}

func TestRecentEnrollmentsLimitClamp(t *testing.T) {
	f := newFixture(t)
	f.analytics.SetLimits(2, 3, 4)
	course, _ := f.course(t, 1, 100, 1)
	base := time.Now().UTC()
	for i := uint(0); i < 5; i++ {
		f.enroll(t, 10+i, course.ID, 100, base.Add(time.Duration(i)*time.Minute), nil)
	}

	def, err := f.analytics.RecentEnrollments(context.Background(), EnrollmentScope{CourseID: course.ID}, 0)
	require.NoError(t, err)
	assert.Len(t, def, 2)

	capped, err := f.analytics.RecentEnrollments(context.Background(), EnrollmentScope{CourseID: course.ID}, 50)
	require.NoError(t, err)
	assert.Len(t, capped, 3)
	assert.Equal(t, uint(14), capped[0].StudentID)
}

func TestBuildCourseStats(t *testing.T) {
	enrollments := []model.Enrollment{
		{StudentID: 1, PriceAtEnrollment: 100, Rating: intPtr(2)},
		{StudentID: 2, PriceAtEnrollment: 150},
		{StudentID: 3, PriceAtEnrollment: 0, Rating: intPtr(5)},
	}

	stats := BuildCourseStats(9, enrollments, 2)
	assert.Equal(t, uint(9), stats.CourseID)
	assert.Equal(t, 3, stats.TotalStudents)
	assert.Equal(t, int64(250), stats.TotalRevenue)
	assert.Equal(t, 2, stats.RatedEnrollments)
	assert.InDelta(t, 3.5, stats.AverageRating.Value, 1e-9)
	assert.InDelta(t, 2.0/3.0, stats.CompletionRate, 1e-9)

	empty := BuildCourseStats(9, nil, 0)
	assert.Equal(t, "N/A", empty.AverageRating.String())
	assert.Equal(t, 0.0, empty.CompletionRate)
}

func TestSortRecentIsStable(t *testing.T) {
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	enrollments := []model.Enrollment{
		{ID: 1, EnrolledAt: at},
		{ID: 2, EnrolledAt: at.Add(time.Hour)},
		{ID: 3, EnrolledAt: at},
		{ID: 4, EnrolledAt: at.Add(time.Hour)},
	}
	sortRecent(enrollments)

	ids := make([]uint, 0, len(enrollments))
	for _, e := range enrollments {
		ids = append(ids, e.ID)
	}
	assert.Equal(t, []uint{2, 4, 1, 3}, ids)
}

func studentIDs(enrollments []model.Enrollment) []uint {
	ids := make([]uint, 0, len(enrollments))
	for _, e := range enrollments {
		ids = append(ids, e.StudentID)
	}
	return ids
}
