package service

import (
	"context"
	"coursetrack_backend/internal/util"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnrollCapturesCurrentPrice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	course, _ := f.course(t, 1, 4900, 1)
	fixed := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	f.enrollment.now = func() time.Time { return fixed }

	e, err := f.enrollment.Enroll(ctx, 10, course.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(4900), e.PriceAtEnrollment)
	assert.True(t, fixed.Equal(e.EnrolledAt))

	// 后续调价不影响已有记录
	require.NoError(t, f.courses.UpdatePrice(ctx, course.ID, 9900))
	stored, err := f.enrollments.Get(ctx, 10, course.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(4900), stored.PriceAtEnrollment)
}

func TestEnrollErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	course, _ := f.course(t, 1, 100, 1)

	_, err := f.enrollment.Enroll(ctx, 10, course.ID)
	require.NoError(t, err)

	_, err = f.enrollment.Enroll(ctx, 10, course.ID)
	assert.ErrorIs(t, err, util.ErrAlreadyEnrolled)

	_, err = f.enrollment.Enroll(ctx, 10, 404)
	assert.ErrorIs(t, err, util.ErrCourseNotFound)
}

func TestRateCourse(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	course, _ := f.course(t, 1, 100, 1)
	_, err := f.enrollment.Enroll(ctx, 10, course.ID)
	require.NoError(t, err)

	for _, bad := range []int{0, 6, -1} {
		assert.ErrorIs(t, f.enrollment.RateCourse(ctx, 10, course.ID, bad), util.ErrInvalidRating)
	}
	assert.ErrorIs(t, f.enrollment.RateCourse(ctx, 11, course.ID, 3), util.ErrNotEnrolled)

	require.NoError(t, f.enrollment.RateCourse(ctx, 10, course.ID, 3))
	require.NoError(t, f.enrollment.RateCourse(ctx, 10, course.ID, 4))
	stored, err := f.enrollments.Get(ctx, 10, course.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.Rating)
	assert.Equal(t, 4, *stored.Rating)
}
