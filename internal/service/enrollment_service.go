package service

import (
	"context"
	"coursetrack_backend/internal/model"
	"coursetrack_backend/internal/util"
	"coursetrack_backend/pkg/logger"
	"time"

	"go.uber.org/zap"
)

// EnrollmentService 支付/选课层的写入边界：记录成交价与学生评分
type EnrollmentService struct {
	Courses     CourseCatalog
	Enrollments EnrollmentStore
	now         func() time.Time
}

func NewEnrollmentService(courses CourseCatalog, enrollments EnrollmentStore) *EnrollmentService {
	return &EnrollmentService{Courses: courses, Enrollments: enrollments, now: time.Now}
}

// Enroll 以课程当前标价作为成交价创建选课记录
func (s *EnrollmentService) Enroll(ctx context.Context, studentID, courseID uint) (*model.Enrollment, error) {
	course, err := s.Courses.GetCourse(ctx, courseID)
	if err != nil {
		return nil, storageError("load course", err)
	}

	enrollment := &model.Enrollment{
		StudentID:         studentID,
		CourseID:          courseID,
		EnrolledAt:        s.now(),
		PriceAtEnrollment: course.Price,
	}
	if err := s.Enrollments.Create(ctx, enrollment); err != nil {
		return nil, storageError("create enrollment", err)
	}

	logger.Log.Info("Student enrolled",
		zap.Uint("studentId", studentID),
		zap.Uint("courseId", courseID),
		zap.Int64("price", course.Price))
	return enrollment, nil
}

// RateCourse 学生为已选课程打分（1-5），可重复修改
func (s *EnrollmentService) RateCourse(ctx context.Context, studentID, courseID uint, rating int) error {
	if rating < model.MinRating || rating > model.MaxRating {
		return util.ErrInvalidRating
	}
	if err := s.Enrollments.UpdateRating(ctx, studentID, courseID, rating); err != nil {
		return storageError("update rating", err)
	}
	return nil
}
