package service

import (
	"context"
	"coursetrack_backend/internal/model"
)

// ProgressStore 观看记录的持久化，不包含业务逻辑
type ProgressStore interface {
	GetProgress(ctx context.Context, studentID, courseID uint) ([]model.LectureProgress, error)
	UpsertViewed(ctx context.Context, studentID, courseID, lectureID uint) (*model.LectureProgress, error)
	ResetAll(ctx context.Context, studentID, courseID uint) error
}

// CurriculumProvider 课程大纲（有序 lectureID），课程不存在时返回 util.ErrCourseNotFound
type CurriculumProvider interface {
	GetCurriculum(ctx context.Context, courseID uint) ([]uint, error)
}

type CourseCatalog interface {
	GetCourse(ctx context.Context, courseID uint) (*model.Course, error)
	ListByInstructor(ctx context.Context, instructorID uint) ([]model.Course, error)
	ListAll(ctx context.Context) ([]model.Course, error)
}

type EnrollmentStore interface {
	ListByCourse(ctx context.Context, courseID uint) ([]model.Enrollment, error)
	ListByStudent(ctx context.Context, studentID uint) ([]model.Enrollment, error)
	ListRecent(ctx context.Context, courseIDs []uint, limit int) ([]model.Enrollment, error)
	ListRecentAll(ctx context.Context, limit int) ([]model.Enrollment, error)
	Get(ctx context.Context, studentID, courseID uint) (*model.Enrollment, error)
	Create(ctx context.Context, enrollment *model.Enrollment) error
	UpdateRating(ctx context.Context, studentID, courseID uint, rating int) error
}
