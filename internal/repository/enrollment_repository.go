package repository

import (
	"context"
	"coursetrack_backend/internal/model"
	"coursetrack_backend/internal/util"
	"errors"

	"gorm.io/gorm"
)

type EnrollmentRepository struct {
	DB *gorm.DB
}

func NewEnrollmentRepository(db *gorm.DB) *EnrollmentRepository {
	return &EnrollmentRepository{DB: db}
}

func (r *EnrollmentRepository) ListByCourse(ctx context.Context, courseID uint) ([]model.Enrollment, error) {
	enrollments := []model.Enrollment{}
	err := r.DB.WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("id ASC").
		Find(&enrollments).Error
	return enrollments, err
}

func (r *EnrollmentRepository) ListByStudent(ctx context.Context, studentID uint) ([]model.Enrollment, error) {
	enrollments := []model.Enrollment{}
	err := r.DB.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("enrolled_at DESC, id ASC").
		Find(&enrollments).Error
	return enrollments, err
}

// ListRecent 按选课时间倒序返回指定课程的最近记录，同一时间按插入顺序
func (r *EnrollmentRepository) ListRecent(ctx context.Context, courseIDs []uint, limit int) ([]model.Enrollment, error) {
	enrollments := []model.Enrollment{}
	if len(courseIDs) == 0 {
		return enrollments, nil
	}
	err := r.DB.WithContext(ctx).
		Where("course_id IN ?", courseIDs).
		Order("enrolled_at DESC, id ASC").
		Limit(limit).
		Find(&enrollments).Error
	return enrollments, err
}

// ListRecentAll 全平台最近选课记录（管理员视图）
func (r *EnrollmentRepository) ListRecentAll(ctx context.Context, limit int) ([]model.Enrollment, error) {
	enrollments := []model.Enrollment{}
	err := r.DB.WithContext(ctx).
		Order("enrolled_at DESC, id ASC").
		Limit(limit).
		Find(&enrollments).Error
	return enrollments, err
}

func (r *EnrollmentRepository) Get(ctx context.Context, studentID, courseID uint) (*model.Enrollment, error) {
	var enrollment model.Enrollment
	err := r.DB.WithContext(ctx).
		Where("student_id = ? AND course_id = ?", studentID, courseID).
		First(&enrollment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrNotEnrolled
		}
		return nil, err
	}
	return &enrollment, nil
}

func (r *EnrollmentRepository) Create(ctx context.Context, enrollment *model.Enrollment) error {
	err := r.DB.WithContext(ctx).Create(enrollment).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return util.ErrAlreadyEnrolled
	}
	return err
}

// UpdateRating 只更新评分，成交价字段不可写
func (r *EnrollmentRepository) UpdateRating(ctx context.Context, studentID, courseID uint, rating int) error {
	res := r.DB.WithContext(ctx).Model(&model.Enrollment{}).
		Where("student_id = ? AND course_id = ?", studentID, courseID).
		Update("rating", rating)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return util.ErrNotEnrolled
	}
	return nil
}
