package repository

import (
	"context"
	"coursetrack_backend/internal/model"
	"coursetrack_backend/internal/util"
	"errors"

	"gorm.io/gorm"
)

// CurriculumRepository 课程与课程大纲的只读访问，大纲由教师端维护
type CurriculumRepository struct {
	DB *gorm.DB
}

func NewCurriculumRepository(db *gorm.DB) *CurriculumRepository {
	return &CurriculumRepository{DB: db}
}

func (r *CurriculumRepository) GetCourse(ctx context.Context, courseID uint) (*model.Course, error) {
	var course model.Course
	err := r.DB.WithContext(ctx).First(&course, courseID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCourseNotFound
		}
		return nil, err
	}
	return &course, nil
}

// GetCurriculum 返回课程的有序 lectureID 列表
func (r *CurriculumRepository) GetCurriculum(ctx context.Context, courseID uint) ([]uint, error) {
	if _, err := r.GetCourse(ctx, courseID); err != nil {
		return nil, err
	}

	lectureIDs := []uint{}
	err := r.DB.WithContext(ctx).Model(&model.Lecture{}).
		Where("course_id = ?", courseID).
		Order("position ASC, id ASC").
		Pluck("id", &lectureIDs).Error
	if err != nil {
		return nil, err
	}
	return lectureIDs, nil
}

// GetLectures 返回课程的有序章节
func (r *CurriculumRepository) GetLectures(ctx context.Context, courseID uint) ([]model.Lecture, error) {
	var lectures []model.Lecture
	err := r.DB.WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("position ASC, id ASC").
		Find(&lectures).Error
	return lectures, err
}

func (r *CurriculumRepository) ListByInstructor(ctx context.Context, instructorID uint) ([]model.Course, error) {
	var courses []model.Course
	err := r.DB.WithContext(ctx).
		Where("instructor_id = ?", instructorID).
		Order("id ASC").
		Find(&courses).Error
	return courses, err
}

func (r *CurriculumRepository) ListAll(ctx context.Context) ([]model.Course, error) {
	var courses []model.Course
	err := r.DB.WithContext(ctx).Order("id ASC").Find(&courses).Error
	return courses, err
}

// CreateCourse 创建课程及其章节（供教师端和数据初始化脚本使用）
func (r *CurriculumRepository) CreateCourse(ctx context.Context, course *model.Course) error {
	return r.DB.WithContext(ctx).Create(course).Error
}

// UpdatePrice 修改课程当前标价，不影响已有选课记录的成交价
func (r *CurriculumRepository) UpdatePrice(ctx context.Context, courseID uint, price int64) error {
	res := r.DB.WithContext(ctx).Model(&model.Course{}).Where("id = ?", courseID).Update("price", price)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return util.ErrCourseNotFound
	}
	return nil
}
