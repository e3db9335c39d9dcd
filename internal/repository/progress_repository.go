package repository

import (
	"context"
	"coursetrack_backend/internal/model"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProgressRepository struct {
	DB *gorm.DB
}

func NewProgressRepository(db *gorm.DB) *ProgressRepository {
	return &ProgressRepository{DB: db}
}

// GetProgress 获取学生在某门课程下的全部观看记录
func (r *ProgressRepository) GetProgress(ctx context.Context, studentID, courseID uint) ([]model.LectureProgress, error) {
	records := []model.LectureProgress{}
	err := r.DB.WithContext(ctx).
		Where("student_id = ? AND course_id = ?", studentID, courseID).
		Order("id ASC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

// UpsertViewed 标记已观看。依赖唯一索引做 upsert，重复调用只会把 viewed 置为 true，
// 首次观看时间保持不变。写入与回读在同一事务内；回读不到说明记录已被重置删除，
// 此时写入本身已成功，返回本次写入的记录
func (r *ProgressRepository) UpsertViewed(ctx context.Context, studentID, courseID, lectureID uint) (*model.LectureProgress, error) {
	now := time.Now()
	record := &model.LectureProgress{
		StudentID: studentID,
		CourseID:  courseID,
		LectureID: lectureID,
		Viewed:    true,
		ViewedAt:  &now,
	}

	var stored model.LectureProgress
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "student_id"}, {Name: "course_id"}, {Name: "lecture_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"viewed": true,
			}),
		}).Create(record).Error
		if err != nil {
			return err
		}

		err = tx.Where("student_id = ? AND course_id = ? AND lecture_id = ?", studentID, courseID, lectureID).
			First(&stored).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			stored = *record
			return nil
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return &stored, nil
}

// ResetAll 在单个事务内清空学生在该课程下的全部记录，读者要么看到全部要么看不到
func (r *ProgressRepository) ResetAll(ctx context.Context, studentID, courseID uint) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Where("student_id = ? AND course_id = ?", studentID, courseID).
			Delete(&model.LectureProgress{}).Error
	})
}
