package model

import "time"

// Enrollment 学生购买/加入课程的记录
// PriceAtEnrollment 为购买时的成交价（分），创建后不可修改
// swagger:model Enrollment
type Enrollment struct {
	ID                uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	StudentID         uint      `gorm:"uniqueIndex:idx_enrollment_student_course,priority:1;not null" json:"studentId"`
	CourseID          uint      `gorm:"uniqueIndex:idx_enrollment_student_course,priority:2;index:idx_enrollment_course_time,priority:1;not null" json:"courseId"`
	EnrolledAt        time.Time `gorm:"index:idx_enrollment_course_time,priority:2;not null" json:"enrolledAt"`
	PriceAtEnrollment int64     `gorm:"not null;<-:create" json:"priceAtEnrollment"`
	Rating            *int      `json:"rating,omitempty"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

func (Enrollment) TableName() string {
	return "enrollments"
}

const (
	MinRating = 1
	MaxRating = 5
)
