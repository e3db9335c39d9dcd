package model

import "time"

// Course 课程基本信息，价格以分为单位
// swagger:model Course
type Course struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Title        string    `gorm:"size:255;not null" json:"title"`
	InstructorID uint      `gorm:"index;not null" json:"instructorId"`
	Price        int64     `gorm:"not null;default:0" json:"price"`
	Lectures     []Lecture `gorm:"foreignKey:CourseID" json:"lectures,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (Course) TableName() string {
	return "courses"
}

// Lecture 课程中的一节课，按 Position 升序组成课程大纲
// swagger:model Lecture
type Lecture struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	CourseID  uint      `gorm:"index:idx_lecture_course_position;not null" json:"courseId"`
	Title     string    `gorm:"size:255;not null" json:"title"`
	Position  int       `gorm:"index:idx_lecture_course_position;not null;default:0" json:"position"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Lecture) TableName() string {
	return "lectures"
}
