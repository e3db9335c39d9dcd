package model

import "time"

// LectureProgress 学生对某节课的观看记录
// 记录只会在重置整门课程时被物理删除，因此不使用软删除
// swagger:model LectureProgress
type LectureProgress struct {
	ID        uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	StudentID uint       `gorm:"uniqueIndex:idx_progress_student_course_lecture,priority:1;not null" json:"studentId"`
	CourseID  uint       `gorm:"uniqueIndex:idx_progress_student_course_lecture,priority:2;not null" json:"courseId"`
	LectureID uint       `gorm:"uniqueIndex:idx_progress_student_course_lecture,priority:3;not null" json:"lectureId"`
	Viewed    bool       `gorm:"not null;default:false" json:"viewed"`
	ViewedAt  *time.Time `json:"viewedAt,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

func (LectureProgress) TableName() string {
	return "lecture_progress"
}

// CourseProgressSummary 由观看记录和课程大纲实时计算，不落库
// swagger:model CourseProgressSummary
type CourseProgressSummary struct {
	CourseID        uint `json:"courseId"`
	StudentID       uint `json:"studentId"`
	PercentComplete int  `json:"percentComplete"`
	// 课程大纲为空时为 0
	ResumeLectureID uint `json:"resumeLectureId,omitempty"`
	IsComplete      bool `json:"isComplete"`
	ViewedLectures  int  `json:"viewedLectures"`
	TotalLectures   int  `json:"totalLectures"`
}

// LectureState 课程播放页的章节勾选状态
type LectureState struct {
	LectureID uint       `json:"lectureId"`
	Position  int        `json:"position"`
	Viewed    bool       `json:"viewed"`
	ViewedAt  *time.Time `json:"viewedAt,omitempty"`
}
