package model

import (
	"encoding/json"
	"strconv"
	"time"
)

// RatingNA 没有任何评分时的占位值
const RatingNA = "N/A"

// AverageRating 平均评分，无评分时序列化为 "N/A"
type AverageRating struct {
	Value float64
	Valid bool
}

func NewAverageRating(sum int64, count int) AverageRating {
	if count == 0 {
		return AverageRating{}
	}
	return AverageRating{Value: float64(sum) / float64(count), Valid: true}
}

func (r AverageRating) String() string {
	if !r.Valid {
		return RatingNA
	}
	return strconv.FormatFloat(r.Value, 'f', 2, 64)
}

func (r AverageRating) MarshalJSON() ([]byte, error) {
	if !r.Valid {
		return json.Marshal(RatingNA)
	}
	return json.Marshal(r.Value)
}

// swagger:model CourseStats
type CourseStats struct {
	CourseID          uint          `json:"courseId"`
	Title             string        `json:"title"`
	TotalStudents     int           `json:"totalStudents"`
	TotalRevenue      int64         `json:"totalRevenue"`
	AverageRating     AverageRating `json:"averageRating" swaggertype:"string"`
	RatedEnrollments  int           `json:"ratedEnrollments"`
	CompletedStudents int           `json:"completedStudents"`
	CompletionRate    float64       `json:"completionRate"`

	// 评分总和，用于跨课程加权平均
	RatingSum int64 `json:"-"`
}

// swagger:model InstructorStats
type InstructorStats struct {
	InstructorID      uint          `json:"instructorId"`
	TotalCourses      int           `json:"totalCourses"`
	TotalStudents     int           `json:"totalStudents"`
	TotalRevenue      int64         `json:"totalRevenue"`
	AverageRating     AverageRating `json:"averageRating" swaggertype:"string"`
	RatedEnrollments  int           `json:"ratedEnrollments"`
	CompletedStudents int           `json:"completedStudents"`
	CompletionRate    float64       `json:"completionRate"`
	Courses           []CourseStats `json:"courses"`
}

// swagger:model PlatformStats
type PlatformStats struct {
	TotalCourses      int           `json:"totalCourses"`
	TotalEnrollments  int           `json:"totalEnrollments"`
	TotalRevenue      int64         `json:"totalRevenue"`
	AverageRating     AverageRating `json:"averageRating" swaggertype:"string"`
	RatedEnrollments  int           `json:"ratedEnrollments"`
	CompletedStudents int           `json:"completedStudents"`
	CompletionRate    float64       `json:"completionRate"`
}

type CourseStatus string

const (
	CourseStatusActive     CourseStatus = "active"
	CourseStatusNoStudents CourseStatus = "no_students"
)

// StudentCourseProgress 学生仪表盘中的单门课程
type StudentCourseProgress struct {
	CourseID   uint                  `json:"courseId"`
	Title      string                `json:"title"`
	EnrolledAt time.Time             `json:"enrolledAt"`
	Rating     *int                  `json:"rating,omitempty"`
	Progress   CourseProgressSummary `json:"progress"`
}

// swagger:model StudentDashboard
type StudentDashboard struct {
	StudentID         uint                    `json:"studentId"`
	Courses           []StudentCourseProgress `json:"courses"`
	CompletedCourses  int                     `json:"completedCourses"`
	InProgressCourses int                     `json:"inProgressCourses"`
	NotStartedCourses int                     `json:"notStartedCourses"`
}

type InstructorCourseCard struct {
	CourseStats
	Status CourseStatus `json:"status"`
}

// swagger:model InstructorDashboard
type InstructorDashboard struct {
	InstructorID      uint                   `json:"instructorId"`
	TotalStudents     int                    `json:"totalStudents"`
	TotalRevenue      int64                  `json:"totalRevenue"`
	AverageRating     AverageRating          `json:"averageRating" swaggertype:"string"`
	CompletionRate    float64                `json:"completionRate"`
	Courses           []InstructorCourseCard `json:"courses"`
	RecentEnrollments []Enrollment           `json:"recentEnrollments"`
}

// swagger:model AdminOverview
type AdminOverview struct {
	Stats             PlatformStats `json:"stats"`
	RecentEnrollments []Enrollment  `json:"recentEnrollments"`
}
