package service

import (
	"bytes"
	"context"
	"coursetrack_backend/internal/model"
	"coursetrack_backend/internal/util"
	"coursetrack_backend/pkg/logger"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ReportFile 导出后的报表位置
type ReportFile struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

// ReportService 导出课程统计报表（CSV）到对象存储
type ReportService struct {
	Analytics   *AnalyticsService
	Enrollments EnrollmentStore
	Progress    *ProgressService
	Storage     *StorageService
}

func NewReportService(analytics *AnalyticsService, enrollments EnrollmentStore, progress *ProgressService, storage *StorageService) *ReportService {
	return &ReportService{
		Analytics:   analytics,
		Enrollments: enrollments,
		Progress:    progress,
		Storage:     storage,
	}
}

// ExportCourseReport 汇总行 + 每个选课学生一行
func (s *ReportService) ExportCourseReport(ctx context.Context, courseID uint) (*ReportFile, error) {
	data, err := s.BuildCourseReport(ctx, courseID)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("reports/%d/%s.csv", courseID, uuid.NewString())
	url, err := s.Storage.Upload(ctx, key, bytes.NewReader(data), int64(len(data)), util.MimeCSV)
	if err != nil {
		logger.Log.Error("Failed to upload course report", zap.Uint("courseId", courseID), zap.Error(err))
		return nil, storageError("upload report", err)
	}

	return &ReportFile{Key: key, URL: url}, nil
}

// BuildCourseReport 生成 CSV 内容。汇总行与明细行来自同一次选课查询和同一批进度摘要，
// 报表生成期间新增的选课不会造成两者不一致
func (s *ReportService) BuildCourseReport(ctx context.Context, courseID uint) ([]byte, error) {
	course, err := s.Analytics.Courses.GetCourse(ctx, courseID)
	if err != nil {
		return nil, storageError("load course", err)
	}

	enrollments, err := s.Enrollments.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, storageError("list course enrollments", err)
	}

	summaries := make([]*model.CourseProgressSummary, len(enrollments))
	completed := 0
	for i, e := range enrollments {
		summary, err := s.Progress.ComputeSummary(ctx, e.StudentID, courseID)
		if err != nil {
			return nil, err
		}
		if summary.IsComplete {
			completed++
		}
		summaries[i] = summary
	}

	stats := BuildCourseStats(course.ID, enrollments, completed)
	stats.Title = course.Title

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Write([]string{"course_id", "title", "total_students", "total_revenue", "average_rating", "completion_rate"})
	w.Write([]string{
		strconv.FormatUint(uint64(stats.CourseID), 10),
		stats.Title,
		strconv.Itoa(stats.TotalStudents),
		strconv.FormatInt(stats.TotalRevenue, 10),
		stats.AverageRating.String(),
		strconv.FormatFloat(stats.CompletionRate, 'f', 4, 64),
	})
	w.Write(nil)
	w.Write([]string{"student_id", "enrolled_at", "price_at_enrollment", "rating", "percent_complete", "is_complete"})

	for i, e := range enrollments {
		summary := summaries[i]
		rating := ""
		if e.Rating != nil {
			rating = strconv.Itoa(*e.Rating)
		}
		w.Write([]string{
			strconv.FormatUint(uint64(e.StudentID), 10),
			e.EnrolledAt.Format(time.RFC3339),
			strconv.FormatInt(e.PriceAtEnrollment, 10),
			rating,
			strconv.Itoa(summary.PercentComplete),
			strconv.FormatBool(summary.IsComplete),
		})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
