package controller

import (
	"coursetrack_backend/internal/model"
	"coursetrack_backend/internal/service"
	"coursetrack_backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
)

type AnalyticsController struct {
	AnalyticsService *service.AnalyticsService
	ReportService    *service.ReportService
}

func NewAnalyticsController(analyticsService *service.AnalyticsService, reportService *service.ReportService) *AnalyticsController {
	return &AnalyticsController{AnalyticsService: analyticsService, ReportService: reportService}
}

// authorizeCourse 教师只能查看自己的课程，管理员不受限
func (c *AnalyticsController) authorizeCourse(ctx *gin.Context, user *util.Claims, courseID uint) bool {
	if user.Role == model.Admin {
		return true
	}
	instructorID, err := c.AnalyticsService.CourseInstructor(ctx.Request.Context(), courseID)
	if err != nil {
		respondError(ctx, err)
		return false
	}
	if instructorID != user.UserID {
		util.Forbidden(ctx)
		return false
	}
	return true
}

func (c *AnalyticsController) authorizeInstructor(ctx *gin.Context, user *util.Claims, instructorID uint) bool {
	if user.Role == model.Admin || user.UserID == instructorID {
		return true
	}
	util.Forbidden(ctx)
	return false
}

// @Summary 课程统计
// @Description 获取课程学生数、收入、平均评分（无评分时为 N/A）和完课率
// @Tags 分析
// @Produce json
// @Security ApiKeyAuth
// @Param courseId path int true "课程ID"
// @Success 200 {object} util.Response{data=model.CourseStats}
// @Failure 404 {object} util.Response
// @Router /analytics/courses/{courseId}/stats [get]
func (c *AnalyticsController) CourseStats(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	courseID, ok := pathID(ctx, "courseId")
	if !ok || !c.authorizeCourse(ctx, user, courseID) {
		return
	}

	stats, err := c.AnalyticsService.CourseStats(ctx.Request.Context(), courseID)
	if err != nil {
		respondError(ctx, err)
		return
	}

	util.Success(ctx, stats)
}

// @Summary 课程最近选课
// @Tags 分析
// @Produce json
// @Security ApiKeyAuth
// @Param courseId path int true "课程ID"
// @Param limit query int false "返回条数，缺省或非正数时取 analytics.recent_default_limit（默认 10），超过 analytics.recent_max_limit（默认 100）时按上限截断"
// @Success 200 {object} util.Response{data=[]model.Enrollment}
// @Router /analytics/courses/{courseId}/enrollments/recent [get]
func (c *AnalyticsController) CourseRecentEnrollments(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	courseID, ok := pathID(ctx, "courseId")
	if !ok || !c.authorizeCourse(ctx, user, courseID) {
		return
	}

	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "0"))
	enrollments, err := c.AnalyticsService.RecentEnrollments(ctx.Request.Context(), service.EnrollmentScope{CourseID: courseID}, limit)
	if err != nil {
		respondError(ctx, err)
		return
	}

	util.Success(ctx, enrollments)
}

// @Summary 教师统计
// @Description 汇总教师名下全部课程，平均评分按评分人数加权
// @Tags 分析
// @Produce json
// @Security ApiKeyAuth
// @Param instructorId path int true "教师ID"
// @Success 200 {object} util.Response{data=model.InstructorStats}
// @Router /analytics/instructors/{instructorId}/stats [get]
func (c *AnalyticsController) InstructorStats(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	instructorID, ok := pathID(ctx, "instructorId")
	if !ok || !c.authorizeInstructor(ctx, user, instructorID) {
		return
	}

	stats, err := c.AnalyticsService.InstructorStats(ctx.Request.Context(), instructorID)
	if err != nil {
		respondError(ctx, err)
		return
	}

	util.Success(ctx, stats)
}

// @Summary 教师最近选课
// @Tags 分析
// @Produce json
// @Security ApiKeyAuth
// @Param instructorId path int true "教师ID"
// @Param limit query int false "返回条数，缺省或非正数时取 analytics.recent_default_limit（默认 10），超过 analytics.recent_max_limit（默认 100）时按上限截断"
// @Success 200 {object} util.Response{data=[]model.Enrollment}
// @Router /analytics/instructors/{instructorId}/enrollments/recent [get]
func (c *AnalyticsController) InstructorRecentEnrollments(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	instructorID, ok := pathID(ctx, "instructorId")
	if !ok || !c.authorizeInstructor(ctx, user, instructorID) {
		return
	}

	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "0"))
	enrollments, err := c.AnalyticsService.RecentEnrollments(ctx.Request.Context(), service.EnrollmentScope{InstructorID: instructorID}, limit)
	if err != nil {
		respondError(ctx, err)
		return
	}

	util.Success(ctx, enrollments)
}

// @Summary 导出课程报表
// @Description 生成课程学生进度 CSV 并上传到对象存储
// @Tags 分析
// @Produce json
// @Security ApiKeyAuth
// @Param courseId path int true "课程ID"
// @Success 201 {object} util.Response{data=service.ReportFile}
// @Router /analytics/courses/{courseId}/report [post]
func (c *AnalyticsController) ExportReport(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	courseID, ok := pathID(ctx, "courseId")
	if !ok || !c.authorizeCourse(ctx, user, courseID) {
		return
	}

	report, err := c.ReportService.ExportCourseReport(ctx.Request.Context(), courseID)
	if err != nil {
		respondError(ctx, err)
		return
	}

	util.Created(ctx, report)
}
