package controller

import (
	"coursetrack_backend/internal/service"
	"coursetrack_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type DashboardController struct {
	DashboardService *service.DashboardService
}

func NewDashboardController(dashboardService *service.DashboardService) *DashboardController {
	return &DashboardController{DashboardService: dashboardService}
}

// @Summary 学生仪表盘
// @Description 当前学生所有已选课程的进度
// @Tags 仪表盘
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=model.StudentDashboard}
// @Router /dashboard/student [get]
func (c *DashboardController) Student(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	dashboard, err := c.DashboardService.StudentDashboard(ctx.Request.Context(), user.UserID)
	if err != nil {
		respondError(ctx, err)
		return
	}

	util.Success(ctx, dashboard)
}

// @Summary 家长查看孩子进度
// @Tags 仪表盘
// @Produce json
// @Security ApiKeyAuth
// @Param studentId path int true "学生ID"
// @Success 200 {object} util.Response{data=model.StudentDashboard}
// @Failure 403 {object} util.Response
// @Router /dashboard/parent/{studentId} [get]
func (c *DashboardController) Parent(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	studentID, ok := pathID(ctx, "studentId")
	if !ok {
		return
	}
	if !user.CanViewStudent(studentID) {
		util.Forbidden(ctx)
		return
	}

	dashboard, err := c.DashboardService.StudentDashboard(ctx.Request.Context(), studentID)
	if err != nil {
		respondError(ctx, err)
		return
	}

	util.Success(ctx, dashboard)
}

// @Summary 教师仪表盘
// @Tags 仪表盘
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=model.InstructorDashboard}
// @Router /dashboard/instructor [get]
func (c *DashboardController) Instructor(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	dashboard, err := c.DashboardService.InstructorDashboard(ctx.Request.Context(), user.UserID)
	if err != nil {
		respondError(ctx, err)
		return
	}

	util.Success(ctx, dashboard)
}

// @Summary 平台概览
// @Tags 管理员
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=model.AdminOverview}
// @Router /admin/overview [get]
func (c *DashboardController) AdminOverview(ctx *gin.Context) {
	overview, err := c.DashboardService.AdminOverview(ctx.Request.Context())
	if err != nil {
		respondError(ctx, err)
		return
	}

	util.Success(ctx, overview)
}
