package controller

import (
	"coursetrack_backend/internal/model"
	"coursetrack_backend/internal/service"
	"coursetrack_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ProgressController struct {
	ProgressService *service.ProgressService
	ViewTracker     *service.ViewTracker
}

func NewProgressController(progressService *service.ProgressService, viewTracker *service.ViewTracker) *ProgressController {
	return &ProgressController{ProgressService: progressService, ViewTracker: viewTracker}
}

// RecordViewResponse 观看后的最新进度，justCompleted 表示本次观看使课程完成
type RecordViewResponse struct {
	Progress      *model.CourseProgressSummary `json:"progress"`
	JustCompleted bool                         `json:"justCompleted"`
}

// @Summary 标记章节已观看
// @Description 标记当前学生已观看某节课，重复调用无副作用，返回最新进度
// @Tags 学习进度
// @Produce json
// @Security ApiKeyAuth
// @Param courseId path int true "课程ID"
// @Param lectureId path int true "章节ID"
// @Success 200 {object} util.Response{data=RecordViewResponse}
// @Failure 400 {object} util.Response
// @Failure 404 {object} util.Response
// @Failure 503 {object} util.Response
// @Router /courses/{courseId}/lectures/{lectureId}/view [post]
func (c *ProgressController) RecordView(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	courseID, ok := pathID(ctx, "courseId")
	if !ok {
		return
	}
	lectureID, ok := pathID(ctx, "lectureId")
	if !ok {
		return
	}

	summary, completed, err := c.ViewTracker.TrackView(ctx.Request.Context(), user.UserID, courseID, lectureID)
	if err != nil {
		respondError(ctx, err)
		return
	}

	util.Success(ctx, RecordViewResponse{Progress: summary, JustCompleted: completed})
}

// @Summary 获取课程进度
// @Description 获取当前学生的课程进度摘要（完成百分比、续播章节、是否完成）
// @Tags 学习进度
// @Produce json
// @Security ApiKeyAuth
// @Param courseId path int true "课程ID"
// @Success 200 {object} util.Response{data=model.CourseProgressSummary}
// @Router /courses/{courseId}/progress [get]
func (c *ProgressController) GetSummary(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	courseID, ok := pathID(ctx, "courseId")
	if !ok {
		return
	}

	summary, err := c.ProgressService.ComputeSummary(ctx.Request.Context(), user.UserID, courseID)
	if err != nil {
		respondError(ctx, err)
		return
	}

	util.Success(ctx, summary)
}

// @Summary 获取章节观看状态
// @Tags 学习进度
// @Produce json
// @Security ApiKeyAuth
// @Param courseId path int true "课程ID"
// @Success 200 {object} util.Response
// @Router /courses/{courseId}/lectures [get]
func (c *ProgressController) GetLectureStates(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	courseID, ok := pathID(ctx, "courseId")
	if !ok {
		return
	}

	states, err := c.ProgressService.LectureStates(ctx.Request.Context(), user.UserID, courseID)
	if err != nil {
		respondError(ctx, err)
		return
	}

	util.Success(ctx, states)
}

// @Summary 重置课程进度
// @Description 清空当前学生在该课程的全部观看记录
// @Tags 学习进度
// @Produce json
// @Security ApiKeyAuth
// @Param courseId path int true "课程ID"
// @Success 200 {object} util.Response{data=model.CourseProgressSummary}
// @Router /courses/{courseId}/progress/reset [post]
func (c *ProgressController) Reset(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	courseID, ok := pathID(ctx, "courseId")
	if !ok {
		return
	}

	summary, err := c.ProgressService.ResetCourse(ctx.Request.Context(), user.UserID, courseID)
	if err != nil {
		respondError(ctx, err)
		return
	}

	util.Success(ctx, summary)
}
