package controller

import (
	"coursetrack_backend/internal/service"
	"coursetrack_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type EnrollmentController struct {
	EnrollmentService *service.EnrollmentService
}

func NewEnrollmentController(enrollmentService *service.EnrollmentService) *EnrollmentController {
	return &EnrollmentController{EnrollmentService: enrollmentService}
}

type RateCourseRequest struct {
	Rating int `json:"rating" binding:"required,min=1,max=5"`
}

// @Summary 选课
// @Description 以课程当前价格为成交价加入课程
// @Tags 选课
// @Produce json
// @Security ApiKeyAuth
// @Param courseId path int true "课程ID"
// @Success 201 {object} util.Response{data=model.Enrollment}
// @Failure 409 {object} util.Response
// @Router /courses/{courseId}/enroll [post]
func (c *EnrollmentController) Enroll(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	courseID, ok := pathID(ctx, "courseId")
	if !ok {
		return
	}

	enrollment, err := c.EnrollmentService.Enroll(ctx.Request.Context(), user.UserID, courseID)
	if err != nil {
		respondError(ctx, err)
		return
	}

	util.Created(ctx, enrollment)
}

// @Summary 课程评分
// @Tags 选课
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param courseId path int true "课程ID"
// @Param body body RateCourseRequest true "评分(1-5)"
// @Success 200 {object} util.Response
// @Router /courses/{courseId}/rating [put]
func (c *EnrollmentController) Rate(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	courseID, ok := pathID(ctx, "courseId")
	if !ok {
		return
	}

	var req RateCourseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.EnrollmentService.RateCourse(ctx.Request.Context(), user.UserID, courseID, req.Rating); err != nil {
		respondError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"rating": req.Rating})
}
