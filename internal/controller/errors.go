package controller

import (
	"coursetrack_backend/internal/util"
	"coursetrack_backend/pkg/logger"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondError 将业务错误映射为 HTTP 状态码
func respondError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrInvalidLecture),
		errors.Is(err, util.ErrInvalidRating),
		errors.Is(err, util.ErrInvalidScope):
		util.BadRequest(ctx, err.Error())
	case errors.Is(err, util.ErrCourseNotFound):
		util.Error(ctx, http.StatusNotFound, err.Error())
	case errors.Is(err, util.ErrNotEnrolled):
		util.Error(ctx, http.StatusNotFound, err.Error())
	case errors.Is(err, util.ErrAlreadyEnrolled):
		util.Conflict(ctx, err.Error())
	case errors.Is(err, util.ErrPermissionDenied):
		util.Forbidden(ctx)
	case errors.Is(err, util.ErrStorageUnavailable):
		logger.Log.Warn("Storage unavailable", zap.Error(err), zap.String("path", ctx.FullPath()))
		util.ServiceUnavailable(ctx)
	default:
		util.LogInternalError(ctx, err)
	}
}

// pathID 解析路径参数中的 ID，失败时直接返回 400
func pathID(ctx *gin.Context, name string) (uint, bool) {
	id, ok := util.ParseID(ctx.Param(name))
	if !ok {
		util.BadRequest(ctx, "Invalid "+name)
		return 0, false
	}
	return id, true
}
