package service

import (
	"coursetrack_backend/internal/util"
	"errors"
	"fmt"
)

// 业务错误直接透传，其余存储层错误（包括超时、取消）统一归为 ErrStorageUnavailable
var terminalErrors = []error{
	util.ErrInvalidLecture,
	util.ErrCourseNotFound,
	util.ErrAlreadyEnrolled,
	util.ErrNotEnrolled,
	util.ErrInvalidRating,
	util.ErrInvalidScope,
}

func storageError(op string, err error) error {
	if err == nil {
		return nil
	}
	for _, terminal := range terminalErrors {
		if errors.Is(err, terminal) {
			return err
		}
	}
	if errors.Is(err, util.ErrStorageUnavailable) {
		return err
	}
	return fmt.Errorf("%s: %w: %w", op, util.ErrStorageUnavailable, err)
}
