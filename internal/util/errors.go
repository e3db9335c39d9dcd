package util

import "errors"

var (
	ErrPermissionDenied   = errors.New("permission denied")
	ErrInvalidLecture     = errors.New("lecture does not belong to course curriculum")
	ErrCourseNotFound     = errors.New("course not found")
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrAlreadyEnrolled    = errors.New("student already enrolled in course")
	ErrNotEnrolled        = errors.New("student not enrolled in course")
	ErrInvalidRating      = errors.New("rating must be between 1 and 5")
	ErrInvalidScope       = errors.New("exactly one of course or instructor must be given")
)
