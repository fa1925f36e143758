package service

import (
	"errors"
)

const (
	BadRequest          = 400
	Unauthorized        = 401
	Forbidden           = 403
	NotFound            = 404
	Conflict            = 409
	TooManyRequests     = 429
	InternalServerError = 500
	BadGateway          = 502
)

var (
	ErrParamInvalid        = errors.New("invalid request parameters")
	ErrInvalidViewKey      = errors.New("invalid view counter key")
	ErrUserNotFound        = errors.New("user not found")
	ErrUserExist           = errors.New("user already exists")
	ErrPasswordIncorrect   = errors.New("incorrect password")
	ErrDraftNotFound       = errors.New("draft not found")
	ErrCourseDraftNotFound = errors.New("course draft not found")
	ErrResourceNotFound    = errors.New("resource not found")
	ErrCourseNotFound      = errors.New("course not found")
	ErrAccessDenied        = errors.New("access denied")
	ErrInvalidEvent        = errors.New("invalid signed event")
	ErrEventIDMismatch     = errors.New("event d tag does not match draft id")
	ErrDuplicateLessons    = errors.New("draft is used by multiple lessons")
	ErrLessonNotPublished  = errors.New("lesson not yet published")
	ErrMissingLessons      = errors.New("course has lessons without a resolvable resource")
	ErrAlreadyPublished    = errors.New("record already published")
	ErrPrivkeyUnavailable  = errors.New("no usable signing key configured")
	ErrSigningInput        = errors.New("exactly one of signed event or server signing must be used")
	ErrRelayPublishFailed  = errors.New("failed to publish to any relay")
	ErrFlushUnauthorized   = errors.New("flush trigger unauthorized")
	ErrRateLimited         = errors.New("too many requests")
	UnauthorizedError      = errors.New("unauthorized")
	UnExpectedError        = errors.New("unexpected error, please retry later")
)

var ErrorMap = map[error]int{
	ErrParamInvalid:        BadRequest,
	ErrInvalidViewKey:      BadRequest,
	ErrUserNotFound:        NotFound,
	ErrUserExist:           BadRequest,
	ErrPasswordIncorrect:   Unauthorized,
	ErrDraftNotFound:       NotFound,
	ErrCourseDraftNotFound: NotFound,
	ErrResourceNotFound:    NotFound,
	ErrCourseNotFound:      NotFound,
	ErrAccessDenied:        Forbidden,
	ErrInvalidEvent:        BadRequest,
	ErrEventIDMismatch:     BadRequest,
	ErrDuplicateLessons:    Conflict,
	ErrLessonNotPublished:  BadRequest,
	ErrMissingLessons:      BadRequest,
	ErrAlreadyPublished:    Conflict,
	ErrPrivkeyUnavailable:  BadRequest,
	ErrSigningInput:        BadRequest,
	ErrRelayPublishFailed:  BadGateway,
	ErrFlushUnauthorized:   Unauthorized,
	ErrRateLimited:         TooManyRequests,
	UnauthorizedError:      Unauthorized,
	UnExpectedError:        InternalServerError,
}
