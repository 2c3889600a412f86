package services

import "errors"

// 业务错误分类，handler 在边界处映射为页面或状态码
var (
	ErrNotFound     = errors.New("target not found")
	ErrForbidden    = errors.New("operation not allowed")
	ErrInvalidState = errors.New("invalid state for this operation")
	ErrUpstream     = errors.New("upstream service unavailable")
)
