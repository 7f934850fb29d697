package service

import (
	"errors"
)

const (
	BadRequest          = 400
	Unauthorized        = 401
	NotFound            = 404
	InternalServerError = 500
)

var (
	ErrParamInvalid            = errors.New("参数错误")
	ErrUserNotFound            = errors.New("用户不存在")
	ErrUserUsernameExist       = errors.New("用户名已存在")
	ErrUserEmailExist          = errors.New("邮箱已注册")
	ErrPasswordIncorrect       = errors.New("密码错误")
	ErrMissingLoginCredentials = errors.New("缺少登录凭据")
	ErrIntegrationNotFound     = errors.New("集成不存在")
	ErrIntegrationDisabled     = errors.New("集成已禁用")
	ErrProviderNotSupported    = errors.New("不支持的平台")
	ErrPostNotFound            = errors.New("帖子不存在")
	ErrPostNotEditable         = errors.New("帖子当前状态不可编辑")
	ErrPostTargetInvalid       = errors.New("发布目标无效")
	ErrPublishTimeInvalid      = errors.New("排程时间无效")
	ErrFileNotSupported        = errors.New("不支持的文件类型")
	ErrFileNotExist            = errors.New("文件不存在")
	UnExpectedError            = errors.New("系统异常，请稍后重试")
)

var ErrorMap = map[error]int{
	ErrParamInvalid:            BadRequest,
	ErrUserNotFound:            NotFound,
	ErrUserUsernameExist:       BadRequest,
	ErrUserEmailExist:          BadRequest,
	ErrPasswordIncorrect:       Unauthorized,
	ErrMissingLoginCredentials: Unauthorized,
	ErrIntegrationNotFound:     NotFound,
	ErrIntegrationDisabled:     BadRequest,
	ErrProviderNotSupported:    BadRequest,
	ErrPostNotFound:            NotFound,
	ErrPostNotEditable:         BadRequest,
	ErrPostTargetInvalid:       BadRequest,
	ErrPublishTimeInvalid:      BadRequest,
	ErrFileNotSupported:        BadRequest,
	ErrFileNotExist:            NotFound,
	UnExpectedError:            InternalServerError,
}
