package util

import "errors"

// 加载期错误：只影响单个题目插件，由 Loader 收集，不向外传播
var (
	ErrContractViolation  = errors.New("challenge contract violation")
	ErrMissingEntryPoint  = errors.New("missing challenge.go entry point")
	ErrLoadFailure        = errors.New("challenge load failure")
	ErrContractResolution = errors.New("cannot resolve challenge constructor")
	ErrDuplicateChallenge = errors.New("duplicate challenge identifier")
)

// 启动期错误：目录元数据同步失败时进程直接退出
var ErrReconciliationFailed = errors.New("challenge catalog reconciliation failed")

// 请求期错误：作为类型化结果返回给调用方
var (
	ErrInvalidRequest     = errors.New("missing challenge slug or flag")
	ErrChallengeNotFound  = errors.New("challenge not found")
	ErrPersistence        = errors.New("persistence error")
	ErrUserNotFound       = errors.New("用户不存在")
	ErrUsernameTaken      = errors.New("该用户名已被注册")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrPermissionDenied   = errors.New("permission denied")
)
