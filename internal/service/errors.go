// 文件路径: internal/service/errors.go
// 模块说明: 服务层的哨兵错误，HTTP 层通过 errors.Is / errors.As 判定并映射状态码。
package service

import (
	"errors"
	"fmt"

	"github.com/Zhousiru/clashub/internal/repository"
)

var (
	// ErrNotFound indicates requested record does not exist.
	ErrNotFound = repository.ErrNotFound
	// ErrInvalidID indicates an id outside the lowercase hyphenated grammar.
	ErrInvalidID = errors.New("service: invalid id / ID 格式无效")
	// ErrInvalidURL indicates a target that is not an absolute http(s) URL.
	ErrInvalidURL = errors.New("service: invalid url / URL 无效")
	// ErrInvalidToken indicates a token shorter than MinTokenLength.
	ErrInvalidToken = errors.New("service: invalid token / 令牌无效")
	// ErrInvalidCurrentToken indicates the current token supplied for a change did not verify.
	ErrInvalidCurrentToken = errors.New("service: invalid current token / 当前令牌错误")
	// ErrAlreadyInitialized indicates the first-run setup already happened.
	ErrAlreadyInitialized = errors.New("service: already initialized / 已完成初始化")
)

// UpstreamError reports a non-2xx answer from a fetched remote resource.
type UpstreamError struct {
	StatusCode int
	StatusText string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("Failed to fetch subscription: %d %s", e.StatusCode, e.StatusText)
}

// FormatError reports a fetched document without the expected shape.
type FormatError struct {
	Reason string
}

func (e *FormatError) Error() string {
	return "extract proxies failed: " + e.Reason
}

// ConnectionError wraps network-level failures talking to an upstream.
type ConnectionError struct {
	Target string
	Err    error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connection to %s failed: %v", e.Target, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}
