package domain

import "errors"

var (
	// ErrMessageNotFound 邮件不存在，或不属于请求指定的收件箱令牌。
	ErrMessageNotFound = errors.New("message not found")
	// ErrInvalidMessageID 邮件 ID 格式非法。
	ErrInvalidMessageID = errors.New("invalid message id")
)
