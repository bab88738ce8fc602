package storage

import (
	"context"

	"mailbin/backend/internal/domain"
)

// MessageRepository 定义邮件数据存取操作。
//
// 写入方（SMTP 接收端）和读取方（HTTP API）共用同一个仓库，
// 两者之间不要求事务耦合：写入完成后对后续查询可见即可。
type MessageRepository interface {
	// SaveMessage 持久化一条新的邮件记录。
	SaveMessage(ctx context.Context, message *domain.Message) error
	// ListMessagesByToken 返回指定令牌下的全部邮件，按 ReceivedAt 降序。
	ListMessagesByToken(ctx context.Context, token string) ([]domain.Message, error)
	// GetMessage 按 ID 获取邮件；token 非空时记录必须同时属于该令牌，
	// 否则返回 domain.ErrMessageNotFound（防止跨收件箱猜测 ID）。
	GetMessage(ctx context.Context, id, token string) (*domain.Message, error)
	// CountMessagesByToken 返回指定令牌下的邮件数量。
	CountMessagesByToken(ctx context.Context, token string) (int64, error)
	// DeleteMessagesByToken 删除指定令牌下的全部邮件，返回删除数量。
	DeleteMessagesByToken(ctx context.Context, token string) (int64, error)
}

// Store 定义完整的存储接口。
type Store interface {
	MessageRepository

	// Health 检查存储连通性。
	Health(ctx context.Context) error
	// Close 关闭存储并排空连接池。
	Close(ctx context.Context) error
}
