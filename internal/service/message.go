package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"mailbin/backend/internal/domain"
	"mailbin/backend/internal/storage"
)

// MessageService 封装邮件记录的投递与查询逻辑。
type MessageService struct {
	repo storage.MessageRepository
}

// NewMessageService 创建邮件业务服务。
func NewMessageService(repo storage.MessageRepository) *MessageService {
	return &MessageService{repo: repo}
}

// DeliverInput 定义投递一封邮件的输入。
type DeliverInput struct {
	Token   string  // 收件箱令牌（第一个被接受收件人的 local part）
	From    string  // 发件人展示串，来自邮件头
	To      string  // 被接受的收件地址
	Subject string
	Text    string
	HTML    *string // nil 表示没有 HTML 部分
}

// Deliver 创建并持久化一条邮件记录。
//
// ReceivedAt 在持久化时刻赋值，不使用邮件头中的日期
// （头部时间不可信）。记录创建后不再修改。
func (s *MessageService) Deliver(ctx context.Context, input DeliverInput) (*domain.Message, error) {
	message := &domain.Message{
		ID:         uuid.NewString(),
		InboxToken: input.Token,
		From:       input.From,
		To:         input.To,
		Subject:    input.Subject,
		Text:       input.Text,
		HTML:       input.HTML,
		ReceivedAt: time.Now().UTC(),
	}

	if err := s.repo.SaveMessage(ctx, message); err != nil {
		return nil, fmt.Errorf("save message: %w", err)
	}
	return message, nil
}

// List 列出指定令牌下的全部邮件，按接收时间降序。
func (s *MessageService) List(ctx context.Context, token string) ([]domain.Message, error) {
	return s.repo.ListMessagesByToken(ctx, token)
}

// Get 获取单封邮件详情，校验其属于指定令牌。
//
// ID 不是合法的 UUID 时返回 domain.ErrInvalidMessageID；
// 记录不存在或属于其它令牌时返回 domain.ErrMessageNotFound。
func (s *MessageService) Get(ctx context.Context, token, id string) (*domain.Message, error) {
	if uuid.Validate(id) != nil {
		return nil, domain.ErrInvalidMessageID
	}
	return s.repo.GetMessage(ctx, id, token)
}

// Count 返回指定令牌下的邮件数量。
func (s *MessageService) Count(ctx context.Context, token string) (int64, error) {
	return s.repo.CountMessagesByToken(ctx, token)
}

// Clear 清空指定令牌下的全部邮件，返回删除数量。
func (s *MessageService) Clear(ctx context.Context, token string) (int64, error) {
	return s.repo.DeleteMessagesByToken(ctx, token)
}
