package memory

import (
	"context"
	"sort"
	"sync"

	"mailbin/backend/internal/domain"
)

// Store 使用内存保存邮件记录，主要用于开发验证和测试。
//
// 记录创建后不再修改，因此读路径只需复制切片头；
// 所有写操作在互斥锁内完成。
type Store struct {
	mu      sync.RWMutex
	byToken map[string][]*domain.Message // inboxToken -> 按插入顺序的记录
	byID    map[string]*domain.Message   // messageID -> 记录
}

// NewStore 创建一个内存存储实例。
func NewStore() *Store {
	return &Store{
		byToken: make(map[string][]*domain.Message),
		byID:    make(map[string]*domain.Message),
	}
}

// SaveMessage 保存一条邮件记录。
func (s *Store) SaveMessage(_ context.Context, message *domain.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := cloneMessage(message)
	s.byToken[stored.InboxToken] = append(s.byToken[stored.InboxToken], stored)
	s.byID[stored.ID] = stored
	return nil
}

// ListMessagesByToken 返回指定令牌下的全部邮件，按 ReceivedAt 降序。
func (s *Store) ListMessagesByToken(_ context.Context, token string) ([]domain.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.byToken[token]
	result := make([]domain.Message, 0, len(stored))
	for _, msg := range stored {
		result = append(result, *cloneMessage(msg))
	}
	// 接收时间相同的记录保持插入顺序，保证重复查询结果一致
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].ReceivedAt.After(result[j].ReceivedAt)
	})
	return result, nil
}

// GetMessage 按 ID 获取邮件，token 非空时校验归属。
func (s *Store) GetMessage(_ context.Context, id, token string) (*domain.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	msg, ok := s.byID[id]
	if !ok {
		return nil, domain.ErrMessageNotFound
	}
	if token != "" && msg.InboxToken != token {
		return nil, domain.ErrMessageNotFound
	}
	return cloneMessage(msg), nil
}

// CountMessagesByToken 返回指定令牌下的邮件数量。
func (s *Store) CountMessagesByToken(_ context.Context, token string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.byToken[token])), nil
}

// DeleteMessagesByToken 删除指定令牌下的全部邮件，返回删除数量。
func (s *Store) DeleteMessagesByToken(_ context.Context, token string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := s.byToken[token]
	for _, msg := range stored {
		delete(s.byID, msg.ID)
	}
	delete(s.byToken, token)
	return int64(len(stored)), nil
}

// Health 内存存储总是健康的。
func (s *Store) Health(_ context.Context) error {
	return nil
}

// Close 释放全部记录。
func (s *Store) Close(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byToken = make(map[string][]*domain.Message)
	s.byID = make(map[string]*domain.Message)
	return nil
}

// cloneMessage 深拷贝记录，避免调用方与存储共享可变指针。
func cloneMessage(msg *domain.Message) *domain.Message {
	out := *msg
	if msg.HTML != nil {
		html := *msg.HTML
		out.HTML = &html
	}
	return &out
}
