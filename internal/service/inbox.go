package service

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// Inbox 表示创建收件箱接口返回的一次性地址。
type Inbox struct {
	Token   string // 随机令牌，16 位十六进制字符
	Address string // token@domain 形式的完整地址
}

// InboxService 提供创建收件箱的便捷能力。
//
// 创建只是生成随机令牌，不涉及存储：令牌空间就是全部合法
// local part，收件箱从不被注册或显式创建。
type InboxService struct {
	domain string
}

// NewInboxService 创建收件箱服务。
func NewInboxService(domain string) *InboxService {
	return &InboxService{domain: domain}
}

// New 生成一个随机收件箱。
func (s *InboxService) New() (*Inbox, error) {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return nil, fmt.Errorf("generate inbox token: %w", err)
	}

	token := hex.EncodeToString(buf)
	return &Inbox{
		Token:   token,
		Address: fmt.Sprintf("%s@%s", token, s.domain),
	}, nil
}
