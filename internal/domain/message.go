package domain

import "time"

// Message 表示投递到某个一次性收件箱的一封邮件。
//
// 记录在成功解析并持久化时一次性创建，创建后不再修改；
// 删除只能按 InboxToken 批量进行。
type Message struct {
	ID         string    `json:"id" bson:"_id"`
	InboxToken string    `json:"inboxToken" bson:"inboxToken"`
	From       string    `json:"from" bson:"from"`
	To         string    `json:"to" bson:"to"`
	Subject    string    `json:"subject" bson:"subject"`
	Text       string    `json:"text" bson:"text"`
	// HTML 为 nil 表示邮件没有 HTML 部分；
	// 下游据此区分"无 HTML"与"HTML 为空串"。
	HTML       *string   `json:"html" bson:"html"`
	ReceivedAt time.Time `json:"receivedAt" bson:"receivedAt"`
}

// HasHTML 报告邮件是否带有 HTML 部分。
func (m *Message) HasHTML() bool {
	return m.HTML != nil
}

// MessageSummary 是邮件列表接口返回的摘要视图，不含正文。
type MessageSummary struct {
	ID         string    `json:"id"`
	Subject    string    `json:"subject"`
	From       string    `json:"from"`
	To         string    `json:"to"`
	ReceivedAt time.Time `json:"receivedAt"`
	HasHTML    bool      `json:"hasHtml"`
}

// Summary 生成邮件的摘要视图。
func (m *Message) Summary() MessageSummary {
	return MessageSummary{
		ID:         m.ID,
		Subject:    m.Subject,
		From:       m.From,
		To:         m.To,
		ReceivedAt: m.ReceivedAt,
		HasHTML:    m.HasHTML(),
	}
}
