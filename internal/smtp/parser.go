package smtp

import (
	"bytes"
	"fmt"

	"github.com/jhillyerd/enmime"
)

// ParsedMail 表示解析后的邮件内容。
type ParsedMail struct {
	From    string  // 发件人展示串，来自 From 头（不可信，未与信封比对）
	To      string  // To 头的展示串
	Subject string  // 解码后的主题，缺失时为空串
	Text    string  // 纯文本正文，缺失时为空串
	HTML    *string // HTML 正文；nil 表示没有 HTML 部分
}

// ParseError 表示邮件字节流结构无法解析。
//
// 调用方应将其视为单封邮件的失败，而非连接级错误。
type ParseError struct {
	err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse message: %v", e.err)
}

func (e *ParseError) Unwrap() error {
	return e.err
}

// ParseMessage 解析一封完整的原始邮件。
//
// 输入是协议层已定界的完整字节流；传输编码与字符集解码由
// enmime 处理。本函数不限制邮件大小，流式上限由接收端负责。
func ParseMessage(raw []byte) (*ParsedMail, error) {
	envelope, err := enmime.ReadEnvelope(bytes.NewReader(raw))
	if err != nil {
		return nil, &ParseError{err: err}
	}

	parsed := &ParsedMail{
		From:    envelope.GetHeader("From"),
		To:      envelope.GetHeader("To"),
		Subject: envelope.GetHeader("Subject"),
		Text:    envelope.Text,
	}

	// 空 HTML 与缺失 HTML 都记为"无 HTML 部分"，
	// 与列表接口的 hasHtml 语义一致
	if envelope.HTML != "" {
		html := envelope.HTML
		parsed.HTML = &html
	}

	return parsed, nil
}
