package smtp

import (
	"context"
	"errors"
	"io"
	"time"

	gosmtp "github.com/emersion/go-smtp"
	"go.uber.org/zap"

	"mailbin/backend/internal/monitoring"
	"mailbin/backend/internal/service"
)

// persistTimeout 单次持久化调用的超时，避免存储抖动拖死会话。
const persistTimeout = 30 * time.Second

// Backend 实现 go-smtp 的 Backend 接口。
//
// 【安全说明】
// 这是一个只接收邮件的 SMTP 服务器（Receiving-Only SMTP Server）：
// - 只接受发往配置域名的邮件，其余收件人一律 550 拒绝
// - 不做发件人认证（任何人都可以投递，与一次性邮箱的定位一致）
// - 不支持对外发送或中继，不会成为垃圾邮件中继
//
// 每个连接一个独立会话；会话内的邮件事务严格串行，不同连接之间
// 只共享存储连接池与计数器。
type Backend struct {
	policy    *RecipientPolicy
	messages  *service.MessageService
	collector *monitoring.IngestCollector
	metrics   *monitoring.Metrics
	limiter   *ConnectionLimiter
	logger    *zap.Logger
	maxBytes  int64
}

// BackendOptions 定义 SMTP Backend 的依赖。
type BackendOptions struct {
	Policy    *RecipientPolicy
	Messages  *service.MessageService
	Collector *monitoring.IngestCollector
	Metrics   *monitoring.Metrics    // 可选
	Limiter   *ConnectionLimiter     // 可选
	Logger    *zap.Logger
	MaxBytes  int64 // 单封邮件最大字节数
}

// NewBackend 创建 SMTP Backend。
func NewBackend(opts BackendOptions) *Backend {
	return &Backend{
		policy:    opts.Policy,
		messages:  opts.Messages,
		collector: opts.Collector,
		metrics:   opts.Metrics,
		limiter:   opts.Limiter,
		logger:    opts.Logger,
		maxBytes:  opts.MaxBytes,
	}
}

// NewSession 创建新的 SMTP 会话。
func (b *Backend) NewSession(_ *gosmtp.Conn) (gosmtp.Session, error) {
	if b.limiter != nil && !b.limiter.Acquire() {
		return nil, &gosmtp.SMTPError{
			Code:         421,
			EnhancedCode: gosmtp.EnhancedCode{4, 4, 5},
			Message:      "too many connections, try again later",
		}
	}
	return &session{backend: b}, nil
}

// session 承载一条连接上的邮件传输状态机。
//
// 多收件人投递只产生一条记录，令牌取第一个被接受收件人的
// local part（沿用既有行为，已知的局限）。
type session struct {
	backend     *Backend
	fromAddress string
	recipients  []recipient
}

type recipient struct {
	address string
	token   string
}

// Mail 处理 MAIL 命令，记录信封发件人（不做独立校验）。
func (s *session) Mail(from string, _ *gosmtp.MailOptions) error {
	s.fromAddress = from
	return nil
}

// Rcpt 处理 RCPT 命令。
//
// 策略拒绝只影响当前收件人，会话继续；拒绝不计入接收错误
// （那是策略判定，不是管线失败）。
func (s *session) Rcpt(to string, _ *gosmtp.RcptOptions) error {
	token, err := s.backend.policy.Validate(to)
	if err != nil {
		if s.backend.metrics != nil {
			s.backend.metrics.RecordRecipientRejected()
		}
		s.backend.logger.Debug("recipient rejected",
			zap.String("to", to),
		)
		return err
	}

	s.recipients = append(s.recipients, recipient{address: to, token: token})
	return nil
}

// Data 处理邮件内容：读满字节流、解析、建档、持久化。
//
// 失败语义：超限 552、解析失败 554、持久化失败 451，均只终止
// 当前邮件事务，连接保持可用；客户端中途断开时部分字节直接
// 丢弃，不会产生半条记录。
func (s *session) Data(r io.Reader) error {
	if len(s.recipients) == 0 {
		return &gosmtp.SMTPError{
			Code:         503,
			EnhancedCode: gosmtp.EnhancedCode{5, 5, 1},
			Message:      "no valid recipients",
		}
	}

	// 多读一个字节以区分"恰好达到上限"与"超限"
	raw, err := io.ReadAll(io.LimitReader(r, s.backend.maxBytes+1))
	if err != nil {
		// 服务器配置了 MaxMessageBytes 时，协议层的读取器会先于
		// 本地上限截断字节流；该失败同样按超限记账
		if errors.Is(err, gosmtp.ErrDataTooLarge) {
			return s.rejectOversize()
		}
		return err
	}
	if int64(len(raw)) > s.backend.maxBytes {
		return s.rejectOversize()
	}

	parsed, err := ParseMessage(raw)
	if err != nil {
		s.recordFailure(monitoring.StageParse)
		s.backend.logger.Warn("failed to parse message",
			zap.String("token", s.recipients[0].token),
			zap.Error(err),
		)
		return &gosmtp.SMTPError{
			Code:         554,
			EnhancedCode: gosmtp.EnhancedCode{5, 6, 0},
			Message:      "message could not be parsed",
		}
	}

	first := s.recipients[0]

	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	message, err := s.backend.messages.Deliver(ctx, service.DeliverInput{
		Token:   first.token,
		From:    parsed.From,
		To:      first.address,
		Subject: parsed.Subject,
		Text:    parsed.Text,
		HTML:    parsed.HTML,
	})
	if err != nil {
		s.recordFailure(monitoring.StageStore)
		s.backend.logger.Error("failed to store message",
			zap.String("token", first.token),
			zap.Error(err),
		)
		// 瞬时失败，发送方可按标准重试机制再投
		return &gosmtp.SMTPError{
			Code:         451,
			EnhancedCode: gosmtp.EnhancedCode{4, 3, 0},
			Message:      "temporary failure storing message",
		}
	}

	s.backend.collector.RecordProcessed()
	if s.backend.metrics != nil {
		s.backend.metrics.RecordMessageReceived()
	}
	s.backend.logger.Info("message stored",
		zap.String("token", first.token),
		zap.String("message_id", message.ID),
		zap.String("from", parsed.From),
	)
	return nil
}

// Reset 重置事务状态，连接可继续下一封邮件。
func (s *session) Reset() {
	s.fromAddress = ""
	s.recipients = nil
}

// Logout 会话结束。
func (s *session) Logout() error {
	if s.backend.limiter != nil {
		s.backend.limiter.Release()
	}
	return nil
}

// rejectOversize 记录超限失败并返回 552。
func (s *session) rejectOversize() error {
	s.recordFailure(monitoring.StageSize)
	s.backend.logger.Warn("message exceeds size limit",
		zap.Int64("limit_bytes", s.backend.maxBytes),
	)
	return &gosmtp.SMTPError{
		Code:         552,
		EnhancedCode: gosmtp.EnhancedCode{5, 3, 4},
		Message:      "message size exceeds fixed maximum",
	}
}

func (s *session) recordFailure(stage string) {
	s.backend.collector.RecordError()
	if s.backend.metrics != nil {
		s.backend.metrics.RecordIngestError(stage)
	}
}
