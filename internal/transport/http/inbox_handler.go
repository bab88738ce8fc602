package httptransport

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"mailbin/backend/internal/domain"
	"mailbin/backend/internal/monitoring"
	"mailbin/backend/internal/service"
)

// InboxHandler 聚合收件箱相关的 HTTP 处理逻辑。
type InboxHandler struct {
	inboxes  *service.InboxService
	messages *service.MessageService
	metrics  *monitoring.Metrics
	logger   *zap.Logger
}

// NewInboxHandler 创建收件箱处理器。
func NewInboxHandler(inboxes *service.InboxService, messages *service.MessageService, metrics *monitoring.Metrics, logger *zap.Logger) *InboxHandler {
	return &InboxHandler{
		inboxes:  inboxes,
		messages: messages,
		metrics:  metrics,
		logger:   logger,
	}
}

type createInboxResponse struct {
	Token   string `json:"token"`
	Address string `json:"address"`
	Note    string `json:"note"`
}

type messageListResponse struct {
	Inbox    string                  `json:"inbox"`
	Count    int                     `json:"count"`
	Messages []domain.MessageSummary `json:"messages"`
}

type deleteMessagesResponse struct {
	Message      string `json:"message"`
	DeletedCount int64  `json:"deletedCount"`
}

type countResponse struct {
	Inbox string `json:"inbox"`
	Count int64  `json:"count"`
}

// createInbox 创建一个随机收件箱地址。
//
// 创建纯粹是生成令牌，不写存储：任意地址本来就可以直接收信。
func (h *InboxHandler) createInbox(c *gin.Context) {
	inbox, err := h.inboxes.New()
	if err != nil {
		h.logger.Error("failed to create inbox", zap.Error(err))
		InternalError(c, MsgInboxCreateFailed)
		return
	}

	if h.metrics != nil {
		h.metrics.RecordInboxCreated()
	}

	c.JSON(http.StatusOK, createInboxResponse{
		Token:   inbox.Token,
		Address: inbox.Address,
		Note:    "You can also send emails to any address at this domain and check messages using the local part as the token",
	})
}

// listMessages 返回收件箱内全部邮件的摘要列表，按接收时间降序。
func (h *InboxHandler) listMessages(c *gin.Context) {
	token := c.Param("token")

	messages, err := h.messages.List(c.Request.Context(), token)
	if err != nil {
		h.logger.Error("failed to fetch messages",
			zap.String("token", token),
			zap.Error(err),
		)
		InternalError(c, MsgMessageFetchFailed)
		return
	}

	summaries := make([]domain.MessageSummary, 0, len(messages))
	for i := range messages {
		summaries = append(summaries, messages[i].Summary())
	}

	c.JSON(http.StatusOK, messageListResponse{
		Inbox:    token,
		Count:    len(summaries),
		Messages: summaries,
	})
}

// getMessage 返回单封邮件的完整内容。
func (h *InboxHandler) getMessage(c *gin.Context) {
	token := c.Param("token")
	id := c.Param("id")

	message, err := h.messages.Get(c.Request.Context(), token, id)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidMessageID):
			BadRequest(c, MsgInvalidMessageID)
		case errors.Is(err, domain.ErrMessageNotFound):
			NotFound(c, MsgMessageNotFound)
		default:
			h.logger.Error("failed to fetch message",
				zap.String("token", token),
				zap.String("message_id", id),
				zap.Error(err),
			)
			InternalError(c, MsgMessageFetchFailed)
		}
		return
	}

	c.JSON(http.StatusOK, message)
}

// deleteMessages 清空收件箱。删除不存在的收件箱同样成功，deletedCount 为 0。
func (h *InboxHandler) deleteMessages(c *gin.Context) {
	token := c.Param("token")

	deleted, err := h.messages.Clear(c.Request.Context(), token)
	if err != nil {
		h.logger.Error("failed to delete messages",
			zap.String("token", token),
			zap.Error(err),
		)
		InternalError(c, MsgMessageDeleteFailed)
		return
	}

	if h.metrics != nil {
		h.metrics.RecordMessagesDeleted(deleted)
	}

	c.JSON(http.StatusOK, deleteMessagesResponse{
		Message:      "Messages deleted successfully",
		DeletedCount: deleted,
	})
}

// countMessages 返回收件箱内的邮件数量。
func (h *InboxHandler) countMessages(c *gin.Context) {
	token := c.Param("token")

	count, err := h.messages.Count(c.Request.Context(), token)
	if err != nil {
		h.logger.Error("failed to count messages",
			zap.String("token", token),
			zap.Error(err),
		)
		InternalError(c, MsgMessageCountFailed)
		return
	}

	c.JSON(http.StatusOK, countResponse{
		Inbox: token,
		Count: count,
	})
}
