package httptransport

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// errorResponse 错误响应结构
//
// 对外 API 与既有客户端约定使用扁平的 {"error": "..."} 形状，
// 不包装统一信封。
type errorResponse struct {
	Error string `json:"error"`
}

// 错误提示信息
const (
	MsgInvalidMessageID    = "Invalid message ID"
	MsgMessageNotFound     = "Message not found"
	MsgInboxCreateFailed   = "Failed to create inbox"
	MsgMessageFetchFailed  = "Failed to fetch messages"
	MsgMessageDeleteFailed = "Failed to delete messages"
	MsgMessageCountFailed  = "Failed to count messages"
	MsgRouteNotFound       = "Route not found"
)

// BadRequest 请求参数错误（400）
func BadRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, errorResponse{Error: msg})
}

// NotFound 资源不存在错误（404）
func NotFound(c *gin.Context, msg string) {
	c.JSON(http.StatusNotFound, errorResponse{Error: msg})
}

// InternalError 服务器内部错误（500）
func InternalError(c *gin.Context, msg string) {
	c.JSON(http.StatusInternalServerError, errorResponse{Error: msg})
}
