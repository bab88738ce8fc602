package monitoring

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics 监控指标
type Metrics struct {
	// HTTP 请求指标
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// 接收管线指标
	MessagesReceived   prometheus.Counter
	MessagesDeleted    prometheus.Counter
	InboxesCreated     prometheus.Counter
	RecipientsRejected prometheus.Counter
	IngestErrors       *prometheus.CounterVec

	// 错误指标
	PanicsTotal prometheus.Counter
}

// 接收管线失败阶段标签值
const (
	StageParse = "parse"
	StageSize  = "size"
	StageStore = "store"
)

// NewMetrics 创建监控指标
//
// promauto 将指标注册到默认注册表；进程内只应创建一次。
func NewMetrics() *Metrics {
	return &Metrics{
		HTTPRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mailbin_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status_code"},
		),

		HTTPRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "mailbin_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),

		MessagesReceived: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "mailbin_messages_received_total",
				Help: "Total number of messages persisted",
			},
		),

		MessagesDeleted: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "mailbin_messages_deleted_total",
				Help: "Total number of messages deleted",
			},
		),

		InboxesCreated: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "mailbin_inboxes_created_total",
				Help: "Total number of inbox tokens generated",
			},
		),

		RecipientsRejected: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "mailbin_recipients_rejected_total",
				Help: "Total number of recipients rejected by policy",
			},
		),

		IngestErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mailbin_ingest_errors_total",
				Help: "Total number of ingestion failures",
			},
			[]string{"stage"},
		),

		PanicsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "mailbin_panics_total",
				Help: "Total number of panics",
			},
		),
	}
}

// RecordHTTPRequest 记录 HTTP 请求指标
func (m *Metrics) RecordHTTPRequest(method, endpoint, statusCode string, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordMessageReceived 记录邮件持久化成功
func (m *Metrics) RecordMessageReceived() {
	m.MessagesReceived.Inc()
}

// RecordMessagesDeleted 记录邮件删除
func (m *Metrics) RecordMessagesDeleted(count int64) {
	m.MessagesDeleted.Add(float64(count))
}

// RecordInboxCreated 记录收件箱令牌生成
func (m *Metrics) RecordInboxCreated() {
	m.InboxesCreated.Inc()
}

// RecordRecipientRejected 记录策略拒绝（拒绝不计入接收错误）
func (m *Metrics) RecordRecipientRejected() {
	m.RecipientsRejected.Inc()
}

// RecordIngestError 记录接收管线失败，stage 取 Stage* 常量
func (m *Metrics) RecordIngestError(stage string) {
	m.IngestErrors.WithLabelValues(stage).Inc()
}

// RecordPanic 记录 panic
func (m *Metrics) RecordPanic() {
	m.PanicsTotal.Inc()
}

// HTTPHandler 返回 Prometheus HTTP 处理器
func (m *Metrics) HTTPHandler() http.Handler {
	return promhttp.Handler()
}
