package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mailbin/backend/internal/domain"
	"mailbin/backend/internal/storage/memory"
)

func TestMessageService_Deliver(t *testing.T) {
	svc := NewMessageService(memory.NewStore())
	ctx := context.Background()

	html := "<p>hi</p>"
	msg, err := svc.Deliver(ctx, DeliverInput{
		Token:   "abc123",
		From:    "alice@example.com",
		To:      "abc123@tempmail.local",
		Subject: "Hi",
		Text:    "hello",
		HTML:    &html,
	})
	require.NoError(t, err)

	// 服务端生成 UUID，不信任任何外部 ID
	assert.NoError(t, uuid.Validate(msg.ID))
	assert.Equal(t, "abc123", msg.InboxToken)
	assert.Equal(t, time.UTC, msg.ReceivedAt.Location())
	assert.WithinDuration(t, time.Now().UTC(), msg.ReceivedAt, 5*time.Second)

	stored, err := svc.Get(ctx, "abc123", msg.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.HTML)
	assert.Equal(t, html, *stored.HTML)
}

func TestMessageService_Get(t *testing.T) {
	svc := NewMessageService(memory.NewStore())
	ctx := context.Background()

	msg, err := svc.Deliver(ctx, DeliverInput{
		Token: "abc123",
		Text:  "hello",
	})
	require.NoError(t, err)

	t.Run("非法ID返回ErrInvalidMessageID", func(t *testing.T) {
		_, err := svc.Get(ctx, "abc123", "not-a-uuid")
		assert.ErrorIs(t, err, domain.ErrInvalidMessageID)
	})

	t.Run("不存在的记录返回ErrMessageNotFound", func(t *testing.T) {
		_, err := svc.Get(ctx, "abc123", uuid.NewString())
		assert.ErrorIs(t, err, domain.ErrMessageNotFound)
	})

	t.Run("跨令牌访问返回ErrMessageNotFound", func(t *testing.T) {
		_, err := svc.Get(ctx, "other", msg.ID)
		assert.ErrorIs(t, err, domain.ErrMessageNotFound)
	})
}

func TestMessageService_CountAndClear(t *testing.T) {
	svc := NewMessageService(memory.NewStore())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.Deliver(ctx, DeliverInput{Token: "abc123", Text: "hello"})
		require.NoError(t, err)
	}
	_, err := svc.Deliver(ctx, DeliverInput{Token: "other", Text: "hello"})
	require.NoError(t, err)

	count, err := svc.Count(ctx, "abc123")
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	deleted, err := svc.Clear(ctx, "abc123")
	require.NoError(t, err)
	assert.Equal(t, int64(3), deleted)

	// 清空是幂等的
	deleted, err = svc.Clear(ctx, "abc123")
	require.NoError(t, err)
	assert.Zero(t, deleted)

	otherCount, err := svc.Count(ctx, "other")
	require.NoError(t, err)
	assert.Equal(t, int64(1), otherCount)
}
