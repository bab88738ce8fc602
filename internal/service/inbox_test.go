package service

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInboxService_New(t *testing.T) {
	svc := NewInboxService("tempmail.local")

	inbox, err := svc.New()
	require.NoError(t, err)

	// 令牌为 16 位十六进制字符
	assert.Len(t, inbox.Token, 16)
	_, err = hex.DecodeString(inbox.Token)
	assert.NoError(t, err)

	assert.Equal(t, inbox.Token+"@tempmail.local", inbox.Address)
}

func TestInboxService_TokensAreUnique(t *testing.T) {
	svc := NewInboxService("tempmail.local")

	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		inbox, err := svc.New()
		require.NoError(t, err)

		_, dup := seen[inbox.Token]
		require.False(t, dup, "duplicate token %s", inbox.Token)
		seen[inbox.Token] = struct{}{}
	}
}
