package smtp

import (
	"errors"
	"testing"

	gosmtp "github.com/emersion/go-smtp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecipientPolicy_Validate(t *testing.T) {
	policy := NewRecipientPolicy("tempmail.local")

	t.Run("域名匹配时接受并返回local part", func(t *testing.T) {
		token, err := policy.Validate("abc123@tempmail.local")
		require.NoError(t, err)
		assert.Equal(t, "abc123", token)
	})

	t.Run("域名比较不区分大小写", func(t *testing.T) {
		token, err := policy.Validate("abc123@TempMail.LOCAL")
		require.NoError(t, err)
		assert.Equal(t, "abc123", token)
	})

	t.Run("令牌保留原始大小写", func(t *testing.T) {
		token, err := policy.Validate("AbC123@tempmail.local")
		require.NoError(t, err)
		assert.Equal(t, "AbC123", token)
	})

	t.Run("去除尖括号包装", func(t *testing.T) {
		token, err := policy.Validate("<abc123@tempmail.local>")
		require.NoError(t, err)
		assert.Equal(t, "abc123", token)
	})

	t.Run("任意local part都是合法令牌", func(t *testing.T) {
		for _, addr := range []string{
			"a+b.c@tempmail.local",
			"UPPER-case_42@tempmail.local",
			"@tempmail.local", // 空 local part 同样接受
		} {
			_, err := policy.Validate(addr)
			assert.NoError(t, err, addr)
		}
	})

	t.Run("local part含@时取最后一个@分隔", func(t *testing.T) {
		token, err := policy.Validate(`"weird@name"@tempmail.local`)
		require.NoError(t, err)
		assert.Equal(t, `"weird@name"`, token)
	})

	t.Run("域名不匹配时返回550", func(t *testing.T) {
		_, err := policy.Validate("x@otherdomain.com")
		require.Error(t, err)

		var smtpErr *gosmtp.SMTPError
		require.True(t, errors.As(err, &smtpErr))
		assert.Equal(t, 550, smtpErr.Code)
	})

	t.Run("地址格式非法时返回501", func(t *testing.T) {
		for _, addr := range []string{"no-at-sign", "trailing@", ""} {
			_, err := policy.Validate(addr)
			require.Error(t, err, addr)

			var smtpErr *gosmtp.SMTPError
			require.True(t, errors.As(err, &smtpErr), addr)
			assert.Equal(t, 501, smtpErr.Code, addr)
		}
	})
}
