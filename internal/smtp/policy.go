package smtp

import (
	"strings"

	gosmtp "github.com/emersion/go-smtp"
)

// RecipientPolicy 在 DATA 阶段之前判定收件人是否可接受。
//
// 本系统只服务单个域名：域名部分匹配即接受，local part 即为
// 收件箱令牌，不做任何注册表校验——任意 local part 都是合法收件箱
// （包括空串、非字母数字或任意长度的令牌）。
type RecipientPolicy struct {
	domain string
}

// NewRecipientPolicy 创建收件策略，domain 为接受投递的域名。
func NewRecipientPolicy(domain string) *RecipientPolicy {
	return &RecipientPolicy{domain: domain}
}

// Validate 校验收件人地址并推导收件箱令牌。
//
// 域名比较不区分大小写；令牌保留 local part 的原始大小写，
// 与查询接口的令牌语义保持一致。
//
// 返回值:
//   - string: 收件箱令牌（local part）
//   - error: 拒绝原因，*gosmtp.SMTPError，501 表示地址格式非法，
//     550 表示域名不在服务范围内；仅对当前收件人生效
func (p *RecipientPolicy) Validate(to string) (string, error) {
	addr := strings.TrimSpace(to)
	addr = strings.Trim(addr, "<>")

	at := strings.LastIndex(addr, "@")
	if at < 0 || at == len(addr)-1 {
		return "", &gosmtp.SMTPError{
			Code:         501,
			EnhancedCode: gosmtp.EnhancedCode{5, 1, 3},
			Message:      "invalid recipient address",
		}
	}

	recipientDomain := addr[at+1:]
	if !strings.EqualFold(recipientDomain, p.domain) {
		return "", &gosmtp.SMTPError{
			Code:         550,
			EnhancedCode: gosmtp.EnhancedCode{5, 7, 1},
			Message:      "domain not accepted",
		}
	}

	return addr[:at], nil
}
