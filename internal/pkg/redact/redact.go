// redact маскирует чувствительные значения перед записью в логи.
package redact

import (
	"net/url"
	"strings"
)

// Code оставляет первые 4 символа кода тенанта.
func Code(s string) string {
	s = strings.TrimSpace(s)
	if len(s) <= 4 {
		return "***"
	}

	return s[:4] + "***"
}

// URL отбрасывает userinfo, query и fragment: в логах остаются scheme, host и path.
// Нераспознанная строка целиком заменяется на "***".
func URL(s string) string {
	if strings.TrimSpace(s) == "" {
		return ""
	}

	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		return "***"
	}

	u.User = nil
	u.RawQuery = ""
	u.Fragment = ""

	return u.String()
}

func Token() string { return "[REDACTED_TOKEN]" }
