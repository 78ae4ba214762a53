package request

import "strings"

const (
	ClientWeb    = "web"
	ClientMobile = "mobile"
)

// ResolveClientType prefers the explicit X-Client-Type header and falls back
// to user-agent sniffing. Web clients get cookie-based tokens.
func ResolveClientType(header, userAgent string) string {
	switch strings.ToLower(strings.TrimSpace(header)) {
	case ClientWeb:
		return ClientWeb
	case ClientMobile:
		return ClientMobile
	}

	if strings.Contains(userAgent, "Mozilla") {
		return ClientWeb
	}
	return ClientMobile
}

func IsWebClient(clientType string) bool {
	return clientType == ClientWeb
}
