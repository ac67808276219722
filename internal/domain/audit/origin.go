package audit

import (
	"net"
	"net/http"
	"net/netip"
	"strings"
	"unicode/utf8"
)

// maxUserAgent is counted in characters, matching the user_agent column.
const maxUserAgent = 200

// Origin is the client metadata captured with an audit record.
type Origin struct {
	IP        string
	UserAgent string
}

// OriginFromRequest prefers the first X-Forwarded-For address and falls back
// to the connection address. Values that do not parse as an IP are dropped.
func OriginFromRequest(r *http.Request) Origin {
	if r == nil {
		return Origin{}
	}
	o := Origin{UserAgent: truncateRunes(r.UserAgent(), maxUserAgent)}
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip, ok := parseIP(first); ok {
			o.IP = ip
			return o
		}
	}
	host := r.RemoteAddr
	if h, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		host = h
	}
	if ip, ok := parseIP(host); ok {
		o.IP = ip
	}
	return o
}

// parseIP normalises s to the canonical text form without any IPv6 zone.
func parseIP(s string) (string, bool) {
	addr, err := netip.ParseAddr(strings.TrimSpace(s))
	if err != nil {
		return "", false
	}
	return addr.WithZone("").Unmap().String(), true
}

// IPPtr is nil when no address is known.
func (o Origin) IPPtr() *string {
	if o.IP == "" {
		return nil
	}
	ip := o.IP
	return &ip
}

// truncateRunes keeps at most n characters of s and drops invalid UTF-8.
func truncateRunes(s string, n int) string {
	s = strings.ToValidUTF8(s, "")
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
