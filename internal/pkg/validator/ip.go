package validator

import (
	"net/netip"
	"strings"
)

// ClientIP 返回客户端地址的规范形式，无法解析为 IP 时返回 fallback。
// 去掉端口、方括号和 IPv6 zone，保证同一客户端只对应一个限流桶
func ClientIP(raw, fallback string) string {
	raw = strings.TrimSpace(raw)
	if ap, err := netip.ParseAddrPort(raw); err == nil {
		return ap.Addr().WithZone("").Unmap().String()
	}

	raw = strings.TrimSuffix(strings.TrimPrefix(raw, "["), "]")
	addr, err := netip.ParseAddr(raw)
	if err != nil {
		return fallback
	}
	return addr.WithZone("").Unmap().String()
}
