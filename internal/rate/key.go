package rate

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
)

// KeyFor 按服务地址（scheme://host）与凭据摘要构造分组键；凭据原文不进入键。
// 地址无法解析时整体作为前缀。
func KeyFor(endpoint, credential string) Key {
	origin := endpoint
	if u, err := url.Parse(endpoint); err == nil && u.Host != "" {
		origin = u.Scheme + "://" + u.Host
	}
	if credential == "" {
		return Key(origin)
	}
	sum := sha256.Sum256([]byte(credential))
	return Key(origin + "#" + hex.EncodeToString(sum[:8]))
}
