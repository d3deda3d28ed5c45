package contract

import (
	"net/url"
	"path"
	"path/filepath"
	"strings"
)

// NormalizeArtifactID 规范化路径，统一为跨平台稳定的 ArtifactID。
// 规则：
// - 使用正斜杠分隔符
// - 清理多余分隔符与路径片段（.、..）
// - 保留相对/绝对语义，不做隐式绝对化
func NormalizeArtifactID(p string) ArtifactID {
	s := strings.ReplaceAll(p, "\\", "/")
	return ArtifactID(path.Clean(s))
}

// BaseName 返回路径最后一段，分隔符按当前平台识别（Windows 同时识别 / 与 \，其余平台仅 /）。
func BaseName(p string) string {
	return filepath.Base(p)
}

// Extension 返回格式对应的文件扩展名（含点）。
func (f Format) Extension() string {
	switch f {
	case FormatMarkdown:
		return ".md"
	case FormatHTML:
		return ".html"
	default:
		return ".json"
	}
}

// ArtifactFor 由首个输入推导结果工件名：
// 文件取去掉扩展名的基名；绝对 URL 取 host（冒号替换为下划线）。
func ArtifactFor(source string, f Format) ArtifactID {
	stem := ""
	if u, err := url.Parse(source); err == nil && u.Scheme != "" && u.Host != "" {
		stem = strings.ReplaceAll(u.Host, ":", "_")
	} else {
		// 非 Windows 平台上文件名可含 \，替换掉以免被当作子目录。
		stem = strings.ReplaceAll(BaseName(source), "\\", "_")
		if ext := path.Ext(stem); ext != "" && ext != stem {
			stem = strings.TrimSuffix(stem, ext)
		}
	}
	if stem == "" || stem == "." || stem == ".." || stem == "/" {
		stem = "result"
	}
	return NormalizeArtifactID(stem + f.Extension())
}
