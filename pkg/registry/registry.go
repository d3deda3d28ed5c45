package registry

import (
	"bytes"
	"encoding/json"

	"anyparser/pkg/contract"
	rfs "anyparser/plugins/reader/filesystem"
	"anyparser/plugins/transport/flaky"
	"anyparser/plugins/transport/httpclient"
	mock "anyparser/plugins/transport/mock"
	wfs "anyparser/plugins/writer/filesystem"
)

// strictUnmarshal: 使用 DisallowUnknownFields 严格解码，拒绝未知字段。
func strictUnmarshal(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		// 保持零值（默认选项）
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// NewTransport 工厂签名：接收原样 JSON Options。
type NewTransport func(raw json.RawMessage) (contract.Transport, error)

// NewFileSystem 工厂签名：接收原样 JSON Options。
type NewFileSystem func(raw json.RawMessage) (contract.FileSystem, error)

// NewWriter 工厂签名：接收原样 JSON Options。
type NewWriter func(raw json.RawMessage) (contract.Writer, error)

// Transport 工厂注册表（显式、零反射）。
var Transport = map[string]NewTransport{
	// http: net/http multipart 客户端
	"http": func(raw json.RawMessage) (contract.Transport, error) {
		var opts httpclient.Options
		if err := strictUnmarshal(raw, &opts); err != nil {
			return nil, err
		}
		return httpclient.New(&opts), nil
	},
	// mock: 离线服务替身
	"mock": func(raw json.RawMessage) (contract.Transport, error) {
		var opts mock.Options
		if err := strictUnmarshal(raw, &opts); err != nil {
			return nil, err
		}
		return mock.New(&opts), nil
	},
	// flaky: 按脚本注入上游失败，随后交给 mock
	"flaky": func(raw json.RawMessage) (contract.Transport, error) {
		var opts flaky.Options
		if err := strictUnmarshal(raw, &opts); err != nil {
			return nil, err
		}
		return flaky.New(&opts)
	},
}

// FileSystem 工厂注册表。
var FileSystem = map[string]NewFileSystem{
	"fs": func(raw json.RawMessage) (contract.FileSystem, error) {
		var opts rfs.Options
		if err := strictUnmarshal(raw, &opts); err != nil {
			return nil, err
		}
		return rfs.New(&opts), nil
	},
}

// Writer 工厂注册表。
var Writer = map[string]NewWriter{
	// fs: 结果落盘（原子替换/覆盖策略可配置）
	"fs": func(raw json.RawMessage) (contract.Writer, error) {
		var opts wfs.Options
		if err := strictUnmarshal(raw, &opts); err != nil {
			return nil, err
		}
		return wfs.New(&opts)
	},
}
