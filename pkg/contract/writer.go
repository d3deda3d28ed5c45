package contract

import (
	"context"
	"io"
)

// ArtifactID: 结果工件的相对标识（使用正斜杠）。
type ArtifactID string

// Writer: 将解析结果以流式方式持久化到目标介质。
// 约束：
//  1. 同一 ArtifactID 单写者；
//  2. 按字节透传，不读取/修改内容；
//  3. ctx 取消需尽快返回；
//  4. 错误直接上抛。
type Writer interface {
	Write(ctx context.Context, id ArtifactID, r io.Reader) error
}
