// Package corefmt 負責 Core 快照的文字傳輸格式。
package corefmt

import (
	"encoding/base64"

	"github.com/zintix-labs/rtplab/errs"
)

// EncodeBase64URL URL-safe、無 padding，可直接放進 query 或 JSON
func EncodeBase64URL(b []byte) string {
	return base64.RawURLEncoding.EncodeToString(b)
}

func DecodeBase64URL(s string) ([]byte, error) {
	b, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return nil, errs.Wrap(err, "decode base64url failed")
	}
	return b, nil
}
