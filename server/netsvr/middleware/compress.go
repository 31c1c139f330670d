package middleware

import (
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// MinCompressSize 回應小於此長度時不壓縮（報價、錯誤訊息多半很短）
const MinCompressSize = 512

// encoder 為 gzip.Writer 與 zstd.Encoder 的共同介面
type encoder interface {
	io.Writer
	Reset(w io.Writer)
	Flush() error
	Close() error
}

type codec struct {
	name string
	pool sync.Pool
}

func (c *codec) get(w io.Writer) encoder {
	enc := c.pool.Get().(encoder)
	enc.Reset(w)
	return enc
}

// put 先 Close 寫出 footer，再放回池中
func (c *codec) put(enc encoder) {
	_ = enc.Close()
	enc.Reset(io.Discard)
	c.pool.Put(enc)
}

var (
	zstdCodec = &codec{name: "zstd", pool: sync.Pool{New: func() any {
		zw, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest), zstd.WithEncoderConcurrency(1))
		return zw
	}}}
	gzipCodec = &codec{name: "gzip", pool: sync.Pool{New: func() any {
		gw, _ := gzip.NewWriterLevel(nil, gzip.DefaultCompression)
		return gw
	}}}
)

// pickCodec 依 Accept-Encoding 選擇編碼，zstd 優先；q=0 視為拒絕
func pickCodec(accept string) *codec {
	var zstdOK, gzipOK bool
	for _, part := range strings.Split(accept, ",") {
		name, params, _ := strings.Cut(strings.TrimSpace(part), ";")
		if q, ok := strings.CutPrefix(strings.TrimSpace(params), "q="); ok {
			if v, err := strconv.ParseFloat(q, 64); err == nil && v <= 0 {
				continue
			}
		}
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "zstd":
			zstdOK = true
		case "gzip":
			gzipOK = true
		}
	}
	switch {
	case zstdOK:
		return zstdCodec
	case gzipOK:
		return gzipCodec
	default:
		return nil
	}
}

func skipBody(code int) bool {
	return (code >= 100 && code < 200) || code == http.StatusNoContent || code == http.StatusNotModified
}

// compressWriter 先暫存前 MinCompressSize 個位元組，夠大才開始壓縮。
//
// 錯誤回應（>= 400）與無 body 的狀態碼一律原樣送出。
type compressWriter struct {
	http.ResponseWriter
	c      *codec
	enc    encoder
	buf    []byte
	status int
	sent   bool // header 已送出
	plain  bool // 確定不壓縮
}

func (cw *compressWriter) WriteHeader(code int) {
	if cw.sent || cw.status != 0 {
		return
	}
	cw.status = code
	if skipBody(code) || code >= http.StatusBadRequest {
		cw.plain = true
		cw.sendHeader()
	}
}

func (cw *compressWriter) Write(b []byte) (int, error) {
	if cw.status == 0 {
		cw.status = http.StatusOK
	}
	switch {
	case cw.plain:
		cw.sendHeader()
		return cw.ResponseWriter.Write(b)
	case cw.enc != nil:
		return cw.enc.Write(b)
	}
	cw.buf = append(cw.buf, b...)
	if len(cw.buf) >= MinCompressSize {
		if err := cw.start(); err != nil {
			return 0, err
		}
	}
	return len(b), nil
}

// start 送出壓縮 header 並把暫存內容寫進編碼器
func (cw *compressWriter) start() error {
	h := cw.Header()
	if h.Get("Content-Type") == "" {
		h.Set("Content-Type", http.DetectContentType(cw.buf))
	}
	h.Del("Content-Length")
	h.Set("Content-Encoding", cw.c.name)
	cw.sendHeader()
	cw.enc = cw.c.get(cw.ResponseWriter)
	_, err := cw.enc.Write(cw.buf)
	cw.buf = nil
	return err
}

func (cw *compressWriter) sendHeader() {
	if cw.sent {
		return
	}
	cw.sent = true
	cw.ResponseWriter.WriteHeader(cw.status)
}

// finish 收尾：壓縮中則寫出 footer，否則把暫存內容原樣送出
func (cw *compressWriter) finish() {
	if cw.enc != nil {
		cw.c.put(cw.enc)
		cw.enc = nil
		return
	}
	if cw.sent {
		return
	}
	if cw.status == 0 {
		cw.status = http.StatusOK
	}
	if len(cw.buf) > 0 && cw.Header().Get("Content-Type") == "" {
		cw.Header().Set("Content-Type", http.DetectContentType(cw.buf))
	}
	cw.sendHeader()
	if len(cw.buf) > 0 {
		_, _ = cw.ResponseWriter.Write(cw.buf)
	}
}

func (cw *compressWriter) Flush() {
	if !cw.plain && cw.enc == nil && len(cw.buf) > 0 {
		_ = cw.start()
	}
	if cw.enc != nil {
		_ = cw.enc.Flush()
	}
	if f, ok := cw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Compression 依 Accept-Encoding 以 zstd 或 gzip 壓縮回應
func Compression(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead || r.Header.Get("Upgrade") != "" || w.Header().Get("Content-Encoding") != "" {
			next.ServeHTTP(w, r)
			return
		}
		c := pickCodec(r.Header.Get("Accept-Encoding"))
		if c == nil {
			next.ServeHTTP(w, r)
			return
		}
		w.Header().Add("Vary", "Accept-Encoding")
		cw := &compressWriter{ResponseWriter: w, c: c}
		defer func() {
			// panic 時不送出暫存內容，交給外層 Recover 回 500
			if p := recover(); p != nil {
				panic(p)
			}
			cw.finish()
		}()
		next.ServeHTTP(cw, r)
	})
}
