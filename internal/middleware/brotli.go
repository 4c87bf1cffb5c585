package middleware

import (
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/andybalholm/brotli"
	"github.com/gin-gonic/gin"
)

// BrotliConfig controls response compression.
type BrotliConfig struct {
	Quality int
	// MinLength is the body size below which responses are sent uncompressed.
	MinLength int
	// SkipPaths lists path prefixes that are never compressed.
	SkipPaths []string
}

var DefaultBrotliConfig = BrotliConfig{
	Quality:   brotli.DefaultCompression,
	MinLength: 1024,
}

// brotliWriter holds the body until MinLength bytes are seen, then switches
// to streaming through the encoder. Shorter bodies go out as-is.
type brotliWriter struct {
	gin.ResponseWriter
	enc        *brotli.Writer
	buf        []byte
	minLength  int
	compressed bool
}

func (bw *brotliWriter) Write(data []byte) (int, error) {
	if bw.compressed {
		return bw.enc.Write(data)
	}

	bw.buf = append(bw.buf, data...)
	if len(bw.buf) < bw.minLength {
		return len(data), nil
	}

	bw.compressed = true
	h := bw.ResponseWriter.Header()
	h.Set("Content-Encoding", "br")
	h.Del("Content-Length")
	bw.enc.Reset(bw.ResponseWriter)

	if _, err := bw.enc.Write(bw.buf); err != nil {
		return 0, err
	}
	bw.buf = bw.buf[:0]
	return len(data), nil
}

func (bw *brotliWriter) WriteString(s string) (int, error) {
	return bw.Write([]byte(s))
}

// Flush pushes whatever is pending to the client.
func (bw *brotliWriter) Flush() {
	if bw.compressed {
		_ = bw.enc.Flush()
	} else if len(bw.buf) > 0 {
		_, _ = bw.ResponseWriter.Write(bw.buf)
		bw.buf = bw.buf[:0]
	}
	bw.ResponseWriter.Flush()
}

func (bw *brotliWriter) finish() error {
	if bw.compressed {
		return bw.enc.Close()
	}
	if len(bw.buf) == 0 {
		return nil
	}
	_, err := bw.ResponseWriter.Write(bw.buf)
	bw.buf = bw.buf[:0]
	return err
}

// Brotli compresses responses for clients that accept "br".
func Brotli() gin.HandlerFunc {
	return BrotliWithConfig(DefaultBrotliConfig)
}

func BrotliWithConfig(cfg BrotliConfig) gin.HandlerFunc {
	if cfg.Quality < 0 || cfg.Quality > 11 {
		cfg.Quality = brotli.DefaultCompression
	}
	if cfg.MinLength <= 0 {
		cfg.MinLength = DefaultBrotliConfig.MinLength
	}

	encoders := sync.Pool{
		New: func() any { return brotli.NewWriterLevel(io.Discard, cfg.Quality) },
	}

	return func(c *gin.Context) {
		if shouldSkip(c, cfg.SkipPaths) || !acceptsBrotli(c.Request) {
			c.Next()
			return
		}

		c.Header("Vary", "Accept-Encoding")

		enc := encoders.Get().(*brotli.Writer)
		bw := &brotliWriter{
			ResponseWriter: c.Writer,
			enc:            enc,
			minLength:      cfg.MinLength,
		}

		defer func() {
			if err := bw.finish(); err != nil {
				_ = c.Error(err)
			}
			enc.Reset(io.Discard)
			encoders.Put(enc)
		}()

		c.Writer = bw
		c.Next()
	}
}

// shouldSkip reports whether the request must bypass compression. WebSocket
// upgrades fail when the response writer is wrapped.
func shouldSkip(c *gin.Context, skipPaths []string) bool {
	if strings.EqualFold(c.GetHeader("Upgrade"), "websocket") {
		return true
	}
	if strings.Contains(c.GetHeader("Accept"), "text/event-stream") {
		return true
	}
	for _, p := range skipPaths {
		if strings.HasPrefix(c.Request.URL.Path, p) {
			return true
		}
	}
	return false
}

func acceptsBrotli(r *http.Request) bool {
	for _, enc := range strings.Split(r.Header.Get("Accept-Encoding"), ",") {
		name, _, _ := strings.Cut(strings.TrimSpace(enc), ";")
		if strings.EqualFold(name, "br") {
			return true
		}
	}
	return false
}
