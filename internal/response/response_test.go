package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRequestIDPropagation(t *testing.T) {
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/", func(c *gin.Context) { Fail(c, http.StatusNotFound, ErrLearnerNotFound) })

	tests := []struct {
		name     string
		incoming string
		keep     bool
	}{
		{"missing", "", false},
		{"valid", "trace-abc_123.4", true},
		{"too long", strings.Repeat("a", maxRequestIDLen+1), false},
		{"header injection", "abc\r\nSet-Cookie: x", false},
		{"spaces", "abc def", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.incoming != "" {
				req.Header["X-Request-Id"] = []string{tt.incoming}
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			got := w.Header().Get("X-Request-ID")
			require.NotEmpty(t, got)
			if tt.keep {
				assert.Equal(t, tt.incoming, got)
			} else {
				assert.NotEqual(t, tt.incoming, got)
			}

			var body Response
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, got, body.Metadata.RequestID)
			require.NotNil(t, body.Error)
			assert.Equal(t, ErrLearnerNotFound, body.Error.Code)
			assert.Equal(t, GetMessage(ErrLearnerNotFound), body.Error.Message)
		})
	}
}
