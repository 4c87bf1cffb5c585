package validator

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/learnhub-backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	Setup()
}

func bindBody(t *testing.T, body string, dst any) map[string]string {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	return Bind(c, dst)
}

func TestBindUsesJSONFieldNames(t *testing.T) {
	var req model.RecordActivityRequest
	fields := bindBody(t, `{"product_id":"nope","type":"napping","minutes":-1}`, &req)

	require.NotNil(t, fields)
	assert.Contains(t, fields, "product_id")
	assert.Contains(t, fields, "type")
	assert.Contains(t, fields, "minutes")
	assert.Contains(t, fields["product_id"], "UUID")
}

func TestBindValid(t *testing.T) {
	var req model.RecordActivityRequest
	fields := bindBody(t, `{"product_id":"6f1c2b9e-8a44-4c1e-9d55-3b1f0f1c2a10","type":"quiz_taken","minutes":5}`, &req)

	assert.Nil(t, fields)
	assert.Equal(t, model.ActivityQuizTaken, req.Type)
}

func TestBindSyntaxError(t *testing.T) {
	var req model.RecordActivityRequest
	fields := bindBody(t, `{"product_id":`, &req)

	assert.Contains(t, fields, "detail")
}

func TestBindQueryUsesFormFieldNames(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/?email=not-an-email", nil)

	var req model.DashboardLookupRequest
	fields := BindQuery(c, &req)

	require.NotNil(t, fields)
	assert.Contains(t, fields, "email")
}
