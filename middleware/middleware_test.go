package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BerniceZTT/salesiq/models"
	"github.com/BerniceZTT/salesiq/utils"
)

func TestSanitizeData(t *testing.T) {
	data := map[string]interface{}{
		"name":   "Shopify",
		"apiKey": "sk_live_secret",
		"nested": []interface{}{
			map[string]interface{}{"password": "hunter2", "email": "a@b.se"},
		},
	}
	sanitized := sanitizeData(data).(map[string]interface{})
	assert.Equal(t, "Shopify", sanitized["name"])
	assert.Equal(t, "******", sanitized["apiKey"])

	nested := sanitized["nested"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "******", nested["password"])
	assert.Equal(t, "a@b.se", nested["email"])
	assert.Nil(t, sanitizeData(nil))
}

func TestSanitizeHeaders(t *testing.T) {
	headers := http.Header{
		"Authorization": []string{"Bearer eyJhbGciOiJIUzI1NiJ9.payload.signature"},
		"Cookie":        []string{"session=abc"},
		"Accept":        []string{"application/json"},
	}
	sanitized := sanitizeHeaders(headers)
	assert.Equal(t, "Bearer eyJhbGci...", sanitized["Authorization"])
	assert.Equal(t, "******", sanitized["Cookie"])
	assert.Equal(t, []string{"application/json"}, sanitized["Accept"])
}

func webhookRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/hooks/:id", WebhookAuth(), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(IntegrationIDKey))
	})
	return router
}

func TestWebhookAuth(t *testing.T) {
	utils.SetWebhookSecret("test-secret")
	token, err := utils.GenerateWebhookToken(models.APIIntegration{ID: "7", Type: models.IntegrationCustom})
	require.NoError(t, err)
	router := webhookRouter()

	cases := []struct {
		name   string
		path   string
		header string
		status int
	}{
		{"missing header", "/hooks/7", "", http.StatusUnauthorized},
		{"not bearer", "/hooks/7", "Basic abc", http.StatusUnauthorized},
		{"garbage token", "/hooks/7", "Bearer not-a-token", http.StatusUnauthorized},
		{"other integration", "/hooks/8", "Bearer " + token, http.StatusForbidden},
		{"valid", "/hooks/7", "Bearer " + token, http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, tc.path, nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, tc.status, w.Code)
			if tc.status == http.StatusOK {
				assert.Equal(t, "7", w.Body.String())
			}
		})
	}

	// 换了密钥后旧令牌失效
	utils.SetWebhookSecret("rotated")
	req := httptest.NewRequest(http.MethodPost, "/hooks/7", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestErrorHandlerUsesLastError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(ErrorHandler())
	router.GET("/fail", func(c *gin.Context) {
		_ = c.Error(utils.CreateNotFoundError("客户"))
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/fail", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "RESOURCE_NOT_FOUND")
}
