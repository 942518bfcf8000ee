package middleware

import (
	"strings"

	"github.com/BerniceZTT/salesiq/utils"

	"github.com/gin-gonic/gin"
)

// IntegrationIDKey webhook 认证通过后保存集成ID的上下文键
const IntegrationIDKey = "integrationId"

// WebhookAuth 校验集成 webhook 的 Bearer 令牌
func WebhookAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")

		utils.Logger.Info().
			Str("path", c.Request.URL.Path).
			Str("authorization", getShortAuthHeader(authHeader)).
			Msg("验证webhook请求")

		token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		if !strings.HasPrefix(authHeader, "Bearer ") || token == "" {
			utils.HandleError(c, utils.CreateUnauthorizedError("缺少webhook令牌"))
			return
		}

		integrationID, err := utils.ParseWebhookToken(token)
		if err != nil {
			utils.Logger.Warn().Err(err).Msg("webhook令牌验证失败")
			utils.HandleError(c, utils.NewApiError("无效的token", 401, "INVALID_TOKEN"))
			return
		}

		// 令牌只能用于签发它的集成
		if id := c.Param("id"); id != "" && id != integrationID {
			utils.HandleError(c, utils.NewApiError("令牌与集成不匹配", 403, "TOKEN_MISMATCH"))
			return
		}

		c.Set(IntegrationIDKey, integrationID)
		c.Next()
	}
}

// getShortAuthHeader 获取截断的授权头，保护敏感信息
func getShortAuthHeader(header string) string {
	if len(header) > 15 {
		return header[:15] + "..."
	}
	return header
}
