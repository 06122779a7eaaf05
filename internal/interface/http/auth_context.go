package http

import (
	"github.com/gin-gonic/gin"

	"github.com/yanqian/faq-chatbot/internal/domain/auth"
)

const operatorClaimsKey = "operator_claims"

func setClaims(c *gin.Context, claims auth.Claims) {
	c.Set(operatorClaimsKey, claims)
}

func getClaims(c *gin.Context) (auth.Claims, bool) {
	value, ok := c.Get(operatorClaimsKey)
	if !ok {
		return auth.Claims{}, false
	}
	claims, ok := value.(auth.Claims)
	return claims, ok
}

// currentOperator names the authenticated operator, or "" outside the admin group.
func currentOperator(c *gin.Context) string {
	claims, ok := getClaims(c)
	if !ok {
		return ""
	}
	return claims.Operator
}
