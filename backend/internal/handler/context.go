package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// currentMemberID 从鉴权中间件注入的 claims 中取出会员 ID。
func currentMemberID(c *gin.Context) (uint, bool) {
	raw, exists := c.Get("claims")
	if !exists {
		return 0, false
	}
	claims, ok := raw.(jwt.MapClaims)
	if !ok {
		return 0, false
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseUint(sub, 10, 64)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}

// parseIDParam 解析路径里的数字 ID 参数。
func parseIDParam(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
