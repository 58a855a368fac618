package utils

import (
	"encoding/json"
	"fmt"

	"github.com/dgrijalva/jwt-go"
	"github.com/gin-gonic/gin"
)

// LoginUser 登录用户信息
type LoginUser struct {
	ID       string `json:"id"`
	Role     string `json:"role"`
	Username string `json:"name"`
}

// GetUser 从gin上下文中取出当前用户
func GetUser(c *gin.Context) (*LoginUser, error) {
	// 获取当前用户信息
	currentUser, exists := c.Get("user")
	if !exists {
		return nil, fmt.Errorf("GetUser 未授权访问")
	}

	// 处理不同类型的 claims
	var claims map[string]interface{}
	switch v := currentUser.(type) {
	case jwt.MapClaims:
		// 如果是 jwt.MapClaims，转换为 map[string]interface{}
		claims = make(map[string]interface{})
		for key, val := range v {
			claims[key] = val
		}
	case map[string]interface{}:
		// 已经是 map[string]interface{} 类型
		claims = v
	case string:
		// 如果是字符串，尝试解析为 JSON
		if err := json.Unmarshal([]byte(v), &claims); err != nil {
			return nil, fmt.Errorf("解析用户信息失败: %v", err)
		}
	default:
		// 尝试通过 JSON 序列化/反序列化转换
		data, err := json.Marshal(currentUser)
		if err != nil {
			return nil, fmt.Errorf("序列化用户信息失败: %v", err)
		}
		if err := json.Unmarshal(data, &claims); err != nil {
			return nil, fmt.Errorf("反序列化用户信息失败: %v", err)
		}
	}

	// 获取用户信息字段
	id, ok := claims["id"].(string)
	if !ok {
		return nil, fmt.Errorf("无效的用户ID")
	}

	role, ok := claims["role"].(string)
	if !ok {
		return nil, fmt.Errorf("无效的用户角色")
	}

	username, ok := claims["username"].(string)
	if !ok {
		// 检查是否有 "name" 字段作为备选
		if name, ok := claims["name"].(string); ok {
			username = name
		} else {
			return nil, fmt.Errorf("无效的用户名")
		}
	}

	return &LoginUser{
		ID:       id,
		Role:     role,
		Username: username,
	}, nil
}

// ResolveUpdatedBy 确定写操作的操作人，优先取登录用户，其次取请求体字段
func ResolveUpdatedBy(c *gin.Context, bodyUpdatedBy string) string {
	if user, err := GetUser(c); err == nil && user.Username != "" {
		return user.Username
	}
	if bodyUpdatedBy != "" {
		return bodyUpdatedBy
	}
	return "unknown"
}
