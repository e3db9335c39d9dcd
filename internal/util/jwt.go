package util

import (
	"coursetrack_backend/internal/model"
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// Claims 由外部认证服务签发，这里只做校验和身份解析
type Claims struct {
	UserID uint           `json:"user_id"`
	Role   model.UserRole `json:"role"`
	// 家长账号可查看的学生
	ChildIDs []uint `json:"child_ids,omitempty"`
	jwt.RegisteredClaims
}

func GenerateJWT(userID uint, role model.UserRole, childIDs []uint, secret string, expiration time.Duration) (string, error) {
	expirationTime := time.Now().Add(expiration)

	claims := &Claims{
		UserID:   userID,
		Role:     role,
		ChildIDs: childIDs,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expirationTime),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func ParseJWT(tokenString, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, errors.New("invalid token claims")
}

func GetUserFromContext(c *gin.Context) *Claims {
	user, exists := c.Get("user")
	if !exists {
		return nil
	}
	claims, ok := user.(*Claims)
	if !ok {
		return nil
	}
	return claims
}

// CanViewStudent 学生本人、关联家长、教师和管理员可查看学生进度
func (c *Claims) CanViewStudent(studentID uint) bool {
	switch c.Role {
	case model.Admin, model.Teacher:
		return true
	case model.Parent:
		for _, id := range c.ChildIDs {
			if id == studentID {
				return true
			}
		}
		return false
	default:
		return c.UserID == studentID
	}
}
