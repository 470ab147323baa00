// Package auth 签发与校验访问令牌（HS256 JWT，sub 为用户 ID）。
package auth

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/palemoky/point-calculator/internal/apperrors"
)

// 签发者
const issuer = "point-calculator"

// UserIDKey gin 上下文中保存用户 ID 的键
const UserIDKey = "userID"

// Claims 令牌声明
type Claims struct {
	jwt.RegisteredClaims
}

// Authenticator 令牌签发与校验
type Authenticator struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// New 创建 Authenticator，secret 不能为空
func New(secret string, ttl time.Duration) (*Authenticator, error) {
	if secret == "" {
		return nil, errors.New("auth secret is empty")
	}
	return &Authenticator{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// IssueToken 为用户签发令牌
func (a *Authenticator) IssueToken(userID string) (string, error) {
	if userID == "" {
		return "", apperrors.ErrValidation.WithDetail("user id is empty")
	}
	now := a.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

// Verify 校验令牌并返回用户 ID
func (a *Authenticator) Verify(token string) (string, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return a.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil {
		return "", apperrors.ErrUnauthorized.WithDetail(err.Error())
	}
	if claims.Subject == "" {
		return "", apperrors.ErrUnauthorized.WithDetail("token has no subject")
	}
	return claims.Subject, nil
}

// Middleware 要求 Authorization: Bearer <token>，通过后在上下文中写入用户 ID。
// WebSocket 握手无法设置请求头，因此也接受 ?token= 查询参数。
func (a *Authenticator) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			token = c.Query("token")
		}
		if token == "" {
			abortUnauthorized(c, apperrors.ErrUnauthorized.WithDetail("missing bearer token"))
			return
		}

		userID, err := a.Verify(token)
		if err != nil {
			abortUnauthorized(c, err)
			return
		}
		c.Set(UserIDKey, userID)
		c.Next()
	}
}

// UserID 从上下文读取当前用户 ID
func UserID(c *gin.Context) string {
	return c.GetString(UserIDKey)
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

func abortUnauthorized(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"code":    apperrors.CodeOf(err),
		"message": err.Error(),
	})
}
