package fakeserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/JFR35/pdaw-client/internal/model"
)

const tokenTTL = 24 * time.Hour

func (s *Server) login(c *gin.Context) {
	if !s.loginLimiter.Allow() {
		c.JSON(http.StatusTooManyRequests, errorBody("too many login attempts"))
		return
	}

	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody("malformed login request"))
		return
	}

	s.mu.Lock()
	acc, ok := s.accounts[req.Email]
	s.mu.Unlock()
	if !ok {
		c.JSON(http.StatusUnauthorized, errorBody("invalid credentials"))
		return
	}
	if err := bcrypt.CompareHashAndPassword(acc.PasswordHash, []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, errorBody("invalid credentials"))
		return
	}

	token, err := s.mintToken(acc)
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorBody("token generation failed"))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":  token,
		"role":   acc.Role.String(),
		"userId": acc.ID,
	})
}

func (s *Server) mintToken(acc *account) (string, error) {
	claims := jwt.MapClaims{
		"sub":  acc.ID,
		"role": acc.Role.String(),
		"exp":  time.Now().Add(tokenTTL).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
}

func (s *Server) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		raw, found := strings.CutPrefix(header, "Bearer ")
		if !found || raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorBody("missing bearer token"))
			return
		}

		token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return s.jwtSecret, nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorBody("invalid or expired token"))
			return
		}

		if claims, ok := token.Claims.(jwt.MapClaims); ok {
			if sub, ok := claims["sub"].(string); ok {
				c.Set("userId", sub)
			}
		}
		c.Next()
	}
}
