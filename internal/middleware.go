package internal

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"bjj-tournament/internal/affidavit"
	"bjj-tournament/internal/apperr"
	"bjj-tournament/internal/models"
)

const (
	sessionCookie   = "bjj_session"
	requestIDHeader = "X-Request-ID"
	roleAdmin       = "admin"
	sessionIssuer   = "bjj-tournament"
)

type claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// Session is the caller's identity for one request. The zero value is an
// anonymous visitor.
type Session struct {
	AdminID string
	Email   string
	Role    string
}

func (s Session) Authenticated() bool {
	return s.AdminID != ""
}

type sessionKey struct{}

func withSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// SessionFrom returns the session placed by the Sessions middleware.
func SessionFrom(ctx context.Context) Session {
	s, _ := ctx.Value(sessionKey{}).(Session)
	return s
}

// RequestID honors an incoming X-Request-ID or generates one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func RequestLogger(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		level := slog.LevelInfo
		if c.Writer.Status() >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		log.Log(c.Request.Context(), level, "http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", c.GetString("request_id"),
		)
	}
}

func parseSession(secret, tokenStr string) (Session, error) {
	tok, err := jwt.ParseWithClaims(tokenStr, &claims{}, func(token *jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(sessionIssuer))
	if err != nil || !tok.Valid {
		return Session{}, err
	}
	cl, ok := tok.Claims.(*claims)
	if !ok || cl.Subject == "" {
		return Session{}, jwt.ErrTokenInvalidClaims
	}
	return Session{AdminID: cl.Subject, Email: cl.Email, Role: cl.Role}, nil
}

// Sessions resolves the session cookie, if any, into a Session on the request
// context. Invalid or expired cookies yield an anonymous session.
func Sessions(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var s Session
		if tokenStr, err := c.Cookie(sessionCookie); err == nil && tokenStr != "" {
			s, _ = parseSession(secret, tokenStr)
		}
		c.Request = c.Request.WithContext(withSession(c.Request.Context(), s))
		c.Next()
	}
}

func Auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !SessionFrom(c.Request.Context()).Authenticated() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "not authorized", "code": apperr.CodeUnauthorized})
			return
		}
		c.Next()
	}
}

func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if SessionFrom(c.Request.Context()).Role != roleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin only", "code": apperr.CodeForbidden})
			return
		}
		c.Next()
	}
}

// RequireAffidavit rejects submissions from visitors who have not accepted
// the sworn statement for kind.
func RequireAffidavit(issuer *affidavit.Issuer, kind models.Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr, _ := c.Cookie(affidavit.CookieName(kind))
		if err := issuer.Verify(tokenStr, kind); err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "Debes aceptar la declaración jurada antes de inscribirte.",
				"code":  apperr.CodeForbidden,
			})
			return
		}
		c.Next()
	}
}

// actorID is the audit actor of the request, nil for anonymous visitors.
func actorID(c *gin.Context) *string {
	s := SessionFrom(c.Request.Context())
	if !s.Authenticated() {
		return nil
	}
	id := s.AdminID
	return &id
}
