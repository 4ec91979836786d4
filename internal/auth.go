package internal

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"bjj-tournament/internal/apperr"
)

// CookieConfig controls the attributes of cookies the server sets.
type CookieConfig struct {
	Secure     bool
	SessionTTL time.Duration
}

func issueSession(secret string, adminID, email string, ttl time.Duration) (string, error) {
	now := time.Now()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Email: email,
		Role:  roleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   adminID,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    sessionIssuer,
		},
	})
	return tok.SignedString([]byte(secret))
}

func Login(admins AdminStore, audit AuditLog, secret string, cookies CookieConfig, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Email    string `json:"email" binding:"required,email"`
			Password string `json:"password" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "Ingresa tu email y contraseña.")
			return
		}

		ctx := c.Request.Context()
		a, err := admins.AdminByEmail(ctx, strings.TrimSpace(req.Email))
		if err != nil && !apperr.HasCode(err, apperr.CodeNotFound) {
			fail(c, log, err)
			return
		}
		if a == nil || bcrypt.CompareHashAndPassword([]byte(a.PassHash), []byte(req.Password)) != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Credenciales inválidas.", "code": apperr.CodeUnauthorized})
			return
		}

		s, err := issueSession(secret, a.ID, a.Email, cookies.SessionTTL)
		if err != nil {
			fail(c, log, err)
			return
		}
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(sessionCookie, s, int(cookies.SessionTTL.Seconds()), "/", "", cookies.Secure, true)

		logAction(ctx, audit, log, &a.ID, "login", "success from "+deviceLabel(c.Request.UserAgent()))
		c.JSON(http.StatusOK, gin.H{"ok": true, "email": a.Email})
	}
}

func Logout(cookies CookieConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(sessionCookie, "", -1, "/", "", cookies.Secure, true)
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}

// CurrentSession reports whether the caller is signed in.
func CurrentSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		s := SessionFrom(c.Request.Context())
		out := gin.H{"authenticated": s.Authenticated()}
		if s.Authenticated() {
			out["email"] = s.Email
		}
		c.JSON(http.StatusOK, out)
	}
}
