package handlers

import (
	"net/http"
	"strings"

	"github.com/OscarR093/monitoreoTermico-sub000/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	ctxUserID = "userId"
	ctxClaims = "claims"
)

// tokenFromRequest reads the session cookie, falling back to a Bearer header.
// ok is false when neither is present; a malformed header yields ok with an
// empty token.
func (h *Handler) tokenFromRequest(c *gin.Context) (token string, ok bool) {
	if v, err := c.Cookie(h.opts.CookieName); err == nil && v != "" {
		return v, true
	}
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", true
	}
	return strings.TrimSpace(parts[1]), true
}

// authenticate resolves the caller's claims or writes a 401.
func (h *Handler) authenticate(c *gin.Context) (*service.Claims, bool) {
	token, ok := h.tokenFromRequest(c)
	if !ok {
		h.abortWithError(c, http.StatusUnauthorized, "missing access token")
		return nil, false
	}
	if token == "" {
		h.abortWithError(c, http.StatusUnauthorized, "invalid Authorization header format")
		return nil, false
	}

	claims, err := h.services.ParseToken(token)
	if err != nil {
		h.abortWithError(c, http.StatusUnauthorized, "invalid or expired token")
		return nil, false
	}
	return claims, true
}

func (h *Handler) authMiddleware(c *gin.Context) {
	claims, ok := h.authenticate(c)
	if !ok {
		return
	}

	// store in Gin context
	c.Set(ctxUserID, claims.UserID)
	c.Set(ctxClaims, claims)
	c.Next()
}

// adminMiddleware must run after authMiddleware.
func (h *Handler) adminMiddleware(c *gin.Context) {
	v, _ := c.Get(ctxClaims)
	claims, _ := v.(*service.Claims)
	if claims == nil || !(claims.Admin || claims.SuperAdmin) {
		h.abortWithError(c, http.StatusForbidden, "admin privileges required")
		return
	}
	c.Next()
}
