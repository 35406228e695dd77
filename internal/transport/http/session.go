package http

import (
	"net/http"

	"forklift-training-service/internal/app"
	"github.com/gin-gonic/gin"
)

const (
	ctxSessionID = "sessionID"
	ctxSession   = "session"
)

// withSession resolves the session cookie, opening a fresh anonymous session
// when the cookie is absent or stale.
func (s *Server) withSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, _ := c.Cookie(s.opts.CookieName)
		view, err := s.sessions.Open(c.Request.Context(), id)
		if err != nil {
			s.fail(c, err)
			return
		}
		if view.ID != id {
			s.setSessionCookie(c, view.ID)
		}
		c.Set(ctxSessionID, view.ID)
		c.Next()
	}
}

func (s *Server) setSessionCookie(c *gin.Context, id string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(s.opts.CookieName, id, int(s.opts.SessionTTL.Seconds()), "/", "", s.opts.SecureCookies, true)
}

func (s *Server) clearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(s.opts.CookieName, "", -1, "/", "", s.opts.SecureCookies, true)
}

// requireRole rejects anonymous sessions, and non-admins when adminOnly is set.
func (s *Server) requireRole(adminOnly bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		view, err := s.sessions.Authorize(c.Request.Context(), sessionID(c), adminOnly)
		if err != nil {
			s.fail(c, err)
			return
		}
		c.Set(ctxSession, view)
		c.Next()
	}
}

func sessionID(c *gin.Context) string {
	return c.GetString(ctxSessionID)
}

func currentSession(c *gin.Context) app.SessionView {
	v, _ := c.Get(ctxSession)
	view, _ := v.(app.SessionView)
	return view
}
