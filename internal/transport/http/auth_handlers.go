package http

import (
	"errors"

	"forklift-training-service/internal/domain"
	"github.com/gin-gonic/gin"
)

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type navigateRequest struct {
	View domain.View `json:"view" binding:"required"`
}

func (s *Server) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "username and password are required")
		return
	}
	view, err := s.sessions.Login(c.Request.Context(), sessionID(c), req.Username, req.Password)
	if err != nil {
		s.fail(c, err)
		return
	}
	success(c, view)
}

func (s *Server) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid registration payload")
		return
	}
	user, err := s.auth.Register(c.Request.Context(), req.Username, req.Password, req.Name)
	if err != nil {
		s.fail(c, err)
		return
	}
	created(c, gin.H{"username": user.Username, "name": user.Name, "role": user.Role})
}

func (s *Server) logout(c *gin.Context) {
	if err := s.sessions.Logout(c.Request.Context(), sessionID(c)); err != nil {
		s.fail(c, err)
		return
	}
	s.clearSessionCookie(c)
	success(c, nil)
}

func (s *Server) getSession(c *gin.Context) {
	view, err := s.sessions.Get(c.Request.Context(), sessionID(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	success(c, view)
}

func (s *Server) navigate(c *gin.Context) {
	var req navigateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "view is required")
		return
	}
	view, err := s.sessions.Navigate(c.Request.Context(), sessionID(c), req.View)
	if errors.Is(err, domain.ErrPermissionDenied) {
		s.failWith(c, err, view)
		return
	}
	if err != nil {
		s.fail(c, err)
		return
	}
	success(c, view)
}
