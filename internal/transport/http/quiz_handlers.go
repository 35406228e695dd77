package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type answerRequest struct {
	Option *int `json:"option" binding:"required"`
}

func (s *Server) quizState(c *gin.Context) {
	state, err := s.quiz.State(c.Request.Context(), sessionID(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	success(c, state)
}

func (s *Server) quizStart(c *gin.Context) {
	state, err := s.quiz.StartOrResume(c.Request.Context(), sessionID(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	success(c, state)
}

func (s *Server) quizAnswer(c *gin.Context) {
	var req answerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "option is required")
		return
	}
	_, state, err := s.quiz.SubmitAnswer(c.Request.Context(), sessionID(c), *req.Option)
	if err != nil {
		s.fail(c, err)
		return
	}
	success(c, state)
}

func (s *Server) quizNext(c *gin.Context) {
	state, err := s.quiz.Advance(c.Request.Context(), sessionID(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	success(c, state)
}

func (s *Server) quizRestart(c *gin.Context) {
	state, err := s.quiz.Restart(c.Request.Context(), sessionID(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	success(c, state)
}

func (s *Server) quizCertificate(c *gin.Context) {
	cert, err := s.quiz.Certificate(c.Request.Context(), sessionID(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+cert.FileName+`"`)
	c.Data(http.StatusOK, "text/html; charset=utf-8", cert.HTML)
}

func (s *Server) myScores(c *gin.Context) {
	history, err := s.scores.GetHistory(c.Request.Context(), currentSession(c).Username)
	if err != nil {
		s.fail(c, err)
		return
	}
	success(c, history)
}
