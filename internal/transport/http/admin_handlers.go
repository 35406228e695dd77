package http

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"forklift-training-service/internal/domain"
	"forklift-training-service/internal/transfer"
	"github.com/gin-gonic/gin"
)

const (
	maxImportBytes = 5 << 20
	maxLogoBytes   = 5 << 20
)

type questionRequest struct {
	Question    string   `json:"question"`
	Options     []string `json:"options"`
	Answer      int      `json:"answer"`
	Explanation string   `json:"explanation"`
	Category    string   `json:"category"`
}

func (r questionRequest) toQuestion(id int) domain.Question {
	return domain.Question{
		ID:          id,
		Question:    r.Question,
		Options:     r.Options,
		Answer:      r.Answer,
		Explanation: r.Explanation,
		Category:    r.Category,
	}
}

type userRequest struct {
	Username string      `json:"username"`
	Password string      `json:"password"`
	Name     string      `json:"name"`
	Role     domain.Role `json:"role"`
}

type passwordRequest struct {
	Password string `json:"password"`
	Confirm  string `json:"confirm"`
}

func (s *Server) listQuestions(c *gin.Context) {
	questions, err := s.admin.ListQuestions(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	if questions == nil {
		questions = []domain.Question{}
	}
	success(c, questions)
}

func (s *Server) addQuestion(c *gin.Context) {
	var req questionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid question payload")
		return
	}
	q, err := s.admin.AddQuestion(c.Request.Context(), req.toQuestion(0))
	if err != nil {
		s.fail(c, err)
		return
	}
	created(c, q)
}

func (s *Server) updateQuestion(c *gin.Context) {
	id, ok := questionID(c)
	if !ok {
		return
	}
	var req questionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid question payload")
		return
	}
	q, err := s.admin.UpdateQuestion(c.Request.Context(), req.toQuestion(id))
	if err != nil {
		s.fail(c, err)
		return
	}
	success(c, q)
}

func (s *Server) deleteQuestion(c *gin.Context) {
	id, ok := questionID(c)
	if !ok {
		return
	}
	if err := s.admin.DeleteQuestion(c.Request.Context(), id); err != nil {
		s.fail(c, err)
		return
	}
	success(c, nil)
}

func questionID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		badRequest(c, "invalid question id")
		return 0, false
	}
	return id, true
}

func (s *Server) importQuestions(c *gin.Context) {
	body, err := uploadBody(c, "file", maxImportBytes)
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	added, err := s.admin.ImportQuestions(c.Request.Context(), bytes.NewReader(body))
	if err != nil {
		s.fail(c, err)
		return
	}
	created(c, gin.H{"imported": len(added), "questions": added})
}

func (s *Server) exportQuestions(c *gin.Context) {
	var buf bytes.Buffer
	if err := s.admin.ExportQuestions(c.Request.Context(), &buf); err != nil {
		s.fail(c, err)
		return
	}
	sendCSV(c, "forklift_questions.csv", buf.Bytes())
}

func (s *Server) questionTemplate(c *gin.Context) {
	var buf bytes.Buffer
	if err := transfer.WriteTemplate(&buf); err != nil {
		s.fail(c, err)
		return
	}
	sendCSV(c, "question_template.csv", buf.Bytes())
}

func (s *Server) allScores(c *gin.Context) {
	entries, err := s.admin.Scores(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	success(c, entries)
}

func (s *Server) scoreStats(c *gin.Context) {
	stats, err := s.admin.Stats(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	success(c, stats)
}

func (s *Server) exportScores(c *gin.Context) {
	var buf bytes.Buffer
	if err := s.admin.ExportScores(c.Request.Context(), &buf); err != nil {
		s.fail(c, err)
		return
	}
	sendCSV(c, "forklift_quiz_scores.csv", buf.Bytes())
}

func (s *Server) listUsers(c *gin.Context) {
	users, err := s.admin.ListUsers(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	out := make([]gin.H, len(users))
	for i, u := range users {
		out[i] = gin.H{"username": u.Username, "name": u.Name, "role": u.Role}
	}
	success(c, out)
}

func (s *Server) addUser(c *gin.Context) {
	var req userRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid user payload")
		return
	}
	if !req.Role.Valid() {
		badRequest(c, "role must be admin or operator")
		return
	}
	user, err := s.admin.AddUser(c.Request.Context(), req.Username, req.Password, req.Name, req.Role)
	if err != nil {
		s.fail(c, err)
		return
	}
	created(c, gin.H{"username": user.Username, "name": user.Name, "role": user.Role})
}

func (s *Server) resetPassword(c *gin.Context) {
	var req passwordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid password payload")
		return
	}
	if err := s.admin.ResetPassword(c.Request.Context(), c.Param("username"), req.Password, req.Confirm); err != nil {
		s.fail(c, err)
		return
	}
	success(c, nil)
}

func (s *Server) removeUser(c *gin.Context) {
	if err := s.admin.RemoveUser(c.Request.Context(), c.Param("username")); err != nil {
		s.fail(c, err)
		return
	}
	success(c, nil)
}

func (s *Server) setLogo(c *gin.Context) {
	body, err := uploadBody(c, "logo", maxLogoBytes)
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	if err := s.admin.SetLogo(c.Request.Context(), body); err != nil {
		s.fail(c, err)
		return
	}
	success(c, nil)
}

func (s *Server) removeLogo(c *gin.Context) {
	if err := s.admin.RemoveLogo(c.Request.Context()); err != nil {
		s.fail(c, err)
		return
	}
	success(c, nil)
}

func (s *Server) getLogo(c *gin.Context) {
	logo, err := s.admin.Logo(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.Header("Cache-Control", "no-cache")
	c.Data(http.StatusOK, logo.ContentType, logo.Data)
}

func (s *Server) docs(c *gin.Context) {
	c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(documentation))
}

var errEmptyUpload = errors.New("upload is empty")

// uploadBody reads the multipart field when the request is a form upload,
// otherwise the raw request body.
func uploadBody(c *gin.Context, field string, limit int64) ([]byte, error) {
	var r io.Reader = c.Request.Body
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		fh, err := c.FormFile(field)
		if err != nil {
			return nil, err
		}
		f, err := fh.Open()
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, errors.New("upload is too large")
	}
	if len(data) == 0 {
		return nil, errEmptyUpload
	}
	return data, nil
}

func sendCSV(c *gin.Context, name string, data []byte) {
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", data)
}
