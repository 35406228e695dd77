package http

import (
	_ "embed"
	"net/http"
	"time"

	"forklift-training-service/internal/app"
	"forklift-training-service/internal/logger"
	"forklift-training-service/internal/metrics"
	"forklift-training-service/internal/security"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

//go:embed docs/documentation.md
var documentation string

// Options configures the HTTP surface.
type Options struct {
	CookieName     string
	SecureCookies  bool
	SessionTTL     time.Duration
	AllowedOrigins []string
	// AuthLimiter throttles login and registration; nil disables it.
	AuthLimiter *security.RateLimiter
	Metrics     *metrics.Metrics
}

// Server wires the application services to gin routes.
type Server struct {
	sessions *app.SessionService
	auth     *app.AuthService
	quiz     *app.QuizService
	scores   *app.ScoreService
	admin    *app.AdminService
	log      *zap.Logger
	opts     Options
}

func NewServer(sessions *app.SessionService, auth *app.AuthService, quiz *app.QuizService, scores *app.ScoreService, admin *app.AdminService, log *zap.Logger, opts Options) *Server {
	if opts.CookieName == "" {
		opts.CookieName = "forklift_session"
	}
	return &Server{
		sessions: sessions,
		auth:     auth,
		quiz:     quiz,
		scores:   scores,
		admin:    admin,
		log:      log,
		opts:     opts,
	}
}

// Router builds the gin engine with every route.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), logger.Middleware(s.log), security.Secure())
	if s.opts.Metrics != nil {
		r.Use(s.opts.Metrics.Middleware())
		r.GET("/metrics", s.opts.Metrics.Handler())
	}
	if len(s.opts.AllowedOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     s.opts.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.GET("/api/branding/logo", s.getLogo)

	api := r.Group("/api", s.withSession())
	{
		authLimited := api.Group("")
		if s.opts.AuthLimiter != nil {
			authLimited.Use(s.opts.AuthLimiter.Middleware())
		}
		authLimited.POST("/login", s.login)
		authLimited.POST("/register", s.register)

		api.POST("/logout", s.logout)
		api.GET("/session", s.getSession)
		api.POST("/navigate", s.navigate)

		member := api.Group("", s.requireRole(false))
		member.GET("/quiz", s.quizState)
		member.POST("/quiz/start", s.quizStart)
		member.POST("/quiz/answer", s.quizAnswer)
		member.POST("/quiz/next", s.quizNext)
		member.POST("/quiz/restart", s.quizRestart)
		member.GET("/quiz/certificate", s.quizCertificate)
		member.GET("/scores", s.myScores)

		admin := api.Group("/admin", s.requireRole(true))
		admin.GET("/questions", s.listQuestions)
		admin.POST("/questions", s.addQuestion)
		admin.PUT("/questions/:id", s.updateQuestion)
		admin.DELETE("/questions/:id", s.deleteQuestion)
		admin.POST("/questions/import", s.importQuestions)
		admin.GET("/questions/export", s.exportQuestions)
		admin.GET("/questions/template", s.questionTemplate)

		admin.GET("/scores", s.allScores)
		admin.GET("/scores/stats", s.scoreStats)
		admin.GET("/scores/export", s.exportScores)

		admin.GET("/users", s.listUsers)
		admin.POST("/users", s.addUser)
		admin.PUT("/users/:username/password", s.resetPassword)
		admin.DELETE("/users/:username", s.removeUser)

		admin.PUT("/logo", s.setLogo)
		admin.DELETE("/logo", s.removeLogo)

		admin.GET("/docs", s.docs)
	}

	ws := NewWSHandler(s.quiz, s.log)
	r.GET("/ws/quiz", s.withSession(), s.requireRole(false), func(c *gin.Context) {
		ws.ServeWS(c.Writer, c.Request, sessionID(c))
	})
	return r
}
