// Package sandbox is an in-memory reference implementation of the enrollment
// API. It serves the same wire contract the gateway consumes, so the client
// stack can be exercised end to end without the production backend.
package sandbox

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/tandikan/enroll/internal/models"
	"github.com/tandikan/enroll/internal/rbac"
	"github.com/tandikan/enroll/pkg/config"
	"github.com/tandikan/enroll/pkg/logger"
	"github.com/tandikan/enroll/pkg/middleware/cors"
	"github.com/tandikan/enroll/pkg/middleware/requestid"
	"github.com/tandikan/enroll/pkg/telemetry"
)

const userKey = "sandbox.user"

// Server binds the store to the HTTP surface.
type Server struct {
	store    *Store
	cfg      config.SandboxConfig
	validate *validator.Validate
	logger   *zap.Logger
	metrics  *telemetry.Metrics
}

// NewServer constructs a sandbox server. validate and log are nil-tolerant.
func NewServer(store *Store, cfg config.SandboxConfig, validate *validator.Validate, log *zap.Logger) *Server {
	if validate == nil {
		validate = validator.New()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{store: store, cfg: cfg, validate: validate, logger: log}
}

// WithMetrics attaches request telemetry and returns the server for chaining.
func (s *Server) WithMetrics(m *telemetry.Metrics) *Server {
	s.metrics = m
	return s
}

// Router assembles the gin engine with the full middleware chain and routes.
func (s *Server) Router() *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(requestid.Middleware())
	engine.Use(logger.GinMiddleware(s.logger))
	engine.Use(cors.New(s.cfg.CORSOrigin))
	if s.metrics != nil {
		engine.Use(func(c *gin.Context) {
			start := time.Now()
			c.Next()
			s.metrics.ObserveRequest(c.Request.Method, c.FullPath(), c.Writer.Status(), time.Since(start))
		})
	}

	api := engine.Group("/api")

	auth := api.Group("/auth")
	auth.POST("/login/", s.login)
	auth.POST("/register/", s.register)
	auth.POST("/logout/", s.authenticated(), s.logout)
	auth.GET("/me/", s.authenticated(), s.me)
	auth.POST("/refresh/", s.authenticated(), s.refresh)

	api.GET("/schedules/", s.authenticated(), s.listSchedules)

	enrollments := api.Group("/enrollments", s.authenticated())
	enrollments.GET("/", s.requires(rbac.ActionViewEnrollments), s.listEnrollments)
	enrollments.GET("/current/", s.requires(rbac.ActionViewEnrollments), s.currentEnrollment)
	enrollments.GET("/:id/", s.requires(rbac.ActionViewEnrollments), s.getEnrollment)
	enrollments.POST("/", s.requires(rbac.ActionCreateEnrollment), s.createEnrollment)
	enrollments.PUT("/:id/", s.requires(rbac.ActionCreateEnrollment), s.updateEnrollment)
	enrollments.POST("/:id/approve/", s.requires(rbac.ActionApproveEnrollment), s.approveEnrollment)
	enrollments.POST("/:id/reject/", s.requires(rbac.ActionRejectEnrollment), s.rejectEnrollment)
	enrollments.DELETE("/:id/subjects/:subjectId/", s.requires(rbac.ActionDropSubject), s.dropSubject)

	assessments := api.Group("/assessments", s.authenticated())
	assessments.GET("/", s.requires(rbac.ActionViewAssessments), s.listAssessments)
	assessments.GET("/enrollment/:enrollmentId/", s.requires(rbac.ActionViewAssessments), s.assessmentForEnrollment)
	assessments.GET("/:id/", s.requires(rbac.ActionViewAssessments), s.getAssessment)
	assessments.POST("/", s.requires(rbac.ActionCreateAssessment), s.createAssessment)
	assessments.POST("/:id/approve/", s.requires(rbac.ActionApproveAssessment), s.approveAssessment)

	payments := api.Group("/payments", s.authenticated())
	payments.GET("/", s.requires(rbac.ActionViewPayments), s.listPayments)
	payments.POST("/", s.requires(rbac.ActionRecordPayment), s.createPayment)
	payments.POST("/:id/confirm/", s.requires(rbac.ActionConfirmPayment), s.confirmPayment)

	return engine
}

// fail writes the Django-style error body the gateway parses.
func fail(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

// failStore maps store sentinels onto HTTP statuses.
func (s *Server) failStore(c *gin.Context, err error) {
	switch {
	case errors.Is(err, errNotFound):
		fail(c, http.StatusNotFound, err.Error())
	case errors.Is(err, errConflict), errors.Is(err, errAlreadyDecided),
		errors.Is(err, errAlreadyApproved), errors.Is(err, errTerminalPayment):
		fail(c, http.StatusConflict, err.Error())
	case errors.Is(err, errBadRequest), errors.Is(err, errScheduleFull),
		errors.Is(err, errExceedsBalance):
		fail(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, errBadCredentials):
		fail(c, http.StatusUnauthorized, err.Error())
	default:
		s.logger.Error("sandbox store failure", zap.Error(err))
		fail(c, http.StatusInternalServerError, "internal error")
	}
}

func (s *Server) bind(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		fail(c, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return false
	}
	if err := s.validate.Struct(dst); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

func (s *Server) issueToken(user *models.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   strconv.FormatInt(user.ID, 10),
		"email": user.Email,
		"role":  string(user.Role),
		"iat":   now.Unix(),
		"exp":   now.Add(s.cfg.JWTExpiry).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

// authenticated resolves the bearer token to a live user and stores it on the
// context.
func (s *Server) authenticated() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || raw == "" {
			fail(c, http.StatusUnauthorized, "authentication required")
			return
		}

		token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return []byte(s.cfg.JWTSecret), nil
		})
		if err != nil || !token.Valid {
			fail(c, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		sub, err := token.Claims.GetSubject()
		if err != nil {
			fail(c, http.StatusUnauthorized, "invalid or expired token")
			return
		}
		id, err := strconv.ParseInt(sub, 10, 64)
		if err != nil {
			fail(c, http.StatusUnauthorized, "invalid or expired token")
			return
		}
		user, err := s.store.UserByID(id)
		if err != nil {
			fail(c, http.StatusUnauthorized, "account no longer exists")
			return
		}

		c.Set(userKey, user)
		c.Next()
	}
}

// requires gates the handler on the caller's role capability.
func (s *Server) requires(action rbac.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		if user == nil {
			fail(c, http.StatusUnauthorized, "authentication required")
			return
		}
		if !rbac.Can(user.Role, action) {
			fail(c, http.StatusForbidden, fmt.Sprintf("role %s may not %s", user.Role, action))
			return
		}
		c.Next()
	}
}

func currentUser(c *gin.Context) *models.User {
	v, ok := c.Get(userKey)
	if !ok {
		return nil
	}
	user, _ := v.(*models.User)
	return user
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		fail(c, http.StatusBadRequest, fmt.Sprintf("invalid %s", name))
		return 0, false
	}
	return id, true
}
