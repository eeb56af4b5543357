package sandbox

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/tandikan/enroll/internal/models"
)

func (s *Server) login(c *gin.Context) {
	var req models.LoginRequest
	if !s.bind(c, &req) {
		return
	}
	user, err := s.store.Authenticate(req.Email, req.Password)
	if err != nil {
		s.failStore(c, err)
		return
	}
	token, err := s.issueToken(user)
	if err != nil {
		s.failStore(c, err)
		return
	}
	c.JSON(http.StatusOK, models.AuthResponse{User: *user, Token: token})
}

func (s *Server) register(c *gin.Context) {
	var req models.RegisterRequest
	if !s.bind(c, &req) {
		return
	}
	user, err := s.store.Register(req)
	if err != nil {
		s.failStore(c, err)
		return
	}
	token, err := s.issueToken(user)
	if err != nil {
		s.failStore(c, err)
		return
	}
	c.JSON(http.StatusCreated, models.AuthResponse{User: *user, Token: token})
}

// logout is stateless server-side; the client discards its token.
func (s *Server) logout(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

func (s *Server) me(c *gin.Context) {
	c.JSON(http.StatusOK, currentUser(c))
}

func (s *Server) refresh(c *gin.Context) {
	token, err := s.issueToken(currentUser(c))
	if err != nil {
		s.failStore(c, err)
		return
	}
	c.JSON(http.StatusOK, models.TokenResponse{Token: token})
}

func (s *Server) listSchedules(c *gin.Context) {
	yearLevel, _ := strconv.Atoi(c.Query("year_level"))
	semester, _ := strconv.Atoi(c.Query("semester"))
	c.JSON(http.StatusOK, s.store.Schedules(yearLevel, semester))
}

// scopeStudent returns the student id a listing is limited to: students see
// only their own records, staff roles see everything.
func scopeStudent(c *gin.Context) int64 {
	user := currentUser(c)
	if user != nil && user.Role == models.RoleStudent {
		return user.ID
	}
	return 0
}

func (s *Server) listEnrollments(c *gin.Context) {
	c.JSON(http.StatusOK, s.store.Enrollments(scopeStudent(c)))
}

func (s *Server) currentEnrollment(c *gin.Context) {
	user := currentUser(c)
	if user.Role != models.RoleStudent {
		fail(c, http.StatusBadRequest, "only student accounts have a current enrollment")
		return
	}
	enrollment, err := s.store.CurrentEnrollment(user.ID)
	if err != nil {
		fail(c, http.StatusNotFound, "No active enrollment found")
		return
	}
	c.JSON(http.StatusOK, enrollment)
}

func (s *Server) getEnrollment(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	enrollment, err := s.store.Enrollment(id)
	if err != nil {
		s.failStore(c, err)
		return
	}
	if sid := scopeStudent(c); sid != 0 && enrollment.Student != sid {
		fail(c, http.StatusNotFound, "not found")
		return
	}
	c.JSON(http.StatusOK, enrollment)
}

func (s *Server) createEnrollment(c *gin.Context) {
	var req models.CreateEnrollmentRequest
	if !s.bind(c, &req) {
		return
	}
	user := currentUser(c)
	if user.Role != models.RoleStudent {
		fail(c, http.StatusForbidden, "only student accounts may enroll")
		return
	}
	enrollment, err := s.store.CreateEnrollment(user.ID, req)
	if err != nil {
		s.failStore(c, err)
		return
	}
	c.JSON(http.StatusCreated, enrollment)
}

func (s *Server) updateEnrollment(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req models.UpdateEnrollmentRequest
	if !s.bind(c, &req) {
		return
	}
	existing, err := s.store.Enrollment(id)
	if err != nil {
		s.failStore(c, err)
		return
	}
	if sid := scopeStudent(c); sid != 0 && existing.Student != sid {
		fail(c, http.StatusNotFound, "not found")
		return
	}
	enrollment, err := s.store.UpdateEnrollment(id, req)
	if err != nil {
		s.failStore(c, err)
		return
	}
	c.JSON(http.StatusOK, enrollment)
}

func (s *Server) approveEnrollment(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	enrollment, err := s.store.ApproveEnrollment(id)
	if err != nil {
		s.failStore(c, err)
		return
	}
	c.JSON(http.StatusOK, enrollment)
}

func (s *Server) rejectEnrollment(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req models.RejectEnrollmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "reason is required")
		return
	}
	enrollment, err := s.store.RejectEnrollment(id, req.Reason)
	if err != nil {
		s.failStore(c, err)
		return
	}
	c.JSON(http.StatusOK, enrollment)
}

func (s *Server) dropSubject(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	subjectID, ok := pathID(c, "subjectId")
	if !ok {
		return
	}
	existing, err := s.store.Enrollment(id)
	if err != nil {
		s.failStore(c, err)
		return
	}
	if sid := scopeStudent(c); sid != 0 && existing.Student != sid {
		fail(c, http.StatusNotFound, "not found")
		return
	}
	if err := s.store.DropSubject(id, subjectID); err != nil {
		s.failStore(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) listAssessments(c *gin.Context) {
	c.JSON(http.StatusOK, s.store.Assessments(scopeStudent(c)))
}

func (s *Server) assessmentForEnrollment(c *gin.Context) {
	enrollmentID, ok := pathID(c, "enrollmentId")
	if !ok {
		return
	}
	assessment, err := s.store.AssessmentForEnrollment(enrollmentID)
	if err != nil {
		fail(c, http.StatusNotFound, "No assessment found for this enrollment")
		return
	}
	c.JSON(http.StatusOK, assessment)
}

func (s *Server) getAssessment(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	assessment, err := s.store.Assessment(id)
	if err != nil {
		s.failStore(c, err)
		return
	}
	c.JSON(http.StatusOK, assessment)
}

func (s *Server) createAssessment(c *gin.Context) {
	var req models.CreateAssessmentRequest
	if !s.bind(c, &req) {
		return
	}
	assessment, err := s.store.CreateAssessment(req.EnrollmentID)
	if err != nil {
		s.failStore(c, err)
		return
	}
	c.JSON(http.StatusCreated, assessment)
}

func (s *Server) approveAssessment(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	assessment, err := s.store.ApproveAssessment(id)
	if err != nil {
		s.failStore(c, err)
		return
	}
	c.JSON(http.StatusOK, assessment)
}

func (s *Server) listPayments(c *gin.Context) {
	assessmentID, _ := strconv.ParseInt(c.Query("assessment"), 10, 64)
	c.JSON(http.StatusOK, s.store.Payments(assessmentID, scopeStudent(c)))
}

func (s *Server) createPayment(c *gin.Context) {
	var req models.CreatePaymentRequest
	if !s.bind(c, &req) {
		return
	}
	user := currentUser(c)
	payment, err := s.store.CreatePayment(req, user.Email)
	if err != nil {
		s.failStore(c, err)
		return
	}
	c.JSON(http.StatusCreated, payment)
}

func (s *Server) confirmPayment(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	payment, err := s.store.ConfirmPayment(id)
	if err != nil {
		s.failStore(c, err)
		return
	}
	c.JSON(http.StatusOK, payment)
}
