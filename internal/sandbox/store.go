package sandbox

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/tandikan/enroll/internal/models"
)

// Store-level failures mapped to HTTP statuses by the handlers.
var (
	errNotFound        = errors.New("not found")
	errConflict        = errors.New("conflict")
	errBadRequest      = errors.New("bad request")
	errBadCredentials  = errors.New("invalid email or password")
	errScheduleFull    = errors.New("schedule has no available slots")
	errAlreadyDecided  = errors.New("enrollment already decided")
	errAlreadyApproved = errors.New("already approved")
	errExceedsBalance  = errors.New("amount exceeds remaining balance")
	errTerminalPayment = errors.New("payment already settled")
)

type account struct {
	user models.User
	hash []byte
}

// Store is the sandbox's in-memory state. All entities the real service
// persists live here; handlers hold the lock for the duration of each
// operation.
type Store struct {
	mu sync.Mutex

	accounts    map[int64]*account
	byEmail     map[string]int64
	students    map[int64]*models.Student
	schedules   map[int64]*models.Schedule
	enrollments map[int64]*models.Enrollment
	assessments map[int64]*models.Assessment
	payments    map[int64]*models.Payment

	seq int64
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		accounts:    make(map[int64]*account),
		byEmail:     make(map[string]int64),
		students:    make(map[int64]*models.Student),
		schedules:   make(map[int64]*models.Schedule),
		enrollments: make(map[int64]*models.Enrollment),
		assessments: make(map[int64]*models.Assessment),
		payments:    make(map[int64]*models.Payment),
	}
}

func (s *Store) nextID() int64 {
	s.seq++
	return s.seq
}

// Register creates an account, plus a student profile for student roles.
func (s *Store) Register(req models.RegisterRequest) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if _, taken := s.byEmail[email]; taken {
		return nil, fmt.Errorf("%w: email already registered", errConflict)
	}

	role := models.Role(req.Role)
	if req.Role == "" {
		role = models.RoleStudent
	}
	if !role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", errBadRequest, req.Role)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := models.User{
		ID:        s.nextID(),
		Email:     email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      role,
		StudentID: req.StudentID,
		CreatedAt: time.Now().UTC(),
	}
	s.accounts[user.ID] = &account{user: user, hash: hash}
	s.byEmail[email] = user.ID

	if role == models.RoleStudent {
		s.students[user.ID] = &models.Student{
			ID:         user.ID,
			StudentID:  req.StudentID,
			FirstName:  req.FirstName,
			LastName:   req.LastName,
			Email:      email,
			YearLevel:  1,
			Program:    "BS Computer Science",
			Status:     models.StudentStatusActive,
			EnrolledAt: user.CreatedAt,
		}
	}

	return &user, nil
}

// Authenticate checks credentials and returns the user.
func (s *Store) Authenticate(email, password string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byEmail[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return nil, errBadCredentials
	}
	acct := s.accounts[id]
	if err := bcrypt.CompareHashAndPassword(acct.hash, []byte(password)); err != nil {
		return nil, errBadCredentials
	}
	user := acct.user
	return &user, nil
}

// UserByID returns the account's user record.
func (s *Store) UserByID(id int64) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acct, ok := s.accounts[id]
	if !ok {
		return nil, errNotFound
	}
	user := acct.user
	return &user, nil
}

// Schedules lists offered sections, optionally filtered by year level and
// semester (0 means any), sorted by id for stable output.
func (s *Store) Schedules(yearLevel, semester int) []models.Schedule {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Schedule, 0, len(s.schedules))
	for _, sched := range s.schedules {
		if yearLevel != 0 && sched.Subject.YearLevel != yearLevel {
			continue
		}
		if semester != 0 && sched.Subject.Semester != semester {
			continue
		}
		out = append(out, *sched)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// AddSchedule inserts a section into the catalog.
func (s *Store) AddSchedule(sched models.Schedule) models.Schedule {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sched.ID == 0 {
		sched.ID = s.nextID()
	}
	if sched.Subject.ID == 0 {
		sched.Subject.ID = s.nextID()
	}
	copied := sched
	s.schedules[sched.ID] = &copied
	if sched.ID > s.seq {
		s.seq = sched.ID
	}
	return sched
}

// CreateEnrollment registers the student for the given schedule sections,
// decrementing capacity and summing units.
func (s *Store) CreateEnrollment(studentID int64, req models.CreateEnrollmentRequest) (*models.Enrollment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range s.enrollments {
		if e.Student == studentID && (e.Status == models.EnrollmentStatusPending || e.Status == models.EnrollmentStatusApproved) {
			return nil, fmt.Errorf("%w: student already has an active enrollment", errConflict)
		}
	}

	seen := make(map[int64]struct{}, len(req.ScheduleIDs))
	picked := make([]*models.Schedule, 0, len(req.ScheduleIDs))
	for _, id := range req.ScheduleIDs {
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("%w: duplicate schedule %d", errBadRequest, id)
		}
		seen[id] = struct{}{}
		sched, ok := s.schedules[id]
		if !ok {
			return nil, fmt.Errorf("%w: schedule %d", errNotFound, id)
		}
		if sched.AvailableSlots <= 0 {
			return nil, fmt.Errorf("%w: schedule %d", errScheduleFull, id)
		}
		picked = append(picked, sched)
	}

	now := time.Now().UTC()
	enrollment := &models.Enrollment{
		ID:           s.nextID(),
		Student:      studentID,
		AcademicYear: req.AcademicYear,
		Semester:     req.Semester,
		Status:       models.EnrollmentStatusPending,
		CreatedAt:    now,
	}
	for _, sched := range picked {
		sched.AvailableSlots--
		enrollment.Subjects = append(enrollment.Subjects, models.EnrolledSubject{
			ID:         s.nextID(),
			Schedule:   *sched,
			EnrolledAt: now,
			Status:     models.SubjectStatusEnrolled,
		})
		enrollment.TotalUnits += sched.Subject.Units
	}

	s.enrollments[enrollment.ID] = enrollment
	out := *enrollment
	return &out, nil
}

// UpdateEnrollment replaces a pending enrollment's schedule set, returning
// the old sections' slots and claiming the new ones.
func (s *Store) UpdateEnrollment(id int64, req models.UpdateEnrollmentRequest) (*models.Enrollment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.enrollments[id]
	if !ok {
		return nil, errNotFound
	}
	if e.Status != models.EnrollmentStatusPending {
		return nil, fmt.Errorf("%w: status %s", errAlreadyDecided, e.Status)
	}

	seen := make(map[int64]struct{}, len(req.ScheduleIDs))
	picked := make([]*models.Schedule, 0, len(req.ScheduleIDs))
	for _, schedID := range req.ScheduleIDs {
		if _, dup := seen[schedID]; dup {
			return nil, fmt.Errorf("%w: duplicate schedule %d", errBadRequest, schedID)
		}
		seen[schedID] = struct{}{}
		sched, ok := s.schedules[schedID]
		if !ok {
			return nil, fmt.Errorf("%w: schedule %d", errNotFound, schedID)
		}
		picked = append(picked, sched)
	}

	held := make(map[int64]struct{}, len(e.Subjects))
	for _, sub := range e.Subjects {
		if sub.Status != models.SubjectStatusDropped {
			held[sub.Schedule.ID] = struct{}{}
		}
	}
	for _, sched := range picked {
		if _, already := held[sched.ID]; !already && sched.AvailableSlots <= 0 {
			return nil, fmt.Errorf("%w: schedule %d", errScheduleFull, sched.ID)
		}
	}

	for id := range held {
		if sched, ok := s.schedules[id]; ok && sched.AvailableSlots < sched.MaxSlots {
			sched.AvailableSlots++
		}
	}

	now := time.Now().UTC()
	e.Subjects = nil
	e.TotalUnits = 0
	for _, sched := range picked {
		sched.AvailableSlots--
		e.Subjects = append(e.Subjects, models.EnrolledSubject{
			ID:         s.nextID(),
			Schedule:   *sched,
			EnrolledAt: now,
			Status:     models.SubjectStatusEnrolled,
		})
		e.TotalUnits += sched.Subject.Units
	}

	out := *e
	return &out, nil
}

// Enrollment returns one enrollment by id.
func (s *Store) Enrollment(id int64) (*models.Enrollment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.enrollments[id]
	if !ok {
		return nil, errNotFound
	}
	out := *e
	return &out, nil
}

// Enrollments lists enrollments; studentID 0 lists all.
func (s *Store) Enrollments(studentID int64) []models.Enrollment {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Enrollment, 0, len(s.enrollments))
	for _, e := range s.enrollments {
		if studentID != 0 && e.Student != studentID {
			continue
		}
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// CurrentEnrollment returns the student's pending or approved enrollment.
func (s *Store) CurrentEnrollment(studentID int64) (*models.Enrollment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range s.enrollments {
		if e.Student == studentID && (e.Status == models.EnrollmentStatusPending || e.Status == models.EnrollmentStatusApproved) {
			out := *e
			return &out, nil
		}
	}
	return nil, errNotFound
}

// ApproveEnrollment transitions pending -> approved and stamps ApprovedAt
// exactly once.
func (s *Store) ApproveEnrollment(id int64) (*models.Enrollment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.enrollments[id]
	if !ok {
		return nil, errNotFound
	}
	if e.Status != models.EnrollmentStatusPending {
		return nil, fmt.Errorf("%w: status %s", errAlreadyDecided, e.Status)
	}
	now := time.Now().UTC()
	e.Status = models.EnrollmentStatusApproved
	e.ApprovedAt = &now
	out := *e
	return &out, nil
}

// RejectEnrollment transitions pending -> rejected with a mandatory reason.
func (s *Store) RejectEnrollment(id int64, reason string) (*models.Enrollment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.TrimSpace(reason) == "" {
		return nil, fmt.Errorf("%w: reason is required", errBadRequest)
	}
	e, ok := s.enrollments[id]
	if !ok {
		return nil, errNotFound
	}
	if e.Status != models.EnrollmentStatusPending {
		return nil, fmt.Errorf("%w: status %s", errAlreadyDecided, e.Status)
	}
	e.Status = models.EnrollmentStatusRejected
	e.RejectionReason = reason
	for _, sub := range e.Subjects {
		if sub.Status == models.SubjectStatusDropped {
			continue
		}
		if sched, ok := s.schedules[sub.Schedule.ID]; ok && sched.AvailableSlots < sched.MaxSlots {
			sched.AvailableSlots++
		}
	}
	out := *e
	return &out, nil
}

// DropSubject marks one enrolled subject dropped, returns its slot and
// recomputes the enrollment's unit total.
func (s *Store) DropSubject(enrollmentID, enrolledSubjectID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.enrollments[enrollmentID]
	if !ok {
		return errNotFound
	}
	for i := range e.Subjects {
		sub := &e.Subjects[i]
		if sub.ID != enrolledSubjectID {
			continue
		}
		if sub.Status == models.SubjectStatusDropped {
			return fmt.Errorf("%w: subject already dropped", errConflict)
		}
		sub.Status = models.SubjectStatusDropped
		if sched, ok := s.schedules[sub.Schedule.ID]; ok && sched.AvailableSlots < sched.MaxSlots {
			sched.AvailableSlots++
		}
		e.TotalUnits -= sub.Schedule.Subject.Units
		if e.TotalUnits < 0 {
			e.TotalUnits = 0
		}
		return nil
	}
	return errNotFound
}

// Fee rates used by the sandbox's assessment builder.
const (
	ratePerUnit = 500.0
	miscRate    = 0.1
	labFee      = 750.0
)

// CreateAssessment builds the authoritative fee breakdown for an enrollment.
func (s *Store) CreateAssessment(enrollmentID int64) (*models.Assessment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.enrollments[enrollmentID]
	if !ok {
		return nil, errNotFound
	}
	for _, a := range s.assessments {
		if a.Enrollment == enrollmentID {
			return nil, fmt.Errorf("%w: enrollment already assessed", errConflict)
		}
	}

	assessment := &models.Assessment{
		ID:         s.nextID(),
		Enrollment: enrollmentID,
		Status:     models.AssessmentStatusPending,
		CreatedAt:  time.Now().UTC(),
	}

	tuition := float64(e.TotalUnits) * ratePerUnit
	assessment.Items = append(assessment.Items, models.FeeItem{
		ID:       s.nextID(),
		Name:     fmt.Sprintf("Tuition (%d units)", e.TotalUnits),
		Amount:   tuition,
		Category: models.FeeCategoryTuition,
	})

	for _, sub := range e.Subjects {
		if sub.Status != models.SubjectStatusDropped && sub.Schedule.Subject.RequiresLab() {
			assessment.Items = append(assessment.Items, models.FeeItem{
				ID:       s.nextID(),
				Name:     fmt.Sprintf("Laboratory - %s", sub.Schedule.Subject.Code),
				Amount:   labFee,
				Category: models.FeeCategoryLaboratory,
			})
		}
	}

	assessment.Items = append(assessment.Items, models.FeeItem{
		ID:       s.nextID(),
		Name:     "Miscellaneous",
		Amount:   tuition * miscRate,
		Category: models.FeeCategoryMiscellaneous,
	})

	for _, item := range assessment.Items {
		assessment.TotalAmount += item.Amount
	}
	assessment.NetAmount = assessment.TotalAmount - assessment.DiscountAmount

	s.assessments[assessment.ID] = assessment
	out := *assessment
	return &out, nil
}

// Assessment returns one assessment by id.
func (s *Store) Assessment(id int64) (*models.Assessment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.assessments[id]
	if !ok {
		return nil, errNotFound
	}
	out := *a
	return &out, nil
}

// Assessments lists assessments; studentID 0 lists all.
func (s *Store) Assessments(studentID int64) []models.Assessment {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Assessment, 0, len(s.assessments))
	for _, a := range s.assessments {
		if studentID != 0 {
			e, ok := s.enrollments[a.Enrollment]
			if !ok || e.Student != studentID {
				continue
			}
		}
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// AssessmentForEnrollment returns the assessment owned by an enrollment.
func (s *Store) AssessmentForEnrollment(enrollmentID int64) (*models.Assessment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range s.assessments {
		if a.Enrollment == enrollmentID {
			out := *a
			return &out, nil
		}
	}
	return nil, errNotFound
}

// ApproveAssessment transitions pending -> approved, stamping ApprovedAt once.
func (s *Store) ApproveAssessment(id int64) (*models.Assessment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.assessments[id]
	if !ok {
		return nil, errNotFound
	}
	if a.Status != models.AssessmentStatusPending {
		return nil, fmt.Errorf("%w: status %s", errAlreadyApproved, a.Status)
	}
	now := time.Now().UTC()
	a.Status = models.AssessmentStatusApproved
	a.ApprovedAt = &now
	out := *a
	return &out, nil
}

func (s *Store) confirmedTotalLocked(assessmentID int64) float64 {
	var total float64
	for _, p := range s.payments {
		if p.Assessment == assessmentID && p.Status == models.PaymentStatusConfirmed {
			total += p.Amount
		}
	}
	return total
}

// CreatePayment records a pending payment. Amounts exceeding the remaining
// balance are rejected outright, never clamped.
func (s *Store) CreatePayment(req models.CreatePaymentRequest, receivedBy string) (*models.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.assessments[req.AssessmentID]
	if !ok {
		return nil, errNotFound
	}
	if req.Amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", errBadRequest)
	}
	remaining := a.NetAmount - s.confirmedTotalLocked(a.ID)
	if req.Amount > remaining {
		return nil, fmt.Errorf("%w: %.2f > %.2f", errExceedsBalance, req.Amount, remaining)
	}

	payment := &models.Payment{
		ID:              s.nextID(),
		Assessment:      a.ID,
		Amount:          req.Amount,
		PaymentMethod:   models.PaymentMethod(req.PaymentMethod),
		ReferenceNumber: req.ReferenceNumber,
		ReceivedBy:      receivedBy,
		CreatedAt:       time.Now().UTC(),
		Status:          models.PaymentStatusPending,
	}
	s.payments[payment.ID] = payment
	out := *payment
	return &out, nil
}

// Payments lists payments, optionally filtered to one assessment, scoped to
// a student when studentID is non-zero.
func (s *Store) Payments(assessmentID, studentID int64) []models.Payment {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Payment, 0, len(s.payments))
	for _, p := range s.payments {
		if assessmentID != 0 && p.Assessment != assessmentID {
			continue
		}
		if studentID != 0 {
			a, ok := s.assessments[p.Assessment]
			if !ok {
				continue
			}
			e, ok := s.enrollments[a.Enrollment]
			if !ok || e.Student != studentID {
				continue
			}
		}
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ConfirmPayment transitions pending -> confirmed, refusing any confirmation
// that would push the confirmed total past the assessment's net amount. Once
// covered, the assessment flips to paid.
func (s *Store) ConfirmPayment(id int64) (*models.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.payments[id]
	if !ok {
		return nil, errNotFound
	}
	if p.Status != models.PaymentStatusPending {
		return nil, fmt.Errorf("%w: status %s", errTerminalPayment, p.Status)
	}
	a, ok := s.assessments[p.Assessment]
	if !ok {
		return nil, errNotFound
	}

	confirmed := s.confirmedTotalLocked(a.ID)
	if confirmed+p.Amount > a.NetAmount {
		return nil, fmt.Errorf("%w: %.2f + %.2f > %.2f", errExceedsBalance, confirmed, p.Amount, a.NetAmount)
	}

	p.Status = models.PaymentStatusConfirmed
	if confirmed+p.Amount >= a.NetAmount {
		a.Status = models.AssessmentStatusPaid
	}
	out := *p
	return &out, nil
}
