// Command enrollctl drives the enrollment workflow from the terminal: sign
// in, browse schedules, preview fees, check conflicts, submit, follow the
// assessment and settle it with payments. Staff subcommands cover approval,
// rejection and payment confirmation.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/tandikan/enroll/internal/gateway"
	"github.com/tandikan/enroll/internal/models"
	"github.com/tandikan/enroll/internal/service"
	"github.com/tandikan/enroll/internal/workflow"
	"github.com/tandikan/enroll/pkg/cache"
	"github.com/tandikan/enroll/pkg/config"
	"github.com/tandikan/enroll/pkg/export"
	"github.com/tandikan/enroll/pkg/logger"
)

const usage = `usage: enrollctl <command> [flags]

auth:
  login       -email -password
  register    -email -password -first -last [-student-id] [-role]
  logout
  me
  refresh

student:
  schedules   -year -semester
  preview     -ids 1,2,3
  conflicts   -ids 1,2,3
  submit      -ids 1,2,3 -year 2026-2027 -semester 1
  current
  drop        -enrollment N -subject N
  assess
  balance
  pay         -amount N -method cash|card|bank_transfer|online [-ref R]
  payments    [-assessment N]
  statement   [-format csv|pdf] [-out FILE]
  receipt     -payment N [-format csv|pdf] [-out FILE]

staff:
  approve             -enrollment N
  reject              -enrollment N -reason TEXT
  approve-assessment  -assessment N
  confirm             -payment N
`

// app bundles everything a subcommand needs.
type app struct {
	cfg         *config.Config
	logger      *zap.Logger
	session     *gateway.Session
	auth        *service.AuthService
	enrollments *service.EnrollmentService
	assessments *service.AssessmentService
	payments    *service.PaymentService
	flow        *workflow.Workflow
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	a, err := newApp(cfg, logr)
	if err != nil {
		logr.Sugar().Fatalw("failed to build client", "error", err)
	}

	if err := a.run(context.Background(), os.Args[1], os.Args[2:]); err != nil {
		fmt.Fprintf(os.Stderr, "enrollctl: %v\n", err)
		os.Exit(1)
	}
}

func newApp(cfg *config.Config, logr *zap.Logger) (*app, error) {
	session := gateway.NewSession()
	if token, err := loadToken(); err == nil && token != "" {
		session.SetToken(token)
	}

	client := &http.Client{Timeout: cfg.API.Timeout}
	gw := gateway.New(cfg.API.BaseURL, client, session, logr, nil).WithUserAgent(cfg.API.UserAgent)

	var catalog *cache.ScheduleCache
	if cfg.Cache.Enabled {
		client, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Warn("schedule cache unavailable, using API directly", zap.Error(err))
		} else {
			catalog = cache.NewScheduleCache(client, cfg.Cache.TTL, logr, nil)
		}
	}

	enrollments := service.NewEnrollmentService(gw, catalogOrNil(catalog), nil, logr)
	assessments := service.NewAssessmentService(gw, nil, logr)
	payments := service.NewPaymentService(gw, nil, logr)

	rates := workflow.PreviewRates{
		CreditPerSubject: cfg.Preview.CreditPerSubject,
		RatePerUnit:      cfg.Preview.RatePerUnit,
		MiscRate:         cfg.Preview.MiscRate,
	}

	return &app{
		cfg:         cfg,
		logger:      logr,
		session:     session,
		auth:        service.NewAuthService(gw, session, nil, logr),
		enrollments: enrollments,
		assessments: assessments,
		payments:    payments,
		flow:        workflow.New(enrollments, assessments, payments, rates, logr),
	}, nil
}

// catalogOrNil keeps a typed-nil *ScheduleCache from sneaking into the
// service's interface field.
func catalogOrNil(c *cache.ScheduleCache) service.ScheduleCatalog {
	if c == nil {
		return nil
	}
	return c
}

// authCommands establish or discard the credential themselves; everything
// else gets a transparent refresh when the stored token is near expiry.
var authCommands = map[string]bool{
	"login": true, "register": true, "logout": true, "refresh": true,
	"help": true, "-h": true, "--help": true,
}

func (a *app) run(ctx context.Context, command string, args []string) error {
	if !authCommands[command] && a.session.Authenticated() && a.session.ExpiresWithin(a.cfg.API.RefreshSkew) {
		if resp, err := a.auth.RefreshToken(ctx); err == nil {
			if err := saveToken(resp.Token); err != nil {
				a.logger.Warn("could not persist refreshed token", zap.Error(err))
			}
		} else {
			a.logger.Warn("token refresh failed, continuing with stored token", zap.Error(err))
		}
	}

	switch command {
	case "login":
		return a.cmdLogin(ctx, args)
	case "register":
		return a.cmdRegister(ctx, args)
	case "logout":
		return a.cmdLogout(ctx)
	case "me":
		return a.cmdMe(ctx)
	case "refresh":
		return a.cmdRefresh(ctx)
	case "schedules":
		return a.cmdSchedules(ctx, args)
	case "preview":
		return a.cmdPreview(ctx, args)
	case "conflicts":
		return a.cmdConflicts(ctx, args)
	case "submit":
		return a.cmdSubmit(ctx, args)
	case "current":
		return a.cmdCurrent(ctx)
	case "drop":
		return a.cmdDrop(ctx, args)
	case "assess":
		return a.cmdAssess(ctx)
	case "balance":
		return a.cmdBalance(ctx)
	case "pay":
		return a.cmdPay(ctx, args)
	case "payments":
		return a.cmdPayments(ctx, args)
	case "statement":
		return a.cmdStatement(ctx, args)
	case "receipt":
		return a.cmdReceipt(ctx, args)
	case "approve":
		return a.cmdApprove(ctx, args)
	case "reject":
		return a.cmdReject(ctx, args)
	case "approve-assessment":
		return a.cmdApproveAssessment(ctx, args)
	case "confirm":
		return a.cmdConfirm(ctx, args)
	case "help", "-h", "--help":
		fmt.Fprint(os.Stderr, usage)
		return nil
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", command)
	}
}

func (a *app) cmdLogin(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	fs.Parse(args) //nolint:errcheck

	resp, err := a.auth.Login(ctx, models.LoginRequest{Email: *email, Password: *password})
	if err != nil {
		return err
	}
	if err := saveToken(resp.Token); err != nil {
		return err
	}
	fmt.Printf("signed in as %s (%s)\n", resp.User.FullName(), resp.User.Role)
	return nil
}

func (a *app) cmdRegister(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("register", flag.ExitOnError)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	first := fs.String("first", "", "first name")
	last := fs.String("last", "", "last name")
	studentID := fs.String("student-id", "", "student number")
	role := fs.String("role", "", "account role (default student)")
	fs.Parse(args) //nolint:errcheck

	resp, err := a.auth.Register(ctx, models.RegisterRequest{
		Email:     *email,
		Password:  *password,
		FirstName: *first,
		LastName:  *last,
		StudentID: *studentID,
		Role:      *role,
	})
	if err != nil {
		return err
	}
	if err := saveToken(resp.Token); err != nil {
		return err
	}
	fmt.Printf("registered %s (%s)\n", resp.User.Email, resp.User.Role)
	return nil
}

func (a *app) cmdLogout(ctx context.Context) error {
	err := a.auth.Logout(ctx)
	if rmErr := clearToken(); rmErr != nil && err == nil {
		err = rmErr
	}
	if err != nil {
		return err
	}
	fmt.Println("signed out")
	return nil
}

func (a *app) cmdMe(ctx context.Context) error {
	user, err := a.auth.CurrentUser(ctx)
	if err != nil {
		return err
	}
	return printJSON(user)
}

func (a *app) cmdRefresh(ctx context.Context) error {
	resp, err := a.auth.RefreshToken(ctx)
	if err != nil {
		return err
	}
	if err := saveToken(resp.Token); err != nil {
		return err
	}
	fmt.Println("token refreshed")
	return nil
}

func (a *app) cmdSchedules(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("schedules", flag.ExitOnError)
	year := fs.Int("year", 1, "year level")
	semester := fs.Int("semester", 1, "semester")
	fs.Parse(args) //nolint:errcheck

	schedules, err := a.enrollments.AvailableSchedules(ctx, *year, *semester)
	if err != nil {
		return err
	}
	for _, s := range schedules {
		fmt.Printf("%4d  %-9s %-40s %-3s %du  %s %s-%s  %s  %d/%d slots\n",
			s.ID, s.Subject.Code, s.Subject.Title, s.Section, s.Subject.Units,
			strings.Join(s.Days, ","), s.TimeStart, s.TimeEnd, s.Instructor,
			s.AvailableSlots, s.MaxSlots)
	}
	return nil
}

// loadSelection loads the term catalog and toggles the given schedule ids
// into the workflow's selection.
func (a *app) loadSelection(ctx context.Context, ids []int64, year, semester int) error {
	if _, err := a.flow.LoadSchedules(ctx, year, semester); err != nil {
		return err
	}
	for _, id := range ids {
		if err := a.flow.Toggle(id); err != nil {
			return err
		}
	}
	return nil
}

func (a *app) cmdPreview(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("preview", flag.ExitOnError)
	ids := fs.String("ids", "", "comma-separated schedule ids")
	year := fs.Int("year-level", 1, "year level")
	semester := fs.Int("semester", 1, "semester")
	fs.Parse(args) //nolint:errcheck

	parsed, err := parseIDs(*ids)
	if err != nil {
		return err
	}
	if err := a.loadSelection(ctx, parsed, *year, *semester); err != nil {
		return err
	}
	p := a.flow.Preview()
	fmt.Printf("subjects: %d  units: %d\n", a.flow.Selection().Len(), p.Units)
	fmt.Printf("tuition:  %10.2f\nmisc:     %10.2f\ntotal:    %10.2f (advisory)\n",
		p.Tuition, p.Misc, p.Total)
	return nil
}

func (a *app) cmdConflicts(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("conflicts", flag.ExitOnError)
	ids := fs.String("ids", "", "comma-separated schedule ids")
	year := fs.Int("year-level", 1, "year level")
	semester := fs.Int("semester", 1, "semester")
	fs.Parse(args) //nolint:errcheck

	parsed, err := parseIDs(*ids)
	if err != nil {
		return err
	}
	if err := a.loadSelection(ctx, parsed, *year, *semester); err != nil {
		return err
	}
	report, err := a.flow.CheckConflicts()
	if err != nil {
		return err
	}
	fmt.Println(report.Message())
	for _, pair := range report.Pairs {
		fmt.Printf("  %s/%s vs %s/%s on %s\n",
			pair.First.Subject.Code, pair.First.Section,
			pair.Second.Subject.Code, pair.Second.Section,
			strings.Join(pair.SharedDays, ","))
	}
	return nil
}

func (a *app) cmdSubmit(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("submit", flag.ExitOnError)
	ids := fs.String("ids", "", "comma-separated schedule ids")
	academicYear := fs.String("year", "", "academic year, e.g. 2026-2027")
	semester := fs.Int("semester", 1, "semester")
	yearLevel := fs.Int("year-level", 1, "year level")
	fs.Parse(args) //nolint:errcheck

	parsed, err := parseIDs(*ids)
	if err != nil {
		return err
	}
	if err := a.loadSelection(ctx, parsed, *yearLevel, *semester); err != nil {
		return err
	}
	enrollment, err := a.flow.Submit(ctx, *academicYear, *semester)
	if err != nil {
		return err
	}
	fmt.Printf("enrollment %d submitted (%d units, %s)\n",
		enrollment.ID, enrollment.TotalUnits, enrollment.Status)
	return nil
}

func (a *app) cmdCurrent(ctx context.Context) error {
	enrollment, err := a.enrollments.Current(ctx)
	if err != nil {
		if errors.Is(err, service.ErrNoActiveEnrollment) {
			fmt.Println("no active enrollment")
			return nil
		}
		return err
	}
	return printJSON(enrollment)
}

func (a *app) cmdDrop(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("drop", flag.ExitOnError)
	enrollmentID := fs.Int64("enrollment", 0, "enrollment id")
	subjectID := fs.Int64("subject", 0, "enrolled subject id")
	fs.Parse(args) //nolint:errcheck

	if err := a.enrollments.DropSubject(ctx, *enrollmentID, *subjectID); err != nil {
		return err
	}
	fmt.Println("subject dropped")
	return nil
}

func (a *app) cmdAssess(ctx context.Context) error {
	if err := a.flow.LoadCurrent(ctx); err != nil {
		return err
	}
	assessment, err := a.flow.RequestAssessment(ctx)
	if err != nil {
		return err
	}
	return printJSON(assessment)
}

func (a *app) cmdBalance(ctx context.Context) error {
	if err := a.flow.LoadCurrent(ctx); err != nil {
		return err
	}
	if err := a.flow.RefreshPayments(ctx); err != nil {
		return err
	}
	remaining, err := a.flow.RemainingBalance()
	if err != nil {
		return err
	}
	fmt.Printf("remaining balance: %.2f\n", remaining)
	return nil
}

func (a *app) cmdPay(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("pay", flag.ExitOnError)
	amount := fs.Float64("amount", 0, "payment amount")
	method := fs.String("method", "cash", "payment method")
	ref := fs.String("ref", "", "reference number")
	fs.Parse(args) //nolint:errcheck

	if err := a.flow.LoadCurrent(ctx); err != nil {
		return err
	}
	if err := a.flow.RefreshPayments(ctx); err != nil {
		return err
	}
	payment, err := a.flow.RecordPayment(ctx, *amount, models.PaymentMethod(*method), *ref)
	if err != nil {
		return err
	}
	fmt.Printf("payment %d recorded (%.2f, %s)\n", payment.ID, payment.Amount, payment.Status)
	return nil
}

func (a *app) cmdPayments(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("payments", flag.ExitOnError)
	assessmentID := fs.Int64("assessment", 0, "filter to one assessment (0 = all)")
	fs.Parse(args) //nolint:errcheck

	payments, err := a.payments.List(ctx, *assessmentID)
	if err != nil {
		return err
	}
	return printJSON(payments)
}

func (a *app) cmdStatement(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("statement", flag.ExitOnError)
	format := fs.String("format", "pdf", "csv or pdf")
	out := fs.String("out", "", "output file (defaults under the export dir)")
	fs.Parse(args) //nolint:errcheck

	if err := a.flow.LoadCurrent(ctx); err != nil {
		return err
	}
	assessment := a.flow.Assessment()
	if assessment == nil {
		return workflow.ErrNoAssessment
	}

	data := export.AssessmentStatement(*assessment)
	name := fmt.Sprintf("statement-%d.%s", assessment.ID, *format)
	return a.render(data, "Statement of Account", *format, *out, name)
}

func (a *app) cmdReceipt(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("receipt", flag.ExitOnError)
	paymentID := fs.Int64("payment", 0, "payment id")
	format := fs.String("format", "pdf", "csv or pdf")
	out := fs.String("out", "", "output file (defaults under the export dir)")
	fs.Parse(args) //nolint:errcheck

	if err := a.flow.LoadCurrent(ctx); err != nil {
		return err
	}
	assessment := a.flow.Assessment()
	if assessment == nil {
		return workflow.ErrNoAssessment
	}
	payments, err := a.payments.List(ctx, assessment.ID)
	if err != nil {
		return err
	}
	var payment *models.Payment
	for i := range payments {
		if payments[i].ID == *paymentID {
			payment = &payments[i]
			break
		}
	}
	if payment == nil {
		return fmt.Errorf("payment %d not found on assessment %d", *paymentID, assessment.ID)
	}

	data := export.PaymentReceipt(*payment, *assessment)
	name := fmt.Sprintf("receipt-%d.%s", payment.ID, *format)
	return a.render(data, "Official Receipt", *format, *out, name)
}

func (a *app) render(data export.Dataset, title, format, out, defaultName string) error {
	var (
		raw []byte
		err error
	)
	switch format {
	case "csv":
		raw, err = export.NewCSVExporter().Render(data)
	case "pdf":
		raw, err = export.NewPDFExporter().Render(data, title)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
	if err != nil {
		return err
	}

	if out == "" {
		if err := os.MkdirAll(a.cfg.Export.Dir, 0o755); err != nil {
			return err
		}
		out = filepath.Join(a.cfg.Export.Dir, defaultName)
	}
	if err := os.WriteFile(out, raw, 0o644); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", out)
	return nil
}

func (a *app) cmdApprove(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("approve", flag.ExitOnError)
	enrollmentID := fs.Int64("enrollment", 0, "enrollment id")
	fs.Parse(args) //nolint:errcheck

	enrollment, err := a.enrollments.Approve(ctx, *enrollmentID)
	if err != nil {
		return err
	}
	fmt.Printf("enrollment %d approved at %s\n", enrollment.ID, enrollment.ApprovedAt)
	return nil
}

func (a *app) cmdReject(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("reject", flag.ExitOnError)
	enrollmentID := fs.Int64("enrollment", 0, "enrollment id")
	reason := fs.String("reason", "", "rejection reason")
	fs.Parse(args) //nolint:errcheck

	enrollment, err := a.enrollments.Reject(ctx, *enrollmentID, *reason)
	if err != nil {
		return err
	}
	fmt.Printf("enrollment %d rejected: %s\n", enrollment.ID, enrollment.RejectionReason)
	return nil
}

func (a *app) cmdApproveAssessment(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("approve-assessment", flag.ExitOnError)
	assessmentID := fs.Int64("assessment", 0, "assessment id")
	fs.Parse(args) //nolint:errcheck

	assessment, err := a.assessments.Approve(ctx, *assessmentID)
	if err != nil {
		return err
	}
	fmt.Printf("assessment %d approved (net %.2f)\n", assessment.ID, assessment.NetAmount)
	return nil
}

func (a *app) cmdConfirm(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("confirm", flag.ExitOnError)
	paymentID := fs.Int64("payment", 0, "payment id")
	fs.Parse(args) //nolint:errcheck

	payment, err := a.payments.Confirm(ctx, *paymentID)
	if err != nil {
		return err
	}
	fmt.Printf("payment %d confirmed (%.2f)\n", payment.ID, payment.Amount)
	return nil
}

func parseIDs(raw string) ([]int64, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, fmt.Errorf("no schedule ids given")
	}
	parts := strings.Split(raw, ",")
	out := make([]int64, 0, len(parts))
	for _, part := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid schedule id %q", part)
		}
		out = append(out, id)
	}
	return out, nil
}

func printJSON(v any) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(raw))
	return nil
}

func tokenPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".enrollctl", "token"), nil
}

func loadToken() (string, error) {
	path, err := tokenPath()
	if err != nil {
		return "", err
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(raw)), nil
}

func saveToken(token string) error {
	path, err := tokenPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(token), 0o600)
}

func clearToken() error {
	path, err := tokenPath()
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
