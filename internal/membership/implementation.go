// internal/membership/implementation.go
package membership

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

// service implements the Service interface.
type service struct {
	registry  *Registry
	snapshots SnapshotStore
	limiter   *rate.Limiter
	validator *inputValidator
	tracer    trace.Tracer
	metrics   *serviceMetrics
	logger    *slog.Logger
}

type serviceMetrics struct {
	created    metric.Int64Counter
	attendance metric.Int64Counter
	payments   metric.Float64Counter
	reversions metric.Int64Counter
}

func newServiceMetrics(meter metric.Meter) (*serviceMetrics, error) {
	created, err1 := meter.Int64Counter("gym.members.created",
		metric.WithDescription("Members registered"))
	attendance, err2 := meter.Int64Counter("gym.attendance.marked",
		metric.WithDescription("Visits recorded for active members"))
	payments, err3 := meter.Float64Counter("gym.payments.accepted",
		metric.WithDescription("Premium payment amounts accepted"))
	reversions, err4 := meter.Int64Counter("gym.members.reverted",
		metric.WithDescription("Member reversions"))
	if err := errors.Join(err1, err2, err3, err4); err != nil {
		return nil, err
	}
	return &serviceMetrics{created: created, attendance: attendance, payments: payments, reversions: reversions}, nil
}

// NewService creates a new membership service instance. A nil limiter
// leaves member creation unthrottled.
func NewService(registry *Registry, snapshots SnapshotStore, logger *slog.Logger, limiter *rate.Limiter) Service {
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Inf, 0)
	}
	if logger == nil {
		logger = slog.Default()
	}

	metrics, err := newServiceMetrics(otel.Meter("gymnexus/membership"))
	if err != nil {
		logger.Warn("metrics disabled", "error", err)
		metrics, _ = newServiceMetrics(noop.NewMeterProvider().Meter("gymnexus/membership"))
	}

	return &service{
		registry:  registry,
		snapshots: snapshots,
		limiter:   limiter,
		validator: newInputValidator(time.Now),
		tracer:    otel.Tracer("gymnexus/membership"),
		metrics:   metrics,
		logger:    logger,
	}
}

// CreateRegular registers a regular member.
func (s *service) CreateRegular(ctx context.Context, in RegularInput) (Result, error) {
	ctx, span := s.tracer.Start(ctx, "membership.create_regular")
	defer span.End()

	if !s.limiter.Allow() {
		return Result{}, s.fail(span, ErrRateLimited)
	}
	if err := s.validator.regular(&in); err != nil {
		return Result{}, s.fail(span, err)
	}

	// Every member starts on the basic plan. A different requested plan goes
	// through the upgrade rule, which a member with no visits cannot pass.
	m := NewRegularMember(in.profile(), in.ReferralSource)
	out := ok("Regular member added successfully!")
	if in.Plan != "" && !strings.EqualFold(in.Plan, m.Regular.Plan) {
		upgrade, err := m.UpgradePlan(in.Plan)
		if err != nil {
			return Result{}, s.fail(span, err)
		}
		if upgrade.Accepted() {
			out.Message += " " + upgrade.Message
		} else {
			out = upgrade
			out.Message = fmt.Sprintf("Regular member added on the %s plan. %s", m.Regular.Plan, upgrade.Message)
		}
	}
	span.SetAttributes(attribute.Int("member.id", m.ID), attribute.String("member.plan", m.Regular.Plan))

	if !s.registry.AddIfAbsent(m) {
		return Result{}, s.fail(span, fmt.Errorf("member %d: %w", m.ID, ErrDuplicateID))
	}

	s.metrics.created.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", string(KindRegular))))
	s.logger.Info("regular member added", "member_id", m.ID, "plan", m.Regular.Plan, "outcome", out.Code)
	return Result{Member: m, Outcome: out}, nil
}

// CreatePremium registers a premium member and applies the optional initial
// payment. A rejected initial payment fails the whole registration.
func (s *service) CreatePremium(ctx context.Context, in PremiumInput) (Result, error) {
	ctx, span := s.tracer.Start(ctx, "membership.create_premium")
	defer span.End()

	if !s.limiter.Allow() {
		return Result{}, s.fail(span, ErrRateLimited)
	}
	if err := s.validator.premium(&in); err != nil {
		return Result{}, s.fail(span, err)
	}

	m := NewPremiumMember(in.profile(), in.PersonalTrainer)
	span.SetAttributes(attribute.Int("member.id", m.ID))

	out := ok("Premium member added successfully!")
	if in.InitialPayment != nil {
		payment, _ := m.PayDueAmount(*in.InitialPayment)
		if !payment.Accepted() {
			return Result{}, s.fail(span, fmt.Errorf("initial payment rejected: %s: %w", payment.Message, ErrValidation))
		}
		out = payment
	}

	if !s.registry.AddIfAbsent(m) {
		return Result{}, s.fail(span, fmt.Errorf("member %d: %w", m.ID, ErrDuplicateID))
	}

	s.metrics.created.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", string(KindPremium))))
	if in.InitialPayment != nil {
		s.metrics.payments.Add(ctx, *in.InitialPayment)
	}
	s.logger.Info("premium member added", "member_id", m.ID, "paid_amount", m.Premium.PaidAmount)
	return Result{Member: m, Outcome: out}, nil
}

// Find retrieves a member by ID.
func (s *service) Find(ctx context.Context, id int) (Member, error) {
	_, span := s.tracer.Start(ctx, "membership.find", trace.WithAttributes(attribute.Int("member.id", id)))
	defer span.End()

	m, err := s.registry.Find(id)
	if err != nil {
		return Member{}, s.fail(span, err)
	}
	return m, nil
}

// List summarises every member in insertion order.
func (s *service) List(ctx context.Context) Summary {
	_, span := s.tracer.Start(ctx, "membership.list")
	defer span.End()

	sum := summarize(s.registry.All())
	span.SetAttributes(attribute.Int("members.total", sum.Total))
	return sum
}

func (s *service) Activate(ctx context.Context, id int) (Result, error) {
	return s.mutate(ctx, "activate", id, func(m *Member) (Outcome, error) {
		return m.Activate(), nil
	})
}

func (s *service) Deactivate(ctx context.Context, id int) (Result, error) {
	return s.mutate(ctx, "deactivate", id, func(m *Member) (Outcome, error) {
		return m.Deactivate(), nil
	})
}

func (s *service) MarkAttendance(ctx context.Context, id int) (Result, error) {
	res, err := s.mutate(ctx, "mark_attendance", id, func(m *Member) (Outcome, error) {
		return m.MarkAttendance()
	})
	if err == nil && res.Outcome.Accepted() {
		s.metrics.attendance.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", string(res.Member.Kind))))
	}
	return res, err
}

func (s *service) UpgradePlan(ctx context.Context, id int, plan string) (Result, error) {
	return s.mutate(ctx, "upgrade_plan", id, func(m *Member) (Outcome, error) {
		return m.UpgradePlan(plan)
	})
}

func (s *service) RevertRegular(ctx context.Context, id int, reason string) (Result, error) {
	if strings.TrimSpace(reason) == "" {
		return Result{}, fmt.Errorf("removal reason is required: %w", ErrValidation)
	}
	res, err := s.mutate(ctx, "revert_regular", id, func(m *Member) (Outcome, error) {
		return m.RevertRegular(reason)
	})
	if err == nil {
		s.metrics.reversions.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", string(KindRegular))))
	}
	return res, err
}

func (s *service) PayDue(ctx context.Context, id int, amt float64) (Result, error) {
	if err := s.validator.positiveAmount(amt); err != nil {
		return Result{}, err
	}
	res, err := s.mutate(ctx, "pay_due", id, func(m *Member) (Outcome, error) {
		return m.PayDueAmount(amt)
	})
	if err == nil && res.Outcome.Accepted() {
		s.metrics.payments.Add(ctx, amt)
	}
	return res, err
}

func (s *service) CalculateDiscount(ctx context.Context, id int) (Result, error) {
	return s.mutate(ctx, "calculate_discount", id, func(m *Member) (Outcome, error) {
		return m.CalculateDiscount()
	})
}

func (s *service) RevertPremium(ctx context.Context, id int) (Result, error) {
	res, err := s.mutate(ctx, "revert_premium", id, func(m *Member) (Outcome, error) {
		return m.RevertPremium()
	})
	if err == nil {
		s.metrics.reversions.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", string(KindPremium))))
	}
	return res, err
}

// Save writes the whole registry through the snapshot store.
func (s *service) Save(ctx context.Context, name string) (string, error) {
	ctx, span := s.tracer.Start(ctx, "membership.save")
	defer span.End()

	name = strings.TrimSpace(name)
	if name == "" {
		return "", s.fail(span, fmt.Errorf("snapshot name is required: %w", ErrValidation))
	}
	members := s.registry.All()
	if len(members) == 0 {
		return "", s.fail(span, ErrEmptyRegistry)
	}

	location, err := s.snapshots.Save(ctx, name, members)
	if err != nil {
		return "", s.fail(span, fmt.Errorf("failed to save snapshot: %w", err))
	}

	span.SetAttributes(attribute.Int("members.saved", len(members)))
	s.logger.Info("members saved", "location", location, "count", len(members))
	return location, nil
}

// Load replaces the registry with a snapshot. The registry is untouched when
// the snapshot cannot be read.
func (s *service) Load(ctx context.Context, location string) (Summary, error) {
	ctx, span := s.tracer.Start(ctx, "membership.load")
	defer span.End()

	location = strings.TrimSpace(location)
	if location == "" {
		return Summary{}, s.fail(span, fmt.Errorf("snapshot location is required: %w", ErrValidation))
	}

	members, err := s.snapshots.Load(ctx, location)
	if err != nil {
		return Summary{}, s.fail(span, fmt.Errorf("failed to load snapshot: %w", err))
	}
	s.registry.ReplaceAll(members)

	span.SetAttributes(attribute.Int("members.loaded", len(members)))
	s.logger.Info("members loaded", "location", location, "count", len(members))
	return summarize(members), nil
}

func (s *service) mutate(ctx context.Context, op string, id int, fn func(*Member) (Outcome, error)) (Result, error) {
	_, span := s.tracer.Start(ctx, "membership."+op, trace.WithAttributes(attribute.Int("member.id", id)))
	defer span.End()

	m, out, err := s.registry.Update(id, fn)
	if err != nil {
		return Result{}, s.fail(span, err)
	}

	span.SetAttributes(attribute.String("outcome.code", string(out.Code)))
	s.logger.Info(op, "member_id", id, "outcome", out.Code)
	return Result{Member: m, Outcome: out}, nil
}

func (s *service) fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
