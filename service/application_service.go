package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"solar-sizer/domain"
	"solar-sizer/events"
	"solar-sizer/repository"
)

var ErrNoApplicationNumber = errors.New("no application number")

// NewApplicationNumber allocates a number of the form SOL-1A2B3C4D.
func NewApplicationNumber() string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return ApplicationNumberPrefix + strings.ToUpper(id[:applicationNumberLength])
}

// ApplicationService keeps the calculator inputs and contact details of
// prospective customers.
type ApplicationService struct {
	repo   repository.ApplicationRepository
	events events.Publisher
	log    *slog.Logger
	now    func() time.Time

	// mu serialises read-modify-write cycles on the repository.
	mu sync.Mutex
}

func NewApplicationService(
	repo repository.ApplicationRepository,
	publisher events.Publisher,
	log *slog.Logger,
) *ApplicationService {
	if publisher == nil {
		publisher = events.Noop{}
	}
	return &ApplicationService{repo: repo, events: publisher, log: log, now: time.Now}
}

// load returns the stored application or a fresh one with the given number.
func (s *ApplicationService) load(ctx context.Context, number string) (domain.Application, error) {
	app, err := s.repo.Get(ctx, number)
	if errors.Is(err, repository.ErrNotFound) {
		return domain.Application{Number: number}, nil
	}
	return app, err
}

// SaveCalculatorData records what the customer entered and the summary of
// the recommendation they were shown.
func (s *ApplicationService) SaveCalculatorData(
	ctx context.Context,
	number string,
	data domain.CalculatorData,
) (domain.Application, error) {
	if number == "" {
		return domain.Application{}, ErrNoApplicationNumber
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	app, err := s.load(ctx, number)
	if err != nil {
		return domain.Application{}, fmt.Errorf("load application: %w", err)
	}
	app.ApplyCalculatorData(data, s.now())
	if err := s.repo.Save(ctx, app); err != nil {
		return domain.Application{}, fmt.Errorf("save calculator data: %w", err)
	}
	s.log.Info("saved calculator data", "application", number, "location", app.Location)
	return app, nil
}

// SavePersonalInfo records the customer's contact details and announces the
// submission. A failed announcement is logged and otherwise ignored.
func (s *ApplicationService) SavePersonalInfo(
	ctx context.Context,
	number string,
	contact domain.Contact,
) (domain.Application, error) {
	if number == "" {
		return domain.Application{}, ErrNoApplicationNumber
	}
	contact, err := contact.Normalize()
	if err != nil {
		return domain.Application{}, err
	}

	s.mu.Lock()
	app, err := s.load(ctx, number)
	if err != nil {
		s.mu.Unlock()
		return domain.Application{}, fmt.Errorf("load application: %w", err)
	}
	app.ApplyContact(contact, s.now())
	err = s.repo.Save(ctx, app)
	s.mu.Unlock()
	if err != nil {
		return domain.Application{}, fmt.Errorf("save personal info: %w", err)
	}
	s.log.Info("saved personal info", "application", number)

	ev := events.ApplicationSubmitted{
		ApplicationNumber: app.Number,
		Location:          app.Location,
		SystemType:        app.SystemType,
		FullName:          app.FullName,
		Email:             app.Email,
		Phone:             app.Phone,
		ContactTime:       app.ContactTime,
		SubmittedAt:       app.UpdatedAt,
	}
	if err := s.events.PublishApplicationSubmitted(ctx, ev); err != nil {
		s.log.Warn("failed to publish application event", "application", number, "error", err)
	}
	return app, nil
}

func (s *ApplicationService) Get(ctx context.Context, number string) (domain.Application, error) {
	return s.repo.Get(ctx, number)
}

func (s *ApplicationService) List(ctx context.Context) ([]domain.Application, error) {
	return s.repo.List(ctx)
}

// ExportCSV writes every application as CSV.
func (s *ApplicationService) ExportCSV(ctx context.Context, w io.Writer) error {
	apps, err := s.repo.List(ctx)
	if err != nil {
		return err
	}
	return repository.WriteCSV(w, apps)
}
