package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"onboarding/internal/client/metrics"
	"onboarding/internal/client/models"
	id "onboarding/pkg/domain"
	dErrors "onboarding/pkg/domain-errors"
	"onboarding/pkg/platform/sentinel"
	"onboarding/pkg/requestcontext"
)

// Store is the client repository.
type Store interface {
	Create(ctx context.Context, c *models.ClientProfile) error
	FindByID(ctx context.Context, clientID id.ClientID) (*models.ClientProfile, error)
	FindByRFC(ctx context.Context, rfc id.RFC) (*models.ClientProfile, error)
}

// Service registers and resolves onboarding clients.
type Service struct {
	clients Store
	logger  *slog.Logger
	metrics *metrics.Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func New(clients Store, opts ...Option) *Service {
	s := &Service{clients: clients}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register stores a new client profile. A nil ID is assigned here and
// CreatedAt is taken from the request clock.
func (s *Service) Register(ctx context.Context, profile models.ClientProfile) (*models.ClientProfile, error) {
	start := time.Now()
	if profile.ID.IsNil() {
		profile.ID = id.NewClientID()
	}
	profile.CreatedAt = requestcontext.Now(ctx).UTC()

	if err := profile.Validate(); err != nil {
		if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
			return nil, dErrors.New(dErrors.CodeValidation, dErrors.MessageOf(err))
		}
		return nil, err
	}

	if err := s.clients.Create(ctx, &profile); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "a client with this rfc already exists")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create client")
	}

	if s.logger != nil {
		s.logger.InfoContext(ctx, "client registered",
			"client_id", profile.ID.String(),
			"person_type", string(profile.PersonType),
			"request_id", requestcontext.RequestID(ctx),
		)
	}
	s.metrics.IncrementRegistered(string(profile.PersonType))
	s.metrics.ObserveRegister(start)
	return &profile, nil
}

// Get returns the profile for clientID.
func (s *Service) Get(ctx context.Context, clientID id.ClientID) (*models.ClientProfile, error) {
	c, err := s.clients.FindByID(ctx, clientID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "client not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load client")
	}
	return c, nil
}

// FindByRFC resolves a returning client by tax id.
func (s *Service) FindByRFC(ctx context.Context, rfc id.RFC) (*models.ClientProfile, error) {
	c, err := s.clients.FindByRFC(ctx, rfc)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "client not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load client")
	}
	return c, nil
}
