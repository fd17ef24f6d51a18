package flights

import (
	"context"
	"time"

	"github.com/Domenick1991/flightdata/internal/domain"
	"github.com/Domenick1991/flightdata/internal/kafka"
	"github.com/Domenick1991/flightdata/internal/metrics"
	"github.com/Domenick1991/flightdata/internal/repository"
	"go.uber.org/zap"
)

type FlightUseCase interface {
	Save(ctx context.Context, flight domain.Flight) (domain.Flight, error)
	GetByID(ctx context.Context, id int64) (*domain.Flight, error)
	List(ctx context.Context) ([]domain.Flight, error)
	ListSorted(ctx context.Context, sort domain.Sort) ([]domain.Flight, error)
	ListPage(ctx context.Context, req domain.PageRequest) (domain.Page[domain.Flight], error)
	Count(ctx context.Context) (int64, error)
	Delete(ctx context.Context, id int64) error
	DeleteAll(ctx context.Context) error

	FindByOrigin(ctx context.Context, origin string) ([]domain.Flight, error)
	FindByOriginPage(ctx context.Context, origin string, req domain.PageRequest) (domain.Page[domain.Flight], error)
	FindByRoute(ctx context.Context, origin, destination string) ([]domain.Flight, error)
	FindByOrigins(ctx context.Context, origins []string) ([]domain.Flight, error)
	FindByOriginIgnoreCase(ctx context.Context, origin string) ([]domain.Flight, error)
	DeleteByOrigin(ctx context.Context, origin string) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type FlightService struct {
	repo     repository.FlightRepository
	logger   *zap.Logger
	producer Producer
	topic    string
	metrics  *metrics.Registry
}

type FlightServiceOption func(*FlightService)

// WithEventPublisher publishes a kafka.FlightEvent to topic after every
// successful write.
func WithEventPublisher(producer Producer, topic string) FlightServiceOption {
	return func(s *FlightService) {
		s.producer = producer
		s.topic = topic
	}
}

func WithMetrics(reg *metrics.Registry) FlightServiceOption {
	return func(s *FlightService) {
		s.metrics = reg
	}
}

func NewFlightService(repo repository.FlightRepository, logger *zap.Logger, opts ...FlightServiceOption) *FlightService {
	if logger == nil {
		logger = zap.NewNop()
	}
	service := &FlightService{repo: repo, logger: logger.Named("flights")}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

func (s *FlightService) Save(ctx context.Context, flight domain.Flight) (domain.Flight, error) {
	eventType := kafka.EventFlightUpdated
	if flight.IsNew() {
		eventType = kafka.EventFlightCreated
	}

	start := time.Now()
	saved, err := s.repo.Save(ctx, flight)
	s.observe("save", start, err)
	if err != nil {
		return domain.Flight{}, err
	}

	s.logger.Info("flight saved",
		zap.String("op", eventType),
		zap.Int64("flight_id", saved.ID),
		zap.String("origin", saved.Origin),
		zap.String("destination", saved.Destination),
	)
	s.publish(ctx, kafka.NewFlightEvent(eventType, saved))
	return saved, nil
}

func (s *FlightService) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	start := time.Now()
	flight, err := s.repo.FindByID(ctx, id)
	s.observe("find_by_id", start, err)
	return flight, err
}

func (s *FlightService) List(ctx context.Context) ([]domain.Flight, error) {
	start := time.Now()
	flights, err := s.repo.FindAll(ctx)
	s.observe("find_all", start, err)
	return flights, err
}

func (s *FlightService) ListSorted(ctx context.Context, sort domain.Sort) ([]domain.Flight, error) {
	start := time.Now()
	flights, err := s.repo.FindAllSorted(ctx, sort)
	s.observe("find_all_sorted", start, err)
	return flights, err
}

func (s *FlightService) ListPage(ctx context.Context, req domain.PageRequest) (domain.Page[domain.Flight], error) {
	start := time.Now()
	page, err := s.repo.FindAllPage(ctx, req)
	s.observe("find_all_page", start, err)
	return page, err
}

func (s *FlightService) Count(ctx context.Context) (int64, error) {
	start := time.Now()
	n, err := s.repo.Count(ctx)
	s.observe("count", start, err)
	return n, err
}

func (s *FlightService) Delete(ctx context.Context, id int64) error {
	start := time.Now()
	err := s.repo.DeleteByID(ctx, id)
	s.observe("delete_by_id", start, err)
	if err != nil {
		return err
	}

	s.logger.Info("flight deleted", zap.Int64("flight_id", id))
	s.publish(ctx, kafka.NewFlightEvent(kafka.EventFlightDeleted, domain.Flight{ID: id}))
	return nil
}

func (s *FlightService) DeleteAll(ctx context.Context) error {
	start := time.Now()
	err := s.repo.DeleteAll(ctx)
	s.observe("delete_all", start, err)
	if err != nil {
		return err
	}

	s.logger.Warn("all flights deleted")
	s.publish(ctx, kafka.NewFlightEvent(kafka.EventFlightsDeletedAll, domain.Flight{}))
	return nil
}

func (s *FlightService) FindByOrigin(ctx context.Context, origin string) ([]domain.Flight, error) {
	start := time.Now()
	flights, err := s.repo.FindByOrigin(ctx, origin)
	s.observe("find_by_origin", start, err)
	return flights, err
}

func (s *FlightService) FindByOriginPage(ctx context.Context, origin string, req domain.PageRequest) (domain.Page[domain.Flight], error) {
	start := time.Now()
	page, err := s.repo.FindByOriginPage(ctx, origin, req)
	s.observe("find_by_origin_page", start, err)
	return page, err
}

func (s *FlightService) FindByRoute(ctx context.Context, origin, destination string) ([]domain.Flight, error) {
	start := time.Now()
	flights, err := s.repo.FindByOriginAndDestination(ctx, origin, destination)
	s.observe("find_by_origin_and_destination", start, err)
	return flights, err
}

func (s *FlightService) FindByOrigins(ctx context.Context, origins []string) ([]domain.Flight, error) {
	start := time.Now()
	flights, err := s.repo.FindByOriginIn(ctx, origins)
	s.observe("find_by_origin_in", start, err)
	return flights, err
}

func (s *FlightService) FindByOriginIgnoreCase(ctx context.Context, origin string) ([]domain.Flight, error) {
	start := time.Now()
	flights, err := s.repo.FindByOriginIgnoreCase(ctx, origin)
	s.observe("find_by_origin_ignore_case", start, err)
	return flights, err
}

func (s *FlightService) DeleteByOrigin(ctx context.Context, origin string) error {
	start := time.Now()
	err := s.repo.DeleteByOrigin(ctx, origin)
	s.observe("delete_by_origin", start, err)
	if err != nil {
		return err
	}

	s.logger.Info("flights deleted by origin", zap.String("origin", origin))
	s.publish(ctx, kafka.NewFlightEvent(kafka.EventFlightsDeletedByOrigin, domain.Flight{Origin: origin}))
	return nil
}

// publish never fails the write that triggered it.
func (s *FlightService) publish(ctx context.Context, event kafka.FlightEvent) {
	if s.producer == nil || s.topic == "" {
		return
	}
	err := s.producer.Publish(ctx, s.topic, event.Key(), event)
	if s.metrics != nil {
		s.metrics.ObserveEvent(event.Type, err)
	}
	if err != nil {
		s.logger.Warn("failed to publish flight event",
			zap.String("type", event.Type),
			zap.String("event_id", event.ID),
			zap.Error(err),
		)
	}
}

func (s *FlightService) observe(op string, start time.Time, err error) {
	if s.metrics != nil {
		s.metrics.ObserveStore(op, start, err)
	}
}

var _ FlightUseCase = (*FlightService)(nil)
