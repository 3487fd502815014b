package timeslots

import (
	"context"
	"errors"
	"fmt"

	"github.com/Domenick1991/slotbooking/internal/domain"
	"github.com/Domenick1991/slotbooking/internal/logger"
	"github.com/Domenick1991/slotbooking/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type TimeSlotUseCase interface {
	CreateTimeSlot(ctx context.Context, input CreateTimeSlotInput) (*domain.TimeSlot, error)
	ListTimeSlotsForHost(ctx context.Context, hostID uuid.UUID) ([]domain.TimeSlot, error)
	ListMyTimeSlots(ctx context.Context, hostID uuid.UUID) ([]domain.TimeSlot, error)
}

// Cache stores a host's slot list per version. A miss is nil slots with
// the current version; InvalidateHostSlots moves to a new version.
type Cache interface {
	GetHostSlots(ctx context.Context, hostID uuid.UUID) ([]domain.TimeSlot, int64, error)
	SetHostSlots(ctx context.Context, hostID uuid.UUID, version int64, slots []domain.TimeSlot) error
	InvalidateHostSlots(ctx context.Context, hostID uuid.UUID) error
}

type CreateTimeSlotInput struct {
	HostID    uuid.UUID
	StartTime domain.TimeOfDay
	EndTime   domain.TimeOfDay
	Weekdays  []int
}

type TimeSlotService struct {
	slots     repository.TimeSlotRepository
	members   repository.MemberDirectory
	calendars repository.CalendarDirectory
	cache     Cache
	log       *zap.Logger
}

type Option func(*TimeSlotService)

func WithCache(c Cache) Option {
	return func(s *TimeSlotService) {
		s.cache = c
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(s *TimeSlotService) {
		s.log = logger.OrNop(l).Named("timeslots")
	}
}

func NewTimeSlotService(
	slots repository.TimeSlotRepository,
	members repository.MemberDirectory,
	calendars repository.CalendarDirectory,
	opts ...Option,
) *TimeSlotService {
	s := &TimeSlotService{
		slots:     slots,
		members:   members,
		calendars: calendars,
		log:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *TimeSlotService) CreateTimeSlot(ctx context.Context, input CreateTimeSlotInput) (*domain.TimeSlot, error) {
	weekdays, err := domain.NewWeekdaySet(input.Weekdays...)
	if err != nil {
		return nil, err
	}
	slot, err := domain.NewTimeSlot(input.HostID, input.StartTime, input.EndTime, weekdays)
	if err != nil {
		return nil, err
	}

	if err := s.requireHost(ctx, input.HostID, domain.ErrPermissionDenied); err != nil {
		return nil, err
	}
	if err := s.requireCalendar(ctx, input.HostID); err != nil {
		return nil, err
	}

	err = s.slots.WithinHostTx(ctx, input.HostID, func(ctx context.Context, tx repository.TimeSlotTx) error {
		candidates, err := tx.ListOverlapCandidates(ctx, slot.HostID, slot.StartTime, slot.EndTime)
		if err != nil {
			return err
		}
		for _, existing := range candidates {
			if domain.TimeSlotsOverlap(existing, *slot) {
				s.log.Info("time slot overlaps",
					zap.Stringer("host_id", slot.HostID),
					zap.Int64("existing_id", existing.ID))
				return domain.ErrTimeSlotOverlap
			}
		}
		return tx.Insert(ctx, slot)
	})
	if err != nil {
		if domain.KindOf(err) == domain.KindInternal {
			s.log.Error("create time slot", zap.Stringer("host_id", input.HostID), zap.Error(err))
		}
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.InvalidateHostSlots(ctx, slot.HostID); err != nil {
			s.log.Warn("invalidate slot cache", zap.Stringer("host_id", slot.HostID), zap.Error(err))
		}
	}
	return slot, nil
}

func (s *TimeSlotService) ListTimeSlotsForHost(ctx context.Context, hostID uuid.UUID) ([]domain.TimeSlot, error) {
	if err := s.requireHost(ctx, hostID, domain.ErrHostNotFound); err != nil {
		return nil, err
	}
	if err := s.requireCalendar(ctx, hostID); err != nil {
		return nil, err
	}
	return s.list(ctx, hostID)
}

func (s *TimeSlotService) ListMyTimeSlots(ctx context.Context, hostID uuid.UUID) ([]domain.TimeSlot, error) {
	if err := s.requireHost(ctx, hostID, domain.ErrPermissionDenied); err != nil {
		return nil, err
	}
	if err := s.requireCalendar(ctx, hostID); err != nil {
		return nil, err
	}
	return s.list(ctx, hostID)
}

func (s *TimeSlotService) list(ctx context.Context, hostID uuid.UUID) ([]domain.TimeSlot, error) {
	var (
		version   int64
		cacheable bool
	)
	if s.cache != nil {
		cached, v, err := s.cache.GetHostSlots(ctx, hostID)
		switch {
		case err != nil:
			s.log.Debug("read slot cache", zap.Stringer("host_id", hostID), zap.Error(err))
		case cached != nil:
			return cached, nil
		default:
			version, cacheable = v, true
		}
	}

	slots, err := s.slots.ListByHost(ctx, hostID)
	if err != nil {
		return nil, err
	}
	if cacheable {
		if err := s.cache.SetHostSlots(ctx, hostID, version, slots); err != nil {
			s.log.Debug("write slot cache", zap.Stringer("host_id", hostID), zap.Error(err))
		}
	}
	return slots, nil
}

// requireHost fails with denied unless id belongs to a member with the
// host role.
func (s *TimeSlotService) requireHost(ctx context.Context, id uuid.UUID, denied error) error {
	member, err := s.members.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrMemberNotFound) {
			return denied
		}
		return fmt.Errorf("load member: %w", err)
	}
	if !member.IsHost() {
		return denied
	}
	return nil
}

func (s *TimeSlotService) requireCalendar(ctx context.Context, hostID uuid.UUID) error {
	ok, err := s.calendars.ExistsForHost(ctx, hostID)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrCalendarNotFound
	}
	return nil
}

var _ TimeSlotUseCase = (*TimeSlotService)(nil)
