package warranty

import (
	"context"
	"errors"
	"sync"
	"time"

	warrantyRepo "repairdesk/database/repository/warranty"
	"repairdesk/models"
	"repairdesk/services/notification"

	"github.com/jinzhu/now"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// SweepResult summarises one pass over the warranty table.
type SweepResult struct {
	Checked  int `json:"checked"`
	Due      int `json:"due"`
	Sent     int `json:"sent"`
	Claimed  int `json:"alreadyClaimed"`
	Released int `json:"released"`
	Failed   int `json:"failed"`
}

// WarrantyService sends expiry reminders at most once per warranty and interval.
type WarrantyService interface {
	Sweep(ctx context.Context) (SweepResult, error)
}

type DefaultWarrantyService struct {
	Repo     warrantyRepo.WarrantyRepository
	// Users is optional; registration falls back to it for contact details.
	Users    IdentityResolver
	Channels []Channel
	Notifier notification.NotificationService
	Workers  int
	Logger   *zap.Logger
	Now      func() time.Time
}

func NewDefaultWarrantyService(
	repo warrantyRepo.WarrantyRepository,
	notifier notification.NotificationService,
	channels []Channel,
	workers int,
	logger *zap.Logger,
) *DefaultWarrantyService {
	if workers <= 0 {
		workers = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DefaultWarrantyService{
		Repo:     repo,
		Channels: channels,
		Notifier: notifier,
		Workers:  workers,
		Logger:   logger,
		Now:      time.Now,
	}
}

type outcome int

const (
	outcomeNotDue outcome = iota
	outcomeSent
	outcomeClaimed
	outcomeReleased
	outcomeFailed
)

// Sweep checks every warranty and sends the reminders due today.
func (s *DefaultWarrantyService) Sweep(ctx context.Context) (SweepResult, error) {
	at := s.Now()
	today := now.With(at).BeginningOfDay()

	warranties, err := s.Repo.ListAll(ctx)
	if err != nil {
		return SweepResult{}, err
	}
	s.Logger.Info("Checking for warranty expirations", zap.Int("warranties", len(warranties)))

	var (
		mu     sync.Mutex
		result = SweepResult{Checked: len(warranties)}
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.Workers)
	for _, w := range warranties {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			o := s.process(gctx, w, today, at)

			mu.Lock()
			defer mu.Unlock()
			switch o {
			case outcomeSent:
				result.Due++
				result.Sent++
			case outcomeClaimed:
				result.Due++
				result.Claimed++
			case outcomeReleased:
				result.Due++
				result.Released++
			case outcomeFailed:
				result.Due++
				result.Failed++
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return result, err
	}

	s.Logger.Info("Warranty notification check completed",
		zap.Int("due", result.Due),
		zap.Int("sent", result.Sent),
		zap.Int("released", result.Released))
	return result, nil
}

func (s *DefaultWarrantyService) process(ctx context.Context, w models.Warranty, today, at time.Time) outcome {
	interval, ok := dueInterval(w, today)
	if !ok {
		return outcomeNotDue
	}
	if w.AlreadySent(interval) {
		return outcomeClaimed
	}
	log := s.Logger.With(zap.String("warrantyId", w.ID), zap.Int("interval", interval))

	// The claim is the at-most-once guard: only the sweep that records the interval sends.
	claimed, err := s.Repo.ClaimInterval(ctx, w.ID, interval, at.UTC())
	if err != nil {
		log.Error("Failed to claim warranty interval", zap.Error(err))
		return outcomeFailed
	}
	if !claimed {
		return outcomeClaimed
	}

	reminder, err := render(w, interval)
	if err != nil {
		log.Error("Failed to render reminder", zap.Error(err))
		s.release(ctx, w.ID, interval, log)
		return outcomeReleased
	}

	attempted, delivered := 0, 0
	for _, ch := range s.Channels {
		err := ch.Send(ctx, reminder)
		if errors.Is(err, ErrNoAddress) {
			continue
		}
		attempted++
		if err != nil {
			log.Warn("Reminder channel failed", zap.String("channel", ch.Name()), zap.Error(err))
			continue
		}
		delivered++
	}

	if attempted > 0 && delivered == 0 {
		s.release(ctx, w.ID, interval, log)
		return outcomeReleased
	}

	if w.UserID != "" {
		s.Notifier.Notify(ctx, w.UserID, "Warranty Expiring Soon", reminder.Text, map[string]any{
			"type":       models.NotifWarrantyExpiration,
			"warrantyId": w.ID,
			"interval":   interval,
			"modelName":  w.ModelName,
		})
	}
	log.Info("Processed warranty reminder", zap.Int("channels", delivered))
	return outcomeSent
}

func (s *DefaultWarrantyService) release(ctx context.Context, id string, interval int, log *zap.Logger) {
	if err := s.Repo.ReleaseInterval(ctx, id, interval); err != nil {
		log.Error("Failed to release warranty interval", zap.Error(err))
	}
}
