package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"subasta-auction-service/internal/config"
	"subasta-auction-service/internal/domain/shared"

	"github.com/alitto/pond"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const expirationsKey = "subasta:expirations"

// AuctionFinalizer is the slice of the lifecycle service the sweeper needs
type AuctionFinalizer interface {
	FinalizeExpired(ctx context.Context, auctionID uuid.UUID) error
}

// ExpirySweeper finalizes overdue auctions in the background. Auctions are
// enrolled at creation in a redis sorted set scored by end time; a ticker
// loop collects due entries and finalizes each on a bounded worker pool.
// The on-access expiry check in the lifecycle service remains the
// correctness backstop, the sweep just keeps the stored state fresh.
type ExpirySweeper struct {
	redis     *redis.Client
	finalizer AuctionFinalizer
	pool      *pond.WorkerPool
	logger    zerolog.Logger
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
}

type ExpirySweeperParams struct {
	RedisClient *redis.Client
	Finalizer   AuctionFinalizer
	Logger      zerolog.Logger
}

func NewExpirySweeper(params ExpirySweeperParams) *ExpirySweeper {
	ctx, cancel := context.WithCancel(context.Background())

	pool := pond.New(
		config.SweeperMaxWorkers,
		config.SweeperMaxCapacity,
		pond.Context(ctx),
		pond.Strategy(pond.Balanced()),
	)

	return &ExpirySweeper{
		redis:     params.RedisClient,
		finalizer: params.Finalizer,
		pool:      pool,
		logger:    params.Logger.With().Str("component", "expiry_sweeper").Logger(),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Schedule enrolls an auction for background expiry
func (s *ExpirySweeper) Schedule(auctionID uuid.UUID, endTime time.Time) error {
	err := s.redis.ZAdd(s.ctx, expirationsKey, redis.Z{
		Score:  float64(endTime.Unix()),
		Member: auctionID.String(),
	}).Err()

	if err != nil {
		s.logger.Error().Err(err).Str("auction_id", auctionID.String()).Msg("Failed to schedule auction expiry")
		return fmt.Errorf("failed to schedule auction expiry: %w", err)
	}

	s.logger.Info().
		Str("auction_id", auctionID.String()).
		Time("end_time", endTime).
		Msg("Auction enrolled for expiry sweep")

	return nil
}

// Start begins the sweep loop
func (s *ExpirySweeper) Start() {
	s.logger.Info().Msg("Starting expiry sweeper")

	s.wg.Add(1)
	go s.sweepLoop()
}

// Stop gracefully stops the sweeper and drains the worker pool
func (s *ExpirySweeper) Stop() {
	s.logger.Info().Msg("Stopping expiry sweeper")
	s.cancel()
	s.wg.Wait()
	s.pool.Stop()
}

func (s *ExpirySweeper) sweepLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweepDue()
		case <-s.ctx.Done():
			s.logger.Info().Msg("Sweep loop stopped")
			return
		}
	}
}

// sweepDue finds due auctions and hands each to the worker pool
func (s *ExpirySweeper) sweepDue() {
	now := time.Now().Unix()

	due, err := s.redis.ZRangeByScore(s.ctx, expirationsKey, &redis.ZRangeBy{
		Min:   "0",
		Max:   strconv.FormatInt(now, 10),
		Count: 10, // Process max 10 per tick
	}).Result()

	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to fetch due auctions")
		return
	}

	if len(due) > 0 {
		s.logger.Debug().Int("count", len(due)).Msg("Found due auctions")
	}

	for _, idStr := range due {
		auctionID, err := uuid.Parse(idStr)
		if err != nil {
			s.logger.Error().Err(err).Str("auction_id", idStr).Msg("Invalid auction ID in expiry set")
			s.redis.ZRem(s.ctx, expirationsKey, idStr)
			continue
		}

		s.pool.Submit(func() {
			s.expire(auctionID)
		})
	}
}

// expire finalizes one overdue auction and drops it from the expiry set
func (s *ExpirySweeper) expire(auctionID uuid.UUID) {
	s.logger.Info().Str("auction_id", auctionID.String()).Msg("Finalizing overdue auction")

	err := s.finalizer.FinalizeExpired(s.ctx, auctionID)
	defer s.redis.ZRem(s.ctx, expirationsKey, auctionID.String())

	if err != nil {
		// Already finalized or deleted means someone beat us to it
		if errors.Is(err, shared.ErrAuctionAlreadyFinalized) || errors.Is(err, shared.ErrAuctionNotFound) {
			s.logger.Debug().Str("auction_id", auctionID.String()).Msg("Auction already settled")
			return
		}
		s.logger.Error().Err(err).Str("auction_id", auctionID.String()).Msg("Failed to finalize overdue auction")
		return
	}

	s.logger.Info().Str("auction_id", auctionID.String()).Msg("Overdue auction finalized")
}
