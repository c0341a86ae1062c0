package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	// Redis key prefix for resolved free-slot views
	RedisSlotKeyPrefix = "availability:"

	// Cached views expire on their own; writes invalidate them early.
	slotCacheTTL = 5 * time.Minute

	slotCacheDateLayout = "2006-01-02"
)

// SlotCache caches resolved free-slot views per (doctor, date) in Redis.
// It is a read-through cache: every failure degrades to a miss so
// availability resolution keeps working when Redis is down.
type SlotCache interface {
	// GetFreeSlots returns the cached free-slot view for the doctor and
	// day, and whether the cache held one.
	GetFreeSlots(ctx context.Context, doctorID uint, day time.Time) ([]string, bool)
	// SetFreeSlots stores the resolved free-slot view for the doctor and day.
	SetFreeSlots(ctx context.Context, doctorID uint, day time.Time, slots []string)
	// Invalidate drops the cached view for a single doctor and day.
	Invalidate(ctx context.Context, doctorID uint, day time.Time)
	// InvalidateDoctor drops every cached view for the doctor.
	InvalidateDoctor(ctx context.Context, doctorID uint)
}

type slotCacheService struct {
	redisClient *redis.Client
	log         *logrus.Logger
}

func NewSlotCacheService(redisClient *redis.Client, log *logrus.Logger) SlotCache {
	return &slotCacheService{
		redisClient: redisClient,
		log:         log,
	}
}

func (s *slotCacheService) GetFreeSlots(ctx context.Context, doctorID uint, day time.Time) ([]string, bool) {
	payload, err := s.redisClient.Get(ctx, s.slotKey(doctorID, day)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.log.Warnf("Failed to read slot cache for doctor %d: %+v", doctorID, err)
		}
		return nil, false
	}

	var slots []string
	if err := json.Unmarshal([]byte(payload), &slots); err != nil {
		s.log.Warnf("Failed to decode slot cache for doctor %d: %+v", doctorID, err)
		return nil, false
	}
	return slots, true
}

func (s *slotCacheService) SetFreeSlots(ctx context.Context, doctorID uint, day time.Time, slots []string) {
	if slots == nil {
		slots = []string{}
	}

	payload, err := json.Marshal(slots)
	if err != nil {
		s.log.Warnf("Failed to encode slot cache for doctor %d: %+v", doctorID, err)
		return
	}

	if err := s.redisClient.Set(ctx, s.slotKey(doctorID, day), payload, slotCacheTTL).Err(); err != nil {
		s.log.Warnf("Failed to write slot cache for doctor %d: %+v", doctorID, err)
	}
}

// Called after a booking or status change touching that day.
func (s *slotCacheService) Invalidate(ctx context.Context, doctorID uint, day time.Time) {
	if err := s.redisClient.Del(ctx, s.slotKey(doctorID, day)).Err(); err != nil {
		s.log.Warnf("Failed to invalidate slot cache for doctor %d: %+v", doctorID, err)
	}
}

// Called when the doctor's recurring availability changes or the doctor
// is removed.
func (s *slotCacheService) InvalidateDoctor(ctx context.Context, doctorID uint) {
	pattern := fmt.Sprintf("%s%d:*", RedisSlotKeyPrefix, doctorID)

	iter := s.redisClient.Scan(ctx, 0, pattern, 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		s.log.Warnf("Failed to scan slot cache keys for doctor %d: %+v", doctorID, err)
		return
	}

	if len(keys) == 0 {
		return
	}
	if err := s.redisClient.Del(ctx, keys...).Err(); err != nil {
		s.log.Warnf("Failed to invalidate slot cache keys for doctor %d: %+v", doctorID, err)
	}
}

func (s *slotCacheService) slotKey(doctorID uint, day time.Time) string {
	return fmt.Sprintf("%s%d:%s", RedisSlotKeyPrefix, doctorID, day.UTC().Format(slotCacheDateLayout))
}
