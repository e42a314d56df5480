package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"gym-service/internal/domain"

	log "github.com/sirupsen/logrus"
)

// recentAccessLimit caps the recent-accesses list in the stats response.
const recentAccessLimit = 10

// StatsUserResolver resolves user ids to profiles for display names in the
// stats output.
type StatsUserResolver interface {
	GetByIDs(ctx context.Context, ids []string) (map[string]*domain.User, error)
}

// StatsService derives usage summaries from the access-event log. It is
// strictly read-only. Grouping happens here rather than in SQL so the
// unique-user semantics stay testable against an in-memory store; request
// volumes are low enough that range reads are fine.
type StatsService struct {
	eventStore AccessEventStore
	users      StatsUserResolver
	gymTZ      *time.Location
}

func NewStatsService(eventStore AccessEventStore, users StatsUserResolver, gymTZ *time.Location) *StatsService {
	if gymTZ == nil {
		gymTZ = time.UTC
	}
	return &StatsService{
		eventStore: eventStore,
		users:      users,
		gymTZ:      gymTZ,
	}
}

// StatsSince summarizes successful accesses at or after since: the raw
// event count, the number of distinct users (each counted once regardless
// of repeat visits), and the most recent events with display names.
// excludeUserID drops the requesting user from all three. locationID may
// be empty for an all-locations summary.
func (s *StatsService) StatsSince(ctx context.Context, since time.Time, excludeUserID, locationID string) (*domain.LocationStats, []domain.RecentAccess, error) {
	events, err := s.eventStore.ListSuccessSince(ctx, locationID, since, excludeUserID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch access events for stats: %w", err)
	}

	seen := make(map[string]struct{})
	for _, ev := range events {
		seen[ev.UserID] = struct{}{}
	}

	stats := &domain.LocationStats{
		TotalAccesses: len(events),
		UniqueUsers:   len(seen),
	}

	recent := events
	if len(recent) > recentAccessLimit {
		recent = recent[:recentAccessLimit]
	}

	recentWithUsers, err := s.resolveUsers(ctx, recent)
	if err != nil {
		return nil, nil, err
	}

	log.WithFields(log.Fields{
		"location_id":    locationID,
		"total_accesses": stats.TotalAccesses,
		"unique_users":   stats.UniqueUsers,
	}).Debug("Computed door access stats")

	return stats, recentWithUsers, nil
}

// DailyBreakdown buckets a location's successful accesses by calendar date
// in the gym's local timezone, counting events and distinct users per day.
// Days are returned in ascending date order; days without accesses are
// omitted.
func (s *StatsService) DailyBreakdown(ctx context.Context, locationID string, since time.Time) ([]domain.DailyAccessStats, error) {
	events, err := s.eventStore.ListSuccessSince(ctx, locationID, since, "")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch access events for breakdown: %w", err)
	}

	type bucket struct {
		total int
		users map[string]struct{}
	}

	days := make(map[string]*bucket)
	for _, ev := range events {
		date := ev.AccessTime.In(s.gymTZ).Format("2006-01-02")
		b, ok := days[date]
		if !ok {
			b = &bucket{users: make(map[string]struct{})}
			days[date] = b
		}
		b.total++
		b.users[ev.UserID] = struct{}{}
	}

	breakdown := make([]domain.DailyAccessStats, 0, len(days))
	for date, b := range days {
		breakdown = append(breakdown, domain.DailyAccessStats{
			Date:          date,
			TotalAccesses: b.total,
			UniqueUsers:   len(b.users),
		})
	}

	sort.Slice(breakdown, func(i, j int) bool {
		return breakdown[i].Date < breakdown[j].Date
	})

	return breakdown, nil
}

func (s *StatsService) resolveUsers(ctx context.Context, events []domain.AccessEvent) ([]domain.RecentAccess, error) {
	ids := make([]string, 0, len(events))
	seen := make(map[string]struct{})
	for _, ev := range events {
		if _, ok := seen[ev.UserID]; !ok {
			seen[ev.UserID] = struct{}{}
			ids = append(ids, ev.UserID)
		}
	}

	users, err := s.users.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve users for stats: %w", err)
	}

	recent := make([]domain.RecentAccess, 0, len(events))
	for _, ev := range events {
		accessUser := domain.AccessUser{Name: "Unknown"}
		if user, ok := users[ev.UserID]; ok {
			accessUser = domain.AccessUser{
				Name:     user.DisplayName(),
				Username: user.Username,
			}
		}
		recent = append(recent, domain.RecentAccess{
			ID:         ev.ID,
			User:       accessUser,
			Location:   ev.Location,
			AccessTime: ev.AccessTime,
			Status:     ev.Status,
		})
	}

	return recent, nil
}
