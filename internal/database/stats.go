package database

import (
	"context"
	"time"
)

// Stats holds row counts of every table.
type Stats struct {
	Users               int64
	Readings            int64
	AnonymousReadings   int64
	Philosophies        int64
	Religions           int64
	AstrologicalSystems int64
	HistoryEntries      int64
	Preferences         int64
	// LatestReading is the creation time of the newest reading, nil if there is none.
	LatestReading *time.Time
}

// StatsDB defines the database statistics operations.
type StatsDB interface {
	GetStats(ctx context.Context) (*Stats, error)
}

func (c *Client) GetStats(ctx context.Context) (*Stats, error) {
	db := c.db.WithContext(ctx)
	stats := &Stats{}

	counts := []struct {
		model any
		dest  *int64
	}{
		{&User{}, &stats.Users},
		{&Reading{}, &stats.Readings},
		{&Philosophy{}, &stats.Philosophies},
		{&Religion{}, &stats.Religions},
		{&AstrologicalSystem{}, &stats.AstrologicalSystems},
		{&UserHistory{}, &stats.HistoryEntries},
		{&UserPreferences{}, &stats.Preferences},
	}
	for _, cnt := range counts {
		if err := db.Model(cnt.model).Count(cnt.dest).Error; err != nil {
			return nil, err
		}
	}
	if err := db.Model(&Reading{}).Where("user_id IS NULL").Count(&stats.AnonymousReadings).Error; err != nil {
		return nil, err
	}

	var latest Reading
	err := db.Order("created_at DESC").Limit(1).Find(&latest).Error
	if err != nil {
		return nil, err
	}
	if latest.ID != 0 {
		stats.LatestReading = &latest.CreatedAt
	}

	return stats, nil
}
