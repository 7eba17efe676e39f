package database

import (
	"fmt"
)

var _ ItemRepository = (*ItemRepo)(nil)

// ItemRepo is the sqlite-backed ItemRepository.
type ItemRepo struct {
	db *DB
}

func NewItemRepository(db *DB) *ItemRepo {
	return &ItemRepo{db: db}
}

// RecordItem archives an item the first time it is observed. Re-recording
// the same (feed, item) pair is a no-op.
func (r *ItemRepo) RecordItem(feedURL, itemID, title, link string) error {
	_, err := r.db.Exec(`
		INSERT INTO seen_items (feed_url, item_id, title, link)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (feed_url, item_id) DO NOTHING
	`, feedURL, itemID, title, link)

	if err != nil {
		return fmt.Errorf("failed to record item: %w", err)
	}

	return nil
}

func (r *ItemRepo) RecordNotification(feedURL, groupTitle string, itemCount int) error {
	_, err := r.db.Exec(`
		INSERT INTO notifications (feed_url, group_title, item_count)
		VALUES (?, ?, ?)
	`, feedURL, groupTitle, itemCount)

	if err != nil {
		return fmt.Errorf("failed to record notification: %w", err)
	}

	return nil
}

func (r *ItemRepo) GetItemCount() (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM seen_items`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count items: %w", err)
	}
	return count, nil
}

func (r *ItemRepo) GetNotificationCount() (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM notifications`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count notifications: %w", err)
	}
	return count, nil
}

func (r *ItemRepo) GetRecentNotifications(limit int) ([]Notification, error) {
	rows, err := r.db.Query(`
		SELECT id, feed_url, group_title, item_count, sent_at
		FROM notifications
		ORDER BY sent_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get notifications: %w", err)
	}
	defer rows.Close()

	var notifications []Notification
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.ID, &n.FeedURL, &n.GroupTitle, &n.ItemCount, &n.SentAt); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		notifications = append(notifications, n)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate notifications: %w", err)
	}

	return notifications, nil
}
