package database

// ItemRepository archives observed items and dispatched notifications for
// the status API. The archive is write-mostly and observational: the
// engine records into it but never reads it back for dedup decisions.
type ItemRepository interface {
	RecordItem(feedURL, itemID, title, link string) error
	RecordNotification(feedURL, groupTitle string, itemCount int) error

	GetItemCount() (int, error)
	GetNotificationCount() (int, error)
	GetRecentNotifications(limit int) ([]Notification, error)
}
