package docrepos

import (
	"context"

	"github.com/AnjishnuSengupta/Hackathon-AI-Edu/core/docstore"
	"github.com/AnjishnuSengupta/Hackathon-AI-Edu/core/notification"
)

type (
	NotificationRepository struct {
		base
	}

	notificationRecord struct {
		UserID  string `json:"userId" validate:"required"`
		Message string `json:"message" validate:"required"`
		Read    bool   `json:"read"`
	}
)

var _ notification.Repository = (*NotificationRepository)(nil) // interface compliance check

func (repo NotificationRepository) unboil(doc docstore.Document) (notification.Notification, error) {
	var rec notificationRecord
	if err := repo.decode(doc, &rec); err != nil {
		return notification.Notification{}, err
	}
	return notification.Notification{
		ID:        doc.ID,
		UserID:    rec.UserID,
		Message:   rec.Message,
		Read:      rec.Read,
		CreatedAt: doc.CreatedAt,
	}, nil
}

func (repo NotificationRepository) result(doc docstore.Document, err error, msg string) (notification.Notification, error) {
	if err != nil {
		return notification.Notification{}, trap(err, notification.ErrNotFound, msg)
	}
	return repo.unboil(doc)
}

func (repo NotificationRepository) CreateNotification(ctx context.Context, n notification.Notification) (notification.Notification, error) {
	data, err := repo.encode(notificationRecord{UserID: n.UserID, Message: n.Message, Read: n.Read})
	if err != nil {
		return notification.Notification{}, err
	}
	doc, err := repo.store.Create(ctx, docstore.Notifications, docstore.Document{
		ID:        n.ID,
		CreatedAt: n.CreatedAt,
		Data:      data,
	})
	return repo.result(doc, err, "inserting notification")
}

func (repo NotificationRepository) GetNotification(ctx context.Context, id string) (notification.Notification, error) {
	doc, err := repo.store.Get(ctx, docstore.Notifications, id)
	return repo.result(doc, err, "getting notification")
}

func (repo NotificationRepository) query(ctx context.Context, q docstore.Query) ([]notification.Notification, error) {
	notifs := make([]notification.Notification, 0)
	err := repo.scan(ctx, docstore.Notifications, q, func(doc docstore.Document) error {
		n, err := repo.unboil(doc)
		if err != nil {
			return err
		}
		notifs = append(notifs, n)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return notifs, nil
}

func (repo NotificationRepository) ListNotifications(ctx context.Context, userID string, after *docstore.Cursor, limit int) ([]notification.Notification, error) {
	return repo.query(ctx, docstore.Query{
		Filters: []docstore.Filter{docstore.Eq("userId", userID)},
		After:   after,
		Limit:   limit,
	})
}

func (repo NotificationRepository) CountUnread(ctx context.Context, userID string) (int, error) {
	notifs, err := repo.query(ctx, docstore.Query{
		Filters: []docstore.Filter{docstore.Eq("userId", userID), docstore.Eq("read", false)},
	})
	if err != nil {
		return 0, err
	}
	return len(notifs), nil
}

func (repo NotificationRepository) MarkRead(ctx context.Context, id string) (notification.Notification, error) {
	doc, err := repo.store.MergeUpdate(ctx, docstore.Notifications, id, map[string]interface{}{"read": true})
	return repo.result(doc, err, "marking notification read")
}
