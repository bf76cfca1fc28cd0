// Package notification delivers admin messages to users and tracks whether they were read.
package notification

import (
	"context"
	"net/mail"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/AnjishnuSengupta/Hackathon-AI-Edu/core"
	"github.com/AnjishnuSengupta/Hackathon-AI-Edu/core/docstore"
	"github.com/AnjishnuSengupta/Hackathon-AI-Edu/core/paging"
	"github.com/AnjishnuSengupta/Hackathon-AI-Edu/core/user"
)

// PageQuery is the paging.Shape name of a user's notifications.
const PageQuery = "notifications"

var (
	ErrNotFound = core.NewError(core.KindNotFound, "notification not found")

	errAdminOnly = errors.Wrap(core.ErrPermissionDenied, "only admins can send notifications")
	errNotViewer = errors.Wrap(core.ErrPermissionDenied, "you cannot view these notifications")
	errNotOwner  = errors.Wrap(core.ErrPermissionDenied, "this notification is not yours")
)

type (
	Notification struct {
		ID        string    `json:"id"`
		UserID    string    `json:"userId"`
		Message   string    `json:"message"`
		Read      bool      `json:"read"`
		CreatedAt time.Time `json:"createdAt"` // UTC
	}

	NewNotification struct {
		UserID  string `json:"userId" validate:"required"`
		Message string `json:"message" validate:"required,notblank,max=1000"`
	}

	Repository interface {
		CreateNotification(ctx context.Context, n Notification) (Notification, error)
		GetNotification(ctx context.Context, id string) (Notification, error)
		// ListNotifications returns up to limit notifications of userID strictly after `after`, newest first.
		// limit <= 0 means all of them.
		ListNotifications(ctx context.Context, userID string, after *docstore.Cursor, limit int) ([]Notification, error)
		CountUnread(ctx context.Context, userID string) (int, error)
		MarkRead(ctx context.Context, id string) (Notification, error)
	}

	// Profiles looks up the recipient of a notification.
	Profiles interface {
		Get(ctx context.Context, sess core.Session, userID string) (user.Profile, error)
	}

	Service struct {
		repo     Repository
		profiles Profiles
		mailSvc  core.EmailService
		pager    *paging.Manager
		validate *validator.Validate
	}
)

func (n Notification) Position() docstore.Cursor {
	return docstore.Cursor{CreatedAt: n.CreatedAt, ID: n.ID}
}

func (nn *NewNotification) Validate(validate *validator.Validate) error {
	nn.UserID = core.CleanString(nn.UserID)
	nn.Message = core.CleanString(nn.Message)
	return validate.Struct(nn)
}

// NewService returns the notification service and registers its pages on pager.
func NewService(
	repo Repository,
	profiles Profiles,
	mailSvc core.EmailService,
	pager *paging.Manager,
	validate *validator.Validate,
) *Service {
	svc := &Service{
		repo:     repo,
		profiles: profiles,
		mailSvc:  mailSvc,
		pager:    pager,
		validate: validate,
	}
	pager.Register(PageQuery, paging.FetcherFunc(svc.fetch))
	return svc
}

// Create sends a notification to a user, with a copy by email when the user has an address.
func (svc *Service) Create(ctx context.Context, sess core.Session, nn NewNotification) (Notification, error) {
	if !sess.IsAdmin() {
		return Notification{}, errAdminOnly
	}
	if err := nn.Validate(svc.validate); err != nil {
		return Notification{}, err
	}
	recipient, err := svc.profiles.Get(ctx, sess, nn.UserID)
	if err != nil {
		return Notification{}, err
	}

	n, err := svc.repo.CreateNotification(ctx, Notification{
		UserID:    recipient.ID,
		Message:   nn.Message,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return Notification{}, err
	}

	if recipient.Email != "" {
		svc.mailSvc.SendMessages(&core.EmailMessage{
			To:           []mail.Address{{Name: recipient.DisplayName, Address: recipient.Email}},
			Subject:      "You have a new notification",
			TemplateName: "notification",
			TemplateData: map[string]interface{}{
				"Name":    recipient.DisplayName,
				"Message": n.Message,
			},
		})
	}
	return n, nil
}

// List returns all notifications of the user, newest first.
func (svc *Service) List(ctx context.Context, sess core.Session, userID string) ([]Notification, error) {
	if !sess.CanView(userID) {
		return nil, errNotViewer
	}
	return svc.repo.ListNotifications(ctx, userID, nil, 0)
}

func PageShape(userID string) paging.Shape {
	return paging.NewShape(PageQuery, map[string]string{"userId": userID})
}

// Page returns a page of the user's notifications; an empty cursor starts from the newest.
func (svc *Service) Page(ctx context.Context, sess core.Session, userID, cursor string, size int) (paging.Page, error) {
	if !sess.CanView(userID) {
		return paging.Page{}, errNotViewer
	}
	return svc.pager.PageOf(ctx, PageShape(userID), cursor, size)
}

func (svc *Service) fetch(ctx context.Context, shape paging.Shape, after *docstore.Cursor, limit int) ([]paging.Entry, error) {
	userID := shape.Param("userId")
	if userID == "" {
		return nil, errors.Wrap(paging.ErrInvalidCursor, "missing user")
	}
	notifs, err := svc.repo.ListNotifications(ctx, userID, after, limit)
	if err != nil {
		return nil, err
	}
	entries := make([]paging.Entry, 0, len(notifs))
	for _, n := range notifs {
		entries = append(entries, paging.Entry{Position: n.Position(), Value: n})
	}
	return entries, nil
}

func (svc *Service) UnreadCount(ctx context.Context, sess core.Session, userID string) (int, error) {
	if !sess.CanView(userID) {
		return 0, errNotViewer
	}
	return svc.repo.CountUnread(ctx, userID)
}

// MarkRead marks the notification as read. Marking a read notification again does not write.
func (svc *Service) MarkRead(ctx context.Context, sess core.Session, id string) (Notification, error) {
	if !sess.IsAuthenticated() {
		return Notification{}, errNotOwner
	}
	n, err := svc.repo.GetNotification(ctx, id)
	if err != nil {
		return Notification{}, err
	}
	if !sess.Owns(n.UserID) {
		return Notification{}, errNotOwner
	}
	if n.Read {
		return n, nil
	}
	return svc.repo.MarkRead(ctx, id)
}
