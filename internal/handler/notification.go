package handler

import (
	"net/http"

	"github.com/sakif/devdesk/internal/service"
)

// NotificationHandler serves /notifications for the caller.
type NotificationHandler struct {
	notifications *service.NotificationService
}

func NewNotificationHandler(notifications *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

func (h *NotificationHandler) List(r *http.Request) (*Result, error) {
	user, err := caller(r)
	if err != nil {
		return nil, err
	}
	opts, err := listOptions(r)
	if err != nil {
		return nil, err
	}
	ns, err := h.notifications.List(r.Context(), user.ID, opts)
	if err != nil {
		return nil, err
	}
	return success(list(ns), ""), nil
}

func (h *NotificationHandler) MarkRead(r *http.Request) (*Result, error) {
	user, err := caller(r)
	if err != nil {
		return nil, err
	}
	id, err := uuidParam(r, "id")
	if err != nil {
		return nil, err
	}
	n, err := h.notifications.MarkRead(r.Context(), user.ID, id)
	if err != nil {
		return nil, err
	}
	return success(n, "Notification marked as read"), nil
}

// MarkAllRead handles PUT /notifications/read/all.
func (h *NotificationHandler) MarkAllRead(r *http.Request) (*Result, error) {
	user, err := caller(r)
	if err != nil {
		return nil, err
	}
	ns, err := h.notifications.MarkAllRead(r.Context(), user.ID)
	if err != nil {
		return nil, err
	}
	return success(list(ns), "All notifications marked as read"), nil
}
