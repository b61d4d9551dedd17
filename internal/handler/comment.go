package handler

import (
	"net/http"

	"github.com/sakif/devdesk/internal/service"
	"github.com/sakif/devdesk/internal/validation"
)

// CommentHandler serves /ticketcomment and ActivityHandler serves
// /ticketAction. Both read the ticket from the {ticket_id} path parameter.
type CommentHandler struct {
	comments *service.CommentService
}

func NewCommentHandler(comments *service.CommentService) *CommentHandler {
	return &CommentHandler{comments: comments}
}

func (h *CommentHandler) List(r *http.Request) (*Result, error) {
	user, ticketID, err := ticketCaller(r)
	if err != nil {
		return nil, err
	}
	cs, err := h.comments.List(r.Context(), user, ticketID)
	if err != nil {
		return nil, err
	}
	return success(list(cs), ""), nil
}

func (h *CommentHandler) ListMine(r *http.Request) (*Result, error) {
	user, ticketID, err := ticketCaller(r)
	if err != nil {
		return nil, err
	}
	cs, err := h.comments.ListMine(r.Context(), user, ticketID)
	if err != nil {
		return nil, err
	}
	return success(list(cs), ""), nil
}

func (h *CommentHandler) Create(r *http.Request) (*Result, error) {
	user, ticketID, err := ticketCaller(r)
	if err != nil {
		return nil, err
	}
	var req validation.CreateCommentRequest
	if err := decode(r, &req); err != nil {
		return nil, err
	}
	c, err := h.comments.Create(r.Context(), user, ticketID, req)
	if err != nil {
		return nil, err
	}
	return created(c, "Comment added"), nil
}

func (h *CommentHandler) Delete(r *http.Request) (*Result, error) {
	user, ticketID, err := ticketCaller(r)
	if err != nil {
		return nil, err
	}
	commentID, err := uuidParam(r, "comment_id")
	if err != nil {
		return nil, err
	}
	c, err := h.comments.Delete(r.Context(), user, ticketID, commentID)
	if err != nil {
		return nil, err
	}
	return success(c, "Comment deleted"), nil
}

type ActivityHandler struct {
	activity *service.ActivityService
}

func NewActivityHandler(activity *service.ActivityService) *ActivityHandler {
	return &ActivityHandler{activity: activity}
}

func (h *ActivityHandler) List(r *http.Request) (*Result, error) {
	user, ticketID, err := ticketCaller(r)
	if err != nil {
		return nil, err
	}
	as, err := h.activity.List(r.Context(), user, ticketID)
	if err != nil {
		return nil, err
	}
	return success(list(as), ""), nil
}

func (h *ActivityHandler) ListMine(r *http.Request) (*Result, error) {
	user, ticketID, err := ticketCaller(r)
	if err != nil {
		return nil, err
	}
	as, err := h.activity.ListMine(r.Context(), user, ticketID)
	if err != nil {
		return nil, err
	}
	return success(list(as), ""), nil
}

func (h *ActivityHandler) Create(r *http.Request) (*Result, error) {
	user, ticketID, err := ticketCaller(r)
	if err != nil {
		return nil, err
	}
	var req validation.CreateActivityRequest
	if err := decode(r, &req); err != nil {
		return nil, err
	}
	a, err := h.activity.Create(r.Context(), user, ticketID, req)
	if err != nil {
		return nil, err
	}
	return created(a, "Activity recorded"), nil
}

func (h *ActivityHandler) Delete(r *http.Request) (*Result, error) {
	user, ticketID, err := ticketCaller(r)
	if err != nil {
		return nil, err
	}
	activityID, err := uuidParam(r, "activity_id")
	if err != nil {
		return nil, err
	}
	a, err := h.activity.Delete(r.Context(), user, ticketID, activityID)
	if err != nil {
		return nil, err
	}
	return success(a, "Activity deleted"), nil
}

// ticketCaller returns the caller's id and the validated ticket id.
func ticketCaller(r *http.Request) (string, string, error) {
	user, err := caller(r)
	if err != nil {
		return "", "", err
	}
	ticketID, err := uuidParam(r, "ticket_id")
	if err != nil {
		return "", "", err
	}
	return user.ID, ticketID, nil
}
