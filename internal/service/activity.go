package service

import (
	"context"
	"strings"

	"github.com/sakif/devdesk/internal/model"
	"github.com/sakif/devdesk/internal/repository"
	"github.com/sakif/devdesk/internal/validation"
)

// ActivityService records a ticket's audit trail. Entitlement rules match
// CommentService.
type ActivityService struct {
	activity repository.ActivityRepository
	access   access
}

func NewActivityService(
	activity repository.ActivityRepository,
	tickets repository.TicketRepository,
	projects repository.ProjectRepository,
) *ActivityService {
	return &ActivityService{
		activity: activity,
		access:   access{projects: projects, tickets: tickets},
	}
}

func (s *ActivityService) List(ctx context.Context, callerID, ticketID string) ([]model.TicketActivity, error) {
	if _, err := s.access.participantTicket(ctx, ticketID, callerID); err != nil {
		return nil, err
	}
	return s.activity.ListActivity(ctx, ticketID)
}

func (s *ActivityService) ListMine(ctx context.Context, callerID, ticketID string) ([]model.TicketActivity, error) {
	if _, err := s.access.participantTicket(ctx, ticketID, callerID); err != nil {
		return nil, err
	}
	return s.activity.ListActivityByActor(ctx, ticketID, callerID)
}

func (s *ActivityService) Create(ctx context.Context, callerID, ticketID string, req validation.CreateActivityRequest) (*model.TicketActivity, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	if _, err := s.access.participantTicket(ctx, ticketID, callerID); err != nil {
		return nil, err
	}

	a := &model.TicketActivity{
		TicketID: ticketID,
		ActorID:  callerID,
		Action:   strings.TrimSpace(req.Action),
		Details:  req.Details,
	}
	if err := s.activity.CreateActivity(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *ActivityService) Delete(ctx context.Context, callerID, ticketID, activityID string) (*model.TicketActivity, error) {
	return s.activity.DeleteActivity(ctx, activityID, ticketID, callerID)
}
