package services

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"neighbor-aid-backend/internal/models"
	"neighbor-aid-backend/internal/repository"
	"neighbor-aid-backend/internal/store"

	"github.com/google/uuid"
)

const interestedPreviewSize = 3

// EventService owns the event ledger
type EventService struct {
	community    *store.Community
	docs         repository.DocumentStore
	defaultPhoto string
}

// NewEventService creates an event service
func NewEventService(community *store.Community, docs repository.DocumentStore, defaultPhoto string) *EventService {
	return &EventService{
		community:    community,
		docs:         docs,
		defaultPhoto: defaultPhoto,
	}
}

// CreateEventInput holds the fields of a new event
type CreateEventInput struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	PhotoURL    string    `json:"photo_url,omitempty"`
	EventDate   time.Time `json:"event_date"`
	Location    string    `json:"location"`
}

// EventView is an event as listed to a resident
type EventView struct {
	models.CommunityEvent
	Creator            *models.UserSummary  `json:"creator,omitempty"`
	InterestedCount    int                  `json:"interested_count"`
	InterestedPreview  []models.UserSummary `json:"interested_preview"`
	InterestedOverflow int                  `json:"interested_overflow"`
	IsInterested       bool                 `json:"is_interested"`
}

// Create publishes a new event at the top of the list
func (s *EventService) Create(ctx context.Context, creatorID string, in CreateEventInput) (models.CommunityEvent, error) {
	if creatorID == "" {
		return models.CommunityEvent{}, models.ErrNoActiveUser
	}
	if !models.IsEventCategory(in.Category) {
		return models.CommunityEvent{}, models.ErrUnknownCategory
	}
	if in.EventDate.IsZero() {
		return models.CommunityEvent{}, models.ErrInvalidEventDate
	}

	photo := strings.TrimSpace(in.PhotoURL)
	if photo == "" {
		photo = s.defaultPhoto
	}

	event := models.CommunityEvent{
		ID:                uuid.New().String(),
		CreatorID:         creatorID,
		Title:             strings.TrimSpace(in.Title),
		Description:       strings.TrimSpace(in.Description),
		Category:          in.Category,
		PhotoURL:          photo,
		EventDate:         in.EventDate,
		Location:          strings.TrimSpace(in.Location),
		InterestedUserIDs: []string{},
	}

	s.community.Events.Prepend(event)
	writeThrough(ctx, s.docs, repository.CollectionEvents, event.ID, event)

	return event, nil
}

// ToggleInterest flips the user's membership in the event's interested set
func (s *EventService) ToggleInterest(ctx context.Context, userID, eventID string) (EventView, error) {
	if userID == "" {
		return EventView{}, models.ErrNoActiveUser
	}

	event, err := s.community.Events.Update(eventID, func(e *models.CommunityEvent) error {
		if i := slices.Index(e.InterestedUserIDs, userID); i >= 0 {
			e.InterestedUserIDs = slices.Delete(e.InterestedUserIDs, i, i+1)
		} else {
			e.InterestedUserIDs = append(e.InterestedUserIDs, userID)
		}
		return nil
	})
	if errors.Is(err, store.ErrNotFound) {
		return EventView{}, models.ErrEventNotFound
	}
	if err != nil {
		return EventView{}, err
	}

	writeThrough(ctx, s.docs, repository.CollectionEvents, event.ID, event)
	return s.view(userID, event), nil
}

// List returns every event, newest first, as seen by the viewer
func (s *EventService) List(viewerID string) []EventView {
	events := s.community.Events.List()
	views := make([]EventView, 0, len(events))
	for _, event := range events {
		views = append(views, s.view(viewerID, event))
	}
	return views
}

func (s *EventService) view(viewerID string, event models.CommunityEvent) EventView {
	v := EventView{
		CommunityEvent:    event,
		InterestedPreview: []models.UserSummary{},
		IsInterested:      event.IsInterested(viewerID),
	}

	if creator, ok := s.community.Users.Get(event.CreatorID); ok {
		summary := creator.Summary()
		v.Creator = &summary
	}

	// interested ids of deleted profiles are not counted
	for _, id := range event.InterestedUserIDs {
		user, ok := s.community.Users.Get(id)
		if !ok {
			continue
		}
		v.InterestedCount++
		if len(v.InterestedPreview) < interestedPreviewSize {
			v.InterestedPreview = append(v.InterestedPreview, user.Summary())
		}
	}
	v.InterestedOverflow = v.InterestedCount - len(v.InterestedPreview)

	return v
}
