package models

import (
	"slices"
	"time"
)

// Urgency marks how soon a borrower needs the item
type Urgency string

const (
	UrgencyNormal Urgency = "normal"
	UrgencyUrgent Urgency = "urgent"
)

// RequestStatus is the lifecycle state of an item request
type RequestStatus string

const (
	StatusOpen      RequestStatus = "open"
	StatusCompleted RequestStatus = "completed"
	StatusCancelled RequestStatus = "cancelled"
)

// IsTerminal reports whether the status can no longer change
func (s RequestStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// BadgeType is a permanent achievement marker
type BadgeType string

const (
	BadgeGoodNeighbor BadgeType = "BOM_VIZINHO"
	BadgeSuperHelper  BadgeType = "SUPER_AJUDANTE"
	BadgeTrusted      BadgeType = "CONFIAVEL"
)

// NotificationType tags a notice with a fixed kind
type NotificationType string

const (
	NotificationNewOffer    NotificationType = "new_offer"
	NotificationNewReview   NotificationType = "new_review"
	NotificationAchievement NotificationType = "achievement"
	NotificationPenalty     NotificationType = "penalty"
	NotificationNewMessage  NotificationType = "new_message"
)

// User represents a resident's profile
type User struct {
	ID                string      `json:"id"`
	Name              string      `json:"name"`
	Email             string      `json:"email"`
	AvatarURL         string      `json:"avatar_url"`
	Reputation        float64     `json:"reputation"`
	RequestsMade      int         `json:"requests_made"`
	LoansMade         int         `json:"loans_made"`
	IsVerified        bool        `json:"is_verified"`
	IsProfileComplete bool        `json:"is_profile_complete"`
	Badges            []BadgeType `json:"badges,omitempty"`
	InviteCode        string      `json:"invite_code,omitempty"`
	InvitedBy         string      `json:"invited_by,omitempty"`
	PasswordHash      string      `json:"password_hash,omitempty"`
	PushToken         *string     `json:"push_token,omitempty"`
	CreatedAt         time.Time   `json:"created_at"`
}

// HasBadge reports whether the badge was already granted
func (u User) HasBadge(badge BadgeType) bool {
	return slices.Contains(u.Badges, badge)
}

// Clone returns a deep copy of the user
func (u User) Clone() User {
	u.Badges = slices.Clone(u.Badges)
	if u.PushToken != nil {
		token := *u.PushToken
		u.PushToken = &token
	}
	return u
}

// Public strips credentials before the profile leaves the service
func (u User) Public() User {
	u = u.Clone()
	u.PasswordHash = ""
	u.PushToken = nil
	return u
}

// Summary returns the fields other residents see next to a post
func (u User) Summary() UserSummary {
	return UserSummary{
		ID:         u.ID,
		Name:       u.Name,
		AvatarURL:  u.AvatarURL,
		Reputation: u.Reputation,
		IsVerified: u.IsVerified,
	}
}

// UserSummary is the public card of a resident
type UserSummary struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	AvatarURL  string  `json:"avatar_url"`
	Reputation float64 `json:"reputation"`
	IsVerified bool    `json:"is_verified"`
}

// Offer is a neighbor's willingness to lend for a request
type Offer struct {
	ID      string `json:"id"`
	UserID  string `json:"user_id"`
	Message string `json:"message"`
}

// ItemRequest is a post asking to borrow an item
type ItemRequest struct {
	ID          string        `json:"id"`
	UserID      string        `json:"user_id"`
	ItemName    string        `json:"item_name"`
	Description string        `json:"description"`
	Category    string        `json:"category"`
	Urgency     Urgency       `json:"urgency"`
	CreatedAt   string        `json:"created_at"`
	Distance    string        `json:"distance"`
	Status      RequestStatus `json:"status"`
	Offers      []Offer       `json:"offers,omitempty"`
	PhotoURL    string        `json:"photo_url,omitempty"`
	PostedAt    time.Time     `json:"posted_at"`
}

// Clone returns a deep copy of the request
func (r ItemRequest) Clone() ItemRequest {
	r.Offers = slices.Clone(r.Offers)
	return r
}

// OfferBy returns the offer made by the user, if any
func (r ItemRequest) OfferBy(userID string) (Offer, bool) {
	for _, offer := range r.Offers {
		if offer.UserID == userID {
			return offer, true
		}
	}
	return Offer{}, false
}

// ChatMessage is a single line of a handoff conversation
type ChatMessage struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	RecipientID string    `json:"recipient_id"`
	RequestID   string    `json:"request_id"`
	Text        string    `json:"text"`
	Timestamp   string    `json:"timestamp"`
	SentAt      time.Time `json:"sent_at"`
}

// Between reports whether the message belongs to the conversation of two users about a request
func (m ChatMessage) Between(a, b, requestID string) bool {
	if m.RequestID != requestID {
		return false
	}
	return (m.UserID == a && m.RecipientID == b) || (m.UserID == b && m.RecipientID == a)
}

// CommunityEvent is a neighborhood gathering
type CommunityEvent struct {
	ID                string    `json:"id"`
	CreatorID         string    `json:"creator_id"`
	Title             string    `json:"title"`
	Description       string    `json:"description"`
	Category          string    `json:"category"`
	PhotoURL          string    `json:"photo_url"`
	EventDate         time.Time `json:"event_date"`
	Location          string    `json:"location"`
	InterestedUserIDs []string  `json:"interested_user_ids"`
}

// Clone returns a deep copy of the event
func (e CommunityEvent) Clone() CommunityEvent {
	e.InterestedUserIDs = slices.Clone(e.InterestedUserIDs)
	if e.InterestedUserIDs == nil {
		e.InterestedUserIDs = []string{}
	}
	return e
}

// IsInterested reports whether the user marked interest in the event
func (e CommunityEvent) IsInterested(userID string) bool {
	return slices.Contains(e.InterestedUserIDs, userID)
}

// Notification is a per-user notice
type Notification struct {
	ID        string           `json:"id"`
	UserID    string           `json:"user_id"`
	Type      NotificationType `json:"type"`
	Text      string           `json:"text"`
	IsRead    bool             `json:"is_read"`
	CreatedAt string           `json:"created_at"`
}

// Review is a rating left by a borrower for the lender of a completed request
type Review struct {
	Rating         int    `json:"rating"`
	Comment        string `json:"comment,omitempty"`
	ReviewedUserID string `json:"reviewed_user_id"`
	RequestID      string `json:"request_id"`
}

// ReviewPrompt is a pending invitation to rate the lender of a completed request
type ReviewPrompt struct {
	RequestID  string `json:"request_id"`
	ItemName   string `json:"item_name"`
	ReviewerID string `json:"reviewer_id"`
	LenderID   string `json:"lender_id"`
}

// ChatContext identifies the conversation opened after offering help
type ChatContext struct {
	PartnerID   string `json:"partner_id"`
	RequestName string `json:"request_name"`
	RequestID   string `json:"request_id"`
}
