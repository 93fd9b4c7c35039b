package models

import "errors"

var (
	ErrNoActiveUser         = errors.New("no active user")
	ErrInvalidToken         = errors.New("invalid token")
	ErrUserNotFound         = errors.New("user not found")
	ErrEmailTaken           = errors.New("email already registered")
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrInviteCodeNotFound   = errors.New("invite code not found")
	ErrNameRequired         = errors.New("name is required")
	ErrRequestNotFound      = errors.New("request not found")
	ErrRequestClosed        = errors.New("request is no longer open")
	ErrRequestLimitReached  = errors.New("open request limit reached")
	ErrNotRequestOwner      = errors.New("user does not own this request")
	ErrOwnRequest           = errors.New("cannot offer help on your own request")
	ErrInvalidStatus        = errors.New("invalid status transition")
	ErrUnknownCategory      = errors.New("unknown category")
	ErrInvalidUrgency       = errors.New("urgency must be normal or urgent")
	ErrInvalidDistance      = errors.New("distance must be all, 1km or 3km")
	ErrInvalidEventDate     = errors.New("event date is required")
	ErrInvalidPhotoKind     = errors.New("photo kind must be request, event or avatar")
	ErrNoPendingReview      = errors.New("no pending review for this request")
	ErrInvalidRating        = errors.New("rating must be between 1 and 5")
	ErrEmptyMessage         = errors.New("message text is empty")
	ErrEventNotFound        = errors.New("event not found")
	ErrNotificationNotFound = errors.New("notification not found")
)
