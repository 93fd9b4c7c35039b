package store

import (
	"sync"

	"neighbor-aid-backend/internal/models"
)

// HiddenSet keeps, per viewer, the ids of requests removed from their feed
type HiddenSet struct {
	mu       sync.RWMutex
	byViewer map[string]map[string]struct{}
}

// NewHiddenSet creates an empty set
func NewHiddenSet() *HiddenSet {
	return &HiddenSet{byViewer: make(map[string]map[string]struct{})}
}

// Add hides the request for the viewer
func (h *HiddenSet) Add(viewerID, requestID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ids, ok := h.byViewer[viewerID]
	if !ok {
		ids = make(map[string]struct{})
		h.byViewer[viewerID] = ids
	}
	ids[requestID] = struct{}{}
}

// Has reports whether the request is hidden for the viewer
func (h *HiddenSet) Has(viewerID, requestID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	_, ok := h.byViewer[viewerID][requestID]
	return ok
}

// ReviewPrompts holds the pending review invitations keyed by reviewer and request
type ReviewPrompts struct {
	mu      sync.Mutex
	pending map[string]models.ReviewPrompt
}

// NewReviewPrompts creates an empty prompt store
func NewReviewPrompts() *ReviewPrompts {
	return &ReviewPrompts{pending: make(map[string]models.ReviewPrompt)}
}

// Put records a prompt, replacing any previous one for the same reviewer and request
func (p *ReviewPrompts) Put(prompt models.ReviewPrompt) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pending[promptKey(prompt.ReviewerID, prompt.RequestID)] = prompt
}

// Take removes and returns the prompt, so only one caller can claim it
func (p *ReviewPrompts) Take(reviewerID, requestID string) (models.ReviewPrompt, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	key := promptKey(reviewerID, requestID)
	prompt, ok := p.pending[key]
	if ok {
		delete(p.pending, key)
	}
	return prompt, ok
}

// ForReviewer lists the prompts waiting for the reviewer
func (p *ReviewPrompts) ForReviewer(reviewerID string) []models.ReviewPrompt {
	p.mu.Lock()
	defer p.mu.Unlock()

	var out []models.ReviewPrompt
	for _, prompt := range p.pending {
		if prompt.ReviewerID == reviewerID {
			out = append(out, prompt)
		}
	}
	return out
}

func promptKey(reviewerID, requestID string) string {
	return reviewerID + "/" + requestID
}

// Community bundles the stores owned by the running service
type Community struct {
	Users         *Users
	Requests      *Ledger[models.ItemRequest]
	Messages      *Ledger[models.ChatMessage]
	Events        *Ledger[models.CommunityEvent]
	Notifications *Ledger[models.Notification]
	Denounced     *HiddenSet
	Dismissed     *HiddenSet
	Prompts       *ReviewPrompts
}

// NewCommunity creates empty stores
func NewCommunity() *Community {
	return &Community{
		Users: NewUsers(),
		Requests: NewLedger(
			func(r models.ItemRequest) string { return r.ID },
			models.ItemRequest.Clone,
		),
		Messages: NewLedger[models.ChatMessage](
			func(m models.ChatMessage) string { return m.ID },
			nil,
		),
		Events: NewLedger(
			func(e models.CommunityEvent) string { return e.ID },
			models.CommunityEvent.Clone,
		),
		Notifications: NewLedger[models.Notification](
			func(n models.Notification) string { return n.ID },
			nil,
		),
		Denounced: NewHiddenSet(),
		Dismissed: NewHiddenSet(),
		Prompts:   NewReviewPrompts(),
	}
}
