package models

import "time"

type SwapStatus string

const (
	SwapPending   SwapStatus = "pending"
	SwapAccepted  SwapStatus = "accepted"
	SwapDeclined  SwapStatus = "declined"
	SwapCompleted SwapStatus = "completed"
)

var swapTransitions = map[SwapStatus][]SwapStatus{
	SwapPending:  {SwapAccepted, SwapDeclined},
	SwapAccepted: {SwapCompleted},
}

func (s SwapStatus) IsValid() bool {
	switch s {
	case SwapPending, SwapAccepted, SwapDeclined, SwapCompleted:
		return true
	}
	return false
}

func (s SwapStatus) CanTransitionTo(next SwapStatus) bool {
	for _, candidate := range swapTransitions[s] {
		if candidate == next {
			return true
		}
	}
	return false
}

// SwapRequest asks ReceiverID to hand over ItemID for the item's points cost.
// ReceiverID is the item owner at creation time and is never re-derived.
type SwapRequest struct {
	ID          string     `json:"id"`
	ItemID      string     `json:"item_id"`
	RequesterID string     `json:"requester_id"`
	ReceiverID  string     `json:"receiver_id"`
	PointsCost  int64      `json:"points_cost"`
	Status      SwapStatus `json:"status"`
	Message     *string    `json:"message,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

type SwapRole string

const (
	SwapRoleAll      SwapRole = "all"
	SwapRoleIncoming SwapRole = "incoming"
	SwapRoleOutgoing SwapRole = "outgoing"
)
