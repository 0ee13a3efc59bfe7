package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/baharkarakas/rewear-backend/internal/apperr"
)

type ItemStatus string

const (
	ItemAvailable ItemStatus = "available"
	ItemPending   ItemStatus = "pending"
	ItemSwapped   ItemStatus = "swapped"
	ItemRejected  ItemStatus = "rejected"
)

var itemTransitions = map[ItemStatus][]ItemStatus{
	ItemAvailable: {ItemPending, ItemRejected},
	ItemPending:   {ItemAvailable, ItemSwapped, ItemRejected},
}

func (s ItemStatus) IsValid() bool {
	switch s {
	case ItemAvailable, ItemPending, ItemSwapped, ItemRejected:
		return true
	}
	return false
}

// CanTransitionTo reports whether next is a legal edge from s. Swapped and
// rejected have no outgoing edges.
func (s ItemStatus) CanTransitionTo(next ItemStatus) bool {
	for _, candidate := range itemTransitions[s] {
		if candidate == next {
			return true
		}
	}
	return false
}

// Final reports whether the item can no longer change.
func (s ItemStatus) Final() bool { return len(itemTransitions[s]) == 0 }

func ParseItemStatus(value string) (ItemStatus, error) {
	s := ItemStatus(strings.ToLower(strings.TrimSpace(value)))
	if !s.IsValid() {
		return "", fmt.Errorf("invalid item status %q", value)
	}
	return s, nil
}

type ItemCondition string

const (
	ConditionExcellent ItemCondition = "excellent"
	ConditionGood      ItemCondition = "good"
	ConditionFair      ItemCondition = "fair"
	ConditionPoor      ItemCondition = "poor"
)

func (c ItemCondition) IsValid() bool {
	switch c {
	case ConditionExcellent, ConditionGood, ConditionFair, ConditionPoor:
		return true
	}
	return false
}

// ItemAttrs are the owner-editable descriptive fields of a listing.
type ItemAttrs struct {
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Category    string        `json:"category"`
	Size        string        `json:"size"`
	Condition   ItemCondition `json:"condition"`
	Tags        []string      `json:"tags"`
	Images      []string      `json:"images"`
}

// Normalize trims whitespace and drops empty tags.
func (a ItemAttrs) Normalize() ItemAttrs {
	a.Title = strings.TrimSpace(a.Title)
	a.Description = strings.TrimSpace(a.Description)
	a.Category = strings.TrimSpace(a.Category)
	a.Size = strings.TrimSpace(a.Size)
	a.Condition = ItemCondition(strings.ToLower(strings.TrimSpace(string(a.Condition))))
	tags := make([]string, 0, len(a.Tags))
	for _, t := range a.Tags {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	a.Tags = tags
	if a.Images == nil {
		a.Images = []string{}
	}
	return a
}

func (a ItemAttrs) Validate() error {
	missing := []string{}
	if a.Title == "" {
		missing = append(missing, "title")
	}
	if a.Description == "" {
		missing = append(missing, "description")
	}
	if a.Category == "" {
		missing = append(missing, "category")
	}
	if a.Size == "" {
		missing = append(missing, "size")
	}
	if len(missing) > 0 {
		return apperr.New(apperr.CodeValidation, "missing required attributes").
			WithDetails(map[string]any{"missing": missing})
	}
	if !a.Condition.IsValid() {
		return apperr.Newf(apperr.CodeValidation, "invalid condition %q", a.Condition)
	}
	return nil
}

type Item struct {
	ID      string `json:"id"`
	OwnerID string `json:"owner_id"`
	ItemAttrs
	PointsCost int64      `json:"points_cost"`
	Status     ItemStatus `json:"status"`
	Version    int64      `json:"version"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

type ItemFilter struct {
	OwnerID  string
	Status   ItemStatus
	Category string
	Limit    int
	Offset   int
}
