package domain

import (
	"time"

	"gorm.io/datatypes"
)

// CardPatch carries the card content fields an update may change.
// Nil fields are left alone. Timestamps are never part of a patch.
type CardPatch struct {
	Title       *string
	StartDate   *time.Time
	EndDate     *time.Time
	Description *string
	Members     *[]uint
}

// IsEmpty reports whether the patch changes nothing.
func (p CardPatch) IsEmpty() bool {
	return p.Title == nil && p.StartDate == nil && p.EndDate == nil && p.Description == nil && p.Members == nil
}

// Apply writes the present fields onto card and checks the resulting date range.
func (p CardPatch) Apply(card *Card) error {
	start, end := card.StartDate, card.EndDate
	if p.StartDate != nil {
		start = p.StartDate
	}
	if p.EndDate != nil {
		end = p.EndDate
	}
	if start != nil && end != nil && end.Before(*start) {
		return ErrInvalidDates
	}
	card.StartDate, card.EndDate = start, end
	if p.Title != nil {
		card.Title = *p.Title
	}
	if p.Description != nil {
		card.Description = *p.Description
	}
	if p.Members != nil {
		card.Members = datatypes.JSONSlice[uint](UniqueMembers(*p.Members))
	}
	return nil
}

// Columns returns the column assignments matching the present fields.
// Call after Apply so the values are the ones Apply produced.
func (p CardPatch) Columns(card *Card) map[string]interface{} {
	cols := make(map[string]interface{}, 5)
	if p.Title != nil {
		cols["title"] = card.Title
	}
	if p.StartDate != nil {
		cols["start_date"] = card.StartDate
	}
	if p.EndDate != nil {
		cols["end_date"] = card.EndDate
	}
	if p.Description != nil {
		cols["description"] = card.Description
	}
	if p.Members != nil {
		cols["members"] = card.Members
	}
	return cols
}

// TodoPatch is one todo update: title and check state first, then member
// additions (skipping ones already assigned), then removals of every
// occurrence.
type TodoPatch struct {
	Title         *string
	IsChecked     *bool
	AddMembers    []uint
	RemoveMembers []uint
}

// IsEmpty reports whether the patch changes nothing.
func (p TodoPatch) IsEmpty() bool {
	return p.Title == nil && p.IsChecked == nil && len(p.AddMembers) == 0 && len(p.RemoveMembers) == 0
}

// Apply writes the patch onto todo.
func (p TodoPatch) Apply(todo *Todo) {
	if p.Title != nil {
		todo.Title = *p.Title
	}
	if p.IsChecked != nil {
		todo.IsChecked = *p.IsChecked
	}
	members := []uint(todo.Members)
	if len(p.AddMembers) > 0 {
		members = AddMembers(members, p.AddMembers...)
	}
	if len(p.RemoveMembers) > 0 {
		members = RemoveMembers(members, p.RemoveMembers...)
	}
	todo.Members = datatypes.JSONSlice[uint](members)
}

// AddMembers appends the ids not yet in list, keeping first-seen order.
func AddMembers(list []uint, ids ...uint) []uint {
	out := make([]uint, 0, len(list)+len(ids))
	out = append(out, list...)
	for _, id := range ids {
		if !containsMember(out, id) {
			out = append(out, id)
		}
	}
	return out
}

// RemoveMembers drops every occurrence of ids from list.
func RemoveMembers(list []uint, ids ...uint) []uint {
	out := make([]uint, 0, len(list))
	for _, m := range list {
		if !containsMember(ids, m) {
			out = append(out, m)
		}
	}
	return out
}

// UniqueMembers removes repeated ids, keeping first-seen order.
func UniqueMembers(ids []uint) []uint {
	return AddMembers(nil, ids...)
}

func containsMember(list []uint, id uint) bool {
	for _, m := range list {
		if m == id {
			return true
		}
	}
	return false
}
