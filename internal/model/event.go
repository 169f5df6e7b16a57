// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// Event is a calendar entry created by an admin.
type Event struct {
	ID            string     `json:"id"`
	EventDate     string     `json:"eventDate"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Type          string     `json:"type"`
	CreatedBy     string     `json:"createdBy"`
	CreatedByName string     `json:"createdByName"`
	CreatedDate   time.Time  `json:"createdDate"`
	Updated       bool       `json:"updated"`
	UpdatedDate   *time.Time `json:"updatedDate,omitempty"`
}

// EventDocument is the on-disk events collection.
type EventDocument struct {
	Events []Event `json:"events"`
}

// Find returns the index of the event with the given id, or -1.
func (d *EventDocument) Find(id string) int {
	for i := range d.Events {
		if d.Events[i].ID == id {
			return i
		}
	}
	return -1
}

// OnDate returns the events whose date string equals date exactly.
func (d *EventDocument) OnDate(date string) []Event {
	events := make([]Event, 0)
	for _, e := range d.Events {
		if e.EventDate == date {
			events = append(events, e)
		}
	}
	return events
}
