// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/olegiv/college-calendar/internal/model"
	"github.com/olegiv/college-calendar/internal/store"
)

// EventService manages calendar events. Reads are public, writes are admin only.
type EventService struct {
	events store.Repository[model.EventDocument]
	ids    *store.IDGenerator
	now    func() time.Time
}

// NewEventService creates an EventService over the events collection.
func NewEventService(events store.Repository[model.EventDocument], ids *store.IDGenerator) *EventService {
	return &EventService{
		events: events,
		ids:    ids,
		now:    time.Now,
	}
}

// EventInput holds the fields of a new event.
type EventInput struct {
	EventDate   string `json:"eventDate"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Type        string `json:"type"`
}

// EventUpdate is a partial update. A nil or empty Title or Type keeps the
// current value; a non-nil Description always replaces it, even when empty.
type EventUpdate struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Type        *string `json:"type"`
}

// Create adds an event attributed to the caller.
func (s *EventService) Create(ctx context.Context, caller *model.Identity, in EventInput) (model.Event, error) {
	if err := requireAdmin(caller, "Only admins can create events"); err != nil {
		return model.Event{}, err
	}
	if blank(in.EventDate) || blank(in.Title) || blank(in.Type) {
		return model.Event{}, validation("Event date, title, and type are required")
	}

	event := model.Event{
		ID:            s.ids.Next(),
		EventDate:     in.EventDate,
		Title:         in.Title,
		Description:   in.Description,
		Type:          in.Type,
		CreatedBy:     caller.Username,
		CreatedByName: caller.Name,
		CreatedDate:   s.now().UTC(),
	}

	err := s.events.Update(ctx, func(doc *model.EventDocument) error {
		doc.Events = append(doc.Events, event)
		return nil
	})
	if err != nil {
		return model.Event{}, err
	}

	slog.InfoContext(ctx, "event created", "event_id", event.ID, "date", event.EventDate, "by", caller.Username)
	return event, nil
}

// Update applies a partial update and marks the event as updated, even if
// no field changed.
func (s *EventService) Update(ctx context.Context, caller *model.Identity, id string, upd EventUpdate) (model.Event, error) {
	if err := requireAdmin(caller, "Only admins can update events"); err != nil {
		return model.Event{}, err
	}

	var updated model.Event
	err := s.events.Update(ctx, func(doc *model.EventDocument) error {
		i := doc.Find(id)
		if i < 0 {
			return ErrEventNotFound
		}

		e := &doc.Events[i]
		if upd.Title != nil && *upd.Title != "" {
			e.Title = *upd.Title
		}
		if upd.Description != nil {
			e.Description = *upd.Description
		}
		if upd.Type != nil && *upd.Type != "" {
			e.Type = *upd.Type
		}
		now := s.now().UTC()
		e.Updated = true
		e.UpdatedDate = &now

		updated = *e
		return nil
	})
	if err != nil {
		return model.Event{}, err
	}

	slog.InfoContext(ctx, "event updated", "event_id", id, "by", caller.Username)
	return updated, nil
}

// Delete removes an event.
func (s *EventService) Delete(ctx context.Context, caller *model.Identity, id string) error {
	if err := requireAdmin(caller, "Only admins can delete events"); err != nil {
		return err
	}

	err := s.events.Update(ctx, func(doc *model.EventDocument) error {
		i := doc.Find(id)
		if i < 0 {
			return ErrEventNotFound
		}
		doc.Events = append(doc.Events[:i], doc.Events[i+1:]...)
		return nil
	})
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "event deleted", "event_id", id, "by", caller.Username)
	return nil
}

// List returns all events in creation order.
func (s *EventService) List(ctx context.Context) ([]model.Event, error) {
	doc, err := s.events.Load(ctx)
	if err != nil {
		return nil, err
	}
	if doc.Events == nil {
		return []model.Event{}, nil
	}
	return doc.Events, nil
}

// ListByDate returns the events whose date string equals date exactly.
func (s *EventService) ListByDate(ctx context.Context, date string) ([]model.Event, error) {
	doc, err := s.events.Load(ctx)
	if err != nil {
		return nil, err
	}
	return doc.OnDate(date), nil
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
