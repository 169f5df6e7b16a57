// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// Report statuses
const (
	ReportStatusSubmitted = "submitted"
)

// DefaultEventName is used when a report is submitted without an event name.
const DefaultEventName = "Unnamed Event"

// Report is an event report submitted by an admin. Reports are never edited.
type Report struct {
	ID                  string    `json:"id"`
	EventDate           string    `json:"eventDate"`
	EventName           string    `json:"eventName"`
	ReportTitle         string    `json:"reportTitle"`
	ReportContent       string    `json:"reportContent"`
	SubmittedBy         string    `json:"submittedBy"`
	SubmittedByUsername string    `json:"submittedByUsername"`
	SubmittedDate       time.Time `json:"submittedDate"`
	Status              string    `json:"status"`
}

// ReportDocument is the on-disk reports collection.
type ReportDocument struct {
	Reports []Report `json:"reports"`
}

// Find returns the index of the report with the given id, or -1.
func (d *ReportDocument) Find(id string) int {
	for i := range d.Reports {
		if d.Reports[i].ID == id {
			return i
		}
	}
	return -1
}

// OnDate returns the reports whose event date equals date exactly.
func (d *ReportDocument) OnDate(date string) []Report {
	reports := make([]Report, 0)
	for _, r := range d.Reports {
		if r.EventDate == date {
			reports = append(reports, r)
		}
	}
	return reports
}
