// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"bytes"
	"context"
	"log/slog"
	"text/template"
	"time"

	"github.com/olegiv/college-calendar/internal/model"
	"github.com/olegiv/college-calendar/internal/store"
)

// ReportService manages event reports. Reports are public to read and are
// never edited after submission.
type ReportService struct {
	reports store.Repository[model.ReportDocument]
	ids     *store.IDGenerator
	now     func() time.Time
}

// NewReportService creates a ReportService over the reports collection.
func NewReportService(reports store.Repository[model.ReportDocument], ids *store.IDGenerator) *ReportService {
	return &ReportService{
		reports: reports,
		ids:     ids,
		now:     time.Now,
	}
}

// ReportInput holds the fields of a new report.
type ReportInput struct {
	EventDate     string `json:"eventDate"`
	EventName     string `json:"eventName"`
	ReportTitle   string `json:"reportTitle"`
	ReportContent string `json:"reportContent"`
}

// Download is a report rendered as a plain-text attachment.
type Download struct {
	Filename string
	Content  string
}

// SubmittedLayout formats the submission time in downloads.
const SubmittedLayout = "1/2/2006, 3:04:05 PM"

var downloadTemplate = template.Must(template.New("report").Parse(`
Event Report
============
Event Name: {{.EventName}}
Event Date: {{.EventDate}}
Report Title: {{.ReportTitle}}
Status: {{.Status}}

Report Content:
{{.ReportContent}}

Submitted by: {{.SubmittedBy}}
Submitted on: {{.SubmittedOn}}
`))

// Create submits a report attributed to the caller.
func (s *ReportService) Create(ctx context.Context, caller *model.Identity, in ReportInput) (model.Report, error) {
	if err := requireAdmin(caller, "Only admins can submit reports"); err != nil {
		return model.Report{}, err
	}
	if blank(in.EventDate) || blank(in.ReportTitle) || blank(in.ReportContent) {
		return model.Report{}, validation("Event date, title, and content are required")
	}
	if blank(in.EventName) {
		in.EventName = model.DefaultEventName
	}

	report := model.Report{
		ID:                  s.ids.Next(),
		EventDate:           in.EventDate,
		EventName:           in.EventName,
		ReportTitle:         in.ReportTitle,
		ReportContent:       in.ReportContent,
		SubmittedBy:         caller.Name,
		SubmittedByUsername: caller.Username,
		SubmittedDate:       s.now().UTC(),
		Status:              model.ReportStatusSubmitted,
	}

	err := s.reports.Update(ctx, func(doc *model.ReportDocument) error {
		doc.Reports = append(doc.Reports, report)
		return nil
	})
	if err != nil {
		return model.Report{}, err
	}

	slog.InfoContext(ctx, "report submitted", "report_id", report.ID, "date", report.EventDate, "by", caller.Username)
	return report, nil
}

// List returns all reports in submission order.
func (s *ReportService) List(ctx context.Context) ([]model.Report, error) {
	doc, err := s.reports.Load(ctx)
	if err != nil {
		return nil, err
	}
	if doc.Reports == nil {
		return []model.Report{}, nil
	}
	return doc.Reports, nil
}

// ListByDate returns the reports whose event date equals date exactly.
func (s *ReportService) ListByDate(ctx context.Context, date string) ([]model.Report, error) {
	doc, err := s.reports.Load(ctx)
	if err != nil {
		return nil, err
	}
	return doc.OnDate(date), nil
}

// Get returns a single report.
func (s *ReportService) Get(ctx context.Context, id string) (model.Report, error) {
	doc, err := s.reports.Load(ctx)
	if err != nil {
		return model.Report{}, err
	}
	i := doc.Find(id)
	if i < 0 {
		return model.Report{}, ErrReportNotFound
	}
	return doc.Reports[i], nil
}

// Delete removes a report.
func (s *ReportService) Delete(ctx context.Context, caller *model.Identity, id string) error {
	if err := requireAdmin(caller, "Only admins can delete reports"); err != nil {
		return err
	}

	err := s.reports.Update(ctx, func(doc *model.ReportDocument) error {
		i := doc.Find(id)
		if i < 0 {
			return ErrReportNotFound
		}
		doc.Reports = append(doc.Reports[:i], doc.Reports[i+1:]...)
		return nil
	})
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "report deleted", "report_id", id, "by", caller.Username)
	return nil
}

// Download renders the report with the given id.
func (s *ReportService) Download(ctx context.Context, id string) (Download, error) {
	report, err := s.Get(ctx, id)
	if err != nil {
		return Download{}, err
	}
	return RenderDownload(report)
}

// RenderDownload renders a report as plain text. The submission time is
// shown in the server's local time zone.
func RenderDownload(r model.Report) (Download, error) {
	data := struct {
		model.Report
		SubmittedOn string
	}{
		Report:      r,
		SubmittedOn: r.SubmittedDate.Local().Format(SubmittedLayout),
	}

	var buf bytes.Buffer
	if err := downloadTemplate.Execute(&buf, data); err != nil {
		return Download{}, err
	}

	return Download{
		Filename: "Report_" + r.ID + ".txt",
		Content:  buf.String(),
	}, nil
}
