// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package chatbot answers free-text questions about the college with canned
// replies chosen by keyword matching.
//
// Categories are evaluated in a fixed order and the first match wins.
// Categories overlap, so the order decides which reply a message gets:
// "Hi, can you tell me about admission?" is a greeting.
package chatbot

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Category names a group of related questions.
type Category string

// Categories in evaluation order.
const (
	CategoryGreeting   Category = "greeting"
	CategoryEvents     Category = "events"
	CategoryAdmission  Category = "admission"
	CategoryAcademics  Category = "academics"
	CategoryContact    Category = "contact"
	CategoryReports    Category = "reports"
	CategoryAbout      Category = "about"
	CategoryDashboard  Category = "dashboard"
	CategoryFacilities Category = "facilities"
	CategoryClosing    Category = "closing"
	CategoryAccount    Category = "account"
	CategoryAdmin      Category = "admin"
	CategoryLogin      Category = "login"
	CategoryFallback   Category = "fallback"
)

// Reply is the answer to one message.
type Reply struct {
	Category Category `json:"category"`
	Text     string   `json:"text"`
}

type rule struct {
	category Category
	triggers []string
	reply    string
}

// Triggers are matched against the normalized message with punctuation
// turned into spaces and one space of padding on each side, so a leading
// space anchors a trigger to a word start and a trailing one to a word end.
var rules = []rule{
	{
		category: CategoryGreeting,
		triggers: []string{" hi ", " hello", " hey ", "good morning", "good afternoon", "good evening", " greetings"},
		reply: "Hello! I'm the college assistant. I can help with events, admissions, " +
			"courses, reports and how to use the calendar. What would you like to know?",
	},
	{
		category: CategoryEvents,
		triggers: []string{"event", "calendar", "schedule", "holiday", "deadline", "upcoming", "exam date"},
		reply: "All college events are on the calendar. Click a date to see the events " +
			"planned for that day. Events are added and updated by the administration.",
	},
	{
		category: CategoryAdmission,
		triggers: []string{"admission", "apply", "application", "enrol", "eligib", "entrance"},
		reply: "Admissions open once a year. Applications are submitted through the " +
			"admissions office; check the calendar for application deadlines and entrance test dates.",
	},
	{
		category: CategoryAcademics,
		triggers: []string{"course", "academic", "syllabus", "subject", "semester", "curriculum", "degree", "program", " class"},
		reply: "The college offers undergraduate and postgraduate programs. Course schedules, " +
			"semester dates and exams are published on the calendar by your department.",
	},
	{
		category: CategoryContact,
		triggers: []string{"contact", "phone", "email", "e-mail", "address", "helpdesk", "office hours", " reach "},
		reply: "You can reach the college office at info@college.edu or visit the " +
			"administration building on weekdays from 9 AM to 5 PM.",
	},
	{
		category: CategoryReports,
		triggers: []string{"report", "submission", "download"},
		reply: "Event reports are submitted by administrators after an event. Anyone can read " +
			"them from the calendar and download a report as a text file.",
	},
	{
		category: CategoryAbout,
		triggers: []string{"about the college", "about college", "about us", "history", "accreditation", " vision", " mission", " campus life"},
		reply: "Our college is committed to academic excellence and a vibrant campus life, " +
			"with experienced faculty and a wide range of programs.",
	},
	{
		category: CategoryDashboard,
		triggers: []string{"dashboard", "feature", "what can you do", "how to use", " help"},
		reply: "From the dashboard you can browse the event calendar, read and download event " +
			"reports, and chat with me. Administrators can also manage events, reports and users.",
	},
	{
		category: CategoryFacilities,
		triggers: []string{"facilit", "library", "hostel", "canteen", "cafeteria", " lab ", " labs", "laborator", "sports", " gym", "wifi", "wi-fi", "transport", "parking"},
		reply: "The campus has a library, computer and science labs, a cafeteria, sports " +
			"grounds, hostel accommodation and campus-wide Wi-Fi.",
	},
	{
		category: CategoryClosing,
		triggers: []string{"thank", " bye", "goodbye", "see you", "appreciate"},
		reply:    "You're welcome! Feel free to ask if you have more questions.",
	},
	{
		category: CategoryAccount,
		triggers: []string{"password", "account", "forgot", "reset", "profile"},
		reply: "You can change your password from the dashboard settings. If you forgot your " +
			"password, ask an administrator to reset your account.",
	},
	{
		category: CategoryAdmin,
		triggers: []string{"admin", "manage user", "add user", "delete user", "register user", "new user"},
		reply: "Administrators can create, edit and delete events, submit reports and manage " +
			"user accounts from the admin dashboard.",
	},
	{
		category: CategoryLogin,
		triggers: []string{"login", "log in", "sign in", "logout", "log out", "sign out", "access"},
		reply: "Log in with your username, password and role (student or admin). " +
			"Use the logout button when you are done.",
	},
}

const fallbackReply = "I'm not sure I understood that. I can help with events and the calendar, " +
	"admissions, courses, contact details, reports, campus facilities, your account and logging in."

// Categories returns every category in evaluation order, ending with the fallback.
func Categories() []Category {
	out := make([]Category, 0, len(rules)+1)
	for _, r := range rules {
		out = append(out, r.category)
	}
	return append(out, CategoryFallback)
}

// Normalize folds compatibility characters, lowercases and trims text.
func Normalize(text string) string {
	return strings.TrimSpace(strings.ToLower(norm.NFKC.String(text)))
}

// spacePunct replaces punctuation with spaces. Hyphens are kept so that
// triggers such as "e-mail" still match.
func spacePunct(r rune) rune {
	if r != '-' && unicode.IsPunct(r) {
		return ' '
	}
	return r
}

// Respond returns the reply of the first category matching text.
func Respond(text string) Reply {
	padded := " " + strings.Map(spacePunct, Normalize(text)) + " "

	for _, r := range rules {
		for _, t := range r.triggers {
			if strings.Contains(padded, t) {
				return Reply{Category: r.category, Text: r.reply}
			}
		}
	}
	return Reply{Category: CategoryFallback, Text: fallbackReply}
}
