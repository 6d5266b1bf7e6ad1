package module

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Module names a console view. Exactly one is visible at a time.
type Module string

// Console modules.
const (
	Dashboard Module = "dashboard"
	Members   Module = "members"
	Auction   Module = "auction"
	Pending   Module = "pending"
	Reports   Module = "reports"
	Overview  Module = "overview"
)

// Nav lists the modules reachable from the navigation menu, in menu order.
var Nav = []Module{Dashboard, Members, Auction, Pending, Reports}

// Cards lists the modules shown as cards on the overview grid.
var Cards = []Card{
	{Module: Dashboard, Blurb: "Create new lists and manage existing ones."},
	{Module: Members, Blurb: "Manage members here."},
	{Module: Auction, Blurb: "Auction setup and collection tracking."},
	{Module: Pending, Blurb: "Review and process pending dues."},
	{Module: Reports, Blurb: "Generate reports and send notifications."},
}

// Card is an overview grid entry.
type Card struct {
	Module Module
	Blurb  string
}

// Title returns the card heading.
func (c Card) Title() string {
	return c.Module.Title()
}

// Parse maps a raw module name to a Module. Empty input selects Dashboard;
// unknown names are returned as-is so the shell can show its fallback card.
func Parse(raw string) Module {
	raw = strings.TrimSpace(strings.ToLower(raw))
	if raw == "" {
		return Dashboard
	}
	return Module(raw)
}

// Known reports whether m is one of the console modules.
func (m Module) Known() bool {
	switch m {
	case Dashboard, Members, Auction, Pending, Reports, Overview:
		return true
	}
	return false
}

// Title returns the human-readable heading for m.
func (m Module) Title() string {
	switch m {
	case Auction:
		return "Auction & Collection"
	case Pending:
		return "Pending Dues & Interest"
	case Reports:
		return "Reports & Notifications"
	}
	return HumanTitle(string(m))
}

// HumanTitle turns "pending-dues_report" into "Pending Dues Report".
func HumanTitle(key string) string {
	parts := strings.FieldsFunc(key, func(r rune) bool {
		return r == '-' || r == '_' || r == ' '
	})
	for i, p := range parts {
		r, size := utf8.DecodeRuneInString(p)
		parts[i] = string(unicode.ToUpper(r)) + p[size:]
	}
	return strings.Join(parts, " ")
}
