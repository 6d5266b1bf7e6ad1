package orchestrators

import (
	"chitfund/internal/application/modal"
)

// Modal is the console overlay the form orchestrators open and close.
type Modal interface {
	Show(title string, body modal.Body, onSave modal.SaveFunc)
	Cancel()
}

// Notifier queues a message for the next rendered page.
type Notifier interface {
	Notify(msg string)
}

// Modal body templates.
const (
	MemberFormBody  = "member_form"
	ListFormBody    = "list_form"
	ListDetailsBody = "list_details"
)
