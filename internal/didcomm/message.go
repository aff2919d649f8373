// Package didcomm holds the message envelope, problem-report model and the
// transport boundary the registry's protocol surface is built on. Envelope
// packing, encryption and addressing happen outside this process; the types
// here carry only what handlers need.
package didcomm

import (
	"encoding/json"

	"github.com/google/uuid"
)

// ProblemReportType is the standard problem-report message type.
const ProblemReportType = "https://didcomm.org/report-problem/2.0/problem-report"

// Message is the protocol envelope exchanged with the registry.
type Message struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	From string `json:"from,omitempty"`
	To   string `json:"to,omitempty"`
	// Thid threads the message into an exchange; Pthid links a sub-thread
	// to its parent exchange.
	Thid  string          `json:"thid,omitempty"`
	Pthid string          `json:"pthid,omitempty"`
	Body  json.RawMessage `json:"body"`
}

// NewMessageID returns a fresh envelope id.
func NewMessageID() string {
	return uuid.NewString()
}

// ThreadID returns the thread the message belongs to: its thid when set,
// else its own id (the message starts the thread).
func (m Message) ThreadID() string {
	if m.Thid != "" {
		return m.Thid
	}
	return m.ID
}

// ParentThreadID returns the parent thread: the pthid when set, else the
// thread id itself.
func (m Message) ParentThreadID() string {
	if m.Pthid != "" {
		return m.Pthid
	}
	return m.ThreadID()
}

// BuildResponse assembles a reply envelope. A missing thid gets a fresh
// one so the reply is always threaded.
func BuildResponse(messageType, from, to string, body json.RawMessage, thid, pthid string) Message {
	if thid == "" {
		thid = NewMessageID()
	}
	return Message{
		ID:    NewMessageID(),
		Type:  messageType,
		From:  from,
		To:    to,
		Thid:  thid,
		Pthid: pthid,
		Body:  body,
	}
}

// BuildProblemReport assembles a problem-report envelope for the report.
func BuildProblemReport(from, to string, report ProblemReport, thid, pthid string) (Message, error) {
	body, err := json.Marshal(report)
	if err != nil {
		return Message{}, err
	}
	return BuildResponse(ProblemReportType, from, to, body, thid, pthid), nil
}
