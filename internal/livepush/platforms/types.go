// Package platforms delivers formatted messages to chat webhooks.
package platforms

import "context"

type Field struct {
	Name   string
	Value  string
	Inline bool
}

type Message struct {
	// PanelKey, when set, asks the platform to edit one message in place
	// instead of posting a new one.
	PanelKey    string
	Title       string
	Content     string
	Description string
	Color       int
	Timestamp   string
	Footer      string
	Fields      []Field
}

type Adapter interface {
	Name() string
	Send(ctx context.Context, endpoint, secret string, msg Message) error
}
