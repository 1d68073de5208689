package types

import "time"

// Commit is the wire form of a repository commit.
type Commit struct {
	ID        string    `json:"id"`
	Author    string    `json:"author"`
	Changes   []string  `json:"changes"`
	Timestamp time.Time `json:"timestamp"`
}

// Branch summarises a branch and its most recent commit.
type Branch struct {
	Name    string `json:"name"`
	Head    string `json:"head,omitempty"`
	Commits int    `json:"commits"`
}

// Event is the wire form of a commit or merge notification.
type Event struct {
	Type    string   `json:"type"`
	Branch  string   `json:"branch"`
	Commits []Commit `json:"commits"`
}

// Delivery records a single event handed to a webhook.
type Delivery struct {
	ID          string    `json:"id"`
	HookID      string    `json:"hookId"`
	Event       Event     `json:"event"`
	DeliveredAt time.Time `json:"deliveredAt"`
}

// Hook describes a registered webhook.
type Hook struct {
	ID     string `json:"id"`
	Branch string `json:"branch"`
	Event  string `json:"event"`
	Caught int    `json:"caught"`
}
