package models

import (
	"encoding/json"
	"time"
)

// Event is an AWS EventBridge event relaying a webhook delivery. Detail is kept raw and decoded by
// the runtime.
type Event struct {
	ID         string          `json:"id"`
	Time       time.Time       `json:"time"`
	Region     string          `json:"region"`
	Source     string          `json:"source"`
	Account    string          `json:"account"`
	Version    string          `json:"version"`
	DetailType string          `json:"detail-type"`
	Detail     json.RawMessage `json:"detail"`
	Resources  []string        `json:"resources"`
}
