package models

import "time"

// SMSResult mirrors the (ok, info) pair returned by the SMS sender.
type SMSResult struct {
	OK   bool   `json:"ok"`
	Info string `json:"info"`
}

// SMSServiceStatus is reported by the health endpoint.
type SMSServiceStatus struct {
	Enabled          bool      `json:"enabled"`
	Provider         string    `json:"provider"`
	LastMessageSent  time.Time `json:"last_message_sent"`
	MessageCountDay  int       `json:"message_count_today"`
	FailedCountToday int       `json:"failed_count_today"`
}
