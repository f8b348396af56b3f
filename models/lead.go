package models

// Lead is one row of the CRM log.
type Lead struct {
	Timestamp    string      `json:"timestamp"`
	CustomerName string      `json:"customer_name"`
	Phone        string      `json:"phone"`
	Intent       IntentLabel `json:"intent"`
	Message      string      `json:"message"`
	Note         string      `json:"note"`
}
