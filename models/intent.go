package models

// IntentLabel identifies a caller's goal. The set is open: a trained model
// can emit any label seen in its training data.
type IntentLabel string

const (
	IntentBookViewing  IntentLabel = "book_viewing"
	IntentAvailability IntentLabel = "availability"
	IntentConnectAgent IntentLabel = "connect_agent"
	IntentSellProcess  IntentLabel = "sell_process"
	IntentPricing      IntentLabel = "pricing"
	IntentGeneral      IntentLabel = "general"
	IntentUnknown      IntentLabel = "unknown"
)
