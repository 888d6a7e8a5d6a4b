// Package model defines data structures for the support chatbot.
package model

// Intent is the classified purpose of a user message.
type Intent = string

const (
	IntentOrderStatus    Intent = "order_status"
	IntentCancelOrder    Intent = "cancel_order"
	IntentProductInquiry Intent = "product_inquiry"
	IntentGreeting       Intent = "greeting"
	IntentGoodbye        Intent = "goodbye"

	// IntentFallback is the reply bucket for anything the pipeline cannot map
	// to a known intent.
	IntentFallback Intent = "fallback"

	// IntentLowConfidence replaces a classified intent whose confidence fell
	// below the configured threshold.
	IntentLowConfidence Intent = "low_confidence"

	// IntentUnknown is the neutral label returned when classification was not
	// possible at all (untrained classifier).
	IntentUnknown Intent = "unknown"
)
