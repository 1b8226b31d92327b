package types

import "strings"

type Category string

const (
	CategoryRefund       Category = "refund"
	CategoryCancellation Category = "cancellation"
	CategoryGeneral      Category = "general"
	CategoryTechnical    Category = "technical"
	CategoryComplaint    Category = "complaint"
	CategoryOffTopic     Category = "off_topic"
)

// Categories lists every accepted category in prompt order.
var Categories = []Category{
	CategoryRefund,
	CategoryCancellation,
	CategoryGeneral,
	CategoryTechnical,
	CategoryComplaint,
	CategoryOffTopic,
}

// ParseCategory normalizes a model-provided category. Anything outside the
// enumerated set becomes general.
func ParseCategory(s string) Category {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Categories {
		if c == known {
			return c
		}
	}
	return CategoryGeneral
}

// In reports whether c is one of the given categories.
func (c Category) In(set ...Category) bool {
	for _, s := range set {
		if c == s {
			return true
		}
	}
	return false
}

type Urgency string

const (
	UrgencyLow      Urgency = "low"
	UrgencyMedium   Urgency = "medium"
	UrgencyHigh     Urgency = "high"
	UrgencyCritical Urgency = "critical"
)

var Urgencies = []Urgency{UrgencyLow, UrgencyMedium, UrgencyHigh, UrgencyCritical}

func ParseUrgency(s string) Urgency {
	u := Urgency(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Urgencies {
		if u == known {
			return u
		}
	}
	return UrgencyMedium
}

type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

var Sentiments = []Sentiment{SentimentPositive, SentimentNeutral, SentimentNegative}

func ParseSentiment(s string) Sentiment {
	v := Sentiment(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Sentiments {
		if v == known {
			return v
		}
	}
	return SentimentNeutral
}

// Classification is the structured label assigned to a ticket.
type Classification struct {
	Category  Category  `json:"category"`
	Urgency   Urgency   `json:"urgency"`
	Sentiment Sentiment `json:"sentiment"`
	Summary   string    `json:"summary"`
}

// DegradedClassification is used whenever the model reply cannot be used.
func DegradedClassification(summary string) Classification {
	return Classification{
		Category:  CategoryGeneral,
		Urgency:   UrgencyMedium,
		Sentiment: SentimentNeutral,
		Summary:   summary,
	}
}
