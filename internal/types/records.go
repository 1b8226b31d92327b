package types

import "time"

// KBArticle is one ranked knowledge-base match.
type KBArticle struct {
	ArticleID string  `json:"article_id" yaml:"article_id"`
	Title     string  `json:"title" yaml:"title"`
	Content   string  `json:"content" yaml:"content"`
	Category  string  `json:"category" yaml:"category"`
	Relevance float64 `json:"relevance_score" yaml:"-"`
}

// Caller is a customer account.
type Caller struct {
	UserID             string    `json:"user_id" yaml:"user_id"`
	Email              string    `json:"email" yaml:"email"`
	FullName           string    `json:"full_name" yaml:"full_name"`
	SubscriptionTier   string    `json:"subscription_tier" yaml:"subscription_tier"`
	SubscriptionStatus string    `json:"subscription_status" yaml:"subscription_status"`
	MonthlyQuota       int       `json:"monthly_quota" yaml:"monthly_quota"`
	CreatedAt          time.Time `json:"created_at" yaml:"created_at"`
}

type Reservation struct {
	ReservationID string    `json:"reservation_id" yaml:"reservation_id"`
	UserID        string    `json:"user_id" yaml:"user_id"`
	EventID       string    `json:"event_id" yaml:"event_id"`
	EventTitle    string    `json:"event_title" yaml:"event_title"`
	EventDate     time.Time `json:"event_date" yaml:"event_date"`
	VenueName     string    `json:"venue_name" yaml:"venue_name"`
	Quantity      int       `json:"quantity" yaml:"quantity"`
	TotalPrice    float64   `json:"total_price" yaml:"total_price"`
	Status        string    `json:"status" yaml:"status"`
	BookingDate   time.Time `json:"booking_date" yaml:"booking_date"`
}

type Event struct {
	EventID      string    `json:"event_id" yaml:"event_id"`
	Title        string    `json:"title" yaml:"title"`
	Category     string    `json:"category" yaml:"category"`
	City         string    `json:"city" yaml:"city"`
	VenueName    string    `json:"venue_name" yaml:"venue_name"`
	EventDate    time.Time `json:"event_date" yaml:"event_date"`
	IsPremium    bool      `json:"is_premium" yaml:"is_premium"`
	TotalTickets int       `json:"total_tickets" yaml:"total_tickets"`
	TicketsSold  int       `json:"tickets_sold" yaml:"tickets_sold"`
	Status       string    `json:"status" yaml:"status"`
}

func (e Event) AvailableTickets() int { return e.TotalTickets - e.TicketsSold }

// SupportTicket is the persisted ticket record.
type SupportTicket struct {
	TicketID      string    `json:"ticket_id" yaml:"ticket_id"`
	UserID        string    `json:"user_id" yaml:"user_id"`
	UserEmail     string    `json:"user_email,omitempty" yaml:"user_email,omitempty"`
	Subject       string    `json:"subject" yaml:"subject"`
	Description   string    `json:"description" yaml:"description"`
	Category      string    `json:"category" yaml:"category"`
	Priority      string    `json:"priority" yaml:"priority"`
	Status        string    `json:"status" yaml:"status"`
	ReservationID string    `json:"reservation_id,omitempty" yaml:"reservation_id,omitempty"`
	AgentNotes    string    `json:"agent_notes,omitempty" yaml:"agent_notes,omitempty"`
	CreatedAt     time.Time `json:"created_at" yaml:"created_at"`
}
