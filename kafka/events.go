package kafka

import "time"

// SaleCompletedEvent represents a committed caterer sale
type SaleCompletedEvent struct {
	EventID       string    `json:"event_id"`
	EventType     string    `json:"event_type"`
	SaleID        uint      `json:"sale_id"`
	BillNumber    string    `json:"bill_number"`
	CatererID     uint      `json:"caterer_id"`
	GrandTotal    float64   `json:"grand_total"`
	TotalPaid     float64   `json:"total_paid"`
	PaymentStatus string    `json:"payment_status"`
	ItemCount     int       `json:"item_count"`
	Timestamp     time.Time `json:"timestamp"`
}

// Event types
const (
	EventTypeSaleCompleted = "sale.completed"
)

// Kafka topics
const (
	TopicSaleCompleted = "sale-completed"
)
