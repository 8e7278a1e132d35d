package domain

import "time"

type Gift struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	Price       Cents     `db:"price_cents" json:"price"`
	ImageURL    string    `db:"image_url" json:"image_url"`
	Stock       int       `db:"stock" json:"stock"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

type OrderStatus string

const (
	OrderPending OrderStatus = "pending"
	OrderPaid    OrderStatus = "paid"
	OrderFailed  OrderStatus = "failed"
)

type Order struct {
	ID            string      `db:"id" json:"id"`
	GiftID        string      `db:"gift_id" json:"gift_id"`
	CustomerName  string      `db:"customer_name" json:"customer_name"`
	CustomerEmail string      `db:"customer_email" json:"customer_email,omitempty"`
	Status        OrderStatus `db:"status" json:"status"`
	Gateway       string      `db:"gateway" json:"gateway"`
	GatewayStatus string      `db:"gateway_status" json:"gateway_status,omitempty"`
	PaymentID     string      `db:"payment_id" json:"payment_id,omitempty"`
	PreferenceID  string      `db:"preference_id" json:"preference_id,omitempty"`
	CreatedAt     time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time   `db:"updated_at" json:"updated_at"`
}

// Transition decides whether a gateway report about paymentID may be written
// to the order and which status results. A pending order takes any report.
// An approval always wins over a failure. Otherwise a resolved order only
// follows the payment that resolved it, and its status does not change.
func (o Order) Transition(next OrderStatus, paymentID string) (OrderStatus, bool) {
	switch {
	case o.Status == OrderPending:
		return next, true
	case o.Status == OrderFailed && next == OrderPaid:
		return OrderPaid, true
	case paymentID == o.PaymentID:
		return o.Status, true
	}
	return o.Status, false
}

// OrderWithGift is the order status view returned to the payer.
type OrderWithGift struct {
	Order
	Gift Gift `json:"gift"`
}

type Sale struct {
	ID            string    `db:"id" json:"id"`
	OrderID       string    `db:"order_id" json:"order_id"`
	GiftID        string    `db:"gift_id" json:"gift_id"`
	GiftName      string    `db:"gift_name" json:"gift_name"`
	CustomerName  string    `db:"customer_name" json:"customer_name"`
	CustomerEmail string    `db:"customer_email" json:"customer_email,omitempty"`
	Amount        Cents     `db:"amount_cents" json:"amount"`
	PaymentMethod string    `db:"payment_method" json:"payment_method"`
	PaymentID     string    `db:"payment_id" json:"payment_id"`
	Status        string    `db:"status" json:"status"`
	Notes         string    `db:"notes" json:"notes,omitempty"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

type RSVP struct {
	ID         string    `db:"id" json:"id"`
	Name       string    `db:"name" json:"name"`
	Companions int       `db:"companions" json:"companions"`
	Email      string    `db:"email" json:"email,omitempty"`
	Phone      string    `db:"phone" json:"phone,omitempty"`
	Message    string    `db:"message" json:"message,omitempty"`
	Confirmed  bool      `db:"confirmed" json:"confirmed"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

type Photo struct {
	ID        string    `db:"id" json:"id"`
	Gallery   string    `db:"gallery" json:"gallery"`
	ImageURL  string    `db:"image_url" json:"image_url"`
	Title     string    `db:"title" json:"title"`
	Order     int       `db:"order_index" json:"order"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type StoryEvent struct {
	ID        string    `db:"id" json:"id"`
	DateLabel string    `db:"date_label" json:"date_label"`
	Title     string    `db:"title" json:"title"`
	Text      string    `db:"text" json:"text"`
	ImageURL  string    `db:"image_url" json:"image_url"`
	Order     int       `db:"order_index" json:"order"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
