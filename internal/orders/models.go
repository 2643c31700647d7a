package orders

// Order statuses as reported by the upstream order service.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusShipped    = "shipped"
	StatusDelivered  = "delivered"
	StatusCancelled  = "cancelled"
)

// Payment statuses.
const (
	PaymentPending   = "pending"
	PaymentCompleted = "completed"
	PaymentFailed    = "failed"
	PaymentRefunded  = "refunded"
)

// NewOrderItem is one requested line in a checkout submission.
type NewOrderItem struct {
	MedicineID string `json:"medicineId"`
	Quantity   int    `json:"quantity"`
}

// Order is an order as the upstream reports it back.
type Order struct {
	ID            string      `json:"_id"`
	Items         []OrderLine `json:"items"`
	TotalAmount   int64       `json:"totalAmount"`
	Status        string      `json:"status"`
	PaymentStatus string      `json:"paymentStatus"`
	CreatedAt     string      `json:"createdAt"`
}

type OrderLine struct {
	Medicine OrderMedicine `json:"medicine"`
	Quantity int           `json:"quantity"`
	Price    int64         `json:"price"`
}

type OrderMedicine struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Price int64  `json:"price"`
}
