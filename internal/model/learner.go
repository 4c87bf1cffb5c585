package model

import (
	"time"

	"github.com/google/uuid"
)

// Learner represents a student of the learning platform.
type Learner struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Phone     *string   `json:"phone,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Certificate is issued when a learner completes a product.
type Certificate struct {
	ID        uuid.UUID `json:"id"`
	LearnerID uuid.UUID `json:"learner_id"`
	ProductID uuid.UUID `json:"product_id"`
	IssuedAt  time.Time `json:"issued_at"`
}

// Discussion is a forum thread opened by a learner inside a product.
type Discussion struct {
	ID         uuid.UUID `json:"id"`
	LearnerID  uuid.UUID `json:"learner_id"`
	ProductID  uuid.UUID `json:"product_id"`
	Title      string    `json:"title"`
	ReplyCount int       `json:"reply_count"`
	CreatedAt  time.Time `json:"created_at"`
}

// QuizReport is the outcome of a single quiz attempt.
type QuizReport struct {
	ID        uuid.UUID `json:"id"`
	LearnerID uuid.UUID `json:"learner_id"`
	ProductID uuid.UUID `json:"product_id"`
	QuizID    string    `json:"quiz_id"`
	Score     float64   `json:"score"`
	MaxScore  float64   `json:"max_score"`
	Passed    bool      `json:"passed"`
	TakenAt   time.Time `json:"taken_at"`
}

// TransactionStatus enumerates payment states.
type TransactionStatus string

const (
	TransactionStatusPending  TransactionStatus = "pending"
	TransactionStatusPaid     TransactionStatus = "paid"
	TransactionStatusRefunded TransactionStatus = "refunded"
	TransactionStatusFailed   TransactionStatus = "failed"
)

// Transaction is a purchase of a product by a learner.
type Transaction struct {
	ID        uuid.UUID         `json:"id"`
	LearnerID uuid.UUID         `json:"learner_id"`
	ProductID uuid.UUID         `json:"product_id"`
	Amount    float64           `json:"amount"`
	Currency  string            `json:"currency"`
	Status    TransactionStatus `json:"status"`
	CreatedAt time.Time         `json:"created_at"`
}
