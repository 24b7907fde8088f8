package models

import (
	"time"

	"github.com/google/uuid"
)

// Transaction types.
const (
	TxAllocation  = "allocation"
	TxRelease     = "release"
	TxExpenditure = "expenditure"
)

// FinancialTransaction is a budget movement recorded against a project.
type FinancialTransaction struct {
	ID               uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	ProjectID        uuid.UUID  `gorm:"type:uuid;not null;index" json:"project_id"`
	TransactionType  string     `gorm:"not null;size:20;index" json:"transaction_type"`
	Amount           float64    `gorm:"not null" json:"amount"`
	Description      string     `gorm:"size:500" json:"description"`
	RecordedByUserID *uuid.UUID `gorm:"type:uuid" json:"recorded_by_user_id"`
	TransactionDate  time.Time  `gorm:"not null;index" json:"transaction_date"`
	CreatedAt        time.Time  `json:"created_at"`
	Project          Project    `gorm:"foreignKey:ProjectID" json:"-"`
}

func ValidTransactionType(t string) bool {
	switch t {
	case TxAllocation, TxRelease, TxExpenditure:
		return true
	}
	return false
}
