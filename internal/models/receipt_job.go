package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// ReceiptType enumerates supported asynchronous export categories.
type ReceiptType string

const (
	// ReceiptTypePayment renders a single student's fee receipt.
	ReceiptTypePayment ReceiptType = "payment"
	// ReceiptTypeLedger renders the full payment ledger for admins.
	ReceiptTypeLedger ReceiptType = "ledger"
)

// ReceiptFormat enumerates supported export formats.
type ReceiptFormat string

const (
	ReceiptFormatCSV ReceiptFormat = "csv"
	ReceiptFormatPDF ReceiptFormat = "pdf"
)

// ReceiptStatus captures background job lifecycle states.
type ReceiptStatus string

const (
	ReceiptStatusQueued     ReceiptStatus = "QUEUED"
	ReceiptStatusProcessing ReceiptStatus = "PROCESSING"
	ReceiptStatusFinished   ReceiptStatus = "FINISHED"
	ReceiptStatusFailed     ReceiptStatus = "FAILED"
)

// ReceiptJob is the persisted metadata of a queued export.
type ReceiptJob struct {
	ID           string           `db:"id" json:"id"`
	Type         ReceiptType      `db:"type" json:"type"`
	Params       ReceiptJobParams `db:"params" json:"params"`
	Status       ReceiptStatus    `db:"status" json:"status"`
	Progress     int              `db:"progress" json:"progress"`
	ResultURL    *string          `db:"result_url" json:"result_url,omitempty"`
	CreatedBy    string           `db:"created_by" json:"created_by"`
	CreatedAt    time.Time        `db:"created_at" json:"created_at"`
	FinishedAt   *time.Time       `db:"finished_at" json:"finished_at,omitempty"`
	ErrorMessage *string          `db:"error_message" json:"error_message,omitempty"`
}

// ReceiptJobParams stores request-scoped options persisted as JSONB.
type ReceiptJobParams struct {
	StudentID string        `json:"studentId,omitempty"`
	Format    ReceiptFormat `json:"format"`
}

// Value marshals params to JSON for persistence.
func (p ReceiptJobParams) Value() (driver.Value, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshal receipt job params: %w", err)
	}
	return data, nil
}

// Scan unmarshals JSON payloads into the params struct.
func (p *ReceiptJobParams) Scan(value interface{}) error {
	if value == nil {
		*p = ReceiptJobParams{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T for ReceiptJobParams", value)
	}
	if len(data) == 0 {
		*p = ReceiptJobParams{}
		return nil
	}
	if err := json.Unmarshal(data, p); err != nil {
		return fmt.Errorf("unmarshal receipt job params: %w", err)
	}
	return nil
}
