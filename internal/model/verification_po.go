package model

import (
	"database/sql"
	"time"
)

// Verifications corresponds to the verifications table: one row per
// confirmation, validation or transfer check that reached an outcome.
type Verifications struct {
	Id           int64          `gorm:"column:id;primaryKey;autoIncrement"`
	Chain        string         `gorm:"column:chain;size:32;index:idx_verifications_tx,priority:2"`
	TxHash       string         `gorm:"column:tx_hash;size:66;index:idx_verifications_tx,priority:1"`
	Kind         string         `gorm:"column:kind;size:16"` // confirmations/validate/coin/token
	TokenAddress sql.NullString `gorm:"column:token_address;size:42"`
	Receiver     sql.NullString `gorm:"column:receiver;size:42"`
	Amount       sql.NullString `gorm:"column:amount"`
	Result       bool           `gorm:"column:result"`
	State        string         `gorm:"column:state;size:16"`
	Error        sql.NullString `gorm:"column:error"`
	CreatedAt    time.Time      `gorm:"column:created_at;autoCreateTime"`
}

func (Verifications) TableName() string {
	return "verifications"
}
