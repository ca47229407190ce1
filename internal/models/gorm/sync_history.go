package gorm

import "time"

// SyncHistory tracks logbook sync runs per event
type SyncHistory struct {
	ID           string     `gorm:"column:id;primaryKey;type:varchar(36)" json:"id"`
	Event        string     `gorm:"column:event;type:varchar(50);not null;uniqueIndex" json:"event"`
	Source       string     `gorm:"column:source;type:varchar(20)" json:"source"`
	RowsAccepted int        `gorm:"column:rows_accepted" json:"rowsAccepted"`
	RowsRejected int        `gorm:"column:rows_rejected" json:"rowsRejected"`
	LastError    string     `gorm:"column:last_error" json:"lastError,omitempty"`
	CreatedAt    time.Time  `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	LastSyncAt   *time.Time `gorm:"column:last_sync_at" json:"lastSyncAt,omitempty"`
}

// TableName specifies the table name for GORM
func (SyncHistory) TableName() string {
	return "sync_history"
}

// LoginEvent is one successful login. Written and read through sqlx.
type LoginEvent struct {
	ID         string    `gorm:"column:id;primaryKey;type:varchar(36)" db:"id" json:"id"`
	Username   string    `gorm:"column:username;type:varchar(64);not null" db:"username" json:"username"`
	Name       string    `gorm:"column:name" db:"name" json:"name"`
	Role       string    `gorm:"column:role;type:varchar(20)" db:"role" json:"role"`
	LoggedInAt time.Time `gorm:"column:logged_in_at;index" db:"logged_in_at" json:"loggedInAt"`
}

// TableName specifies the table name for GORM
func (LoginEvent) TableName() string {
	return "login_history"
}

// AllModels lists every table the service migrates.
func AllModels() []interface{} {
	return []interface{}{&FlightLogRow{}, &SyncHistory{}, &LoginEvent{}}
}
