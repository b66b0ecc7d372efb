package models

import (
	"time"
)

// Document is one row of the schemaless document table. All application
// collections share it; the body is serialized JSON and field-level
// queries cast it to jsonb.
type Document struct {
	Collection string    `json:"collection" gorm:"type:text;primaryKey"`
	DocID      string    `json:"docId" gorm:"type:text;primaryKey"`
	Value      string    `json:"value" gorm:"type:text;not null"`
	CDate      time.Time `json:"cdate" gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp()"`
	MDate      time.Time `json:"mdate" gorm:"type:timestamp with time zone;not null;default:clock_timestamp()"`
}
