package model

import "time"

// Classroom 教室表，对应 classrooms
type Classroom struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"           json:"id"`
	Name      string    `gorm:"type:varchar(255);not null;index"   json:"name"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName 指定表名
func (Classroom) TableName() string { return "classrooms" }
