package model

import "time"

// DefaultGroupCode 非多班课程唯一班组的代码
const DefaultGroupCode = "DEFAULT"

// Timestamps 通用时间戳字段（subjects / class_schedules 嵌入）
type Timestamps struct {
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}
