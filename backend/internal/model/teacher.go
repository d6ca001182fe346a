package model

import "time"

// Teacher 教师表，对应 teachers
// 按名称精确匹配识别，多门课程共享，懒创建且不随课程删除
type Teacher struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"           json:"id"`
	Name      string    `gorm:"type:varchar(255);not null;index"   json:"name"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName 指定表名
func (Teacher) TableName() string { return "teachers" }
