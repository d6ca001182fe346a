package model

import "time"

// ClassGroup 班组表，对应 class_groups
// (subject_id, group_code) 唯一；非多班课程只有一个 DEFAULT 班组
type ClassGroup struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"                                   json:"id"`
	SubjectID uint      `gorm:"not null;index;uniqueIndex:unique_subject_group,priority:1" json:"subject_id"`
	GroupCode string    `gorm:"type:varchar(10);not null;uniqueIndex:unique_subject_group,priority:2" json:"group_code"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"                         json:"created_at"`

	Schedules []ClassSchedule `gorm:"foreignKey:ClassGroupID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName 指定表名
func (ClassGroup) TableName() string { return "class_groups" }
