package model

// Subject 课程表，对应 subjects
// code 大小写不敏感唯一（迁移中以 LOWER(code) 唯一索引保证）
type Subject struct {
	ID         uint   `gorm:"primaryKey;autoIncrement"          json:"id"`
	Code       string `gorm:"type:varchar(10);not null;unique"  json:"code"`
	Name       string `gorm:"type:varchar(255);not null"        json:"name"`
	Semester   string `gorm:"type:varchar(10);not null"         json:"semester"`
	MultiClass bool   `gorm:"not null;default:false"            json:"multi_class"`
	OnStrike   bool   `gorm:"not null;default:false"            json:"on_strike"`
	Timestamps

	// 关联（仅用于建表时生成级联外键）
	Groups    []ClassGroup    `gorm:"foreignKey:SubjectID;constraint:OnDelete:CASCADE" json:"-"`
	Schedules []ClassSchedule `gorm:"foreignKey:SubjectID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName 指定表名
func (Subject) TableName() string { return "subjects" }
