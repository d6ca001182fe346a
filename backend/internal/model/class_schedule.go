package model

// ClassSchedule 每周上课时段表，对应 class_schedules
// 一条记录表示某一天内连续的节次区间 [start_period, end_period]
type ClassSchedule struct {
	ID           uint `gorm:"primaryKey;autoIncrement"                        json:"id"`
	SubjectID    uint `gorm:"not null;index"                                  json:"subject_id"`
	ClassGroupID uint `gorm:"not null;index"                                  json:"class_group_id"`
	TeacherID    uint `gorm:"not null;index"                                  json:"teacher_id"`
	ClassroomID  uint `gorm:"not null;index"                                  json:"classroom_id"`
	WeekDay      int  `gorm:"not null;check:chk_week_day,week_day >= 1 AND week_day <= 7" json:"week_day"` // 1-7
	StartPeriod  int  `gorm:"not null;check:chk_start_period,start_period >= 0"           json:"start_period"`
	EndPeriod    int  `gorm:"not null;check:chk_end_period,end_period >= start_period"    json:"end_period"`
	Timestamps

	// 教师/教室被引用时禁止删除
	Teacher   *Teacher   `gorm:"foreignKey:TeacherID;constraint:OnDelete:RESTRICT"   json:"-"`
	Classroom *Classroom `gorm:"foreignKey:ClassroomID;constraint:OnDelete:RESTRICT" json:"-"`
}

// TableName 指定表名
func (ClassSchedule) TableName() string { return "class_schedules" }
