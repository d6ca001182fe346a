package model

// SubjectRow 课程 LEFT JOIN 班组/时段/教师/教室 的扁平查询行
// 每个时段一行；没有时段的课程产生一行，时段相关列为 NULL
type SubjectRow struct {
	ID            uint    `gorm:"column:id"`
	Code          string  `gorm:"column:code"`
	Name          string  `gorm:"column:name"`
	Semester      string  `gorm:"column:semester"`
	MultiClass    bool    `gorm:"column:multi_class"`
	OnStrike      bool    `gorm:"column:on_strike"`
	ClassGroupID  *uint   `gorm:"column:class_group_id"`
	GroupCode     *string `gorm:"column:group_code"`
	WeekDay       *int    `gorm:"column:week_day"`
	StartPeriod   *int    `gorm:"column:start_period"`
	EndPeriod     *int    `gorm:"column:end_period"`
	TeacherName   *string `gorm:"column:teacher_name"`
	ClassroomName *string `gorm:"column:classroom_name"`
}
