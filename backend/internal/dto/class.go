package dto

// ── 课程模块 DTO（嵌套 JSON 结构即对外唯一数据契约） ──

// NestedSubject 课程的嵌套表示
// name 为课程代码，description 为课程名称，greve 表示罢课状态
type NestedSubject struct {
	Name        string           `json:"name"        validate:"required"`
	Description string           `json:"description" validate:"required"`
	Semester    string           `json:"semester"    validate:"required"`
	MultiClass  bool             `json:"multiClass"`
	Greve       bool             `json:"greve"`
	Classes     []NestedSchedule `json:"classes"`
	// ClassList 仅多班课程且至少有一个班组时出现
	ClassList []string `json:"classList,omitempty"`
}

// NestedSchedule 每周一个连续上课时段
type NestedSchedule struct {
	WeekDay   string   `json:"weekDay"`
	Period    []string `json:"period"`
	Teacher   string   `json:"teacher"`
	Classroom string   `json:"classroom"`
	// WhichClass 仅多班课程出现
	WhichClass string `json:"whichClass,omitempty"`
}

// CreateClassesRequest 批量创建请求对象形式：{ "classes": [...] }
type CreateClassesRequest struct {
	Classes []NestedSubject `json:"classes"`
}

// UpdateClassRequest 课程部分更新请求
// 指针字段为 nil 表示未提交；classList / classes 出现即触发整体替换
type UpdateClassRequest struct {
	Description *string           `json:"description"`
	Semester    *string           `json:"semester"`
	MultiClass  *bool             `json:"multiClass"`
	Greve       *bool             `json:"greve"`
	ClassList   *[]string         `json:"classList"`
	Classes     *[]NestedSchedule `json:"classes"`
}

// ── 结果报告 ──

// CreatedItem 创建成功摘要
type CreatedItem struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Semester    string `json:"semester"`
	Schedules   int    `json:"schedules"`
}

// ItemReason 跳过/错误条目
type ItemReason struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// BatchResult 批量创建结果（created / skipped / errors）
type BatchResult struct {
	Created []CreatedItem `json:"created"`
	Skipped []ItemReason  `json:"skipped"`
	Errors  []ItemReason  `json:"errors"`
}

// BatchSummary 批量创建统计
type BatchSummary struct {
	Total   int `json:"total"`
	Created int `json:"created"`
	Skipped int `json:"skipped"`
	Errors  int `json:"errors"`
}

// CreateClassesResponse 批量创建响应
type CreateClassesResponse struct {
	Message string       `json:"message"`
	Summary BatchSummary `json:"summary"`
	Results *BatchResult `json:"results"`
}

// UpdatedItem 更新后的课程摘要
// Schedules 仅在提交了 classes 时给出
type UpdatedItem struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Semester    string `json:"semester"`
	Schedules   *int   `json:"schedules"`
}

// UpdateResult 更新结果
type UpdateResult struct {
	Updated *UpdatedItem `json:"updated"`
	Errors  []ItemReason `json:"errors"`
}
