package transform

import "que-aula/backend/internal/model"

// GroupCodes 决定课程应建立的班组代码
// 多班且 classList 非空时逐个建立，否则只建立 DEFAULT
func GroupCodes(multiClass bool, classList []string) []string {
	if multiClass && len(classList) > 0 {
		codes := make([]string, len(classList))
		copy(codes, classList)
		return codes
	}
	return []string{model.DefaultGroupCode}
}

// TargetGroup 返回时段应归属的班组代码，缺省为 DEFAULT
func TargetGroup(whichClass string) string {
	if whichClass == "" {
		return model.DefaultGroupCode
	}
	return whichClass
}
