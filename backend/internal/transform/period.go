// Package transform 在嵌套课程 JSON 与扁平关系行之间转换。
// 包内均为纯函数，不触碰存储。
package transform

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrEmptyPeriod 节次序列为空
var ErrEmptyPeriod = errors.New("period must contain at least one entry")

// Expand 将节次区间展开为升序的字符串序列 [start, start+1, …, end]
// end < start 时返回空序列
func Expand(start, end int) []string {
	if end < start {
		return []string{}
	}
	periods := make([]string, 0, end-start+1)
	for i := start; i <= end; i++ {
		periods = append(periods, strconv.Itoa(i))
	}
	return periods
}

// Collapse 取首尾元素还原节次区间
// 不校验中间元素是否连续，调用方负责提供连续序列
func Collapse(periods []string) (start, end int, err error) {
	if len(periods) == 0 {
		return 0, 0, ErrEmptyPeriod
	}
	start, err = parseLabel(periods[0])
	if err != nil {
		return 0, 0, err
	}
	end, err = parseLabel(periods[len(periods)-1])
	if err != nil {
		return 0, 0, err
	}
	return start, end, nil
}

// ParseWeekDay 解析星期字段（"1"-"7"），范围由存储层约束校验
func ParseWeekDay(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid weekDay %q", s)
	}
	return n, nil
}

func parseLabel(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid period %q", s)
	}
	return n, nil
}
