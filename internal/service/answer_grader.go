package service

import (
	"strconv"
	"strings"
)

// GradeAnswer 判断用户输入是否等于正确答案。
// 输入去掉首尾空白后按十进制整数解析，无法解析视为答错。
func GradeAnswer(userAnswer string, correct int) bool {
	n, err := strconv.Atoi(strings.TrimSpace(userAnswer))
	if err != nil {
		return false
	}
	return n == correct
}
