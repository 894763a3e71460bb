package service

import (
	"fmt"
	"strings"
)

const WorksheetFilename = "worksheet.txt"

type WorksheetService struct {
	Generator *QuestionGenerator
	Count     int
}

func NewWorksheetService(gen *QuestionGenerator, count int) *WorksheetService {
	return &WorksheetService{Generator: gen, Count: count}
}

// Build 生成不带答案的练习纸，每行形如 "1. 3 + 4 = "
func (s *WorksheetService) Build() string {
	var b strings.Builder
	b.WriteString("Math Worksheet\n\n")
	for i, q := range s.Generator.GenerateN(s.Count) {
		fmt.Fprintf(&b, "%d. %s = \n", i+1, q.Expression)
	}
	return b.String()
}
