package model

import "time"

type AnswerStatus string

const (
	StatusCorrect AnswerStatus = "Correct"
	StatusWrong   AnswerStatus = "Wrong"
)

// ResultsHeader 结果表的表头，顺序即列顺序
var ResultsHeader = []string{"Name", "Question", "User Answer", "Correct Answer", "Status", "Timestamp"}

// AnswerRecord 每道已批改的题目对应一行
// swagger:model
type AnswerRecord struct {
	BaseModel
	Name          string       `gorm:"size:255;index" json:"name"`
	Question      string       `gorm:"size:64;not null" json:"question"`
	UserAnswer    string       `gorm:"size:255" json:"userAnswer"`
	CorrectAnswer int          `gorm:"not null" json:"correctAnswer"`
	Status        AnswerStatus `gorm:"size:16;not null" json:"status"`
	Timestamp     time.Time    `gorm:"not null" json:"timestamp"`
}

func (AnswerRecord) TableName() string {
	return "answer_records"
}

func StatusFor(correct bool) AnswerStatus {
	if correct {
		return StatusCorrect
	}
	return StatusWrong
}
