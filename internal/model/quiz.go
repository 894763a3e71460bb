package model

import "time"

// Question 一道算术题，Expression 形如 "12 / 4"
type Question struct {
	Expression string `json:"expression"`
	Answer     int    `json:"answer"`
}

// QuizSession 服务端签发的测验记录，批改时以它为准
type QuizSession struct {
	ID        string     `json:"id"`
	Questions []Question `json:"questions"`
	IssuedAt  time.Time  `json:"issuedAt"`
}

func (s *QuizSession) Expressions() []string {
	out := make([]string, len(s.Questions))
	for i, q := range s.Questions {
		out[i] = q.Expression
	}
	return out
}

// QuizResult 一次提交的批改结果
type QuizResult struct {
	Name    string         `json:"name"`
	Score   int            `json:"score"`
	Total   int            `json:"total"`
	Records []AnswerRecord `json:"records"`
}
