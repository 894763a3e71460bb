package service

import (
	"math/rand"
	"math_quiz_backend/internal/model"
	"math_quiz_backend/internal/util"
	"sync"
	"time"
)

const (
	maxFirstOperand  = 20
	maxSecondOperand = 10
)

var operators = []string{"+", "-", "*", "/"}

// QuestionGenerator 生成随机算术题，可并发使用
type QuestionGenerator struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

func NewQuestionGenerator(src rand.Source) *QuestionGenerator {
	if src == nil {
		src = rand.NewSource(time.Now().UnixNano())
	}
	return &QuestionGenerator{rnd: rand.New(src)}
}

// Generate 返回一道题及其整数答案。
// 第一个操作数取 [1,20]，第二个取 [1,10]；除法时被除数改为两数之积，保证整除。
func (g *QuestionGenerator) Generate() model.Question {
	g.mu.Lock()
	a := g.rnd.Intn(maxFirstOperand) + 1
	b := g.rnd.Intn(maxSecondOperand) + 1
	op := operators[g.rnd.Intn(len(operators))]
	g.mu.Unlock()

	if op == "/" {
		a = a * b
	}

	expr := util.Expression{Left: a, Operator: op, Right: b}
	// 操作数均为正且除数不为零，求值不会失败
	answer, _ := expr.Evaluate()
	return model.Question{
		Expression: expr.String(),
		Answer:     answer,
	}
}

func (g *QuestionGenerator) GenerateN(n int) []model.Question {
	questions := make([]model.Question, n)
	for i := range questions {
		questions[i] = g.Generate()
	}
	return questions
}
