package util

import (
	"fmt"
	"regexp"
	"strconv"
)

// 只接受 "<整数> <运算符> <整数>" 一种形式
var expressionRe = regexp.MustCompile(`^\s*(-?\d{1,9})\s*([-+*/])\s*(-?\d{1,9})\s*$`)

type Expression struct {
	Left     int
	Operator string
	Right    int
}

func ParseExpression(text string) (Expression, error) {
	m := expressionRe.FindStringSubmatch(text)
	if m == nil {
		return Expression{}, fmt.Errorf("%w: %q", ErrInvalidExpression, text)
	}
	left, err := strconv.Atoi(m[1])
	if err != nil {
		return Expression{}, fmt.Errorf("%w: %q", ErrInvalidExpression, text)
	}
	right, err := strconv.Atoi(m[3])
	if err != nil {
		return Expression{}, fmt.Errorf("%w: %q", ErrInvalidExpression, text)
	}
	return Expression{Left: left, Operator: m[2], Right: right}, nil
}

func (e Expression) String() string {
	return fmt.Sprintf("%d %s %d", e.Left, e.Operator, e.Right)
}

// Evaluate 按整数语义求值，除法向下取整
func (e Expression) Evaluate() (int, error) {
	a, b := e.Left, e.Right
	switch e.Operator {
	case "+":
		return a + b, nil
	case "-":
		return a - b, nil
	case "*":
		return a * b, nil
	case "/":
		if b == 0 {
			return 0, fmt.Errorf("%w: division by zero", ErrInvalidExpression)
		}
		return floorDiv(a, b), nil
	default:
		return 0, fmt.Errorf("%w: unsupported operator %q", ErrInvalidExpression, e.Operator)
	}
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
