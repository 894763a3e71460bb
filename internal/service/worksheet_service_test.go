package service

import (
	"math/rand"
	"math_quiz_backend/internal/util"
	"regexp"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var worksheetLineRe = regexp.MustCompile(`^(\d+)\. (\d+ [-+*/] \d+) = $`)

func TestWorksheetService_Build(t *testing.T) {
	svc := NewWorksheetService(NewQuestionGenerator(rand.NewSource(3)), 20)

	content := svc.Build()
	require.True(t, strings.HasPrefix(content, "Math Worksheet\n\n"))

	lines := strings.Split(strings.TrimSuffix(strings.TrimPrefix(content, "Math Worksheet\n\n"), "\n"), "\n")
	require.Len(t, lines, 20)

	for i, line := range lines {
		m := worksheetLineRe.FindStringSubmatch(line)
		require.NotNil(t, m, "unexpected line %q", line)
		assert.Equal(t, strconv.Itoa(i+1), m[1])
		assert.True(t, strings.HasSuffix(line, "= "))

		_, err := util.ParseExpression(m[2])
		assert.NoError(t, err)
	}
}

func TestWorksheetService_FreshQuestionsEachTime(t *testing.T) {
	svc := NewWorksheetService(NewQuestionGenerator(rand.NewSource(5)), 20)
	assert.NotEqual(t, svc.Build(), svc.Build())
}
