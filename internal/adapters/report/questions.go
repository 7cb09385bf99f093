package report

import (
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kirillkom/graphrag-compare/internal/core/domain"
)

func LoadQuestionSetFile(path string) (domain.QuestionSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return domain.QuestionSet{}, fmt.Errorf("open question set: %w", err)
	}
	defer f.Close()
	return LoadQuestionSet(f)
}

// LoadQuestionSet decodes a YAML question set. Blank questions are dropped.
func LoadQuestionSet(r io.Reader) (domain.QuestionSet, error) {
	var set domain.QuestionSet
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&set); err != nil {
		return domain.QuestionSet{}, domain.WrapError(domain.ErrInvalidInput, "decode question set", err)
	}

	questions := make([]string, 0, len(set.Questions))
	for _, q := range set.Questions {
		if q = strings.TrimSpace(q); q != "" {
			questions = append(questions, q)
		}
	}
	set.Questions = questions
	if len(set.Questions) == 0 {
		return domain.QuestionSet{}, domain.WrapError(domain.ErrInvalidInput, "decode question set", fmt.Errorf("no questions"))
	}
	if set.TopK < 0 {
		return domain.QuestionSet{}, domain.WrapError(domain.ErrInvalidInput, "decode question set", fmt.Errorf("top_k must not be negative"))
	}
	return set, nil
}
