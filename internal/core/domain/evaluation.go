package domain

// QuestionSet is a batch of questions compared with the same top_k.
type QuestionSet struct {
	Name      string   `yaml:"name" json:"name"`
	TopK      int      `yaml:"top_k" json:"top_k"`
	Questions []string `yaml:"questions" json:"questions"`
}
