package usecase

import "testing"

func TestGroundingScoreFullyContainedAnswer(t *testing.T) {
	contextText := "Anti-dsDNA antibodies are a biomarker for lupus."
	score := groundingScore("Anti-dsDNA antibodies are a biomarker.", contextText)
	if score != 1 {
		t.Fatalf("expected full grounding, got %f", score)
	}
}

func TestGroundingScorePenalizesUnsupportedTokens(t *testing.T) {
	contextText := "Anti-dsDNA antibodies are a biomarker for lupus."
	score := groundingScore("Lupus is cured by penicillin injections.", contextText)
	if score >= 0.5 {
		t.Fatalf("expected low grounding for unsupported claims, got %f", score)
	}
	if score <= 0 {
		t.Fatalf("expected partial grounding for lupus token, got %f", score)
	}
}

func TestGroundingScoreEmptyAnswer(t *testing.T) {
	if score := groundingScore("", "some context"); score != 0 {
		t.Fatalf("expected zero grounding for empty answer, got %f", score)
	}
	if score := groundingScore("a an of", "some context"); score != 0 {
		t.Fatalf("expected zero grounding without content tokens, got %f", score)
	}
}
