package matching

import (
	"strings"
	"testing"
)

func testMatcher(vocab []string, years int) *Matcher {
	return New(vocab, Config{ExperienceYears: years})
}

func TestExtractRequiredSkills(t *testing.T) {
	t.Parallel()

	m := testMatcher([]string{"python", "aws", "django", "docker"}, 4)

	skills := m.ExtractRequiredSkills(
		"We use Django and docker daily.",
		[]string{"Python", "AWS", "python", " "},
	)

	expect := []string{"Python", "AWS", "django", "docker"}
	if len(skills) != len(expect) {
		t.Fatalf("expected %d skills, got %d: %v", len(expect), len(skills), skills)
	}
	for i, s := range expect {
		if skills[i] != s {
			t.Fatalf("expected skill %d to be %q, got %q", i, s, skills[i])
		}
	}
}

func TestExtractRequiredSkillsWordBoundary(t *testing.T) {
	t.Parallel()

	m := testMatcher([]string{"python"}, 4)

	// "ai" must not fire inside "api", nor "ml" inside "html".
	skills := m.ExtractRequiredSkills("building api endpoints with html templates", nil)

	for _, s := range skills {
		if s == "ai" || s == "ml" {
			t.Fatalf("keyword %q extracted from a longer word: %v", s, skills)
		}
	}
}

func TestSimilarity(t *testing.T) {
	t.Parallel()

	m := testMatcher([]string{"python", "aws", "kubernetes"}, 4)

	tests := []struct {
		name   string
		token  string
		expect int
	}{
		{name: "exact match is full confidence", token: "Python", expect: 100},
		{name: "case insensitive", token: "AWS", expect: 100},
		{name: "synonym floors at 85", token: "k8s", expect: 85},
		{name: "empty token", token: "", expect: 0},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := m.Similarity(tt.token); got != tt.expect {
				t.Fatalf("Similarity(%q) = %d, expected %d", tt.token, got, tt.expect)
			}
		})
	}
}

func TestSimilarityDeterministic(t *testing.T) {
	t.Parallel()

	m := testMatcher([]string{"python", "django", "postgresql"}, 4)

	for _, token := range []string{"pyton", "posgres", "djagno"} {
		first := m.Similarity(token)
		for i := 0; i < 10; i++ {
			if got := m.Similarity(token); got != first {
				t.Fatalf("Similarity(%q) is not deterministic: %d then %d", token, first, got)
			}
		}
	}
}

func TestScoreNeutralWhenNothingExtracted(t *testing.T) {
	t.Parallel()

	m := testMatcher([]string{"python"}, 4)

	score, analysis := m.Score("", nil, "")

	if score != neutralScore {
		t.Fatalf("expected neutral score %d, got %d", neutralScore, score)
	}
	if len(analysis.MatchedSkills) != 0 || len(analysis.MissingSkills) != 0 {
		t.Fatalf("expected empty analysis, got %+v", analysis)
	}
	if !strings.Contains(analysis.Reasoning, "Unable to parse required skills") {
		t.Fatalf("unexpected reasoning: %q", analysis.Reasoning)
	}
}

func TestScoreStrongMatch(t *testing.T) {
	t.Parallel()

	m := testMatcher([]string{"python", "aws", "django"}, 4)

	score, analysis := m.Score("", []string{"Python", "AWS", "Django"}, "3-5 years")

	if score < 90 {
		t.Fatalf("expected score >= 90 for an exact skill set, got %d", score)
	}
	if len(analysis.MatchedSkills) != 3 {
		t.Fatalf("expected 3 matched skills, got %d", len(analysis.MatchedSkills))
	}
	if len(analysis.MissingSkills) != 0 {
		t.Fatalf("expected no missing skills, got %v", analysis.MissingSkills)
	}
	if !strings.Contains(analysis.ExperienceAnalysis, "Experience matches well") {
		t.Fatalf("unexpected experience analysis: %q", analysis.ExperienceAnalysis)
	}
	if !strings.Contains(analysis.Reasoning, "Matched 3/3") {
		t.Fatalf("unexpected reasoning: %q", analysis.Reasoning)
	}
}

func TestScoreExperiencePenalty(t *testing.T) {
	t.Parallel()

	m := testMatcher([]string{"python"}, 4)

	// "6-8 years" against 4 years of experience costs 10 points.
	score, analysis := m.Score("", []string{"Python"}, "6-8 years")

	if score != 90 {
		t.Fatalf("expected 100 - 10 = 90, got %d", score)
	}
	if !strings.Contains(analysis.ExperienceAnalysis, "Below experience requirement (4 vs 6 years)") {
		t.Fatalf("unexpected experience analysis: %q", analysis.ExperienceAnalysis)
	}
}

func TestScoreExperienceSlightlyUnder(t *testing.T) {
	t.Parallel()

	m := testMatcher([]string{"python"}, 4)

	score, analysis := m.Score("", []string{"Python"}, "5+ years")

	if score != 100 {
		t.Fatalf("expected 100 (clamped from 105), got %d", score)
	}
	if !strings.Contains(analysis.ExperienceAnalysis, "Slightly under") {
		t.Fatalf("unexpected experience analysis: %q", analysis.ExperienceAnalysis)
	}
}

func TestScorePartitionsMatchedAndMissing(t *testing.T) {
	t.Parallel()

	m := testMatcher([]string{"python", "aws"}, 4)

	_, analysis := m.Score("", []string{"Python", "COBOL"}, "")

	for _, s := range analysis.MatchedSkills {
		if s.MatchPercentage < matchedThreshold {
			t.Fatalf("matched skill %q below threshold: %d", s.Skill, s.MatchPercentage)
		}
	}
	for _, s := range analysis.MissingSkills {
		if s.MatchPercentage >= matchedThreshold {
			t.Fatalf("missing skill %q above threshold: %d", s.Skill, s.MatchPercentage)
		}
	}

	if len(analysis.MatchedSkills) != 1 || analysis.MatchedSkills[0].Skill != "Python" {
		t.Fatalf("expected only Python to match, got %v", analysis.MatchedSkills)
	}
	if len(analysis.MissingSkills) != 1 || analysis.MissingSkills[0].Skill != "COBOL" {
		t.Fatalf("expected COBOL to be missing, got %v", analysis.MissingSkills)
	}
}

func TestScoreAdvantages(t *testing.T) {
	t.Parallel()

	m := testMatcher([]string{"aws", "microservices"}, 4)

	_, analysis := m.Score("", []string{"AWS", "Microservices"}, "")

	want := []string{
		"Strong AWS expertise with multiple services",
		"Microservices and distributed systems experience",
	}
	for _, adv := range want {
		found := false
		for _, got := range analysis.CandidateAdvantages {
			if got == adv {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("expected advantage %q in %v", adv, analysis.CandidateAdvantages)
		}
	}
}

func TestScoreClampedToRange(t *testing.T) {
	t.Parallel()

	m := testMatcher([]string{"python"}, 4)

	score, _ := m.Score("", []string{"Python"}, "2 years")
	if score < 0 || score > 100 {
		t.Fatalf("score out of range: %d", score)
	}
}
