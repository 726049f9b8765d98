// Package matching turns unstructured job requirement text into a bounded
// match score against the candidate's skill vocabulary. Everything in this
// package is pure and safe for concurrent use; malformed input degrades to
// documented defaults, never to an error.
package matching

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

const (
	// matchedThreshold separates matched from missing skills in the analysis.
	matchedThreshold = 70
	// neutralScore is returned when no requirement could be extracted at all.
	// Absence of parseable requirements is not a bad match.
	neutralScore = 60
	// synonymFloor is the ratio credited when a token resolves through the
	// synonym table to a skill present in the vocabulary.
	synonymFloor = 0.85
	// fuzzyCutoff is the sequence-similarity ratio below which the synonym
	// table is consulted.
	fuzzyCutoff = 0.7
)

var yearsPattern = regexp.MustCompile(`(\d+)`)

// SkillMatch is one scored requirement token.
type SkillMatch struct {
	Skill           string `json:"skill"`
	MatchPercentage int    `json:"match_percentage"`
}

// Analysis explains a score: which requirements matched the vocabulary, which
// did not, qualitative candidate advantages and the experience fit.
// Recomputed on every evaluation; never persisted on its own.
type Analysis struct {
	MatchedSkills       []SkillMatch `json:"matched_skills"`
	MissingSkills       []SkillMatch `json:"missing_skills"`
	CandidateAdvantages []string     `json:"candidate_advantages"`
	ExperienceAnalysis  string       `json:"experience_analysis,omitempty"`
	Reasoning           string       `json:"reasoning"`
}

// Config carries the matcher's injectable tables and the candidate's
// years-of-experience constant. Zero-valued tables fall back to the defaults
// tuned for the built-in profile.
type Config struct {
	ExperienceYears int
	Keywords        []string
	Synonyms        map[string][]string
}

// Matcher scores free-text job requirements against a fixed candidate skill
// vocabulary.
type Matcher struct {
	vocab    []string
	vocabSet map[string]struct{}
	keywords []string
	patterns []*regexp.Regexp
	synonyms map[string][]string
	years    int
}

// New builds a Matcher from a lower-cased skill vocabulary. Empty tokens are
// dropped; membership is case-insensitive.
func New(vocabulary []string, cfg Config) *Matcher {
	keywords := cfg.Keywords
	if keywords == nil {
		keywords = DefaultKeywords()
	}
	synonyms := cfg.Synonyms
	if synonyms == nil {
		synonyms = DefaultSynonyms()
	}

	m := &Matcher{
		vocabSet: make(map[string]struct{}, len(vocabulary)),
		keywords: keywords,
		patterns: make([]*regexp.Regexp, len(keywords)),
		synonyms: synonyms,
		years:    cfg.ExperienceYears,
	}

	for _, entry := range vocabulary {
		entry = strings.ToLower(strings.TrimSpace(entry))
		if entry == "" {
			continue
		}
		if _, ok := m.vocabSet[entry]; ok {
			continue
		}
		m.vocabSet[entry] = struct{}{}
		m.vocab = append(m.vocab, entry)
	}

	// Word-bounded so short terms do not fire inside longer ones
	// ("ai" must not match every "api").
	for i, kw := range keywords {
		m.patterns[i] = regexp.MustCompile(`\b` + regexp.QuoteMeta(strings.ToLower(kw)) + `\b`)
	}

	return m
}

// VocabularySize reports how many distinct skills the matcher knows.
func (m *Matcher) VocabularySize() int { return len(m.vocab) }

// ExtractRequiredSkills returns the union of the explicit skill list and
// every dictionary keyword found in the description, deduplicated
// case-insensitively with the original casing of explicit entries preserved.
// Both inputs empty yields an empty slice; callers treat that as "cannot
// score, assume neutral".
func (m *Matcher) ExtractRequiredSkills(description string, explicit []string) []string {
	seen := make(map[string]struct{})
	skills := make([]string, 0, len(explicit))

	for _, s := range explicit {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		key := strings.ToLower(s)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		skills = append(skills, s)
	}

	desc := strings.ToLower(description)
	if desc == "" {
		return skills
	}

	for i, kw := range m.keywords {
		key := strings.ToLower(kw)
		if _, ok := seen[key]; ok {
			continue
		}
		if m.patterns[i].MatchString(desc) {
			seen[key] = struct{}{}
			skills = append(skills, key)
		}
	}

	return skills
}

// Similarity scores one requirement token against the vocabulary on the
// 0..100 scale. Exact case-insensitive membership is full confidence; the
// synonym table floors known alternate spellings at 85; raw sequence
// similarity covers genuine near-misses. Deterministic for identical input.
func (m *Matcher) Similarity(token string) int {
	token = strings.ToLower(strings.TrimSpace(token))
	if token == "" {
		return 0
	}

	if _, ok := m.vocabSet[token]; ok {
		return 100
	}

	best := 0.0
	for _, entry := range m.vocab {
		if r := sequenceRatio(token, entry); r > best {
			best = r
		}
	}

	if best < fuzzyCutoff {
		for canonical, spellings := range m.synonyms {
			if !containsAny(token, spellings) {
				continue
			}
			if m.inVocabulary(canonical) || anyInVocabulary(m.vocabSet, spellings) {
				if synonymFloor > best {
					best = synonymFloor
				}
				break
			}
		}
	}

	return int(math.Round(best * 100))
}

// Score extracts the job's required skills and aggregates per-token
// similarity into a final 0..100 score with its Analysis. Unparseable
// experience strings and empty descriptions degrade to defaults; this
// function never fails.
func (m *Matcher) Score(description string, explicit []string, experienceRequired string) (int, Analysis) {
	skills := m.ExtractRequiredSkills(description, explicit)
	if len(skills) == 0 {
		return neutralScore, Analysis{
			MatchedSkills:       []SkillMatch{},
			MissingSkills:       []SkillMatch{},
			CandidateAdvantages: []string{},
			Reasoning:           "Unable to parse required skills from job description",
		}
	}

	matched := make([]SkillMatch, 0, len(skills))
	missing := make([]SkillMatch, 0)
	sum := 0

	for _, skill := range skills {
		similarity := m.Similarity(skill)
		sum += similarity

		entry := SkillMatch{Skill: skill, MatchPercentage: similarity}
		if similarity >= matchedThreshold {
			matched = append(matched, entry)
		} else {
			missing = append(missing, entry)
		}
	}

	average := float64(sum) / float64(len(skills))
	adjustment, experienceNote := m.experienceAdjustment(experienceRequired)

	score := int(math.Round(average)) + adjustment
	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}

	analysis := Analysis{
		MatchedSkills:       matched,
		MissingSkills:       missing,
		CandidateAdvantages: m.advantages(matched),
		ExperienceAnalysis:  experienceNote,
		Reasoning: fmt.Sprintf("Matched %d/%d required skills. Average skill match: %.1f%%. %s",
			len(matched), len(skills), average, experienceNote),
	}

	return score, analysis
}

// experienceAdjustment compares the first integer found in the requirement
// string against the candidate's years constant. No parseable integer means
// no adjustment.
func (m *Matcher) experienceAdjustment(required string) (int, string) {
	found := yearsPattern.FindString(required)
	if found == "" {
		return 0, ""
	}

	years, err := strconv.Atoi(found)
	if err != nil {
		return 0, ""
	}

	switch gap := years - m.years; {
	case gap <= 0:
		return 10, fmt.Sprintf("Experience matches well (%d years available)", m.years)
	case gap == 1:
		return 5, fmt.Sprintf("Slightly under experience requirement (%d vs %d years)", m.years, years)
	default:
		return -10, fmt.Sprintf("Below experience requirement (%d vs %d years)", m.years, years)
	}
}

// advantages is a fixed rule table keyed on specific matched skills. Not a
// scored feature; the notes only enrich the analysis.
func (m *Matcher) advantages(matched []SkillMatch) []string {
	set := make(map[string]struct{}, len(matched))
	for _, s := range matched {
		set[strings.ToLower(s.Skill)] = struct{}{}
	}

	has := func(skills ...string) bool {
		for _, s := range skills {
			if _, ok := set[s]; ok {
				return true
			}
		}
		return false
	}

	advantages := make([]string, 0, 4)
	if has("aws") {
		advantages = append(advantages, "Strong AWS expertise with multiple services")
	}
	if has("ai", "machine learning", "ml", "deep learning") {
		advantages = append(advantages, "AI/ML project experience")
	}
	if has("microservices") {
		advantages = append(advantages, "Microservices and distributed systems experience")
	}
	if has("data engineering", "etl") {
		advantages = append(advantages, "Data engineering and ETL pipeline expertise")
	}

	return advantages
}

func (m *Matcher) inVocabulary(skill string) bool {
	_, ok := m.vocabSet[skill]
	return ok
}

func containsAny(token string, spellings []string) bool {
	for _, s := range spellings {
		if strings.Contains(token, s) {
			return true
		}
	}
	return false
}

func anyInVocabulary(vocab map[string]struct{}, spellings []string) bool {
	for _, s := range spellings {
		if _, ok := vocab[s]; ok {
			return true
		}
	}
	return false
}
