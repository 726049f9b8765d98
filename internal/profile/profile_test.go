package profile

import "testing"

func TestVocabularyIsDeterministicAndDeduplicated(t *testing.T) {
	t.Parallel()

	p := Default()

	first := p.Vocabulary()
	second := p.Vocabulary()

	if len(first) != len(second) {
		t.Fatalf("vocabulary size changed between calls: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("vocabulary order changed at %d: %q vs %q", i, first[i], second[i])
		}
	}

	seen := make(map[string]struct{}, len(first))
	for _, s := range first {
		if _, ok := seen[s]; ok {
			t.Fatalf("duplicate vocabulary entry %q", s)
		}
		seen[s] = struct{}{}
	}
}

func TestVocabularyIsLowerCased(t *testing.T) {
	t.Parallel()

	p := &Profile{
		Skills:          map[string][]string{"langs": {"Python", " JavaScript "}},
		Specializations: []string{"Data Engineering"},
	}

	vocab := p.Vocabulary()

	expect := map[string]bool{"python": false, "javascript": false, "data engineering": false}
	for _, s := range vocab {
		if _, ok := expect[s]; !ok {
			t.Fatalf("unexpected vocabulary entry %q", s)
		}
		expect[s] = true
	}
	for s, found := range expect {
		if !found {
			t.Fatalf("missing vocabulary entry %q", s)
		}
	}
}
