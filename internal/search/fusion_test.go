package search

import (
	"errors"
	"math"
	"testing"

	"github.com/hyperjump/shortlist/internal/keyword"
	"github.com/hyperjump/shortlist/internal/vector"
)

func orderOf(ids ...string) OrderFunc {
	pos := make(map[string]int, len(ids))
	for i, id := range ids {
		pos[id] = i
	}
	return func(id string) (int, bool) {
		n, ok := pos[id]
		return n, ok
	}
}

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestNormalizeKeywordScores(t *testing.T) {
	results := []*keyword.KeywordResult{
		{ID: "a", Score: 2},
		{ID: "b", Score: 4},
		{ID: "c", Score: 1},
	}
	m := NormalizeKeywordScores(results)
	if m["b"] != 1.0 {
		t.Errorf("max score should be 1.0, got %f", m["b"])
	}
	if m["a"] != 0.5 {
		t.Errorf("a should be 0.5, got %f", m["a"])
	}
	if len(m) != 3 {
		t.Errorf("expected 3 entries, got %d", len(m))
	}
}

func TestNormalizeVectorScores(t *testing.T) {
	t.Run("max normalized", func(t *testing.T) {
		m := NormalizeVectorScores([]*vector.VectorResult{{ID: "c1", Score: 0.8}, {ID: "c2", Score: 0.4}})
		if !approx(m["c1"], 1) || !approx(m["c2"], 0.5) {
			t.Errorf("unexpected map %v", m)
		}
	})
	t.Run("negative clamped", func(t *testing.T) {
		m := NormalizeVectorScores([]*vector.VectorResult{{ID: "c1", Score: 0.5}, {ID: "c2", Score: -0.3}})
		if m["c2"] != 0 {
			t.Errorf("negative similarity should clamp to 0, got %v", m["c2"])
		}
	})
	t.Run("zero max treated as one", func(t *testing.T) {
		m := NormalizeVectorScores([]*vector.VectorResult{{ID: "c1", Score: 0}, {ID: "c2", Score: -0.2}})
		if m["c1"] != 0 || m["c2"] != 0 {
			t.Errorf("unexpected map %v", m)
		}
	})
}

// Keyword {r1:3, r2:1}, vector {r1:0.5, r3:1.0}, default weights:
// r1 = 0.3*1 + 0.7*0.5 = 0.65; r3 = 0.7; r2 = 0.1.
func TestFuse_WorkedExample(t *testing.T) {
	kw := []*keyword.KeywordResult{{ID: "r1", Score: 3}, {ID: "r2", Score: 1}}
	vec := []*vector.VectorResult{{ID: "r3", Score: 1.0}, {ID: "r1", Score: 0.5}}
	got := Fuse(kw, vec, 0, DefaultWeights, orderOf("r1", "r2", "r3"))

	want := []struct {
		id    string
		score float64
	}{{"r3", 0.7}, {"r1", 0.65}, {"r2", 0.1}}
	if len(got) != len(want) {
		t.Fatalf("got %d results, want %d", len(got), len(want))
	}
	for i, w := range want {
		if got[i].DocumentID != w.id || !approx(got[i].Score, w.score) {
			t.Errorf("position %d = %s/%v, want %s/%v", i, got[i].DocumentID, got[i].Score, w.id, w.score)
		}
	}
	if !approx(got[1].KeywordScore, 1) || !approx(got[1].VectorScore, 0.5) {
		t.Errorf("r1 components = %v/%v", got[1].KeywordScore, got[1].VectorScore)
	}
}

func TestFuse_TiesUseInsertionOrder(t *testing.T) {
	vec := []*vector.VectorResult{{ID: "b", Score: 0.5}, {ID: "a", Score: 0.5}, {ID: "c", Score: 0.5}}
	got := Fuse(nil, vec, 0, DefaultWeights, orderOf("c", "a", "b"))
	for i, id := range []string{"c", "a", "b"} {
		if got[i].DocumentID != id {
			t.Errorf("position %d = %s, want %s", i, got[i].DocumentID, id)
		}
	}
}

func TestFuse_Truncates(t *testing.T) {
	kw := []*keyword.KeywordResult{{ID: "a", Score: 3}, {ID: "b", Score: 2}, {ID: "c", Score: 1}}
	if got := Fuse(kw, nil, 2, DefaultWeights, nil); len(got) != 2 {
		t.Errorf("expected 2 results, got %d", len(got))
	}
	if got := Fuse(nil, nil, 5, DefaultWeights, nil); len(got) != 0 {
		t.Errorf("expected empty result, got %d", len(got))
	}
}

func TestFuse_KeywordOnlyReproducesKeywordOrder(t *testing.T) {
	kw := []*keyword.KeywordResult{{ID: "a", Score: 5}, {ID: "b", Score: 3}, {ID: "c", Score: 1}}
	vec := []*vector.VectorResult{{ID: "c", Score: 0.9}, {ID: "b", Score: 0.5}, {ID: "a", Score: 0.1}}
	got := Fuse(kw, vec, 0, Weights{Keyword: 1, Vector: 0}, orderOf("a", "b", "c"))
	for i, id := range []string{"a", "b", "c"} {
		if got[i].DocumentID != id {
			t.Errorf("position %d = %s, want %s", i, got[i].DocumentID, id)
		}
	}
}

func TestFuse_ScoresWithinUnitRange(t *testing.T) {
	kw := []*keyword.KeywordResult{{ID: "a", Score: 7}, {ID: "b", Score: 2}}
	vec := []*vector.VectorResult{{ID: "a", Score: 0.9}, {ID: "c", Score: -0.4}, {ID: "b", Score: 0.3}}
	for _, w := range []Weights{DefaultWeights, {Keyword: 0.5, Vector: 0.5}, {Keyword: 1}, {Vector: 1}} {
		for _, r := range Fuse(kw, vec, 0, w, nil) {
			if r.Score < 0 || r.Score > 1+1e-12 {
				t.Errorf("weights %+v: %s score %v outside [0,1]", w, r.DocumentID, r.Score)
			}
		}
	}
}

func TestWeights_Validate(t *testing.T) {
	tests := []struct {
		name    string
		w       Weights
		wantErr bool
	}{
		{"default", DefaultWeights, false},
		{"keyword only", Weights{Keyword: 1}, false},
		{"negative", Weights{Keyword: -0.1, Vector: 1}, true},
		{"all zero", Weights{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.w.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidWeights) {
				t.Errorf("error should wrap ErrInvalidWeights")
			}
		})
	}
}
