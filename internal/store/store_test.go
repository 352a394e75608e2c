package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/verte-zerg/tuivocab/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "nested", "vocab.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() {
		if err := st.Close(); err != nil {
			t.Fatalf("close: %v", err)
		}
	})
	return st
}

func TestCreateAndLoadSet(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)
	pairs := []model.WordPair{
		{Term: "cat", Definition: "feline"},
		{Term: "dog", Definition: "canine"},
	}
	id, err := st.CreateSet(ctx, "animals", "pets", pairs)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	sets, err := st.ListWordSets(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	info, ok := sets["animals"]
	if !ok || info.ID != id || info.Description != "pets" {
		t.Fatalf("unexpected catalog: %+v", sets)
	}

	got, err := st.LoadWordPairs(ctx, id)
	if err != nil {
		t.Fatalf("load pairs: %v", err)
	}
	if len(got) != 2 || got[0] != pairs[0] || got[1] != pairs[1] {
		t.Fatalf("unexpected pairs: %+v", got)
	}

	set, err := st.LoadWordSet(ctx, "animals")
	if err != nil {
		t.Fatalf("load set: %v", err)
	}
	if set.ID != id || set.Name != "animals" || len(set.Pairs) != 2 {
		t.Fatalf("unexpected set: %+v", set)
	}
}

func TestCreateSetDuplicateName(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)
	if _, err := st.CreateSet(ctx, "animals", "", nil); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := st.CreateSet(ctx, "animals", "", nil); !errors.Is(err, ErrSetExists) {
		t.Fatalf("expected ErrSetExists, got %v", err)
	}
}

func TestLoadWordSetMissing(t *testing.T) {
	st := openTestStore(t)
	if _, err := st.LoadWordSet(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestEmptySetHasNoPairs(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)
	id, err := st.CreateSet(ctx, "empty", "", nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	pairs, err := st.LoadWordPairs(ctx, id)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(pairs) != 0 {
		t.Fatalf("expected no pairs, got %d", len(pairs))
	}
}

func TestRenameAndDescribeSet(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)
	if _, err := st.CreateSet(ctx, "a", "", nil); err != nil {
		t.Fatalf("create a: %v", err)
	}
	if _, err := st.CreateSet(ctx, "b", "", nil); err != nil {
		t.Fatalf("create b: %v", err)
	}
	if err := st.RenameSet(ctx, "a", "b"); !errors.Is(err, ErrSetExists) {
		t.Fatalf("expected ErrSetExists, got %v", err)
	}
	if err := st.RenameSet(ctx, "missing", "c"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := st.RenameSet(ctx, "a", "c"); err != nil {
		t.Fatalf("rename: %v", err)
	}
	if err := st.DescribeSet(ctx, "c", "renamed"); err != nil {
		t.Fatalf("describe: %v", err)
	}
	if err := st.DescribeSet(ctx, "a", "x"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for old name, got %v", err)
	}
	sets, err := st.ListWordSets(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if sets["c"].Description != "renamed" {
		t.Fatalf("unexpected catalog: %+v", sets)
	}
}

func TestDeleteSetRemovesWords(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)
	id, err := st.CreateSet(ctx, "animals", "", []model.WordPair{{Term: "cat", Definition: "feline"}})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := st.DeleteSet(ctx, "animals"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := st.DeleteSet(ctx, "animals"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
	pairs, err := st.LoadWordPairs(ctx, id)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(pairs) != 0 {
		t.Fatalf("expected words to be removed, got %+v", pairs)
	}
}

func TestAddWordUpserts(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)
	id, err := st.CreateSet(ctx, "animals", "", nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := st.AddWord(ctx, id, model.WordPair{Term: "cat", Definition: "feline"}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := st.AddWord(ctx, id, model.WordPair{Term: "cat", Definition: "small feline"}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := st.AddWord(ctx, id, model.WordPair{Term: "dog"}); err == nil {
		t.Fatalf("expected error for missing definition")
	}
	if err := st.AddWord(ctx, id, model.WordPair{Term: "owl", Definition: "   "}); err == nil {
		t.Fatalf("expected error for blank definition")
	}
	pairs, err := st.LoadWordPairs(ctx, id)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(pairs) != 1 || pairs[0].Definition != "small feline" {
		t.Fatalf("unexpected pairs: %+v", pairs)
	}
	if err := st.AddWord(ctx, id, model.WordPair{Term: " bird ", Definition: " avian\t"}); err != nil {
		t.Fatalf("add padded: %v", err)
	}
	pairs, err = st.LoadWordPairs(ctx, id)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(pairs) != 2 || pairs[1] != (model.WordPair{Term: "bird", Definition: "avian"}) {
		t.Fatalf("expected trimmed pair, got %+v", pairs)
	}
	if err := st.RemoveWord(ctx, id, "bird"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := st.RemoveWord(ctx, id, "cat"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := st.RemoveWord(ctx, id, "cat"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestReplaceWords(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)
	id, err := st.CreateSet(ctx, "animals", "", []model.WordPair{{Term: "cat", Definition: "feline"}})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	next := []model.WordPair{{Term: "owl", Definition: "bird"}, {Term: "eel", Definition: "fish"}}
	if err := st.ReplaceWords(ctx, id, next); err != nil {
		t.Fatalf("replace: %v", err)
	}
	pairs, err := st.LoadWordPairs(ctx, id)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(pairs) != 2 || pairs[0].Term != "owl" || pairs[1].Term != "eel" {
		t.Fatalf("unexpected pairs: %+v", pairs)
	}

	bad := []model.WordPair{{Term: "ant", Definition: "insect"}, {Term: "", Definition: "x"}}
	if err := st.ReplaceWords(ctx, id, bad); err == nil {
		t.Fatalf("expected error for invalid pair")
	}
	pairs, err = st.LoadWordPairs(ctx, id)
	if err != nil {
		t.Fatalf("load after rollback: %v", err)
	}
	if len(pairs) != 2 {
		t.Fatalf("expected rollback to keep previous words, got %+v", pairs)
	}
}

func TestRoundsAndTermAggregates(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	rounds := []model.RoundResult{
		{
			SessionID: "s1", SetName: "animals", GradedAt: base, ElapsedSeconds: 30,
			Correct: 1, Total: 2,
			Terms: []model.TermOutcome{{Term: "cat", Correct: true}, {Term: "dog", Correct: false}},
		},
		{
			SessionID: "s1", SetName: "animals", GradedAt: base.Add(time.Minute), ElapsedSeconds: 90,
			Correct: 0, Total: 1,
			Terms: []model.TermOutcome{{Term: "dog", Correct: false}},
		},
		{
			SessionID: "s2", SetName: "colors", GradedAt: base.Add(time.Hour), ElapsedSeconds: 10,
			Correct: 1, Total: 1,
			Terms: []model.TermOutcome{{Term: "red", Correct: true}},
		},
	}
	for _, r := range rounds {
		if _, err := st.InsertRound(ctx, r); err != nil {
			t.Fatalf("insert round: %v", err)
		}
	}

	all, err := st.ListRounds(ctx, model.StatsConfig{})
	if err != nil {
		t.Fatalf("list rounds: %v", err)
	}
	if len(all) != 3 || !all[0].GradedAt.Equal(base) || all[2].SetName != "colors" {
		t.Fatalf("unexpected rounds: %+v", all)
	}

	since := base.Add(30 * time.Second)
	animals, err := st.ListRounds(ctx, model.StatsConfig{SetName: "animals", Since: &since})
	if err != nil {
		t.Fatalf("list filtered: %v", err)
	}
	if len(animals) != 1 || animals[0].ElapsedSeconds != 90 {
		t.Fatalf("unexpected filtered rounds: %+v", animals)
	}

	ids := []int64{all[0].RoundID, all[1].RoundID}
	aggs, err := st.ListTermAggregates(ctx, ids)
	if err != nil {
		t.Fatalf("aggregates: %v", err)
	}
	byTerm := map[string]model.TermAggregate{}
	for _, a := range aggs {
		byTerm[a.Term] = a
	}
	if byTerm["dog"].Incorrect != 2 || byTerm["dog"].Correct != 0 {
		t.Fatalf("unexpected dog aggregate: %+v", byTerm["dog"])
	}
	if byTerm["cat"].Correct != 1 || byTerm["cat"].Incorrect != 0 {
		t.Fatalf("unexpected cat aggregate: %+v", byTerm["cat"])
	}
	if _, ok := byTerm["red"]; ok {
		t.Fatalf("expected aggregates limited to requested rounds")
	}

	none, err := st.ListTermAggregates(ctx, nil)
	if err != nil || none != nil {
		t.Fatalf("expected nil aggregates for no rounds, got %+v %v", none, err)
	}
}
