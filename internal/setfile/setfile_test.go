package setfile

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/verte-zerg/tuivocab/internal/model"
)

func TestReadTSV(t *testing.T) {
	input := "# animals\ncat\tfeline\n\n dog \t canine \ncat\tsmall feline\n"
	doc, err := Read(strings.NewReader(input), FormatTSV)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	want := []model.WordPair{
		{Term: "cat", Definition: "small feline"},
		{Term: "dog", Definition: "canine"},
	}
	if len(doc.Words) != len(want) {
		t.Fatalf("expected %d words, got %+v", len(want), doc.Words)
	}
	for i := range want {
		if doc.Words[i] != want[i] {
			t.Fatalf("word %d: expected %+v, got %+v", i, want[i], doc.Words[i])
		}
	}
}

func TestReadTSVRejectsMissingDefinition(t *testing.T) {
	_, err := Read(strings.NewReader("cat\tfeline\ndog\n"), FormatTSV)
	if err == nil || !strings.Contains(err.Error(), "line 2") {
		t.Fatalf("expected line 2 error, got %v", err)
	}
}

func TestReadEmpty(t *testing.T) {
	for _, format := range []Format{FormatTSV, FormatYAML} {
		if _, err := Read(strings.NewReader("\n"), format); !errors.Is(err, ErrEmpty) {
			t.Fatalf("%s: expected ErrEmpty, got %v", format, err)
		}
	}
}

func TestReadYAML(t *testing.T) {
	input := `name: colors
description: basic colors
words:
  - term: red
    definition: rot
  - term: blue
    definition: blau
`
	doc, err := Read(strings.NewReader(input), FormatYAML)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if doc.Name != "colors" || doc.Description != "basic colors" || len(doc.Words) != 2 {
		t.Fatalf("unexpected doc: %+v", doc)
	}
	if doc.Words[1] != (model.WordPair{Term: "blue", Definition: "blau"}) {
		t.Fatalf("unexpected word: %+v", doc.Words[1])
	}
}

func TestReadYAMLRejectsUnknownFields(t *testing.T) {
	input := "words:\n  - term: red\n    meaning: rot\n"
	if _, err := Read(strings.NewReader(input), FormatYAML); err == nil {
		t.Fatalf("expected error for unknown field")
	}
}

func TestWriteAndReadFile(t *testing.T) {
	doc := Document{
		Name:        "greetings",
		Description: "hello in other languages",
		Words: []model.WordPair{
			{Term: "hola", Definition: "hello"},
			{Term: "こんにちは", Definition: "hello"},
		},
	}
	dir := t.TempDir()
	for _, name := range []string{"greetings.yaml", "greetings.tsv"} {
		path := filepath.Join(dir, name)
		format := DetectFormat(path)
		if err := WriteFile(path, format, doc); err != nil {
			t.Fatalf("%s: write: %v", name, err)
		}
		got, err := ReadFile(path, format)
		if err != nil {
			t.Fatalf("%s: read: %v", name, err)
		}
		if got.Name != "greetings" || len(got.Words) != 2 || got.Words[1] != doc.Words[1] {
			t.Fatalf("%s: unexpected doc: %+v", name, got)
		}
	}
}

func TestTSVKeepsHashTerms(t *testing.T) {
	doc := Document{Words: []model.WordPair{
		{Term: "#hashtag", Definition: "tag"},
		{Term: "cat", Definition: "feline"},
	}}
	var buf bytes.Buffer
	if err := Write(&buf, FormatTSV, doc); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := Read(strings.NewReader("# comment line\n"+buf.String()), FormatTSV)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(got.Words) != 2 || got.Words[0] != doc.Words[0] || got.Words[1] != doc.Words[1] {
		t.Fatalf("expected both words back, got %+v", got.Words)
	}
}

func TestWriteTSVRejectsTabs(t *testing.T) {
	doc := Document{Words: []model.WordPair{{Term: "a\tb", Definition: "x"}}}
	if err := Write(&bytes.Buffer{}, FormatTSV, doc); err == nil {
		t.Fatalf("expected error for tab in term")
	}
}

func TestParseFormat(t *testing.T) {
	if f, err := ParseFormat("", "words.yml"); err != nil || f != FormatYAML {
		t.Fatalf("expected yaml detection, got %q %v", f, err)
	}
	if f, err := ParseFormat("TSV", "words.yml"); err != nil || f != FormatTSV {
		t.Fatalf("expected explicit tsv, got %q %v", f, err)
	}
	if _, err := ParseFormat("csv", "words.csv"); err == nil {
		t.Fatalf("expected error for csv")
	}
}
