// Package setfile reads and writes word sets as TSV or YAML files.
package setfile

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/verte-zerg/tuivocab/internal/model"
)

// ErrEmpty is returned when a file holds no word pairs.
var ErrEmpty = errors.New("word set file is empty")

// Format identifies a set file encoding.
type Format string

const (
	FormatTSV  Format = "tsv"
	FormatYAML Format = "yaml"
)

// Document is the portable form of a word set.
type Document struct {
	Name        string           `yaml:"name,omitempty"`
	Description string           `yaml:"description,omitempty"`
	Words       []model.WordPair `yaml:"words"`
}

// DetectFormat picks the format from the file extension. Anything that is
// not .yaml or .yml is read as TSV.
func DetectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatTSV
	}
}

// ParseFormat validates a user supplied format name. Empty means detect from path.
func ParseFormat(name, path string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "":
		return DetectFormat(path), nil
	case "tsv":
		return FormatTSV, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unknown format %q (want tsv or yaml)", name)
	}
}

// ReadFile loads a document from disk. TSV files take their name from the file name.
func ReadFile(path string, format Format) (Document, error) {
	file, err := os.Open(path)
	if err != nil {
		return Document{}, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only set file.
			_ = cerr
		}
	}()

	doc, err := Read(file, format)
	if err != nil {
		return Document{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if doc.Name == "" {
		doc.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return doc, nil
}

// Read decodes a document in the given format.
func Read(r io.Reader, format Format) (Document, error) {
	var doc Document
	var err error
	switch format {
	case FormatYAML:
		doc, err = readYAML(r)
	default:
		doc, err = readTSV(r)
	}
	if err != nil {
		return Document{}, err
	}
	doc.Words = dedupe(doc.Words)
	if len(doc.Words) == 0 {
		return Document{}, ErrEmpty
	}
	return doc, nil
}

func readYAML(r io.Reader) (Document, error) {
	var doc Document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return Document{}, ErrEmpty
		}
		return Document{}, fmt.Errorf("failed to decode yaml: %w", err)
	}
	for i, p := range doc.Words {
		p.Term = strings.TrimSpace(p.Term)
		p.Definition = strings.TrimSpace(p.Definition)
		if p.Term == "" || p.Definition == "" {
			return Document{}, fmt.Errorf("entry %d: both term and definition are required", i+1)
		}
		doc.Words[i] = p
	}
	return doc, nil
}

func readTSV(r io.Reader) (Document, error) {
	var doc Document
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		// A leading # marks a comment only when the line holds no pair.
		if strings.HasPrefix(line, "#") && !strings.Contains(line, "\t") {
			continue
		}
		term, definition, ok := strings.Cut(line, "\t")
		term = strings.TrimSpace(term)
		definition = strings.TrimSpace(definition)
		if !ok || term == "" || definition == "" {
			return Document{}, fmt.Errorf("line %d: expected term<TAB>definition", lineNo)
		}
		doc.Words = append(doc.Words, model.WordPair{Term: term, Definition: definition})
	}
	if err := scanner.Err(); err != nil {
		return Document{}, err
	}
	return doc, nil
}

// dedupe keeps the first position of each term and the last definition seen for it.
func dedupe(pairs []model.WordPair) []model.WordPair {
	index := make(map[string]int, len(pairs))
	out := make([]model.WordPair, 0, len(pairs))
	for _, p := range pairs {
		if i, ok := index[p.Term]; ok {
			out[i].Definition = p.Definition
			continue
		}
		index[p.Term] = len(out)
		out = append(out, p)
	}
	return out
}

// WriteFile stores a document on disk.
func WriteFile(path string, format Format, doc Document) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Write(file, format, doc); err != nil {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close on write failure.
			_ = cerr
		}
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return file.Close()
}

// Write encodes a document in the given format.
func Write(w io.Writer, format Format, doc Document) error {
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return enc.Close()
	default:
		bw := bufio.NewWriter(w)
		for _, p := range doc.Words {
			if strings.ContainsAny(p.Term, "\t\n") || strings.ContainsAny(p.Definition, "\t\n") {
				return fmt.Errorf("term %q cannot be written as tsv", p.Term)
			}
			if _, err := fmt.Fprintf(bw, "%s\t%s\n", p.Term, p.Definition); err != nil {
				return err
			}
		}
		return bw.Flush()
	}
}
