package wordlist

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestUnique(t *testing.T) {
	filter := Unique()
	if !filter("hello") {
		t.Fatalf("expected first hello to pass")
	}
	if filter("hello") {
		t.Fatalf("expected duplicate hello to be rejected")
	}
	if !filter("Hello") {
		t.Fatalf("expected case-distinct word to pass")
	}
	if !KeepAll()("hello") {
		t.Fatalf("expected KeepAll to keep")
	}
}

func TestLoadWords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "words.txt")
	if err := os.WriteFile(path, []byte("alpha\n\n  beta  \r\ngamma"), 0o644); err != nil {
		t.Fatalf("write words: %v", err)
	}
	words, err := LoadWords(path)
	if err != nil {
		t.Fatalf("load words: %v", err)
	}
	if strings.Join(words, ",") != "alpha,beta,gamma" {
		t.Fatalf("unexpected words: %v", words)
	}
}

func TestReadWordsEmpty(t *testing.T) {
	if _, err := ReadWords(strings.NewReader("\n \n")); err == nil {
		t.Fatalf("expected empty list error")
	}
}
