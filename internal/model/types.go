// Package model defines shared data structures.
package model

import "time"

// Source selects where the transition matrix comes from.
type Source struct {
	Corpus  string
	Load    bool
	Name    string
	Charset string
}

// Label describes the source for logs and run history.
func (s Source) Label() string {
	if s.Name != "" {
		return "model:" + s.Name
	}
	if s.Load {
		return "matrix:" + s.Corpus
	}
	return s.Corpus
}

// Bucket selects which side of the classification is emitted.
type Bucket int

// Buckets.
const (
	Cleartext Bucket = iota
	Hashed
)

func (b Bucket) String() string {
	if b == Hashed {
		return "hash"
	}
	return "clear"
}

// RunStats captures a completed filter run.
type RunStats struct {
	StartedAt  time.Time
	EndedAt    time.Time
	Source     string
	Bucket     Bucket
	Policy     string
	Lines      int
	Cleartext  int
	Hashed     int
	Duplicates int
	DurationMs int64
}

// RunAggregate summarizes a stored run for reporting.
type RunAggregate struct {
	RunID      int64
	EndedAt    time.Time
	Source     string
	Bucket     string
	Policy     string
	Lines      int
	Cleartext  int
	Hashed     int
	Duplicates int
	DurationMs int64
}

// ModelInfo describes a stored model.
type ModelInfo struct {
	ID        int64
	Name      string
	Source    string
	Charset   string
	Total     uint64
	CreatedAt time.Time
}
