// Package rank scores a small, fixed document set against a query with
// Okapi BM25.
package rank

import (
	"math"
	"regexp"
	"sort"
	"strings"
	"sync"
)

const (
	DefaultK1   = 1.5
	DefaultB    = 0.75
	DefaultTopK = 7
	// DefaultMaxContentLength bounds document content, in bytes, for indexing.
	DefaultMaxContentLength = 20000
)

// Document is a rankable unit of text.
type Document struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Result is a document with a strictly positive score.
type Result struct {
	Document Document
	Score    float64
}

// Params are the BM25 hyperparameters.
type Params struct {
	K1 float64
	B  float64
}

// Option customizes an Engine at construction.
type Option func(*Engine)

// WithParams overrides k1 and b.
func WithParams(k1, b float64) Option {
	return func(e *Engine) { e.params = Params{K1: k1, B: b} }
}

// Engine is an immutable BM25 index over the documents passed to New.
// Documents are addressed by position so repeated titles stay distinct.
type Engine struct {
	params Params
	docs   []Document
	docLen []int
	tf     []map[string]int
	df     map[string]int
	avgLen float64

	mu       sync.Mutex
	idfCache map[string]float64
}

var nonWord = regexp.MustCompile(`[^\p{L}\p{N}_]+`)

// Tokenize lowercases s, treats every non-word rune as a separator and
// returns the remaining tokens.
func Tokenize(s string) []string {
	return strings.Fields(nonWord.ReplaceAllString(strings.ToLower(s), " "))
}

// New indexes docs. The index is never modified afterwards.
func New(docs []Document, opts ...Option) *Engine {
	e := &Engine{
		params:   Params{K1: DefaultK1, B: DefaultB},
		docs:     docs,
		docLen:   make([]int, len(docs)),
		tf:       make([]map[string]int, len(docs)),
		df:       make(map[string]int),
		idfCache: make(map[string]float64),
	}
	for _, o := range opts {
		o(e)
	}
	total := 0
	for i, d := range docs {
		tokens := Tokenize(d.Content)
		counts := make(map[string]int, len(tokens))
		for _, t := range tokens {
			counts[t]++
		}
		for t := range counts {
			e.df[t]++
		}
		e.docLen[i] = len(tokens)
		e.tf[i] = counts
		total += len(tokens)
	}
	if len(docs) > 0 {
		e.avgLen = float64(total) / float64(len(docs))
	}
	return e
}

// Len reports the number of indexed documents.
func (e *Engine) Len() int { return len(e.docs) }

func (e *Engine) idf(term string) float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	if v, ok := e.idfCache[term]; ok {
		return v
	}
	n := float64(len(e.docs))
	df := float64(e.df[term])
	v := math.Log((n-df+0.5)/(df+0.5) + 1)
	e.idfCache[term] = v
	return v
}

// score computes the BM25 score of document i for the tokenized query.
// Repeated query terms contribute once per occurrence.
func (e *Engine) score(i int, terms []string) float64 {
	avg := e.avgLen
	if avg == 0 {
		avg = 1
	}
	k1, b := e.params.K1, e.params.B
	norm := 1 - b + b*(float64(e.docLen[i])/avg)
	var s float64
	for _, t := range terms {
		tf := float64(e.tf[i][t])
		if tf == 0 {
			continue
		}
		s += e.idf(t) * tf * (k1 + 1) / (tf + k1*norm)
	}
	return s
}

// Search ranks the indexed documents against query and returns at most topK
// results with a score above zero, best first. Equal scores keep index order.
// A non-positive topK means DefaultTopK.
func (e *Engine) Search(query string, topK int) []Result {
	if len(e.docs) == 0 {
		return nil
	}
	if topK <= 0 {
		topK = DefaultTopK
	}
	terms := Tokenize(query)
	if len(terms) == 0 {
		return nil
	}
	out := make([]Result, 0, len(e.docs))
	for i, d := range e.docs {
		if s := e.score(i, terms); s > 0 {
			out = append(out, Result{Document: d, Score: s})
		}
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].Score > out[b].Score })
	if len(out) > topK {
		out = out[:topK]
	}
	return out
}

// Filter drops documents whose content is longer than maxLen bytes. A
// non-positive maxLen means DefaultMaxContentLength.
func Filter(docs []Document, maxLen int) []Document {
	if maxLen <= 0 {
		maxLen = DefaultMaxContentLength
	}
	out := make([]Document, 0, len(docs))
	for _, d := range docs {
		if len(d.Content) <= maxLen {
			out = append(out, d)
		}
	}
	return out
}
