// Package search ranks a file's symbols against a free-text query. It backs
// the "did you mean" suggestions for unresolved edit targets.
package search

import (
	"math"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/morozRed/cortexact/internal/parser"
)

var tokenPattern = regexp.MustCompile(`[a-z0-9]+`)

// BM25 parameters.
const (
	k1 = 1.2
	b  = 0.75
)

type document struct {
	key    string
	name   string
	length int
	terms  map[string]int
}

// Index is an in-memory BM25 index over one file's symbols.
type Index struct {
	documents []document
	docFreq   map[string]int
	avgLength float64
}

type Result struct {
	Key   string
	Score float64
}

func Build(symbols []parser.Symbol) *Index {
	index := &Index{docFreq: make(map[string]int)}
	total := 0
	seen := make(map[string]bool, len(symbols))

	for _, sym := range symbols {
		key := sym.Key()
		if seen[key] {
			continue
		}
		seen[key] = true

		terms := make(map[string]int)
		addWeighted(terms, sym.Name, 4)
		addWeighted(terms, sym.Kind.String(), 1)
		length := 0
		for _, count := range terms {
			length += count
		}
		if length == 0 {
			continue
		}

		index.documents = append(index.documents, document{
			key:    key,
			name:   sym.Name,
			length: length,
			terms:  terms,
		})
		total += length
		for term := range terms {
			index.docFreq[term]++
		}
	}

	if len(index.documents) > 0 {
		index.avgLength = float64(total) / float64(len(index.documents))
	}
	return index
}

// Search returns up to limit symbols ranked by BM25. When no term matches it
// falls back to edit distance on the bare names, so typos still find candidates.
func (index *Index) Search(query string, limit int) []Result {
	if index == nil || len(index.documents) == 0 {
		return nil
	}
	if limit <= 0 {
		limit = 10
	}

	queryTerms := uniqueTerms(tokenize(stripKind(query)))
	if len(queryTerms) == 0 {
		return nil
	}

	n := float64(len(index.documents))
	avgLen := index.avgLength
	if avgLen <= 0 {
		avgLen = 1
	}

	results := make([]Result, 0)
	for _, doc := range index.documents {
		score := 0.0
		docLen := float64(doc.length)
		for _, term := range queryTerms {
			tf := float64(doc.terms[term])
			df := float64(index.docFreq[term])
			if tf <= 0 || df <= 0 {
				continue
			}
			idf := math.Log(1.0 + ((n - df + 0.5) / (df + 0.5)))
			score += idf * (tf * (k1 + 1.0)) / (tf + k1*(1.0-b+b*(docLen/avgLen)))
		}
		if score > 0 {
			results = append(results, Result{Key: doc.key, Score: score})
		}
	}

	if len(results) == 0 {
		results = index.fuzzyNameFallback(query)
	}
	sortResults(results)
	if len(results) > limit {
		results = results[:limit]
	}
	return results
}

// Suggest returns the keys of the best matches for query.
func Suggest(symbols []parser.Symbol, query string, limit int) []string {
	results := Build(symbols).Search(query, limit)
	keys := make([]string, 0, len(results))
	for _, r := range results {
		keys = append(keys, r.Key)
	}
	return keys
}

func (index *Index) fuzzyNameFallback(query string) []Result {
	needle := strings.Join(tokenize(stripKind(query)), "")
	if needle == "" {
		return nil
	}

	results := make([]Result, 0)
	for _, doc := range index.documents {
		candidate := strings.Join(tokenize(doc.name), "")
		if candidate == "" {
			continue
		}
		distance := levenshteinDistance(needle, candidate)
		threshold := max(len(candidate)/3, 2)
		if distance > threshold {
			continue
		}
		results = append(results, Result{Key: doc.key, Score: 1.0 / float64(1+distance)})
	}
	return results
}

func sortResults(results []Result) {
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Key < results[j].Key
	})
}

func addWeighted(terms map[string]int, value string, weight int) {
	for _, token := range tokenize(value) {
		terms[token] += weight
	}
}

// stripKind drops a "kind:" prefix so qualified targets search by name.
func stripKind(query string) string {
	if _, name, ok := strings.Cut(query, ":"); ok {
		return name
	}
	return query
}

// tokenize splits identifiers on case changes, digits and punctuation:
// "parseHTTPRequest_v2" becomes parse, http, request, v2.
func tokenize(value string) []string {
	var b strings.Builder
	runes := []rune(value)
	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) {
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				b.WriteByte(' ')
			}
		}
		b.WriteRune(r)
	}
	return tokenPattern.FindAllString(strings.ToLower(b.String()), -1)
}

func uniqueTerms(terms []string) []string {
	seen := make(map[string]bool, len(terms))
	out := make([]string, 0, len(terms))
	for _, term := range terms {
		if seen[term] {
			continue
		}
		seen[term] = true
		out = append(out, term)
	}
	return out
}

func levenshteinDistance(a, b string) int {
	if a == b {
		return 0
	}
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	for j := 0; j <= len(b); j++ {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		current := make([]int, len(b)+1)
		current[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 0
			if a[i-1] != b[j-1] {
				cost = 1
			}
			current[j] = min(current[j-1]+1, prev[j]+1, prev[j-1]+cost)
		}
		prev = current
	}

	return prev[len(b)]
}
