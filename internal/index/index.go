// Package index provides an in-memory full-text index over catalog entries
// with per-field boosts, prefix matching and bounded fuzzy matching.
package index

import (
	"math"
	"sort"
	"strings"

	"github.com/randalmurphal/service-finder/internal/catalog"
	"github.com/randalmurphal/service-finder/internal/textutil"
)

// Searchable field names.
const (
	FieldName    = "name"
	FieldTags    = "tags"
	FieldSummary = "summary"
	FieldOrg     = "org"
)

// Fields lists the indexed fields in a fixed order.
var Fields = []string{FieldName, FieldTags, FieldSummary, FieldOrg}

// BM25+ parameters and derived-term weights.
const (
	bm25K = 1.2
	bm25B = 0.7
	bm25D = 0.5

	prefixWeight = 0.375
	fuzzyWeight  = 0.45
	maxFuzzy     = 6
)

// Options controls a single search call.
type Options struct {
	// Boost multiplies a field's contribution. Fields not listed weigh 1.
	Boost map[string]float64
	// Prefix lets a query term match longer indexed terms it prefixes.
	Prefix bool
	// Fuzzy is the edit-distance tolerance as a fraction of the query
	// term length (0.2 allows 1 edit per 5 characters). Values >= 1 are
	// an absolute distance. 0 disables fuzzy matching.
	Fuzzy float64
}

// Hit is one matching document.
type Hit struct {
	ID    string
	Score float64
}

type posting struct {
	doc int
	tf  int
}

type fieldIndex struct {
	postings map[string][]posting
	lengths  []int
	avgLen   float64
}

// Index is immutable after New and safe for concurrent searches.
type Index struct {
	ids    []string
	fields map[string]*fieldIndex
	terms  []string // sorted distinct terms across all fields
}

// New indexes entries in catalog order.
func New(entries []catalog.Entry) *Index {
	ix := &Index{
		ids:    make([]string, len(entries)),
		fields: make(map[string]*fieldIndex, len(Fields)),
	}
	for _, f := range Fields {
		ix.fields[f] = &fieldIndex{
			postings: make(map[string][]posting),
			lengths:  make([]int, len(entries)),
		}
	}

	vocab := make(map[string]struct{})
	for doc, e := range entries {
		ix.ids[doc] = e.ID
		for _, f := range Fields {
			tokens := textutil.Tokenize(fieldText(&e, f))
			fi := ix.fields[f]
			fi.lengths[doc] = len(tokens)

			tf := make(map[string]int, len(tokens))
			var order []string
			for _, t := range tokens {
				if tf[t] == 0 {
					order = append(order, t)
				}
				tf[t]++
				vocab[t] = struct{}{}
			}
			for _, t := range order {
				fi.postings[t] = append(fi.postings[t], posting{doc: doc, tf: tf[t]})
			}
		}
	}

	for _, fi := range ix.fields {
		total := 0
		for _, l := range fi.lengths {
			total += l
		}
		if len(fi.lengths) > 0 {
			fi.avgLen = float64(total) / float64(len(fi.lengths))
		}
		if fi.avgLen == 0 {
			fi.avgLen = 1
		}
	}

	ix.terms = make([]string, 0, len(vocab))
	for t := range vocab {
		ix.terms = append(ix.terms, t)
	}
	sort.Strings(ix.terms)

	return ix
}

func fieldText(e *catalog.Entry, field string) string {
	switch field {
	case FieldName:
		return e.Name
	case FieldTags:
		return strings.Join(e.Tags, " ")
	case FieldSummary:
		return e.Summary
	case FieldOrg:
		return e.Org
	}
	return ""
}

// Len returns the number of indexed documents.
func (ix *Index) Len() int {
	return len(ix.ids)
}

// Search scores every document matching at least one query term. Terms are
// combined with OR and their contributions summed. Hits are ordered by
// descending score, ties by index order.
func (ix *Index) Search(query string, opts Options) []Hit {
	qterms := textutil.Tokenize(query)
	if len(qterms) == 0 || len(ix.ids) == 0 {
		return nil
	}

	scores := make(map[int]float64)
	for _, q := range qterms {
		for _, d := range ix.deriveTerms(q, opts) {
			ix.scoreTerm(d.term, d.weight, opts.Boost, scores)
		}
	}

	hits := make([]Hit, 0, len(scores))
	docs := make([]int, 0, len(scores))
	for doc, s := range scores {
		if s > 0 {
			docs = append(docs, doc)
		}
	}
	sort.Slice(docs, func(i, j int) bool {
		si, sj := scores[docs[i]], scores[docs[j]]
		if si != sj {
			return si > sj
		}
		return docs[i] < docs[j]
	})
	for _, doc := range docs {
		hits = append(hits, Hit{ID: ix.ids[doc], Score: scores[doc]})
	}
	return hits
}

type derivedTerm struct {
	term   string
	weight float64
}

// deriveTerms returns the indexed terms matched by q with their match
// weight, sorted by term so scores are summed in a fixed order.
// Exact matches weigh 1; prefix and fuzzy matches are discounted by their
// distance from q. A term matched several ways keeps its best weight.
func (ix *Index) deriveTerms(q string, opts Options) []derivedTerm {
	derived := make(map[string]float64)
	qlen := float64(len(q))

	put := func(term string, w float64) {
		if w > derived[term] {
			derived[term] = w
		}
	}

	start := sort.SearchStrings(ix.terms, q)
	if start < len(ix.terms) && ix.terms[start] == q {
		put(q, 1)
	}

	if opts.Prefix {
		for i := start; i < len(ix.terms) && strings.HasPrefix(ix.terms[i], q); i++ {
			term := ix.terms[i]
			if term == q {
				continue
			}
			distance := float64(len(term) - len(q))
			put(term, prefixWeight*qlen/(qlen+0.3*distance))
		}
	}

	maxDist := fuzzyDistance(len(q), opts.Fuzzy)
	if maxDist > 0 {
		for _, term := range ix.terms {
			if abs(len(term)-len(q)) > maxDist {
				continue
			}
			d := textutil.Levenshtein(q, term)
			if d == 0 || d > maxDist {
				continue
			}
			put(term, fuzzyWeight*qlen/(qlen+float64(d)))
		}
	}

	out := make([]derivedTerm, 0, len(derived))
	for term, w := range derived {
		out = append(out, derivedTerm{term: term, weight: w})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].term < out[j].term })
	return out
}

func (ix *Index) scoreTerm(term string, weight float64, boost map[string]float64, scores map[int]float64) {
	n := float64(len(ix.ids))
	for _, field := range Fields {
		fi := ix.fields[field]
		postings := fi.postings[term]
		if len(postings) == 0 {
			continue
		}

		b := 1.0
		if v, ok := boost[field]; ok {
			b = v
		}
		if b <= 0 {
			continue
		}

		df := float64(len(postings))
		idf := math.Log(1 + (n-df+0.5)/(df+0.5))
		for _, p := range postings {
			tf := float64(p.tf)
			norm := 1 - bm25B + bm25B*float64(fi.lengths[p.doc])/fi.avgLen
			tfScore := bm25D + tf*(bm25K+1)/(tf+bm25K*norm)
			scores[p.doc] += weight * b * idf * tfScore
		}
	}
}

func fuzzyDistance(termLen int, fuzzy float64) int {
	if fuzzy <= 0 {
		return 0
	}
	if fuzzy >= 1 {
		return int(fuzzy)
	}
	return min(maxFuzzy, int(math.Round(float64(termLen)*fuzzy)))
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
