// Package router maps a classified intent onto the knowledge collections to query.
package router

import (
	"context"
	"fmt"

	"mindcare-rag-be/pkg/rag/intent"
)

// DefaultCollection is queried for intents missing from the table.
const DefaultCollection = "nimh_articles"

// Collection names of the knowledge base.
const (
	CollectionCBTBible     = "cbt_bible"
	CollectionMindOverMood = "mind_over_mood"
	CollectionDBTManual    = "dbt_manual"
	CollectionACTSimple    = "act_simple"
	CollectionNIMHArticles = "nimh_articles"
	CollectionCounseling   = "counseling"
)

// Table maps an intent to an ordered list of collection names.
type Table map[intent.Intent][]string

func DefaultTable() Table {
	return Table{
		intent.Crisis:    {CollectionDBTManual, CollectionNIMHArticles},
		intent.Factual:   {CollectionNIMHArticles, CollectionCBTBible},
		intent.Exercise:  {CollectionMindOverMood, CollectionDBTManual, CollectionACTSimple},
		intent.Stuck:     {CollectionACTSimple, CollectionCBTBible},
		intent.Cognitive: {CollectionCBTBible, CollectionMindOverMood},
		intent.General:   {CollectionNIMHArticles, CollectionCBTBible, CollectionACTSimple},
	}
}

// Validate checks that every intent maps to at least one collection.
func (t Table) Validate() error {
	for _, in := range intent.All() {
		if len(t[in]) == 0 {
			return fmt.Errorf("routing table: intent %q has no collections", in)
		}
	}
	return nil
}

// Collections returns a copy of the collections for in, or the default
// collection when in is unmapped.
func (t Table) Collections(in intent.Intent) []string {
	cols, ok := t[in]
	if !ok || len(cols) == 0 {
		return []string{DefaultCollection}
	}
	out := make([]string, len(cols))
	copy(out, cols)
	return out
}

// Names returns every distinct collection referenced by the table, in intent order.
func (t Table) Names() []string {
	seen := make(map[string]bool)
	var names []string
	for _, in := range intent.All() {
		for _, c := range t.Collections(in) {
			if !seen[c] {
				seen[c] = true
				names = append(names, c)
			}
		}
	}
	return names
}

type Router struct {
	classifier intent.Classifier
	table      Table
}

func NewRouter(classifier intent.Classifier, table Table) *Router {
	if table == nil {
		table = DefaultTable()
	}
	return &Router{classifier: classifier, table: table}
}

// Route classifies text and returns the intent with its collections.
func (r *Router) Route(ctx context.Context, text string) (intent.Intent, []string) {
	res := r.RouteDetailed(ctx, text)
	return res.Intent, r.table.Collections(res.Intent)
}

// RouteDetailed exposes the full classification, including whether a
// delegated classifier fell back to keywords.
func (r *Router) RouteDetailed(ctx context.Context, text string) intent.Classification {
	return r.classifier.Classify(ctx, text)
}

func (r *Router) Table() Table {
	return r.table
}
