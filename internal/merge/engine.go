// Package merge reconciles provider records that describe the same title
// into a single canonical entity with source provenance.
package merge

import (
	"sort"
	"strings"

	"github.com/mangamux/mangamux/internal/manga"
	"github.com/mangamux/mangamux/internal/similarity"
)

// DefaultThreshold is the minimum similarity score for two records to be
// considered the same title.
const DefaultThreshold = 0.85

// Group is one provider's contribution to a merge batch.
type Group struct {
	Provider string
	Priority int
	Records  []manga.ProviderRecord
}

// Engine deduplicates merge batches. It keeps no state across calls;
// identical inputs always produce identical outputs.
type Engine struct {
	threshold float64
}

// NewEngine creates an Engine with the default 0.85 threshold.
func NewEngine() *Engine {
	return &Engine{threshold: DefaultThreshold}
}

// NewEngineWithThreshold creates an Engine with a custom threshold.
func NewEngineWithThreshold(threshold float64) *Engine {
	return &Engine{threshold: threshold}
}

// Merge folds the groups into a deduplicated canonical list. Groups are
// processed in order, so the first record seen for a cluster seeds it;
// this greedy single-pass matching is a documented heuristic, not an
// optimal clustering.
func (e *Engine) Merge(groups []Group) []manga.Canonical {
	var out []manga.Canonical

	for _, group := range groups {
		for _, rec := range group.Records {
			best := -1
			bestScore := 0.0
			for i := range out {
				score := e.Score(rec, out[i])
				if score >= e.threshold && score > bestScore {
					best = i
					bestScore = score
				}
			}
			if best >= 0 {
				mergeInto(&out[best], rec, group.Provider, group.Priority)
			} else {
				out = append(out, newCanonical(rec, group.Provider, group.Priority))
			}
		}
	}
	return out
}

// Score computes the similarity between a candidate record and an
// accumulated canonical entry: title similarity, optionally boosted by
// author similarity and a release-year bonus, clamped to 1.0.
func (e *Engine) Score(rec manga.ProviderRecord, c manga.Canonical) float64 {
	score := similarity.JaroWinkler(similarity.Normalize(rec.Title), similarity.Normalize(c.Title))

	if len(rec.Authors) > 0 && len(c.Authors) > 0 {
		authorSim := similarity.JaroWinkler(
			similarity.Normalize(strings.Join(rec.Authors, " ")),
			similarity.Normalize(strings.Join(c.Authors, " ")),
		)
		if boosted := 0.8 * authorSim; boosted > score {
			score = boosted
		}
	}

	if rec.Year > 0 && c.Year > 0 {
		diff := rec.Year - c.Year
		if diff < 0 {
			diff = -diff
		}
		if diff <= 1 {
			score += 0.1
		}
	}

	if score > 1 {
		score = 1
	}
	return score
}

func newCanonical(rec manga.ProviderRecord, provider string, priority int) manga.Canonical {
	return manga.Canonical{
		ID:         manga.GlobalID{Provider: provider, Raw: rec.ID}.String(),
		Provider:   provider,
		ProviderID: rec.ID,
		Title:      rec.Title,
		AltTitles:  rec.AltTitles,
		Cover:      rec.Cover,
		Status:     rec.Status,
		Score:      rec.Score,
		Synopsis:   rec.Synopsis,
		Tags:       rec.Tags,
		Authors:    rec.Authors,
		Year:       rec.Year,
		Chapters:   rec.Chapters,
		Volumes:    rec.Volumes,
		Sources: []manga.Source{
			{Provider: provider, ProviderID: rec.ID, Priority: priority},
		},
	}
}

// mergeInto appends the new source and, when it outranks the current
// representative, promotes the record's non-empty fields. The title is
// never demoted once merged, so repeated batches cannot flap it.
func mergeInto(c *manga.Canonical, rec manga.ProviderRecord, provider string, priority int) {
	c.Sources = append(c.Sources, manga.Source{
		Provider:   provider,
		ProviderID: rec.ID,
		Priority:   priority,
	})
	sort.SliceStable(c.Sources, func(i, j int) bool {
		return c.Sources[i].Priority > c.Sources[j].Priority
	})

	representative := c.Sources[0]
	if representative.Provider != provider || representative.ProviderID != rec.ID {
		return
	}

	// Promotion: the new source is now the highest-priority one.
	c.Provider = provider
	c.ProviderID = rec.ID
	c.ID = manga.GlobalID{Provider: provider, Raw: rec.ID}.String()
	if rec.Cover != "" {
		c.Cover = rec.Cover
	}
	if rec.Synopsis != "" {
		c.Synopsis = rec.Synopsis
	}
	if rec.Score > 0 {
		c.Score = rec.Score
	}
	if rec.Chapters > 0 {
		c.Chapters = rec.Chapters
	}
	if rec.Volumes > 0 {
		c.Volumes = rec.Volumes
	}
}
