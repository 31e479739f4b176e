// internal/game/insights.go
//
// Post-game highlight generation. Runs once, when the room transitions to
// ended, over the whole round's signull history. At most two insights are
// published, picked by priority:
//   1. dynamic_duo       : a guesser pair feeding each other's signulls
//   2. og_interceptor    : the setter blocked ≥70% of ≥3 signulls
//   3. signull_machine   : one creator authored ≥50% of ≥2 resolved
//   4. knows_it_all      : a guesser with ≥3 attempts and ≥70% accuracy
//   5. longest_word_vibe : fallback: longest resolved reference word
//
// Every dynamic_duo pair tied for the maximum combined count is reported,
// not just the first found.

package game

import (
	"fmt"
	"sort"
)

type insightCandidate struct {
	priority int
	insight  Insight
}

// generateInsights computes the top two highlights for a finished game.
func generateInsights(r *Room) []Insight {
	var cands []insightCandidate
	cands = append(cands, dynamicDuos(r)...)
	if c, ok := ogInterceptor(r); ok {
		cands = append(cands, c)
	}
	if c, ok := signullMachine(r); ok {
		cands = append(cands, c)
	}
	if c, ok := knowsItAll(r); ok {
		cands = append(cands, c)
	}
	if len(cands) < 2 {
		if c, ok := longestWordVibe(r); ok {
			cands = append(cands, c)
		}
	}

	sort.SliceStable(cands, func(i, j int) bool { return cands[i].priority < cands[j].priority })
	if len(cands) > 2 {
		cands = cands[:2]
	}
	out := make([]Insight, 0, len(cands))
	for _, c := range cands {
		c.insight.ID = NewInsightID()
		out = append(out, c.insight)
	}
	return out
}

// entriesInOrder walks the ledger deterministically (stage, then creation).
func (r *Room) entriesInOrder() []*SignullEntry {
	ids := r.Signulls.Flatten()
	out := make([]*SignullEntry, 0, len(ids))
	for _, id := range ids {
		if e := r.Signulls.Entry(id); e != nil {
			out = append(out, e)
		}
	}
	return out
}

func (r *Room) playerName(id string) string {
	if p, ok := r.Players[id]; ok {
		return p.Name
	}
	return id
}

// dynamicDuos finds unordered guesser pairs where each member has at least
// two correct connects on the other's signulls; all pairs tied for the
// maximum combined count are reported.
func dynamicDuos(r *Room) []insightCandidate {
	// correct[connector][creator] = correct connects on that creator's signulls
	correct := map[string]map[string]int{}
	for _, e := range r.entriesInOrder() {
		for _, pid := range r.correctGuesserIDs(e) {
			if correct[pid] == nil {
				correct[pid] = map[string]int{}
			}
			correct[pid][e.CreatorID]++
		}
	}

	type pair struct {
		a, b     string
		combined int
	}
	var pairs []pair
	seen := map[string]bool{}
	for a, m := range correct {
		for b, ab := range m {
			ba := correct[b][a]
			if ab < 2 || ba < 2 {
				continue
			}
			lo, hi := a, b
			if lo > hi {
				lo, hi = hi, lo
			}
			key := lo + "|" + hi
			if seen[key] {
				continue
			}
			seen[key] = true
			pairs = append(pairs, pair{a: lo, b: hi, combined: ab + ba})
		}
	}
	if len(pairs) == 0 {
		return nil
	}

	max := 0
	for _, p := range pairs {
		if p.combined > max {
			max = p.combined
		}
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].a != pairs[j].a {
			return pairs[i].a < pairs[j].a
		}
		return pairs[i].b < pairs[j].b
	})

	var out []insightCandidate
	for _, p := range pairs {
		if p.combined != max {
			continue
		}
		out = append(out, insightCandidate{
			priority: 1,
			insight: Insight{
				Type:      InsightDynamicDuo,
				PlayerIDs: []string{p.a, p.b},
				Title:     "Dynamic duo",
				Subtitle: fmt.Sprintf("%s and %s kept connecting to each other's signulls",
					r.playerName(p.a), r.playerName(p.b)),
				Metadata: map[string]int{"combinedConnects": p.combined},
			},
		})
	}
	return out
}

// ogInterceptor fires when the setter blocked at least 70% of at least
// three signulls.
func ogInterceptor(r *Room) (insightCandidate, bool) {
	entries := r.entriesInOrder()
	if len(entries) < 3 {
		return insightCandidate{}, false
	}
	blocked := 0
	for _, e := range entries {
		if e.Status == StatusBlocked {
			blocked++
		}
	}
	if blocked*10 < len(entries)*7 {
		return insightCandidate{}, false
	}
	return insightCandidate{
		priority: 2,
		insight: Insight{
			Type:      InsightOGInterceptor,
			PlayerIDs: []string{r.SetterID},
			Title:     "OG interceptor",
			Subtitle: fmt.Sprintf("%s shut down %d of %d signulls",
				r.playerName(r.SetterID), blocked, len(entries)),
			Metadata: map[string]int{"blocked": blocked, "total": len(entries)},
		},
	}, true
}

// signullMachine fires when one creator authored at least half of at
// least two resolved signulls.
func signullMachine(r *Room) (insightCandidate, bool) {
	resolved := 0
	byCreator := map[string]int{}
	for _, e := range r.entriesInOrder() {
		if e.Status == StatusResolved {
			resolved++
			byCreator[e.CreatorID]++
		}
	}
	if resolved < 2 {
		return insightCandidate{}, false
	}
	best, bestCount := "", 0
	for _, e := range r.entriesInOrder() { // deterministic creator order
		if n := byCreator[e.CreatorID]; n > bestCount {
			best, bestCount = e.CreatorID, n
		}
	}
	if bestCount*2 < resolved {
		return insightCandidate{}, false
	}
	return insightCandidate{
		priority: 3,
		insight: Insight{
			Type:      InsightMachine,
			PlayerIDs: []string{best},
			Title:     "Signull machine",
			Subtitle: fmt.Sprintf("%s authored %d of %d resolved signulls",
				r.playerName(best), bestCount, resolved),
			Metadata: map[string]int{"resolvedAuthored": bestCount, "resolvedTotal": resolved},
		},
	}, true
}

// knowsItAll fires for the most accurate guesser with at least three
// connect attempts (attempts on their own signulls cannot exist) and at
// least 70% of them correct.
func knowsItAll(r *Room) (insightCandidate, bool) {
	attempts := map[string]int{}
	hits := map[string]int{}
	for _, e := range r.entriesInOrder() {
		for _, c := range e.Connects {
			if c.PlayerID == r.SetterID {
				continue
			}
			attempts[c.PlayerID]++
			if c.Correct {
				hits[c.PlayerID]++
			}
		}
	}
	best, bestHits, bestAttempts := "", 0, 0
	ids := make([]string, 0, len(attempts))
	for id := range attempts {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		a, h := attempts[id], hits[id]
		if a < 3 || h*10 < a*7 {
			continue
		}
		// better accuracy wins; more attempts breaks ties
		if best == "" || h*bestAttempts > bestHits*a || (h*bestAttempts == bestHits*a && a > bestAttempts) {
			best, bestHits, bestAttempts = id, h, a
		}
	}
	if best == "" {
		return insightCandidate{}, false
	}
	return insightCandidate{
		priority: 4,
		insight: Insight{
			Type:      InsightKnowsItAll,
			PlayerIDs: []string{best},
			Title:     "Knows it all",
			Subtitle: fmt.Sprintf("%s nailed %d of %d connects",
				r.playerName(best), bestHits, bestAttempts),
			Metadata: map[string]int{"correct": bestHits, "attempts": bestAttempts},
		},
	}, true
}

// longestWordVibe is the fallback: the resolved signull with the longest
// reference word.
func longestWordVibe(r *Room) (insightCandidate, bool) {
	var best *SignullEntry
	for _, e := range r.entriesInOrder() {
		if e.Status != StatusResolved {
			continue
		}
		if best == nil || len(e.Word) > len(best.Word) {
			best = e
		}
	}
	if best == nil {
		return insightCandidate{}, false
	}
	return insightCandidate{
		priority: 5,
		insight: Insight{
			Type:      InsightLongestWord,
			PlayerIDs: []string{best.CreatorID},
			Title:     "Longest word vibe",
			Subtitle: fmt.Sprintf("%s landed %q, the longest resolved signull",
				r.playerName(best.CreatorID), best.Word),
			Metadata: map[string]int{"wordLength": len(best.Word)},
		},
	}, true
}
