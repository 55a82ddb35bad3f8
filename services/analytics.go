package services

import "drug-graph/models"

// JournalRanking ist die Anzahl der Kanten, die auf ein Journal verweisen.
type JournalRanking struct {
	Journal string `json:"journal"`
	Count   int    `json:"count"`
}

// TopJournal gibt das Journal mit den meisten Wirkstoff-Erwähnungen zurück.
// Gezählt werden Kanten; bei Gleichstand gewinnt das lexikalisch kleinere Journal.
func TopJournal(edges []models.GraphEdge) (JournalRanking, bool) {
	counts := make(map[string]int)
	for _, e := range edges {
		counts[e.Journal]++
	}

	var best JournalRanking
	found := false
	for journal, n := range counts {
		if !found || n > best.Count || (n == best.Count && journal < best.Journal) {
			best = JournalRanking{Journal: journal, Count: n}
			found = true
		}
	}
	return best, found
}
