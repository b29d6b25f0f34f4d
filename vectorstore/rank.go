package vectorstore

import "slices"

// Rank sorts hits by score descending and applies the request's
// threshold and result cap. Backends scan their documents, score them,
// and hand the candidates here so every store ranks identically.
func Rank(req SearchRequest, hits []ScoredDocument) []ScoredDocument {
	kept := hits[:0]
	for _, hit := range hits {
		if hit.Score >= req.MinScore {
			kept = append(kept, hit)
		}
	}

	slices.SortFunc(kept, func(a, b ScoredDocument) int {
		if a.Score > b.Score {
			return -1
		}
		if a.Score < b.Score {
			return 1
		}
		return 0
	})

	if limit := req.Limit(); len(kept) > limit {
		kept = kept[:limit]
	}
	return kept
}
