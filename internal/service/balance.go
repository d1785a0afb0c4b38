package service

import "docqa/internal/vecstore"

const unknownSource = "Unknown File"

type sourceQueue struct {
	source string
	queue  []string
}

// balanceBySource interleaves passage contents across source files so
// no single file dominates the assembled context. Sources keep their
// first-seen order and each queue keeps relevance order, so the output
// is deterministic for a given input. perSourceCap <= 0 means no
// per-source limit.
func balanceBySource(passages []vecstore.Passage, perSourceCap, globalCap int) []string {
	if len(passages) == 0 || globalCap <= 0 {
		return nil
	}
	var order []*sourceQueue
	index := make(map[string]*sourceQueue)
	for _, p := range passages {
		source := p.Source
		if source == "" {
			source = unknownSource
		}
		q := index[source]
		if q == nil {
			q = &sourceQueue{source: source}
			index[source] = q
			order = append(order, q)
		}
		if perSourceCap > 0 && len(q.queue) >= perSourceCap {
			continue
		}
		q.queue = append(q.queue, p.Content)
	}
	var out []string
	for added := true; added && len(out) < globalCap; {
		added = false
		for _, q := range order {
			if len(q.queue) == 0 {
				continue
			}
			out = append(out, q.queue[0])
			q.queue = q.queue[1:]
			added = true
			if len(out) >= globalCap {
				break
			}
		}
	}
	return out
}

// dedupSources keeps the first occurrence of each source name,
// preserving retrieval order.
func dedupSources(passages []vecstore.Passage) []string {
	seen := make(map[string]struct{}, len(passages))
	out := make([]string, 0, len(passages))
	for _, p := range passages {
		source := p.Source
		if source == "" {
			source = unknownSource
		}
		if _, ok := seen[source]; ok {
			continue
		}
		seen[source] = struct{}{}
		out = append(out, source)
	}
	return out
}
