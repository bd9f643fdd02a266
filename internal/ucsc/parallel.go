package ucsc

import (
	"fmt"
	"sync"

	"github.com/methview/methview/internal/genome"
)

// TrackSet bundles the annotation tracks of one region fetch.
type TrackSet struct {
	Genes     []*GeneModel
	Islands   []*CpGIsland
	SNPs      []*SNP
	CytoBands []*CytoBand
}

// fetchItem is one track fetch job.
type fetchItem struct {
	seq   int
	name  string
	fetch func() (any, error)
}

// fetchResult holds the output of a single track fetch.
type fetchResult struct {
	seq   int
	name  string
	value any
	err   error
}

// FetchAll fetches the gene-model, CpG-island, SNP, and cytoband tracks for
// a region using a small worker pool. The first fetch error is returned;
// there is no retry. snpTrack may be empty for the default table.
func (s *Session) FetchAll(r genome.Region, symbol, snpTrack string, workers int) (*TrackSet, error) {
	jobs := []fetchItem{
		{seq: 0, name: "genes", fetch: func() (any, error) { return s.FetchGenes(r, symbol) }},
		{seq: 1, name: "islands", fetch: func() (any, error) { return s.FetchIslands(r) }},
		{seq: 2, name: "snps", fetch: func() (any, error) { return s.FetchSNPs(r, snpTrack) }},
		{seq: 3, name: "cytobands", fetch: func() (any, error) { return s.FetchCytoBands(r.Chrom) }},
	}

	if workers <= 0 || workers > len(jobs) {
		workers = len(jobs)
	}

	items := make(chan fetchItem, len(jobs))
	for _, job := range jobs {
		items <- job
	}
	close(items)

	results := make(chan fetchResult, len(jobs))

	var wg sync.WaitGroup
	wg.Add(workers)
	for range workers {
		go func() {
			defer wg.Done()
			for item := range items {
				value, err := item.fetch()
				results <- fetchResult{seq: item.seq, name: item.name, value: value, err: err}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	set := &TrackSet{}
	var firstErr error
	for res := range results {
		if res.err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("fetch %s track: %w", res.name, res.err)
			}
			continue
		}
		switch res.seq {
		case 0:
			set.Genes = res.value.([]*GeneModel)
		case 1:
			set.Islands = res.value.([]*CpGIsland)
		case 2:
			set.SNPs = res.value.([]*SNP)
		case 3:
			set.CytoBands = res.value.([]*CytoBand)
		}
	}

	if firstErr != nil {
		return nil, firstErr
	}
	return set, nil
}

// Spans returns the window-derivation spans of the fetched gene models.
func (ts *TrackSet) Spans() []genome.GeneSpan {
	spans := make([]genome.GeneSpan, len(ts.Genes))
	for i, g := range ts.Genes {
		spans[i] = g.Span()
	}
	return spans
}
