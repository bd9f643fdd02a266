package ucsc

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/methview/methview/internal/genome"
)

// FetchGenes returns the refGene transcripts intersecting the region.
// If symbol is non-empty, only transcripts whose gene symbol contains it
// (case-insensitive) are returned.
func (s *Session) FetchGenes(r genome.Region, symbol string) ([]*GeneModel, error) {
	items, err := s.getTrack(TrackGenes, genome.UCSCChrom(r.Chrom), r.Start, r.End)
	if err != nil {
		return nil, fmt.Errorf("fetch gene models: %w", err)
	}

	q := strings.ToUpper(symbol)
	var genes []*GeneModel
	for _, item := range items {
		var raw restGeneModel
		if err := json.Unmarshal(item, &raw); err != nil {
			return nil, fmt.Errorf("decode gene model: %w", err)
		}
		g := raw.toGeneModel()
		if g == nil {
			continue
		}
		if q != "" && !strings.Contains(strings.ToUpper(g.Symbol), q) {
			continue
		}
		genes = append(genes, g)
	}
	return genes, nil
}

// FetchIslands returns the CpG islands intersecting the region.
func (s *Session) FetchIslands(r genome.Region) ([]*CpGIsland, error) {
	items, err := s.getTrack(TrackIslands, genome.UCSCChrom(r.Chrom), r.Start, r.End)
	if err != nil {
		return nil, fmt.Errorf("fetch CpG islands: %w", err)
	}

	islands := make([]*CpGIsland, 0, len(items))
	for _, item := range items {
		var raw restCpGIsland
		if err := json.Unmarshal(item, &raw); err != nil {
			return nil, fmt.Errorf("decode CpG island: %w", err)
		}
		islands = append(islands, raw.toCpGIsland())
	}
	return islands, nil
}

// FetchSNPs returns the common SNPs from the given track intersecting the
// region. Track is e.g. "snp151Common"; an empty track uses the default.
func (s *Session) FetchSNPs(r genome.Region, track string) ([]*SNP, error) {
	if track == "" {
		track = TrackSNPs
	}
	items, err := s.getTrack(track, genome.UCSCChrom(r.Chrom), r.Start, r.End)
	if err != nil {
		return nil, fmt.Errorf("fetch SNPs: %w", err)
	}

	snps := make([]*SNP, 0, len(items))
	for _, item := range items {
		var raw restSNP
		if err := json.Unmarshal(item, &raw); err != nil {
			return nil, fmt.Errorf("decode SNP: %w", err)
		}
		snps = append(snps, raw.toSNP())
	}
	return snps, nil
}

// FetchCytoBands returns the ideogram bands for the region's chromosome.
// The whole chromosome is fetched so the ideogram shows the full context.
func (s *Session) FetchCytoBands(chrom string) ([]*CytoBand, error) {
	items, err := s.getTrack(TrackCytoBand, genome.UCSCChrom(chrom), 0, 0)
	if err != nil {
		return nil, fmt.Errorf("fetch cytobands: %w", err)
	}

	bands := make([]*CytoBand, 0, len(items))
	for _, item := range items {
		var raw restCytoBand
		if err := json.Unmarshal(item, &raw); err != nil {
			return nil, fmt.Errorf("decode cytoband: %w", err)
		}
		bands = append(bands, raw.toCytoBand())
	}
	return bands, nil
}
