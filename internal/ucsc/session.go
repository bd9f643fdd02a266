// Package ucsc fetches annotation tracks from the UCSC genome browser
// REST service (api.genome.ucsc.edu). Fetch failures propagate to the
// caller; there is no retry or backoff layer.
package ucsc

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// DefaultBaseURL is the public UCSC REST endpoint.
const DefaultBaseURL = "https://api.genome.ucsc.edu"

// Default track tables per concern. SNP track is configurable because
// builds ship different dbSNP versions.
const (
	TrackGenes    = "refGene"
	TrackIslands  = "cpgIslandExt"
	TrackSNPs     = "snp151Common"
	TrackCytoBand = "cytoBandIdeo"
)

// Session is a query handle against one genome build of the UCSC service.
type Session struct {
	baseURL    string
	genome     string
	httpClient *http.Client
}

// NewSession creates a session for a genome build, e.g. "hg19" or "hg38".
func NewSession(genome string) *Session {
	return &Session{
		baseURL: DefaultBaseURL,
		genome:  genome,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// SetBaseURL overrides the service endpoint. Used by tests and mirrors.
func (s *Session) SetBaseURL(u string) {
	s.baseURL = u
}

// Genome returns the session's genome build identifier.
func (s *Session) Genome() string {
	return s.genome
}

// getTrack performs one getData/track request and returns the raw
// track-keyed payload. The service keys the feature list by track name;
// for whole-genome queries the payload is an object keyed by chromosome
// instead of a flat array, and both shapes are accepted here.
func (s *Session) getTrack(track, chrom string, start, end int64) ([]json.RawMessage, error) {
	q := url.Values{}
	q.Set("genome", s.genome)
	q.Set("track", track)
	if chrom != "" {
		q.Set("chrom", chrom)
	}
	if end > 0 {
		// UCSC uses 0-based half-open query coordinates.
		q.Set("start", fmt.Sprintf("%d", start-1))
		q.Set("end", fmt.Sprintf("%d", end))
	}

	reqURL := fmt.Sprintf("%s/getData/track?%s", s.baseURL, q.Encode())

	resp, err := s.httpClient.Get(reqURL)
	if err != nil {
		return nil, fmt.Errorf("UCSC request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("UCSC error %d for track %s: %s", resp.StatusCode, track, string(body))
	}

	var envelope map[string]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("decode UCSC response: %w", err)
	}

	payload, ok := envelope[track]
	if !ok {
		return nil, fmt.Errorf("UCSC response missing track payload %q", track)
	}

	return splitPayload(payload)
}

// splitPayload flattens the track payload into individual feature objects,
// accepting both the flat-array and the chromosome-keyed object shapes.
func splitPayload(payload json.RawMessage) ([]json.RawMessage, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(payload, &items); err == nil {
		return items, nil
	}

	var byChrom map[string][]json.RawMessage
	if err := json.Unmarshal(payload, &byChrom); err != nil {
		return nil, fmt.Errorf("unexpected track payload shape: %w", err)
	}

	for _, chromItems := range byChrom {
		items = append(items, chromItems...)
	}
	return items, nil
}
