package manifest

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/methview/methview/internal/genome"
)

// CSVLoader loads probe annotation from an Illumina array manifest CSV
// (HumanMethylation450 or MethylationEPIC layout).
type CSVLoader struct {
	path string
}

// NewCSVLoader creates a loader for the given manifest file. Gzipped
// manifests are handled transparently.
func NewCSVLoader(path string) *CSVLoader {
	return &CSVLoader{path: path}
}

// Load parses the manifest and populates the table.
func (l *CSVLoader) Load(t *Table) error {
	f, err := os.Open(l.path)
	if err != nil {
		return fmt.Errorf("open manifest: %w", err)
	}
	defer f.Close()

	var reader io.Reader = f
	if strings.HasSuffix(l.path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return fmt.Errorf("open gzip reader: %w", err)
		}
		defer gz.Close()
		reader = gz
	}

	return l.parse(reader, t)
}

// manifest columns we read, located by header name so 450k and EPIC
// manifests both work despite different column counts.
var wantColumns = []string{
	"IlmnID",
	"CHR",
	"MAPINFO",
	"Strand",
	"UCSC_RefGene_Name",
	"UCSC_RefGene_Accession",
	"UCSC_RefGene_Group",
	"UCSC_CpG_Islands_Name",
	"Relation_to_UCSC_CpG_Island",
}

// parse reads the Illumina manifest layout: a [Heading] preamble, an
// [Assay] section marker, the header row, then data rows until [Controls].
func (l *CSVLoader) parse(reader io.Reader, t *Table) error {
	scanner := bufio.NewScanner(reader)
	// Manifest rows are long; enlarge the scanner buffer.
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	inAssay := false
	var cols map[string]int

	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "[Controls]") {
			break
		}
		if strings.HasPrefix(line, "[Assay]") {
			inAssay = true
			continue
		}
		if !inAssay {
			continue // [Heading] preamble
		}

		fields := strings.Split(line, ",")

		if cols == nil {
			cols = indexColumns(fields)
			if _, ok := cols["IlmnID"]; !ok {
				return fmt.Errorf("manifest header missing IlmnID column")
			}
			continue
		}

		p, err := l.parseRow(fields, cols)
		if err != nil {
			continue // skip malformed rows
		}
		t.Add(p)
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scan manifest: %w", err)
	}
	if cols == nil {
		return fmt.Errorf("no [Assay] section found in manifest")
	}

	t.Sort()
	return nil
}

// indexColumns maps the header names we care about to field indexes.
func indexColumns(header []string) map[string]int {
	cols := make(map[string]int)
	for i, name := range header {
		name = strings.TrimSpace(name)
		for _, want := range wantColumns {
			if name == want {
				cols[want] = i
			}
		}
	}
	return cols
}

// parseRow converts one manifest data row into a Probe.
func (l *CSVLoader) parseRow(fields []string, cols map[string]int) (*Probe, error) {
	get := func(name string) string {
		idx, ok := cols[name]
		if !ok || idx >= len(fields) {
			return ""
		}
		return strings.TrimSpace(fields[idx])
	}

	id := get("IlmnID")
	if id == "" {
		return nil, fmt.Errorf("missing probe ID")
	}

	chrom := genome.NormalizeChrom(get("CHR"))
	if chrom == "" {
		return nil, fmt.Errorf("probe %s has no chromosome", id)
	}

	pos, err := strconv.ParseInt(get("MAPINFO"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parse MAPINFO for %s: %w", id, err)
	}

	return &Probe{
		ID:         id,
		Chrom:      chrom,
		Pos:        pos,
		Strand:     parseStrand(get("Strand")),
		Genes:      splitDedup(get("UCSC_RefGene_Name")),
		Groups:     splitField(get("UCSC_RefGene_Group")),
		Accessions: splitField(get("UCSC_RefGene_Accession")),
		Island:     get("UCSC_CpG_Islands_Name"),
		Relation:   get("Relation_to_UCSC_CpG_Island"),
	}, nil
}

// parseStrand converts the manifest strand letter (F/R or +/-) to int8.
func parseStrand(s string) int8 {
	switch s {
	case "R", "-":
		return -1
	}
	return 1
}

// splitField splits a semicolon-separated manifest field, dropping blanks.
func splitField(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ";")
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// splitDedup splits a semicolon-separated field and removes duplicates while
// preserving order. Gene names repeat once per transcript in the manifest.
func splitDedup(s string) []string {
	parts := splitField(s)
	if len(parts) < 2 {
		return parts
	}
	seen := make(map[string]bool, len(parts))
	out := parts[:0]
	for _, p := range parts {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	return out
}
