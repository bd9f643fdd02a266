package workspace

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	_ "github.com/marcboeker/go-duckdb"

	"github.com/methview/methview/internal/beta"
	"github.com/methview/methview/internal/genome"
	"github.com/methview/methview/internal/manifest"
	"github.com/methview/methview/internal/ucsc"
)

// Store manages a DuckDB connection holding one workspace snapshot.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates a workspace database at the given path.
// Use an empty string for an in-memory database.
func Open(path string) (*Store, error) {
	if path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("create workspace directory: %w", err)
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open workspace: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ensureSchema creates tables if they don't exist.
func (s *Store) ensureSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS meta (
			key VARCHAR PRIMARY KEY,
			value VARCHAR
		);

		CREATE TABLE IF NOT EXISTS probes (
			id VARCHAR PRIMARY KEY,
			chrom VARCHAR,
			pos BIGINT,
			strand TINYINT,
			genes VARCHAR,
			groups VARCHAR,
			accessions VARCHAR,
			island VARCHAR,
			relation VARCHAR
		);

		CREATE TABLE IF NOT EXISTS gene_models (
			name VARCHAR,
			symbol VARCHAR,
			chrom VARCHAR,
			strand TINYINT,
			tx_start BIGINT,
			tx_end BIGINT,
			cds_start BIGINT,
			cds_end BIGINT,
			exon_starts VARCHAR,
			exon_ends VARCHAR
		);

		CREATE TABLE IF NOT EXISTS islands (
			name VARCHAR,
			chrom VARCHAR,
			start_pos BIGINT,
			end_pos BIGINT
		);

		CREATE TABLE IF NOT EXISTS snps (
			name VARCHAR,
			chrom VARCHAR,
			start_pos BIGINT,
			end_pos BIGINT
		);

		CREATE TABLE IF NOT EXISTS cytobands (
			name VARCHAR,
			chrom VARCHAR,
			start_pos BIGINT,
			end_pos BIGINT,
			stain VARCHAR
		);

		CREATE TABLE IF NOT EXISTS measurements (
			probe_id VARCHAR,
			chrom VARCHAR,
			pos BIGINT,
			sample_id VARCHAR,
			beta DOUBLE
		);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Save replaces the stored snapshot with the given workspace.
func (s *Store) Save(ws *Workspace) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"meta", "probes", "gene_models", "islands", "snps", "cytobands", "measurements"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	if err := saveMeta(tx, ws); err != nil {
		return err
	}
	for _, p := range ws.Probes {
		_, err := tx.Exec(`
			INSERT INTO probes (id, chrom, pos, strand, genes, groups, accessions, island, relation)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, p.ID, p.Chrom, p.Pos, p.Strand,
			strings.Join(p.Genes, ";"), strings.Join(p.Groups, ";"),
			strings.Join(p.Accessions, ";"), p.Island, p.Relation)
		if err != nil {
			return fmt.Errorf("save probe %s: %w", p.ID, err)
		}
	}
	for _, g := range ws.Genes {
		_, err := tx.Exec(`
			INSERT INTO gene_models (name, symbol, chrom, strand, tx_start, tx_end, cds_start, cds_end, exon_starts, exon_ends)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, g.Name, g.Symbol, g.Chrom, g.Strand, g.TxStart, g.TxEnd, g.CdsStart, g.CdsEnd,
			joinInts(g.ExonStarts), joinInts(g.ExonEnds))
		if err != nil {
			return fmt.Errorf("save gene model %s: %w", g.Name, err)
		}
	}
	for _, isl := range ws.Islands {
		if _, err := tx.Exec(`INSERT INTO islands VALUES (?, ?, ?, ?)`,
			isl.Name, isl.Chrom, isl.Start, isl.End); err != nil {
			return fmt.Errorf("save island %s: %w", isl.Name, err)
		}
	}
	for _, snp := range ws.SNPs {
		if _, err := tx.Exec(`INSERT INTO snps VALUES (?, ?, ?, ?)`,
			snp.Name, snp.Chrom, snp.Start, snp.End); err != nil {
			return fmt.Errorf("save snp %s: %w", snp.Name, err)
		}
	}
	for _, b := range ws.CytoBands {
		if _, err := tx.Exec(`INSERT INTO cytobands VALUES (?, ?, ?, ?, ?)`,
			b.Name, b.Chrom, b.Start, b.End, b.Stain); err != nil {
			return fmt.Errorf("save cytoband %s: %w", b.Name, err)
		}
	}
	if ws.Set != nil {
		for _, m := range ws.Set.Measurements {
			if _, err := tx.Exec(`INSERT INTO measurements VALUES (?, ?, ?, ?, ?)`,
				m.ProbeID, m.Chrom, m.Pos, m.Sample, m.Beta); err != nil {
				return fmt.Errorf("save measurement %s/%s: %w", m.ProbeID, m.Sample, err)
			}
		}
	}

	return tx.Commit()
}

func saveMeta(tx *sql.Tx, ws *Workspace) error {
	var samples string
	if ws.Set != nil {
		samples = strings.Join(ws.Set.Samples, "\t")
	}
	meta := map[string]string{
		"gene":           ws.Gene,
		"genome":         ws.Genome,
		"array":          ws.Array,
		"snp_track":      ws.SNPTrack,
		"chrom":          ws.Window.Chrom,
		"window_start":   strconv.FormatInt(ws.Window.Start, 10),
		"window_end":     strconv.FormatInt(ws.Window.End, 10),
		"promoter_start": strconv.FormatInt(ws.Promoter.Start, 10),
		"promoter_end":   strconv.FormatInt(ws.Promoter.End, 10),
		"samples":        samples,
	}
	for k, v := range meta {
		if _, err := tx.Exec(`INSERT INTO meta VALUES (?, ?)`, k, v); err != nil {
			return fmt.Errorf("save meta %s: %w", k, err)
		}
	}
	return nil
}

// Load reads the stored snapshot back into a Workspace.
func (s *Store) Load() (*Workspace, error) {
	meta, err := s.loadMeta()
	if err != nil {
		return nil, err
	}

	ws := &Workspace{
		Gene:     meta["gene"],
		Genome:   meta["genome"],
		Array:    meta["array"],
		SNPTrack: meta["snp_track"],
	}
	if ws.Gene == "" {
		return nil, fmt.Errorf("workspace %s holds no snapshot", s.path)
	}

	chrom := meta["chrom"]
	ws.Window = genome.Region{
		Chrom: chrom,
		Start: parseInt(meta["window_start"]),
		End:   parseInt(meta["window_end"]),
	}
	ws.Promoter = genome.Region{
		Chrom: chrom,
		Start: parseInt(meta["promoter_start"]),
		End:   parseInt(meta["promoter_end"]),
	}

	if ws.Probes, err = s.loadProbes(); err != nil {
		return nil, err
	}
	if ws.Genes, err = s.loadGeneModels(); err != nil {
		return nil, err
	}
	if ws.Islands, err = s.loadIslands(); err != nil {
		return nil, err
	}
	if ws.SNPs, err = s.loadSNPs(); err != nil {
		return nil, err
	}
	if ws.CytoBands, err = s.loadCytoBands(); err != nil {
		return nil, err
	}

	set := &beta.JoinedSet{Chrom: chrom}
	if samples := meta["samples"]; samples != "" {
		set.Samples = strings.Split(samples, "\t")
	}
	if set.Measurements, err = s.loadMeasurements(); err != nil {
		return nil, err
	}
	ws.Set = set

	return ws, nil
}

func (s *Store) loadMeta() (map[string]string, error) {
	rows, err := s.db.Query(`SELECT key, value FROM meta`)
	if err != nil {
		return nil, fmt.Errorf("query meta: %w", err)
	}
	defer rows.Close()

	meta := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		meta[k] = v
	}
	return meta, rows.Err()
}

func (s *Store) loadProbes() ([]*manifest.Probe, error) {
	rows, err := s.db.Query(`
		SELECT id, chrom, pos, strand, genes, groups, accessions, island, relation
		FROM probes ORDER BY pos
	`)
	if err != nil {
		return nil, fmt.Errorf("query probes: %w", err)
	}
	defer rows.Close()

	var probes []*manifest.Probe
	for rows.Next() {
		p := &manifest.Probe{}
		var genes, groups, accessions string
		if err := rows.Scan(&p.ID, &p.Chrom, &p.Pos, &p.Strand,
			&genes, &groups, &accessions, &p.Island, &p.Relation); err != nil {
			return nil, fmt.Errorf("scan probe: %w", err)
		}
		p.Genes = splitList(genes)
		p.Groups = splitList(groups)
		p.Accessions = splitList(accessions)
		probes = append(probes, p)
	}
	return probes, rows.Err()
}

func (s *Store) loadGeneModels() ([]*ucsc.GeneModel, error) {
	rows, err := s.db.Query(`
		SELECT name, symbol, chrom, strand, tx_start, tx_end, cds_start, cds_end, exon_starts, exon_ends
		FROM gene_models ORDER BY tx_start
	`)
	if err != nil {
		return nil, fmt.Errorf("query gene models: %w", err)
	}
	defer rows.Close()

	var genes []*ucsc.GeneModel
	for rows.Next() {
		g := &ucsc.GeneModel{}
		var starts, ends string
		if err := rows.Scan(&g.Name, &g.Symbol, &g.Chrom, &g.Strand,
			&g.TxStart, &g.TxEnd, &g.CdsStart, &g.CdsEnd, &starts, &ends); err != nil {
			return nil, fmt.Errorf("scan gene model: %w", err)
		}
		if g.ExonStarts, err = splitInts(starts); err != nil {
			return nil, fmt.Errorf("gene model %s exon starts: %w", g.Name, err)
		}
		if g.ExonEnds, err = splitInts(ends); err != nil {
			return nil, fmt.Errorf("gene model %s exon ends: %w", g.Name, err)
		}
		genes = append(genes, g)
	}
	return genes, rows.Err()
}

func (s *Store) loadIslands() ([]*ucsc.CpGIsland, error) {
	rows, err := s.db.Query(`SELECT name, chrom, start_pos, end_pos FROM islands ORDER BY start_pos`)
	if err != nil {
		return nil, fmt.Errorf("query islands: %w", err)
	}
	defer rows.Close()

	var islands []*ucsc.CpGIsland
	for rows.Next() {
		isl := &ucsc.CpGIsland{}
		if err := rows.Scan(&isl.Name, &isl.Chrom, &isl.Start, &isl.End); err != nil {
			return nil, fmt.Errorf("scan island: %w", err)
		}
		islands = append(islands, isl)
	}
	return islands, rows.Err()
}

func (s *Store) loadSNPs() ([]*ucsc.SNP, error) {
	rows, err := s.db.Query(`SELECT name, chrom, start_pos, end_pos FROM snps ORDER BY start_pos`)
	if err != nil {
		return nil, fmt.Errorf("query snps: %w", err)
	}
	defer rows.Close()

	var snps []*ucsc.SNP
	for rows.Next() {
		snp := &ucsc.SNP{}
		if err := rows.Scan(&snp.Name, &snp.Chrom, &snp.Start, &snp.End); err != nil {
			return nil, fmt.Errorf("scan snp: %w", err)
		}
		snps = append(snps, snp)
	}
	return snps, rows.Err()
}

func (s *Store) loadCytoBands() ([]*ucsc.CytoBand, error) {
	rows, err := s.db.Query(`SELECT name, chrom, start_pos, end_pos, stain FROM cytobands ORDER BY start_pos`)
	if err != nil {
		return nil, fmt.Errorf("query cytobands: %w", err)
	}
	defer rows.Close()

	var bands []*ucsc.CytoBand
	for rows.Next() {
		b := &ucsc.CytoBand{}
		if err := rows.Scan(&b.Name, &b.Chrom, &b.Start, &b.End, &b.Stain); err != nil {
			return nil, fmt.Errorf("scan cytoband: %w", err)
		}
		bands = append(bands, b)
	}
	return bands, rows.Err()
}

func (s *Store) loadMeasurements() ([]beta.Measurement, error) {
	rows, err := s.db.Query(`
		SELECT probe_id, chrom, pos, sample_id, beta
		FROM measurements ORDER BY pos, sample_id
	`)
	if err != nil {
		return nil, fmt.Errorf("query measurements: %w", err)
	}
	defer rows.Close()

	var ms []beta.Measurement
	for rows.Next() {
		var m beta.Measurement
		if err := rows.Scan(&m.ProbeID, &m.Chrom, &m.Pos, &m.Sample, &m.Beta); err != nil {
			return nil, fmt.Errorf("scan measurement: %w", err)
		}
		ms = append(ms, m)
	}
	return ms, rows.Err()
}

func joinInts(values []int64) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.FormatInt(v, 10)
	}
	return strings.Join(parts, ",")
}

func splitInts(s string) ([]int64, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	values := make([]int64, len(parts))
	for i, part := range parts {
		v, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return values, nil
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ";")
}

func parseInt(s string) int64 {
	v, _ := strconv.ParseInt(s, 10, 64)
	return v
}
