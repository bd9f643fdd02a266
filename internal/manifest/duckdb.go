package manifest

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/marcboeker/go-duckdb"
)

// DuckDBStore provides access to probe annotation stored in a DuckDB
// database, converted once from the manifest CSV for fast reopening.
type DuckDBStore struct {
	db   *sql.DB
	path string
}

// OpenDuckDB opens or creates a DuckDB manifest database at the given path.
// Use an empty string for an in-memory database.
func OpenDuckDB(path string) (*DuckDBStore, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}
	return &DuckDBStore{db: db, path: path}, nil
}

// Close closes the database connection.
func (s *DuckDBStore) Close() error {
	return s.db.Close()
}

// CreateSchema creates the probes table if it does not exist.
func (s *DuckDBStore) CreateSchema() error {
	schema := `
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

		CREATE INDEX IF NOT EXISTS idx_probes_pos ON probes(chrom, pos);
	`
	_, err := s.db.Exec(schema)
	return err
}

// InsertProbe inserts a single probe record.
func (s *DuckDBStore) InsertProbe(p *Probe) error {
	_, err := s.db.Exec(`
		INSERT INTO probes (id, chrom, pos, strand, genes, groups, accessions, island, relation)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, p.ID, p.Chrom, p.Pos, p.Strand,
		strings.Join(p.Genes, ";"), strings.Join(p.Groups, ";"),
		strings.Join(p.Accessions, ";"), nullString(p.Island), nullString(p.Relation))
	if err != nil {
		return fmt.Errorf("insert probe %s: %w", p.ID, err)
	}
	return nil
}

// ImportTable bulk-inserts an in-memory table.
func (s *DuckDBStore) ImportTable(t *Table) error {
	for _, chrom := range t.Chromosomes() {
		for _, p := range t.ByChrom(chrom) {
			if err := s.InsertProbe(p); err != nil {
				return err
			}
		}
	}
	return nil
}

// Load loads all probes from the database into the table.
func (s *DuckDBStore) Load(t *Table) error {
	rows, err := s.db.Query(`
		SELECT id, chrom, pos, strand, genes, groups, accessions, island, relation
		FROM probes
		ORDER BY chrom, pos
	`)
	if err != nil {
		return fmt.Errorf("query probes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		p, err := scanProbe(rows)
		if err != nil {
			return err
		}
		t.Add(p)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	t.Sort()
	return nil
}

// LoadChromosome loads the probes for one chromosome into the table.
func (s *DuckDBStore) LoadChromosome(t *Table, chrom string) error {
	rows, err := s.db.Query(`
		SELECT id, chrom, pos, strand, genes, groups, accessions, island, relation
		FROM probes
		WHERE chrom = ?
		ORDER BY pos
	`, chrom)
	if err != nil {
		return fmt.Errorf("query probes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		p, err := scanProbe(rows)
		if err != nil {
			return err
		}
		t.Add(p)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	t.Sort()
	return nil
}

// scanProbe scans a probe row into a Probe struct.
func scanProbe(rows *sql.Rows) (*Probe, error) {
	p := &Probe{}
	var genes, groups, accessions string
	var island, relation sql.NullString
	err := rows.Scan(&p.ID, &p.Chrom, &p.Pos, &p.Strand,
		&genes, &groups, &accessions, &island, &relation)
	if err != nil {
		return nil, fmt.Errorf("scan probe: %w", err)
	}
	p.Genes = splitField(genes)
	p.Groups = splitField(groups)
	p.Accessions = splitField(accessions)
	p.Island = island.String
	p.Relation = relation.String
	return p, nil
}

// ProbeCount returns the total number of probes in the database.
func (s *DuckDBStore) ProbeCount() (int, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM probes").Scan(&count)
	return count, err
}

// Chromosomes returns a sorted list of chromosomes in the database.
func (s *DuckDBStore) Chromosomes() ([]string, error) {
	rows, err := s.db.Query("SELECT DISTINCT chrom FROM probes ORDER BY chrom")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chroms []string
	for rows.Next() {
		var chrom string
		if err := rows.Scan(&chrom); err != nil {
			return nil, err
		}
		chroms = append(chroms, chrom)
	}
	return chroms, rows.Err()
}

// IsDuckDB checks if a path is a DuckDB database file.
func IsDuckDB(path string) bool {
	return strings.HasSuffix(path, ".duckdb") || strings.HasSuffix(path, ".db")
}

// nullString returns nil if s is empty, otherwise s.
func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
