// Package material resolves material identifiers to complex refractive
// indices N = n + ik by loading, caching and interpolating per-material
// dispersion tables.
package material

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
)

// ErrMaterialNotFound reports an identifier with no dispersion table.
var ErrMaterialNotFound = errors.New("material not found")

// LoadError reports a missing or malformed dispersion file.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load dispersion data from %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// ambient is the incident-medium identifier, fixed at N = 1+0i.
const ambient = "air"

// fileMap is the fixed identifier→filename mapping. Identifiers are
// matched case-insensitively.
var fileMap = map[string]string{
	"a-ge":    "a-Ge.txt",
	"a-si":    "a-Si.txt",
	"poly-si": "poly-Si.txt",
	"al":      "Al.txt",
	"al2o3":   "Al2O3.txt",
	"gaas":    "GaAs.txt",
	"ge":      "Ge.txt",
	"hfn":     "HfN.txt",
	"hfo2":    "HfO2.txt",
	"mgo":     "MgO.txt",
	"ruo2":    "RuO2.txt",
	"si":      "Si.txt",
	"si3n4":   "Si3N4.txt",
	"sio":     "SiO.txt",
	"sio2":    "SiO2.txt",
	"sno2":    "SnO2.txt",
	"tio2":    "TiO2.txt",
	"w":       "W.txt",
	"zno":     "ZnO.txt",
	"zro2":    "ZrO2.txt",
}

// table is one loaded dispersion table: wavelength-sorted (λ, n, k)
// samples. Immutable once cached.
type table struct {
	lambda []float64
	n      []float64
	k      []float64
}

// Database loads and caches dispersion tables from a data directory.
// The cache is the only shared mutable state: the first reference to an
// identifier loads its file under the write lock, every later read
// takes only the read lock.
type Database struct {
	dir    string
	mu     sync.RWMutex
	tables map[string]*table
	loads  atomic.Uint64
}

func NewDatabase(dir string) *Database {
	return &Database{
		dir:    dir,
		tables: make(map[string]*table),
	}
}

// Loads returns the number of physical file loads performed so far.
func (db *Database) Loads() uint64 {
	return db.loads.Load()
}

// Materials lists the known material identifiers, ambient included.
func (db *Database) Materials() []string {
	out := make([]string, 0, len(fileMap)+1)
	out = append(out, ambient)
	for id := range fileMap {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Index returns the complex refractive index of a material evaluated
// on the given wavelength grid (nm), one value per wavelength. The
// ambient medium is a constant 1+0i. Wavelengths outside the table's
// range extrapolate linearly from the nearest two samples, unclamped.
func (db *Database) Index(id string, wavelengths []float64) ([]complex128, error) {
	id = strings.ToLower(id)
	if id == ambient {
		out := make([]complex128, len(wavelengths))
		for i := range out {
			out[i] = complex(1, 0)
		}
		return out, nil
	}

	filename, ok := fileMap[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrMaterialNotFound, id)
	}

	tab, err := db.lookup(id, filename)
	if err != nil {
		return nil, err
	}

	out := make([]complex128, len(wavelengths))
	for i, lambda := range wavelengths {
		n := interpolate(tab.lambda, tab.n, lambda)
		k := interpolate(tab.lambda, tab.k, lambda)
		out[i] = complex(n, k)
	}
	return out, nil
}

func (db *Database) lookup(id, filename string) (*table, error) {
	db.mu.RLock()
	tab, ok := db.tables[id]
	db.mu.RUnlock()
	if ok {
		return tab, nil
	}

	db.mu.Lock()
	defer db.mu.Unlock()
	if tab, ok := db.tables[id]; ok {
		return tab, nil
	}

	tab, err := loadTable(filepath.Join(db.dir, filename))
	if err != nil {
		return nil, err
	}
	db.loads.Add(1)
	db.tables[id] = tab
	return tab, nil
}

// loadTable parses a whitespace-delimited dispersion file: one header
// line, then rows of wavelength_nm, n, k in ascending wavelength order.
func loadTable(path string) (*table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	defer file.Close()

	tab := &table{}
	scanner := bufio.NewScanner(file)
	line := 0
	for scanner.Scan() {
		line++
		if line == 1 {
			continue // header
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) < 3 {
			return nil, &LoadError{Path: path, Err: fmt.Errorf("line %d: expected 3 columns, got %d", line, len(fields))}
		}
		row := [3]float64{}
		for i := range row {
			row[i], err = strconv.ParseFloat(fields[i], 64)
			if err != nil {
				return nil, &LoadError{Path: path, Err: fmt.Errorf("line %d: %w", line, err)}
			}
		}
		tab.lambda = append(tab.lambda, row[0])
		tab.n = append(tab.n, row[1])
		tab.k = append(tab.k, row[2])
	}
	if err := scanner.Err(); err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	if len(tab.lambda) < 2 {
		return nil, &LoadError{Path: path, Err: fmt.Errorf("need at least 2 samples, got %d", len(tab.lambda))}
	}
	return tab, nil
}

// interpolate evaluates the piecewise-linear table at x. Outside the
// table's range the nearest two samples extrapolate linearly with no
// clamping, matching the reference loader.
func interpolate(xs, ys []float64, x float64) float64 {
	n := len(xs)
	j := sort.SearchFloat64s(xs, x)
	switch {
	case j <= 0:
		j = 1
	case j >= n:
		j = n - 1
	}
	x0, x1 := xs[j-1], xs[j]
	y0, y1 := ys[j-1], ys[j]
	return y0 + (y1-y0)*(x-x0)/(x1-x0)
}
