package questionbank

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

//go:embed catalogs/*.json
var embedded embed.FS

//go:embed schema.json
var schemaJSON []byte

const schemaURL = "schema://question-catalog.json"

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

// catalogSchema compiles the catalog JSON schema once per process.
func catalogSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaJSON))
		if err != nil {
			schemaErr = fmt.Errorf("parse catalog schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(schemaURL, doc); err != nil {
			schemaErr = fmt.Errorf("add catalog schema: %w", err)
			return
		}
		compiledSchema, schemaErr = c.Compile(schemaURL)
	})
	return compiledSchema, schemaErr
}

// Parse validates raw catalog JSON against the catalog schema, then
// against the cross-reference rules, and returns the resulting Bank.
func Parse(data []byte) (*Bank, error) {
	sch, err := catalogSchema()
	if err != nil {
		return nil, err
	}

	// The schema library validates decoded JSON values, not raw bytes.
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: malformed JSON: %v", ErrInvalidCatalog, err)
	}
	if err := sch.Validate(inst); err != nil {
		return nil, fmt.Errorf("%w: schema validation failed: %v", ErrInvalidCatalog, err)
	}

	var c Catalog
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrInvalidCatalog, err)
	}
	return New(c)
}

// LoadFile reads and parses a catalog from disk.
func LoadFile(p string) (*Bank, error) {
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", p, err)
	}
	b, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", p, err)
	}
	return b, nil
}

// LoadDir parses every *.json catalog in dir, sorted by file name.
func LoadDir(dir string) ([]*Bank, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("list catalogs in %s: %w", dir, err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no catalogs found in %s", dir)
	}
	sort.Strings(matches)
	return loadAll(matches, LoadFile)
}

// Load returns the embedded catalog for the given profile.
func Load(profile string) (*Bank, error) {
	data, err := embedded.ReadFile(path.Join("catalogs", profile+".json"))
	if err != nil {
		return nil, fmt.Errorf("unknown catalog profile %q", profile)
	}
	b, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", profile, err)
	}
	return b, nil
}

// LoadEmbedded parses every catalog compiled into the binary.
func LoadEmbedded() ([]*Bank, error) {
	return loadAll(EmbeddedProfiles(), Load)
}

// EmbeddedProfiles lists the catalog profiles compiled into the binary.
func EmbeddedProfiles() []string {
	entries, err := fs.ReadDir(embedded, "catalogs")
	if err != nil {
		return nil
	}
	var out []string
	for _, e := range entries {
		if name, ok := strings.CutSuffix(e.Name(), ".json"); ok {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

func loadAll(names []string, load func(string) (*Bank, error)) ([]*Bank, error) {
	banks := make([]*Bank, 0, len(names))
	seen := make(map[string]string, len(names))
	for _, n := range names {
		b, err := load(n)
		if err != nil {
			return nil, err
		}
		if prev, dup := seen[b.Profile()]; dup {
			return nil, fmt.Errorf("%w: profile %q declared by both %s and %s", ErrInvalidCatalog, b.Profile(), prev, n)
		}
		seen[b.Profile()] = n
		banks = append(banks, b)
	}
	return banks, nil
}
