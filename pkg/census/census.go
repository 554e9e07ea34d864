// Package census is the query engine facade: it resolves a free-text
// question against the dataset's region and attribute catalogs, looks the
// answer up in the table, and renders the reply sentence.
package census

import (
	"fmt"
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/cognicore/censusqa/pkg/census/config"
	"github.com/cognicore/censusqa/pkg/census/resolver"
	"github.com/cognicore/censusqa/pkg/census/table"
)

// Engine bundles the resolver and the tabular engine. It is immutable after
// construction and safe for concurrent use; replace the whole Engine to
// reload data.
type Engine struct {
	resolver *resolver.Resolver
	table    *table.Table
}

// Options configures an Engine.
type Options struct {
	Table    *table.Table
	Synonyms config.Synonyms // nil selects config.DefaultSynonyms
}

// New builds an Engine over a loaded table. The resolver's catalogs come
// from the table itself: distinct region values and the attribute columns.
// A synonym targeting a column the table does not have is a configuration
// error.
func New(opts Options) (*Engine, error) {
	if opts.Table == nil {
		return nil, fmt.Errorf("census: no table given")
	}
	syn := opts.Synonyms
	if syn == nil {
		syn = config.DefaultSynonyms()
	}

	res, err := resolver.New(opts.Table.Regions(), opts.Table.Attributes(), syn)
	if err != nil {
		return nil, fmt.Errorf("census: %w", err)
	}
	return &Engine{resolver: res, table: opts.Table}, nil
}

// Load reads the dataset CSV and optional synonyms YAML and builds an
// Engine. An empty synonymsPath selects the built-in synonym table.
func Load(datasetPath, synonymsPath string) (*Engine, error) {
	tbl, err := table.LoadCSV(datasetPath, table.LoadOptions{})
	if err != nil {
		return nil, err
	}

	var syn config.Synonyms
	if synonymsPath != "" {
		if syn, err = config.LoadSynonyms(synonymsPath); err != nil {
			return nil, err
		}
	}
	return New(Options{Table: tbl, Synonyms: syn})
}

// Answer is a fully resolved query result.
type Answer struct {
	Region    string
	Attribute string
	Value     table.Value
	Sentence  string
}

// Resolve runs only the entity resolution step.
func (e *Engine) Resolve(query string) resolver.Resolved {
	return e.resolver.Resolve(query)
}

// Lookup runs only the tabular step with pre-resolved entities.
func (e *Engine) Lookup(region, attribute string) (table.Result, error) {
	return e.table.Lookup(region, attribute)
}

// Ask resolves the query and looks up the answer. Failures (no matching
// region, unknown attribute, underspecified query) come back as errors
// wrapping the internalerr sentinels.
func (e *Engine) Ask(query string) (Answer, error) {
	resolved := e.resolver.Resolve(query)
	result, err := e.table.Lookup(resolved.Region, resolved.Attribute)
	if err != nil {
		return Answer{}, err
	}
	return Answer{
		Region:    result.Region,
		Attribute: result.Attribute,
		Value:     result.Value,
		Sentence:  fmt.Sprintf("The %s of %s is %s.", result.Attribute, result.Region, FormatValue(result.Value)),
	}, nil
}

var englishPrinter = message.NewPrinter(language.English)

// FormatValue renders a raw value for a reply sentence. Integers get
// thousands separators; this is presentation only, the engine keeps raw
// values.
func FormatValue(v table.Value) string {
	switch v.Kind {
	case table.ValueInt:
		return englishPrinter.Sprintf("%d", v.Int)
	case table.ValueFloat:
		return strconv.FormatFloat(v.Float, 'f', -1, 64)
	case table.ValueText:
		return v.Text
	default:
		return "not available"
	}
}
