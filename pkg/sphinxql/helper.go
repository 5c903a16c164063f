package sphinxql

import (
	"strings"

	"github.com/spf13/cast"
)

// Helper builds the administrative statements of searchd. Every method
// returns a raw query ready to Execute; quoting errors are reported by
// Compile and Execute.
type Helper struct {
	conn    Connection
	escaper *Escaper
}

// NewHelper creates a Helper bound to conn.
func NewHelper(conn Connection) *Helper {
	return &Helper{conn: conn, escaper: NewEscaper(conn)}
}

func (h *Helper) query(sql string, err error) *SphinxQL {
	q := New(h.conn).Query(sql)
	q.err = err
	return q
}

// ShowMeta returns SHOW META.
func (h *Helper) ShowMeta() *SphinxQL {
	return h.query("SHOW META", nil)
}

// ShowWarnings returns SHOW WARNINGS.
func (h *Helper) ShowWarnings() *SphinxQL {
	return h.query("SHOW WARNINGS", nil)
}

// ShowStatus returns SHOW STATUS.
func (h *Helper) ShowStatus() *SphinxQL {
	return h.query("SHOW STATUS", nil)
}

// ShowTables returns SHOW TABLES, filtered by a LIKE pattern when like is set.
func (h *Helper) ShowTables(like string) *SphinxQL {
	if like == "" {
		return h.query("SHOW TABLES", nil)
	}
	pattern, err := h.escaper.Quote(like)
	return h.query("SHOW TABLES LIKE "+pattern, err)
}

// ShowVariables returns SHOW VARIABLES.
func (h *Helper) ShowVariables() *SphinxQL {
	return h.query("SHOW VARIABLES", nil)
}

// SetVariable returns SET [GLOBAL] name = value. User variables (@name) are
// never quoted and always take a list.
func (h *Helper) SetVariable(name string, value interface{}, global bool) *SphinxQL {
	var query strings.Builder

	query.WriteString("SET ")
	if global {
		query.WriteString("GLOBAL ")
	}

	userVar := strings.HasPrefix(name, "@")
	if userVar {
		query.WriteString(name)
	} else {
		query.WriteString(h.escaper.QuoteIdentifier(name))
	}
	query.WriteString(" ")

	list, isList := toList(value)
	switch {
	case isList:
		quoted, err := h.escaper.QuoteArr(list)
		if err != nil {
			return h.query("", err)
		}
		query.WriteString("= (" + strings.Join(quoted, ", ") + ")")
	case userVar:
		quoted, err := h.escaper.Quote(value)
		if err != nil {
			return h.query("", err)
		}
		query.WriteString("= (" + quoted + ")")
	default:
		quoted, err := h.escaper.Quote(value)
		if err != nil {
			return h.query("", err)
		}
		query.WriteString("= " + quoted)
	}

	return h.query(query.String(), nil)
}

// CallSnippets returns CALL SNIPPETS for data highlighted against query.
// Options are passed as `value AS name` in name order.
func (h *Helper) CallSnippets(data []string, index, query string, options map[string]interface{}) *SphinxQL {
	docs := make([]interface{}, len(data))
	for i, d := range data {
		docs[i] = d
	}

	var documents string
	if len(docs) == 1 {
		quoted, err := h.escaper.Quote(docs[0])
		if err != nil {
			return h.query("", err)
		}
		documents = quoted
	} else {
		quoted, err := h.escaper.QuoteArr(docs)
		if err != nil {
			return h.query("", err)
		}
		documents = "(" + strings.Join(quoted, ", ") + ")"
	}

	args, err := h.escaper.QuoteArr([]interface{}{index, query})
	if err != nil {
		return h.query("", err)
	}
	for _, name := range sortedKeys(options) {
		quoted, err := h.escaper.Quote(options[name])
		if err != nil {
			return h.query("", err)
		}
		args = append(args, quoted+" AS "+name)
	}

	return h.query("CALL SNIPPETS("+documents+", "+strings.Join(args, ", ")+")", nil)
}

// CallKeywords returns CALL KEYWORDS for text tokenized by index. hits adds
// the per-keyword statistics flag when set.
func (h *Helper) CallKeywords(text, index string, hits *bool) *SphinxQL {
	params := []interface{}{text, index}
	if hits != nil {
		params = append(params, *hits)
	}
	quoted, err := h.escaper.QuoteArr(params)
	if err != nil {
		return h.query("", err)
	}
	return h.query("CALL KEYWORDS("+strings.Join(quoted, ", ")+")", nil)
}

// Describe returns DESCRIBE index.
func (h *Helper) Describe(index string) *SphinxQL {
	return h.query("DESCRIBE "+h.escaper.QuoteIdentifier(index), nil)
}

// CreateFunction returns CREATE FUNCTION for a UDF in the shared object soName.
func (h *Helper) CreateFunction(name, returns, soName string) *SphinxQL {
	library, err := h.escaper.Quote(soName)
	return h.query("CREATE FUNCTION "+h.escaper.QuoteIdentifier(name)+
		" RETURNS "+returns+" SONAME "+library, err)
}

// DropFunction returns DROP FUNCTION name.
func (h *Helper) DropFunction(name string) *SphinxQL {
	return h.query("DROP FUNCTION "+h.escaper.QuoteIdentifier(name), nil)
}

// AttachIndex returns ATTACH INDEX disk TO RTINDEX rt.
func (h *Helper) AttachIndex(disk, rt string) *SphinxQL {
	return h.query("ATTACH INDEX "+h.escaper.QuoteIdentifier(disk)+
		" TO RTINDEX "+h.escaper.QuoteIdentifier(rt), nil)
}

// FlushRtIndex returns FLUSH RTINDEX index.
func (h *Helper) FlushRtIndex(index string) *SphinxQL {
	return h.query("FLUSH RTINDEX "+h.escaper.QuoteIdentifier(index), nil)
}

// TruncateRtIndex returns TRUNCATE RTINDEX index.
func (h *Helper) TruncateRtIndex(index string) *SphinxQL {
	return h.query("TRUNCATE RTINDEX "+h.escaper.QuoteIdentifier(index), nil)
}

// OptimizeIndex returns OPTIMIZE INDEX index.
func (h *Helper) OptimizeIndex(index string) *SphinxQL {
	return h.query("OPTIMIZE INDEX "+h.escaper.QuoteIdentifier(index), nil)
}

// ShowIndexStatus returns SHOW INDEX index STATUS.
func (h *Helper) ShowIndexStatus(index string) *SphinxQL {
	return h.query("SHOW INDEX "+h.escaper.QuoteIdentifier(index)+" STATUS", nil)
}

// FlushRamchunk returns FLUSH RAMCHUNK index.
func (h *Helper) FlushRamchunk(index string) *SphinxQL {
	return h.query("FLUSH RAMCHUNK "+h.escaper.QuoteIdentifier(index), nil)
}

// PairsToMap turns a Variable_name/Value result set, as returned by SHOW META,
// SHOW STATUS and SHOW VARIABLES, into a map.
func PairsToMap(result *ResultSet) map[string]string {
	pairs := make(map[string]string, result.Count())
	for _, row := range result.Rows() {
		name := row.Get("Variable_name")
		if name == nil {
			name = row.Get("Counter")
		}
		pairs[cast.ToString(name)] = row.String("Value")
	}
	return pairs
}
