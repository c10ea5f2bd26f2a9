package pattern

import (
	"fmt"
	"regexp"
	"strings"
)

// Options carries the recognized fetch keywords and caller parameters for
// one chain compilation, spec.md §6 "fetch(chain, where, **args)".
type Options struct {
	// Where is AND-joined (spec.md §4.3 step 5).
	Where []string
	Group string
	Order string
	// Limit/Offset are nil when not supplied.
	Limit  *int
	Offset *int
	// Count requests `SELECT COUNT(DISTINCT alias.uid)` instead of rows.
	Count bool
	// Distinct defaults to true when nil (spec.md §6).
	Distinct *bool
	// Debug requests the compiled SQL and bound parameters without
	// executing (spec.md §4.3 step 6).
	Debug bool
	// Params holds every kwarg that is not a recognized keyword: a
	// projection expression, an `<alias>_fts` match value, or a plain SQL
	// bind parameter (spec.md §9's classification precedence).
	Params map[string]any
}

// Compiled is the result of compiling a chain pattern against Options.
type Compiled struct {
	SQL    string
	Args   map[string]any
	Cols   []string // "data" plus projection names, in SELECT order
	Entity string   // "node" or "edge", the collected link's element type
}

var jsonExtractRe = regexp.MustCompile(`\b(\w+)\.data\.(\w+)\b`)

// jsonExtract rewrites every `<alias>.data.<field>` reference into a
// json_extract call on that alias's data column (spec.md §4.3, grounded on
// original_source/graphydb.py's `jsonextract` helper).
func jsonExtract(expr string) string {
	return jsonExtractRe.ReplaceAllString(expr, `json_extract(${1}.data, "$.${2}")`)
}

func expandFTS(expr string, expansions map[string]string) string {
	for ftsKey, expanded := range expansions {
		expr = strings.ReplaceAll(expr, ftsKey, expanded)
	}
	return expr
}

// Compile parses patternStr and builds the single SQL statement that walks
// its joins, per spec.md §4.3 steps 1-6.
func Compile(patternStr string, opts Options) (*Compiled, error) {
	c, err := parseChain(patternStr)
	if err != nil {
		return nil, err
	}

	params := map[string]any{}
	for k, v := range opts.Params {
		params[k] = v
	}

	// Projection aliases take precedence over FTS match and bind
	// parameters (spec.md §9 "recognized keyword, projection alias, FTS
	// match, SQL bind parameter; precedence in that order").
	projExprs := map[string]string{}
	for _, name := range c.collected.proj {
		raw, ok := params[name]
		if !ok {
			return nil, patternErrorf("projection alias %q has no matching parameter", name)
		}
		expr, ok := raw.(string)
		if !ok {
			return nil, patternErrorf("projection alias %q must be a string expression", name)
		}
		projExprs[name] = expr
		delete(params, name)
	}

	// FTS match values: any remaining param named "<alias>_fts" for a
	// known alias (spec.md §4.3 step 3).
	var ftsJoins []string
	ftsExpansions := map[string]string{}
	bindArgs := map[string]any{}
	for _, l := range c.links {
		ftsKey := l.alias + "_fts"
		raw, ok := params[ftsKey]
		if !ok {
			continue
		}
		if _, isProj := projExprs[ftsKey]; isProj {
			return nil, patternErrorf("parameter %q is ambiguous between a projection and an FTS match", ftsKey)
		}
		valueKey := ftsKey + "_value"
		ftsJoins = append(ftsJoins, fmt.Sprintf(`
JOIN %s "%s" ON %s.uid = %s.uid`, l.ftsTable, ftsKey, l.alias, ftsKey))
		opts.Where = append(opts.Where, fmt.Sprintf(`%s.%s MATCH :%s`, ftsKey, l.ftsTable, valueKey))
		bindArgs[valueKey] = raw
		ftsExpansions[ftsKey] = ftsKey + "." + l.ftsTable
		delete(params, ftsKey)
	}

	// Everything left in params is a plain SQL bind parameter.
	for k, v := range params {
		bindArgs[k] = v
	}

	distinct := true
	if opts.Distinct != nil {
		distinct = *opts.Distinct
	}

	entity := "node"
	if c.collected.table == "edges" {
		entity = "edge"
	}

	var sql strings.Builder
	cols := []string{"data"}

	if opts.Count {
		sql.WriteString(fmt.Sprintf(`SELECT COUNT(DISTINCT %s.uid) FROM %s %s`, c.collected.alias, c.collected.table, c.collected.alias))
	} else {
		colSQL := []string{c.collected.alias + ".data"}
		for _, name := range c.collected.proj {
			expr := jsonExtract(expandFTS(projExprs[name], ftsExpansions))
			colSQL = append(colSQL, fmt.Sprintf(`%s AS "%s"`, expr, name))
			cols = append(cols, name)
		}
		distinctSQL := ""
		if distinct {
			distinctSQL = "DISTINCT "
		}
		sql.WriteString(fmt.Sprintf(`SELECT %s%s FROM %s %s`, distinctSQL, strings.Join(colSQL, ", "), c.collected.table, c.collected.alias))
	}

	// JOINs: walk right from the collected link, then left (spec.md §4.3
	// step 4; grounded on original_source/graphydb.py's two while loops).
	l := c.collected
	for l.rightLink != "" {
		r := c.byAlias[l.rightLink]
		join := fmt.Sprintf("%s.%s = %s.%s", r.alias, r.leftUID, l.alias, l.rightUID)
		if r.itemKind != "" {
			join += fmt.Sprintf(` AND %s.kind = "%s"`, r.alias, r.itemKind)
		}
		sql.WriteString(fmt.Sprintf("\nJOIN %s %s ON %s", r.table, r.alias, join))
		l = r
	}
	r := c.collected
	for r.leftLink != "" {
		l := c.byAlias[r.leftLink]
		join := fmt.Sprintf("%s.%s = %s.%s", l.alias, l.rightUID, r.alias, r.leftUID)
		if l.itemKind != "" {
			join += fmt.Sprintf(` AND %s.kind = "%s"`, l.alias, l.itemKind)
		}
		sql.WriteString(fmt.Sprintf("\nJOIN %s %s ON %s", l.table, l.alias, join))
		r = l
	}

	for _, j := range ftsJoins {
		sql.WriteString(j)
	}

	where := make([]string, 0, len(opts.Where)+1)
	for _, w := range opts.Where {
		where = append(where, jsonExtract(expandFTS(w, ftsExpansions)))
	}
	if c.collected.itemKind != "" {
		where = append(where, fmt.Sprintf(`%s.kind = "%s"`, c.collected.alias, c.collected.itemKind))
	}
	if len(where) > 0 {
		sql.WriteString("\nWHERE " + strings.Join(where, " AND "))
	}

	if opts.Group != "" {
		sql.WriteString("\nGROUP BY " + expandFTS(jsonExtract(opts.Group), ftsExpansions))
	}
	if opts.Order != "" {
		sql.WriteString("\nORDER BY " + expandFTS(jsonExtract(opts.Order), ftsExpansions))
	}
	if opts.Limit != nil {
		sql.WriteString(fmt.Sprintf("\nLIMIT %d", *opts.Limit))
	}
	if opts.Offset != nil {
		sql.WriteString(fmt.Sprintf(" OFFSET %d", *opts.Offset))
	}

	return &Compiled{SQL: sql.String(), Args: bindArgs, Cols: cols, Entity: entity}, nil
}
