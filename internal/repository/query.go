// Package repository contains data access logic separated from HTTP handlers.
// This file holds the small SQL helpers shared by the venue and artist
// repositories: name folding, LIKE patterns, whitelisted filters and ordering.
package repository

import (
	"database/sql"
	"fmt"
	"sort"
	"strings"
)

// nullIfEmpty stores blank optional columns as NULL so the unique indexes
// on website and facebook_link ignore rows that leave them empty.
func nullIfEmpty(s string) any {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return s
}

// likeEscape is the escape character used by substring searches.  "!" is
// used instead of a backslash because MySQL and SQLite treat backslashes in
// string literals differently.
const likeEscape = "!"

// foldName is the case folding applied to names before they are stored in
// name_search and to search terms before matching.  Folding both sides in
// Go keeps non-ASCII letters searchable on SQLite, whose LOWER only maps ASCII.
func foldName(s string) string {
	return strings.ToLower(s)
}

// containsPattern builds a LIKE pattern matching the folded term anywhere
// in name_search, with wildcards in term matched literally.
func containsPattern(term string) string {
	r := strings.NewReplacer(likeEscape, likeEscape+likeEscape, "%", likeEscape+"%", "_", likeEscape+"_")
	return "%" + r.Replace(foldName(term)) + "%"
}

// whereEquals turns fields into "a = ? AND b = ?" over the allowed
// columns.  Keys are sorted so the generated SQL is stable.
func whereEquals(fields map[string]any, allowed map[string]bool) (string, []any, error) {
	if len(fields) == 0 {
		return "1=1", nil, nil
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		if !allowed[k] {
			return "", nil, fmt.Errorf("filter on unknown field %q", k)
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	conds := make([]string, 0, len(keys))
	args := make([]any, 0, len(keys))
	for _, k := range keys {
		conds = append(conds, k+" = ?")
		args = append(args, fields[k])
	}
	return strings.Join(conds, " AND "), args, nil
}

// orderClause resolves a caller-supplied sort key against a whitelist,
// falling back to id.
func orderClause(orderBy string, allowed map[string]string) string {
	if c, ok := allowed[strings.ToLower(strings.TrimSpace(orderBy))]; ok {
		return c
	}
	return "id"
}

// requireRow turns an UPDATE or DELETE that matched nothing into
// sql.ErrNoRows, which classify reports as KindNotFound.
func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
