package fields

import (
	"strings"

	"github.com/fieldlens-labs/fieldlens/pkg/catalog"
)

// Rewrite replaces every bracketed identifier in the formula whose folded
// inner text matches a display-name key with the mapped friendly name.
// Unknown tokens and everything outside brackets pass through verbatim.
//
// The scan is a single left-to-right pass over the input; replacement
// output is never rescanned, so applying Rewrite twice with the same map
// yields the same text as applying it once. A bracketed token is matched
// whole, which makes overlapping identifiers ("Sales" vs "Sales Amount")
// resolve to the full token's mapping.
func Rewrite(formula string, names map[string]string) string {
	if formula == "" || !strings.ContainsRune(formula, '[') {
		return formula
	}

	var b strings.Builder
	b.Grow(len(formula))
	for i := 0; i < len(formula); {
		if formula[i] != '[' {
			b.WriteByte(formula[i])
			i++
			continue
		}
		rel := strings.IndexByte(formula[i+1:], ']')
		if rel < 0 {
			// Unterminated token: not an identifier, keep the tail as-is.
			b.WriteString(formula[i:])
			break
		}
		token := formula[i+1 : i+1+rel]
		if friendly, ok := names[catalog.Fold(token)]; ok {
			b.WriteString(friendly)
		} else {
			b.WriteString(formula[i : i+rel+2])
		}
		i += rel + 2
	}
	return b.String()
}

// RewriteAll rewrites every record's formula in place. Original formula
// text stays available on RawFormula.
func RewriteAll(records []*catalog.Field, names map[string]string) {
	for _, f := range records {
		if f.Formula == "" {
			continue
		}
		f.Formula = Rewrite(f.Formula, names)
	}
}

// Tokens returns the inner text of every bracketed token in the formula,
// in order of appearance, multiplicity preserved.
func Tokens(formula string) []string {
	var out []string
	for i := 0; i < len(formula); {
		if formula[i] != '[' {
			i++
			continue
		}
		rel := strings.IndexByte(formula[i+1:], ']')
		if rel < 0 {
			break
		}
		out = append(out, formula[i+1:i+1+rel])
		i += rel + 2
	}
	return out
}
