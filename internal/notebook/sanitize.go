// Package notebook repairs the structure of parsed notebook documents so
// they pass strict nbformat validation. Repairs are type coercions only;
// cell code and prose are never rewritten.
package notebook

import (
	"encoding/json"
	"strings"

	"github.com/hpungsan/nbtidy/internal/nbjson"
)

const (
	// FormatMajor is the nbformat major version every document is pinned to.
	FormatMajor = 4
	// FormatMinorDefault replaces a missing or wrong-typed nbformat_minor.
	FormatMinorDefault = 5

	// Extension is the notebook file extension.
	Extension = ".ipynb"
	// CheckpointDir is the Jupyter autosave directory skipped by discovery.
	CheckpointDir = ".ipynb_checkpoints"
)

// Options controls a sanitize pass.
type Options struct {
	// StripOutputs empties every code cell's outputs instead of
	// normalizing them.
	StripOutputs bool

	// Defaults for repaired metadata. Zero values fall back to the
	// standard Python kernel identity.
	Language          string
	KernelName        string
	KernelDisplayName string
}

func (o Options) withDefaults() Options {
	if o.Language == "" {
		o.Language = "python"
	}
	if o.KernelName == "" {
		o.KernelName = "python3"
	}
	if o.KernelDisplayName == "" {
		o.KernelDisplayName = "Python 3"
	}
	return o
}

// Sanitize applies the repair rules to doc in place and reports whether
// anything was mutated. Every structural deviation is repaired silently;
// Sanitize never fails on a decoded document.
func Sanitize(doc *nbjson.Map, opts Options) bool {
	opts = opts.withDefaults()
	changed := false

	if v, ok := doc.Get("nbformat"); !ok || !isIntEqual(v, FormatMajor) {
		doc.Set("nbformat", FormatMajor)
		changed = true
	}
	if v, ok := doc.Get("nbformat_minor"); !ok || !isInt(v) {
		doc.Set("nbformat_minor", FormatMinorDefault)
		changed = true
	}

	metaV, ok := doc.Get("metadata")
	meta, isMap := asMap(metaV)
	if !ok || !isMap {
		meta = nbjson.NewMap()
		doc.Set("metadata", meta)
		changed = true
	}
	if sanitizeLanguageInfo(meta, opts) {
		changed = true
	}
	if sanitizeKernelspec(meta, opts) {
		changed = true
	}

	cellsV, ok := doc.Get("cells")
	cells, isList := cellsV.([]any)
	if !ok || !isList {
		cells = []any{}
		doc.Set("cells", cells)
		changed = true
	}
	for _, cv := range cells {
		cell, ok := asMap(cv)
		if !ok {
			continue
		}
		if sanitizeCell(cell, opts) {
			changed = true
		}
	}

	return changed
}

func sanitizeLanguageInfo(meta *nbjson.Map, opts Options) bool {
	liV, ok := meta.Get("language_info")
	li, isMap := asMap(liV)
	if !ok || !isMap {
		li = nbjson.NewMap()
		li.Set("name", opts.Language)
		meta.Set("language_info", li)
		return true
	}
	if name, ok := li.Get("name"); !ok || !isString(name) {
		li.Set("name", opts.Language)
		return true
	}
	return false
}

// Kernelspec only backfills missing or null fields; some viewers refuse
// documents without one.
func sanitizeKernelspec(meta *nbjson.Map, opts Options) bool {
	ksV, ok := meta.Get("kernelspec")
	ks, isMap := asMap(ksV)
	if !ok || !isMap {
		ks = nbjson.NewMap()
		ks.Set("name", opts.KernelName)
		ks.Set("display_name", opts.KernelDisplayName)
		meta.Set("kernelspec", ks)
		return true
	}
	changed := false
	if v, ok := ks.Get("name"); !ok || v == nil {
		ks.Set("name", opts.KernelName)
		changed = true
	}
	if v, ok := ks.Get("display_name"); !ok || v == nil {
		ks.Set("display_name", opts.KernelDisplayName)
		changed = true
	}
	return changed
}

func sanitizeCell(cell *nbjson.Map, opts Options) bool {
	changed := false

	if v, ok := cell.Get("id"); !ok || !isNonEmptyString(v) {
		cell.Set("id", NewCellID())
		changed = true
	}

	if v, ok := cell.Get("source"); ok && !isString(v) {
		cell.Set("source", ToString(v))
		changed = true
	}

	mdV, ok := cell.Get("metadata")
	md, isMap := asMap(mdV)
	if !ok || !isMap {
		md = nbjson.NewMap()
		cell.Set("metadata", md)
		changed = true
	}
	if sanitizeTags(md) {
		changed = true
	}
	if sanitizeExecutionMeta(md) {
		changed = true
	}

	cellType, _ := cell.Get("cell_type")
	ct, _ := cellType.(string)

	if ct == "markdown" || ct == "raw" {
		if v, ok := cell.Get("attachments"); ok {
			if _, isMap := asMap(v); !isMap {
				cell.Set("attachments", nbjson.NewMap())
				changed = true
			}
		}
	}

	if ct == "code" {
		if opts.StripOutputs {
			if stripOutputs(cell) {
				changed = true
			}
		} else if sanitizeOutputs(cell) {
			changed = true
		}
	}

	return changed
}

// sanitizeTags coerces every non-null tag to a string and drops nulls.
// The list is replaced only when the repaired form differs by value.
func sanitizeTags(md *nbjson.Map) bool {
	v, ok := md.Get("tags")
	if !ok {
		return false
	}
	tags, isList := v.([]any)
	if !isList {
		return false
	}
	cleaned := make([]string, 0, len(tags))
	for _, t := range tags {
		if t == nil {
			continue
		}
		cleaned = append(cleaned, ToString(t))
	}
	if stringsEqual(tags, cleaned) {
		return false
	}
	md.Set("tags", toAnySlice(cleaned))
	return true
}

// sanitizeExecutionMeta coerces cell.metadata.execution values to strings.
// Viewers reject numeric timestamps there.
func sanitizeExecutionMeta(md *nbjson.Map) bool {
	v, ok := md.Get("execution")
	if !ok {
		return false
	}
	exec, isMap := asMap(v)
	if !isMap {
		return false
	}
	changed := false
	for pair := exec.Oldest(); pair != nil; pair = pair.Next() {
		if !isString(pair.Value) {
			pair.Value = ToString(pair.Value)
			changed = true
		}
	}
	return changed
}

// stripOutputs empties the outputs list and nulls the execution count.
func stripOutputs(cell *nbjson.Map) bool {
	changed := false
	if v, ok := cell.Get("outputs"); ok && nonEmpty(v) {
		changed = true
	}
	cell.Set("outputs", []any{})
	if v, ok := cell.Get("execution_count"); ok && v != nil {
		cell.Set("execution_count", nil)
		changed = true
	}
	return changed
}

func sanitizeOutputs(cell *nbjson.Map) bool {
	changed := false

	outsV, ok := cell.Get("outputs")
	if ok && outsV != nil {
		outs, isList := outsV.([]any)
		if !isList {
			outs = []any{}
			cell.Set("outputs", outs)
			changed = true
		}
		for _, ov := range outs {
			out, ok := asMap(ov)
			if !ok {
				continue
			}
			if sanitizeOutput(out) {
				changed = true
			}
		}
	}

	if v, ok := cell.Get("execution_count"); ok && v != nil && !isInt(v) {
		cell.Set("execution_count", nil)
		changed = true
	}
	return changed
}

func sanitizeOutput(out *nbjson.Map) bool {
	changed := false

	if v, ok := out.Get("metadata"); ok {
		if _, isMap := asMap(v); !isMap {
			out.Set("metadata", nbjson.NewMap())
			changed = true
		}
	}

	otV, _ := out.Get("output_type")
	ot, _ := otV.(string)

	switch ot {
	case "stream":
		for _, field := range []string{"text", "name"} {
			if v, ok := out.Get(field); ok && !isString(v) {
				out.Set(field, ToString(v))
				changed = true
			}
		}

	case "display_data", "execute_result":
		if sanitizeMimeData(out) {
			changed = true
		}
		if ot == "execute_result" {
			if v, ok := out.Get("execution_count"); ok && v != nil && !isInt(v) {
				out.Set("execution_count", nil)
				changed = true
			}
		}

	case "error":
		if sanitizeTraceback(out) {
			changed = true
		}
		for _, field := range []string{"ename", "evalue"} {
			if v, ok := out.Get(field); ok && !isString(v) {
				out.Set(field, ToString(v))
				changed = true
			}
		}

	default:
		// Unknown output types pass through untouched.
	}

	return changed
}

// sanitizeMimeData repairs the data bundle of a rich output. Textual and
// image mime types must carry strings; other mime types keep structured
// values and only have stray scalars coerced.
func sanitizeMimeData(out *nbjson.Map) bool {
	dataV, ok := out.Get("data")
	if !ok || dataV == nil {
		return false
	}
	data, isMap := asMap(dataV)
	if !isMap {
		out.Set("data", nbjson.NewMap())
		return true
	}
	changed := false
	for pair := data.Oldest(); pair != nil; pair = pair.Next() {
		if isTextualMime(pair.Key) {
			if !isString(pair.Value) {
				pair.Value = ToString(pair.Value)
				changed = true
			}
			continue
		}
		switch pair.Value.(type) {
		case string, []any, *nbjson.Map:
			// structured payloads stay as-is
		default:
			pair.Value = ToString(pair.Value)
			changed = true
		}
	}
	return changed
}

// sanitizeTraceback forces traceback into a list of strings; a scalar is
// wrapped in a single-element list.
func sanitizeTraceback(out *nbjson.Map) bool {
	v, ok := out.Get("traceback")
	if !ok {
		return false
	}
	tb, isList := v.([]any)
	if !isList {
		out.Set("traceback", []any{ToString(v)})
		return true
	}
	coerced := make([]string, len(tb))
	for i, el := range tb {
		coerced[i] = ToString(el)
	}
	if stringsEqual(tb, coerced) {
		return false
	}
	out.Set("traceback", toAnySlice(coerced))
	return true
}

func isTextualMime(key string) bool {
	return strings.HasPrefix(key, "text/") || strings.HasPrefix(key, "image/")
}

// Value helpers

func asMap(v any) (*nbjson.Map, bool) {
	m, ok := v.(*nbjson.Map)
	return m, ok
}

func isString(v any) bool {
	_, ok := v.(string)
	return ok
}

func isNonEmptyString(v any) bool {
	s, ok := v.(string)
	return ok && s != ""
}

func isInt(v any) bool {
	switch t := v.(type) {
	case int, int64:
		return true
	case json.Number:
		_, err := t.Int64()
		return err == nil
	default:
		return false
	}
}

func isIntEqual(v any, want int64) bool {
	switch t := v.(type) {
	case int:
		return int64(t) == want
	case int64:
		return t == want
	case json.Number:
		n, err := t.Int64()
		return err == nil && n == want
	default:
		return false
	}
}

// stringsEqual compares a raw decoded list against its coerced form.
func stringsEqual(raw []any, coerced []string) bool {
	if len(raw) != len(coerced) {
		return false
	}
	for i := range raw {
		s, ok := raw[i].(string)
		if !ok || s != coerced[i] {
			return false
		}
	}
	return true
}

func toAnySlice(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

// nonEmpty mirrors the truthiness check used when deciding whether
// stripping outputs actually discarded anything.
func nonEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return t != ""
	case bool:
		return t
	case []any:
		return len(t) > 0
	case *nbjson.Map:
		return t.Len() > 0
	case json.Number:
		f, err := t.Float64()
		return err != nil || f != 0
	default:
		return true
	}
}
