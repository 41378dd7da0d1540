package submission

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/trezcool/darasa/core"
)

// DecodeBatch converts the raw "submissions" value of a batch request into Requests.
// Wrongly typed values are reported as field errors under the batch field keys instead of failing the whole decode.
// Integer strings are accepted as assignment IDs. Missing or null fields decode to zero values,
// which ValidateBatch then reports as required.
func DecodeBatch(raw json.RawMessage) ([]Request, []core.FieldError) {
	if isNull(raw) {
		return nil, nil
	}

	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return nil, []core.FieldError{{Field: fieldSubmissions, Error: msgSubmissionsNotArray}}
	}
	if fe, ok := batchSizeRule(make([]Request, len(elems))); !ok {
		return nil, []core.FieldError{fe}
	}

	items := make([]Request, len(elems))
	var flds []core.FieldError
	for i, elem := range elems {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(elem, &fields); err != nil {
			continue // not an object: every field is missing
		}

		id, ok := decodeAssignmentID(fields["assignment_id"])
		if !ok {
			flds = append(flds, core.FieldError{Field: fieldAssignmentID, Error: msgAssignmentNotInteger})
		}
		content, ok := decodeContent(fields["content"])
		if !ok {
			flds = append(flds, core.FieldError{Field: fieldContent, Error: msgContentNotString})
		}
		items[i] = Request{AssignmentID: id, Content: content}
	}
	return items, flds
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || string(trimmed) == "null"
}

func decodeAssignmentID(raw json.RawMessage) (int, bool) {
	if isNull(raw) {
		return 0, true
	}

	var val interface{}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&val); err != nil {
		return 0, false
	}

	switch v := val.(type) {
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return int(n), true
		}
		if f, err := v.Float64(); err == nil && f == math.Trunc(f) && math.Abs(f) <= math.MaxInt32 {
			return int(f), true
		}
	case string:
		if strings.TrimSpace(v) == "" {
			return 0, true
		}
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n, true
		}
	}
	return 0, false
}

func decodeContent(raw json.RawMessage) (string, bool) {
	if isNull(raw) {
		return "", true
	}
	var content string
	if err := json.Unmarshal(raw, &content); err != nil {
		return "", false
	}
	return content, true
}
