package pipeline

import "encoding/json"

// ReduceExtracted normalizes the JSON-encoded extraction result of a
// detail page to a tagged payload. Extractors emit either a single
// object or a list of objects; a list is reduced to its first element.
// Anything that is not an object after reduction is tagged
// PayloadNonMapping so callers can record it as a layout failure
// rather than crash or mis-save it.
func ReduceExtracted(raw []byte) DetailPayload {
	var head json.RawMessage = raw
	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err == nil {
		if len(list) == 0 {
			return DetailPayload{Kind: PayloadEmpty}
		}
		head = list[0]
	}

	var fields map[string]string
	if err := json.Unmarshal(head, &fields); err != nil {
		// An object with non-string values still counts as a mapping;
		// coerce value-by-value before giving up.
		var loose map[string]json.RawMessage
		if err := json.Unmarshal(head, &loose); err != nil {
			return DetailPayload{Kind: PayloadNonMapping}
		}
		fields = make(map[string]string, len(loose))
		for k, v := range loose {
			var s string
			if err := json.Unmarshal(v, &s); err == nil {
				fields[k] = s
			} else {
				fields[k] = string(v)
			}
		}
	}
	if len(fields) == 0 {
		return DetailPayload{Kind: PayloadEmpty}
	}
	return DetailPayload{Kind: PayloadFields, Fields: fields}
}
