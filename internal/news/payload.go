package news

import "encoding/json"

// Payload is the persisted artifact consumed by the frontend. It is written
// wholesale on every run; unknown top-level keys found in an existing file
// are kept in Extra and written back untouched.
type Payload struct {
	Summaries   []SummaryResult
	LastUpdated string
	TotalItems  int
	Extra       map[string]any
}

// EmptyPayload is what a missing artifact loads as.
func EmptyPayload() Payload {
	return Payload{Summaries: []SummaryResult{}}
}

func (p Payload) MarshalJSON() ([]byte, error) {
	doc := make(map[string]any, len(p.Extra)+3)
	for k, v := range p.Extra {
		doc[k] = v
	}
	items := p.Summaries
	if items == nil {
		items = []SummaryResult{}
	}
	doc["items"] = items
	if p.LastUpdated != "" {
		doc["last_updated"] = p.LastUpdated
	}
	doc["total_items"] = p.TotalItems
	return json.Marshal(doc)
}

func (p *Payload) UnmarshalJSON(data []byte) error {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}

	p.Summaries = []SummaryResult{}
	if raw, ok := doc["items"]; ok {
		if err := json.Unmarshal(raw, &p.Summaries); err != nil {
			return err
		}
		for i := range p.Summaries {
			p.Summaries[i].Normalize()
		}
		delete(doc, "items")
	}
	if raw, ok := doc["last_updated"]; ok {
		if err := json.Unmarshal(raw, &p.LastUpdated); err != nil {
			return err
		}
		delete(doc, "last_updated")
	}
	if raw, ok := doc["total_items"]; ok {
		if err := json.Unmarshal(raw, &p.TotalItems); err != nil {
			return err
		}
		delete(doc, "total_items")
	}

	p.Extra = nil
	if len(doc) > 0 {
		p.Extra = make(map[string]any, len(doc))
		for k, raw := range doc {
			var v any
			if err := json.Unmarshal(raw, &v); err != nil {
				return err
			}
			p.Extra[k] = v
		}
	}
	return nil
}
