package news

// Summary types the model is allowed to emit. Anything else is coerced to
// TypeNews when a response is parsed.
const (
	TypeNews            = "news"
	TypeHowto           = "howto"
	TypeTroubleshooting = "troubleshooting"
	TypeAnnouncement    = "announcement"
	TypeVideo           = "video"
)

// FallbackBullet is the placeholder text used when a batch could not be
// summarized (model call failed or the response was not valid JSON).
const (
	FallbackBullet       = "Summary not available due to parsing error"
	FallbackWhyItMatters = "Content needs manual review"
)

// SummaryRequest is the per-article input embedded into a batch prompt.
type SummaryRequest struct {
	Title string `json:"title"`
	URL   string `json:"url"`
	Text  string `json:"text"`
}

// SummaryResult is one structured summary, either parsed from a model
// response or synthesized as a fallback. Immutable once created.
type SummaryResult struct {
	Title        string   `json:"title"`
	URL          string   `json:"url"`
	Bullets      []string `json:"bullets"`
	WhyItMatters string   `json:"why_it_matters"`
	Type         string   `json:"type"`
	KeyCommands  []string `json:"key_commands,omitempty"`
	Caveats      []string `json:"caveats,omitempty"`
}

// Normalize fills the defaults for fields the model is allowed to omit.
func (s *SummaryResult) Normalize() {
	if s.Bullets == nil {
		s.Bullets = []string{}
	}
	if s.KeyCommands == nil {
		s.KeyCommands = []string{}
	}
	if s.Caveats == nil {
		s.Caveats = []string{}
	}
	switch s.Type {
	case TypeNews, TypeHowto, TypeTroubleshooting, TypeAnnouncement, TypeVideo:
	default:
		s.Type = TypeNews
	}
}

// FallbackResult builds the degraded placeholder summary for a request.
func FallbackResult(req SummaryRequest) SummaryResult {
	return SummaryResult{
		Title:        req.Title,
		URL:          req.URL,
		Bullets:      []string{FallbackBullet},
		WhyItMatters: FallbackWhyItMatters,
		Type:         TypeNews,
		KeyCommands:  []string{},
		Caveats:      []string{},
	}
}
