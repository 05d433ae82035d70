package model

// Confidence ranks how authoritative a location inference is.
type Confidence int

const (
	ConfidenceNone Confidence = iota
	ConfidenceLow
	ConfidenceMedium
	ConfidenceHigh
)

func (c Confidence) String() string {
	switch c {
	case ConfidenceLow:
		return "low"
	case ConfidenceMedium:
		return "medium"
	case ConfidenceHigh:
		return "high"
	default:
		return "none"
	}
}

// MarshalText encodes the confidence by name.
func (c Confidence) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText decodes a confidence name. Unknown names decode to none.
func (c *Confidence) UnmarshalText(b []byte) error {
	switch string(b) {
	case "low":
		*c = ConfidenceLow
	case "medium":
		*c = ConfidenceMedium
	case "high":
		*c = ConfidenceHigh
	default:
		*c = ConfidenceNone
	}
	return nil
}

// LocationMethod names the extraction stage that produced a signal.
type LocationMethod string

const (
	MethodNone           LocationMethod = "none"
	MethodStructuredData LocationMethod = "structured_data"
	MethodPageText       LocationMethod = "page_text"
	MethodContactPage    LocationMethod = "contact_page"
)

// LocationSignal is the region inferred for a URL. Empty strings mean the
// field could not be determined.
type LocationSignal struct {
	Region      string         `json:"region,omitempty"`
	City        string         `json:"city,omitempty"`
	PostalCode  string         `json:"postal_code,omitempty"`
	PhoneNumber string         `json:"phone_number,omitempty"`
	Confidence  Confidence     `json:"confidence"`
	Method      LocationMethod `json:"method"`
}

// NoLocation returns the empty signal.
func NoLocation() LocationSignal {
	return LocationSignal{Confidence: ConfidenceNone, Method: MethodNone}
}

// Found reports whether a region was inferred.
func (l LocationSignal) Found() bool {
	return l.Region != "" && l.Confidence > ConfidenceNone
}
