package location

import (
	"encoding/json"
	"maps"
	"slices"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/sells-group/homepage-finder/internal/model"
	"github.com/sells-group/homepage-finder/internal/region"
)

// structuredFields collects address data from JSON-LD and microdata.
type structuredFields struct {
	regions    []string
	localities []string
	addresses  []string
	postals    []string
	phones     []string
}

// structuredData reads schema.org address and telephone fields. A region
// named directly, derivable from the address text, the postal code or the
// telephone area code yields a high-confidence signal.
func structuredData(doc *goquery.Document) (model.LocationSignal, bool) {
	var f structuredFields

	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		var v any
		if err := json.Unmarshal([]byte(strings.TrimSpace(s.Text())), &v); err != nil {
			return
		}
		f.walk(v)
	})

	doc.Find("[itemprop]").Each(func(_ int, s *goquery.Selection) {
		prop, _ := s.Attr("itemprop")
		val := strings.TrimSpace(s.AttrOr("content", s.Text()))
		if val == "" {
			return
		}
		switch prop {
		case "addressRegion":
			f.regions = append(f.regions, val)
		case "addressLocality":
			f.localities = append(f.localities, val)
		case "streetAddress", "address":
			f.addresses = append(f.addresses, val)
		case "postalCode":
			f.postals = append(f.postals, val)
		case "telephone":
			f.phones = append(f.phones, val)
		}
	})

	return f.signal()
}

func (f *structuredFields) walk(v any) {
	switch t := v.(type) {
	case []any:
		for _, item := range t {
			f.walk(item)
		}
	case map[string]any:
		// Sorted keys keep the result stable for pages with several addresses.
		for _, key := range slices.Sorted(maps.Keys(t)) {
			val := t[key]
			switch key {
			case "address", "location":
				if s, ok := val.(string); ok {
					f.addresses = append(f.addresses, s)
				} else {
					f.walk(val)
				}
			case "addressRegion":
				f.appendString(&f.regions, val)
			case "addressLocality":
				f.appendString(&f.localities, val)
			case "streetAddress":
				f.appendString(&f.addresses, val)
			case "postalCode":
				f.appendString(&f.postals, val)
			case "telephone":
				f.appendString(&f.phones, val)
			case "@graph", "contactPoint", "department", "subOrganization", "parentOrganization", "mainEntity", "itemListElement":
				f.walk(val)
			}
		}
	}
}

func (f *structuredFields) appendString(dst *[]string, v any) {
	switch t := v.(type) {
	case string:
		if s := strings.TrimSpace(t); s != "" {
			*dst = append(*dst, s)
		}
	case []any:
		for _, item := range t {
			f.appendString(dst, item)
		}
	}
}

func (f *structuredFields) signal() (model.LocationSignal, bool) {
	sig := model.LocationSignal{
		Confidence: model.ConfidenceHigh,
		Method:     model.MethodStructuredData,
	}
	if len(f.localities) > 0 {
		sig.City = f.localities[0]
	}
	if len(f.postals) > 0 {
		sig.PostalCode = f.postals[0]
	}
	if len(f.phones) > 0 {
		sig.PhoneNumber = f.phones[0]
	}

	for _, r := range f.regions {
		if name := region.Canonicalize(r); name != "" {
			sig.Region = name
			return sig, true
		}
		if name := region.First(r); name != "" {
			sig.Region = name
			return sig, true
		}
	}
	for _, a := range append(append([]string{}, f.addresses...), f.localities...) {
		if name := region.First(a); name != "" {
			sig.Region = name
			if sig.City == "" {
				sig.City = region.FindCity(a)
			}
			return sig, true
		}
	}
	for _, p := range f.postals {
		if name := region.FromPostalCode(p); name != "" {
			sig.Region, sig.PostalCode = name, p
			return sig, true
		}
	}
	for _, p := range f.phones {
		if name := region.FromPhone(p); name != "" {
			sig.Region, sig.PhoneNumber = name, p
			return sig, true
		}
	}
	return model.LocationSignal{}, false
}
