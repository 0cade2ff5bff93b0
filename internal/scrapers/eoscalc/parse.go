package eoscalc

import (
	"eoscollect/pkg/htmlutil"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var resultIds = [4]string{
	result_risk_at_birth,
	result_risk_well_appearing,
	result_risk_equivocal,
	result_risk_clinical,
}

// error containers the form renders, the server leaves most of them in the
// page with display:none when nothing is wrong
const errorSelector = `#phContent_lblError, span.validator, span[id^="phContent_val"]`

var numberRegex = regexp.MustCompile(`^[-+]?(?:\d+(?:\.\d*)?|\.\d+)$`)

// parseNumber returns nil for anything that is not a plain decimal number,
// including empty text.
func parseNumber(text string) *float64 {
	text = strings.TrimSpace(text)
	if !numberRegex.MatchString(text) {
		return nil
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return nil
	}
	return &f
}

func resultFromValues(values [4]*float64, diagnostic string) ExchangeResult {
	return ExchangeResult{
		RiskAtBirth:         values[0],
		RiskWellAppearing:   values[1],
		RiskEquivocal:       values[2],
		RiskClinicalIllness: values[3],
		Diagnostic:          diagnostic,
	}
}

// ParseResponse reads the risk values and any visible error text out of a
// compute response. It never fails, what cannot be read is left absent.
func ParseResponse(body string, encoding Encoding) ExchangeResult {
	switch encoding {
	case ENCODING_DELTA:
		return parseDelta(body)
	default:
		return parseMarkup(body)
	}
}

func parseMarkup(body string) ExchangeResult {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return ExchangeResult{Diagnostic: fmt.Sprintf("parse response: %s", err.Error())}
	}

	var values [4]*float64
	for i, id := range resultIds {
		el := doc.Find(fmt.Sprintf("#%s", id)).First()
		if el.Length() == 0 {
			continue
		}
		values[i] = parseNumber(el.Text())
	}

	return resultFromValues(values, activeErrors(doc))
}

// activeErrors joins the text of every error container that is both visible
// and non-empty.
func activeErrors(doc *goquery.Document) string {
	var messages []string
	seen := map[string]bool{}
	doc.Find(errorSelector).Each(func(_ int, s *goquery.Selection) {
		if htmlutil.IsHidden(s) {
			return
		}
		text := htmlutil.CleanText(s)
		if text == "" || seen[text] {
			return
		}
		seen[text] = true
		messages = append(messages, text)
	})
	return strings.Join(messages, "; ")
}

var deltaResultRegexes = func() [4]*regexp.Regexp {
	var out [4]*regexp.Regexp
	for i, id := range resultIds {
		out[i] = regexp.MustCompile(
			`<[A-Za-z]+[^>]*\bid="` + regexp.QuoteMeta(id) + `"[^>]*>\s*([-+]?(?:\d+(?:\.\d*)?|\.\d+))\s*<`,
		)
	}
	return out
}()

// segments look like `<length>|error|<status>|<message>|`
var deltaErrorRegex = regexp.MustCompile(`(?:^|\|)\d+\|error\|(\d*)\|([^|]*)\|`)

// parseDelta pattern matches result fragments out of a delta frame, it does not
// parse the frame grammar itself.
func parseDelta(body string) ExchangeResult {
	var values [4]*float64
	for i, re := range deltaResultRegexes {
		groups := re.FindStringSubmatch(body)
		if len(groups) < 2 {
			continue
		}
		values[i] = parseNumber(groups[1])
	}

	var diagnostics []string
	if groups := deltaErrorRegex.FindStringSubmatch(body); len(groups) >= 3 {
		diagnostics = append(diagnostics, fmt.Sprintf("server error %s: %s", groups[1], strings.TrimSpace(groups[2])))
	}
	// the html parser accepts anything, the pipes just end up as text
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err == nil {
		if text := activeErrors(doc); text != "" {
			diagnostics = append(diagnostics, text)
		}
	}

	return resultFromValues(values, strings.Join(diagnostics, "; "))
}
