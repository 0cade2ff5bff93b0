package eoscalc

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// wire names of the ASP.NET protocol fields
const (
	field_event_target         = "__EVENTTARGET"
	field_event_argument       = "__EVENTARGUMENT"
	field_viewstate            = "__VIEWSTATE"
	field_viewstate_generator  = "__VIEWSTATEGENERATOR"
	field_event_validation     = "__EVENTVALIDATION"
	field_async_post           = "__ASYNCPOST"
	field_script_manager       = "ctl00$ScriptManager1"
	control_calculate          = "ctl00$phContent$btnCalculate"
	control_calculate_value    = "Calculate"
	panel_calculator           = "ctl00$phContent$upCalculator"
	radio_on                   = "on"
	antibiotics_none           = "None"
	result_risk_at_birth       = "phContent_lblRiskAtBirth"
	result_risk_well_appearing = "phContent_lblRiskWellAppearing"
	result_risk_equivocal      = "phContent_lblRiskEquivocal"
	result_risk_clinical       = "phContent_lblRiskClinicalIllness"
)

// FieldNames are the wire names of every domain input for one model.
type FieldNames struct {
	GAWeeks     string
	GADays      string
	Temperature string
	ROMHours    string
	GBS         string
	AbxType     string
	AbxDuration string
	Clinical    string
	Incidence   string
}

// Variant is everything about the form's wire vocabulary that depends on which
// model is selected.
type Variant struct {
	Mode SubMode

	// SelectorField is the radio group that picks the model and SelectorValue
	// the value that picks this one.
	SelectorField string
	SelectorValue string
	// SelectorControl is the unique id of the radio item, it is what the
	// server sees as the trigger of a model switch.
	SelectorControl string

	Fields FieldNames
	// EchoFields are radio buttons the browser submits as "on" while this model
	// is showing.
	EchoFields []string

	gbs        map[string]string
	intercepts map[string]string
}

var variant2017 = Variant{
	Mode:            Mode2017,
	SelectorField:   "ctl00$phContent$rblSepsisModel",
	SelectorValue:   "2017",
	SelectorControl: "ctl00$phContent$rblSepsisModel$0",
	Fields: FieldNames{
		GAWeeks:     "ctl00$phContent$ddlGA_Weeks",
		GADays:      "ctl00$phContent$ddlGA_Days",
		Temperature: "ctl00$phContent$txtHighestMaternalAntepartumTemperature",
		ROMHours:    "ctl00$phContent$txtRuptureOfMembranesHrs",
		GBS:         "ctl00$phContent$ddlGBS",
		AbxType:     "ctl00$phContent$ddlAntibiotics",
		AbxDuration: "ctl00$phContent$ddlAntibioticDuration",
		Clinical:    "ctl00$phContent$ddlClinicalPresentation",
		Incidence:   "ctl00$phContent$ddlIncidence",
	},
	EchoFields: []string{
		"ctl00$phContent$rbTempFahrenheit",
		"ctl00$phContent$rbRomHours",
	},
	gbs: map[string]string{
		"negative": "Negative",
		"positive": "Positive",
		"unknown":  "Unknown",
	},
	// incidence per 1000 live births -> model intercept, as offered by the
	// 2017 incidence dropdown
	intercepts: map[string]string{
		"0.1": "40.8971",
		"0.2": "41.5901",
		"0.3": "41.9958",
		"0.4": "42.2835",
		"0.5": "42.5067",
		"0.6": "42.6891",
		"1":   "43.1999",
		"2":   "43.8930",
		"4":   "44.5861",
	},
}

var variant2024 = Variant{
	Mode:            Mode2024,
	SelectorField:   "ctl00$phContent$rblSepsisModel",
	SelectorValue:   "2024",
	SelectorControl: "ctl00$phContent$rblSepsisModel$1",
	Fields: FieldNames{
		GAWeeks:     "ctl00$phContent$ddlGA_Weeks",
		GADays:      "ctl00$phContent$ddlGA_Days",
		Temperature: "ctl00$phContent$txtHighestMaternalAntepartumTemperature",
		ROMHours:    "ctl00$phContent$txtRuptureOfMembranesHrs",
		GBS:         "ctl00$phContent$ddlGBS2024",
		AbxType:     "ctl00$phContent$ddlAntibiotics2024",
		AbxDuration: "ctl00$phContent$ddlAntibioticDuration2024",
		Clinical:    "ctl00$phContent$ddlClinicalPresentation",
		Incidence:   "ctl00$phContent$ddlIncidence2024",
	},
	EchoFields: []string{
		"ctl00$phContent$rbTempFahrenheit2024",
		"ctl00$phContent$rbRomHours2024",
	},
	gbs: map[string]string{
		"negative": "0",
		"positive": "1",
		"unknown":  "2",
	},
	// the 2024 model was refit, its intercepts share no values with 2017
	intercepts: map[string]string{
		"0.1": "-7.5621",
		"0.2": "-6.8690",
		"0.3": "-6.4635",
		"0.4": "-6.1758",
		"0.5": "-5.9527",
		"0.6": "-5.7704",
		"1":   "-5.2596",
		"2":   "-4.5664",
		"4":   "-3.8733",
	},
}

var variants = map[SubMode]Variant{
	Mode2017: variant2017,
	Mode2024: variant2024,
}

// VariantOf returns the wire vocabulary of a model.
func VariantOf(mode SubMode) (Variant, error) {
	v, ok := variants[mode]
	if !ok {
		return Variant{}, fmt.Errorf("%w: unknown model %q", ErrInvalidParameters, mode)
	}
	return v, nil
}

// NormalizeIncidence turns equivalent spellings of an incidence ("0.50",
// " .5") into the key used by the intercept tables.
func NormalizeIncidence(category string) string {
	category = strings.TrimSpace(category)
	f, err := strconv.ParseFloat(category, 64)
	if err != nil {
		return category
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Intercept looks up the wire value of an incidence category in this model's
// own table, `ok` is false if the model has no such category.
func (v Variant) Intercept(category string) (value string, ok bool) {
	value, ok = v.intercepts[NormalizeIncidence(category)]
	return value, ok
}

// Incidences lists the categories this model accepts, in ascending order.
func (v Variant) Incidences() []string {
	out := make([]string, 0, len(v.intercepts))
	for k := range v.intercepts {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool {
		a, _ := strconv.ParseFloat(out[i], 64)
		b, _ := strconv.ParseFloat(out[j], 64)
		return a < b
	})
	return out
}

// GBSValue translates a GBS status label (Negative, Positive, Unknown) into
// this model's vocabulary.
func (v Variant) GBSValue(status string) (string, error) {
	value, ok := v.gbs[strings.ToLower(strings.TrimSpace(status))]
	if !ok {
		return "", fmt.Errorf("%w: unknown gbs status %q", ErrInvalidParameters, status)
	}
	return value, nil
}
