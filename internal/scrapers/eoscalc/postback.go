package eoscalc

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// request is a postback that is ready to be sent.
type request struct {
	fields url.Values
	async  bool
}

// encoding is the body format the server answers this request with.
func (r request) encoding() Encoding {
	if r.async {
		return ENCODING_DELTA
	}
	return ENCODING_MARKUP
}

// fullPostback is a plain form submission of the tokens and the model
// selector, it carries no AJAX fields.
func fullPostback(state SessionState, v Variant) url.Values {
	fields := url.Values{}
	fields.Set(field_event_target, "")
	fields.Set(field_event_argument, "")
	fields.Set(field_viewstate, state.ViewState)
	fields.Set(field_viewstate_generator, state.ViewStateGenerator)
	fields.Set(field_event_validation, state.EventValidation)
	fields.Set(v.SelectorField, v.SelectorValue)
	return fields
}

// partialPostback is a full postback plus the fields the ScriptManager needs
// to treat it as an async update of the calculator panel started by `control`.
func partialPostback(state SessionState, v Variant, control string) url.Values {
	fields := fullPostback(state, v)
	fields.Set(field_script_manager, fmt.Sprintf("%s|%s", panel_calculator, control))
	fields.Set(field_async_post, "true")
	for _, echo := range v.EchoFields {
		fields.Set(echo, radio_on)
	}
	return fields
}

// switchRequest selects the model of `v`. The very first selection of a
// session is a full postback, later ones are partial postbacks triggered by
// the model's radio item.
func switchRequest(state SessionState, current SubMode, v Variant) request {
	if current == ModeUnset {
		return request{fields: fullPostback(state, v)}
	}
	fields := partialPostback(state, v, v.SelectorControl)
	fields.Set(field_event_target, v.SelectorControl)
	return request{fields: fields, async: true}
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// validateParams checks what the form would refuse before anything is sent.
func validateParams(v Variant, params ParameterSet) error {
	if params.GAWeeks < 34 || params.GAWeeks > 43 {
		return fmt.Errorf("%w: gestational age weeks %d not in 34-43", ErrInvalidParameters, params.GAWeeks)
	}
	if params.GADays < 0 || params.GADays > 6 {
		return fmt.Errorf("%w: gestational age days %d not in 0-6", ErrInvalidParameters, params.GADays)
	}
	if params.ROMHours < 0 {
		return fmt.Errorf("%w: negative rupture of membranes hours", ErrInvalidParameters)
	}
	_, err := v.GBSValue(params.GBS)
	return err
}

// computeRequest presses calculate with every input of `params` encoded under
// the field names of `v`. `intercept` is the already resolved wire value of
// the incidence.
func computeRequest(state SessionState, v Variant, params ParameterSet, intercept string) (request, error) {
	gbs, err := v.GBSValue(params.GBS)
	if err != nil {
		return request{}, err
	}

	fields := partialPostback(state, v, control_calculate)
	fields.Set(control_calculate, control_calculate_value)

	f := v.Fields
	fields.Set(f.GAWeeks, strconv.Itoa(params.GAWeeks))
	fields.Set(f.GADays, strconv.Itoa(params.GADays))
	fields.Set(f.Temperature, strconv.FormatFloat(params.TempF, 'f', 1, 64))
	fields.Set(f.ROMHours, formatNumber(params.ROMHours))
	fields.Set(f.GBS, gbs)
	fields.Set(f.Clinical, params.Clinical)
	fields.Set(f.Incidence, intercept)

	abxType := strings.TrimSpace(params.AbxType)
	if abxType == "" {
		abxType = antibiotics_none
	}
	fields.Set(f.AbxType, abxType)
	if abxType != antibiotics_none && params.AbxDuration != "" {
		fields.Set(f.AbxDuration, params.AbxDuration)
	}

	return request{fields: fields, async: true}, nil
}
