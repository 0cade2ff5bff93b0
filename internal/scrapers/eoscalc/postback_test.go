package eoscalc

import (
	"testing"

	"github.com/stretchr/testify/require"
)

var testState = SessionState{
	ViewState:          "/wEPDwUK1",
	ViewStateGenerator: fakeGenerator,
	EventValidation:    "/wEdAA1",
}

func TestSwitchRequest(t *testing.T) {
	first := switchRequest(testState, ModeUnset, variant2017)
	require.False(t, first.async)
	require.Equal(t, ENCODING_MARKUP, first.encoding())
	require.False(t, first.fields.Has(field_async_post))
	require.False(t, first.fields.Has(field_script_manager))
	for _, echo := range variant2017.EchoFields {
		require.False(t, first.fields.Has(echo), echo)
	}
	require.Equal(t, "", first.fields.Get(field_event_target))
	require.Equal(t, "2017", first.fields.Get(variant2017.SelectorField))
	require.Equal(t, testState.ViewState, first.fields.Get(field_viewstate))
	require.Equal(t, testState.ViewStateGenerator, first.fields.Get(field_viewstate_generator))
	require.Equal(t, testState.EventValidation, first.fields.Get(field_event_validation))

	later := switchRequest(testState, Mode2017, variant2024)
	require.True(t, later.async)
	require.Equal(t, ENCODING_DELTA, later.encoding())
	require.Equal(t, "true", later.fields.Get(field_async_post))
	require.Equal(t, panel_calculator+"|"+variant2024.SelectorControl, later.fields.Get(field_script_manager))
	require.Equal(t, variant2024.SelectorControl, later.fields.Get(field_event_target))
	require.Equal(t, "2024", later.fields.Get(variant2024.SelectorField))
	for _, echo := range variant2024.EchoFields {
		require.Equal(t, radio_on, later.fields.Get(echo), echo)
	}
	require.False(t, later.fields.Has(control_calculate))
}

func TestComputeRequest(t *testing.T) {
	table := []struct {
		name   string
		v      Variant
		params ParameterSet
		check  func(t *testing.T, req request)
	}{
		{
			name: "2017 names",
			v:    variant2017,
			params: ParameterSet{
				Mode: Mode2017, GAWeeks: 38, GADays: 6, TempF: 100.4, ROMHours: 18.5,
				GBS: "positive", AbxType: "None", AbxDuration: "2", Clinical: "Equivocal",
			},
			check: func(t *testing.T, req request) {
				f := req.fields
				require.Equal(t, "38", f.Get("ctl00$phContent$ddlGA_Weeks"))
				require.Equal(t, "6", f.Get("ctl00$phContent$ddlGA_Days"))
				require.Equal(t, "100.4", f.Get("ctl00$phContent$txtHighestMaternalAntepartumTemperature"))
				require.Equal(t, "18.5", f.Get("ctl00$phContent$txtRuptureOfMembranesHrs"))
				require.Equal(t, "Positive", f.Get("ctl00$phContent$ddlGBS"))
				require.Equal(t, "None", f.Get("ctl00$phContent$ddlAntibiotics"))
				// no duration without antibiotics
				require.False(t, f.Has("ctl00$phContent$ddlAntibioticDuration"))
				require.Equal(t, "Equivocal", f.Get("ctl00$phContent$ddlClinicalPresentation"))
				require.Equal(t, "42.5067", f.Get("ctl00$phContent$ddlIncidence"))
				require.False(t, f.Has("ctl00$phContent$ddlGBS2024"))
			},
		},
		{
			name: "2024 names",
			v:    variant2024,
			params: ParameterSet{
				Mode: Mode2024, GAWeeks: 40, TempF: 98, ROMHours: 0,
				GBS: "Unknown", AbxType: "Broad spectrum", AbxDuration: "4", Clinical: "Well Appearing",
			},
			check: func(t *testing.T, req request) {
				f := req.fields
				require.Equal(t, "98.0", f.Get("ctl00$phContent$txtHighestMaternalAntepartumTemperature"))
				require.Equal(t, "0", f.Get("ctl00$phContent$txtRuptureOfMembranesHrs"))
				require.Equal(t, "2", f.Get("ctl00$phContent$ddlGBS2024"))
				require.Equal(t, "Broad spectrum", f.Get("ctl00$phContent$ddlAntibiotics2024"))
				require.Equal(t, "4", f.Get("ctl00$phContent$ddlAntibioticDuration2024"))
				require.Equal(t, "-5.9527", f.Get("ctl00$phContent$ddlIncidence2024"))
				require.False(t, f.Has("ctl00$phContent$ddlGBS"))
				require.False(t, f.Has("ctl00$phContent$ddlIncidence"))
			},
		},
		{
			name: "missing antibiotic type is none",
			v:    variant2017,
			params: ParameterSet{
				Mode: Mode2017, GAWeeks: 40, GBS: "Negative", AbxDuration: "4", Clinical: "Well Appearing",
			},
			check: func(t *testing.T, req request) {
				require.Equal(t, antibiotics_none, req.fields.Get("ctl00$phContent$ddlAntibiotics"))
				require.False(t, req.fields.Has("ctl00$phContent$ddlAntibioticDuration"))
			},
		},
	}

	for _, test := range table {
		t.Run(test.name, func(t *testing.T) {
			intercept, ok := test.v.Intercept("0.5")
			require.True(t, ok)

			req, err := computeRequest(testState, test.v, test.params, intercept)
			require.NoError(t, err)
			require.True(t, req.async)
			require.Equal(t, control_calculate_value, req.fields.Get(control_calculate))
			require.Equal(t, panel_calculator+"|"+control_calculate, req.fields.Get(field_script_manager))
			require.Equal(t, "", req.fields.Get(field_event_target))
			for _, echo := range test.v.EchoFields {
				require.Equal(t, radio_on, req.fields.Get(echo))
			}
			test.check(t, req)
		})
	}
}

func TestValidateParams(t *testing.T) {
	valid := baseParams(Mode2017)
	require.NoError(t, validateParams(variant2017, valid))

	invalid := []func(p *ParameterSet){
		func(p *ParameterSet) { p.GAWeeks = 33 },
		func(p *ParameterSet) { p.GAWeeks = 44 },
		func(p *ParameterSet) { p.GADays = 7 },
		func(p *ParameterSet) { p.GADays = -1 },
		func(p *ParameterSet) { p.ROMHours = -0.5 },
		func(p *ParameterSet) { p.GBS = "" },
	}
	for i, mutate := range invalid {
		params := valid
		mutate(&params)
		require.ErrorIs(t, validateParams(variant2017, params), ErrInvalidParameters, i)
	}
}
