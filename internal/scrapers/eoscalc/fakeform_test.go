package eoscalc

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"
)

const fakeGenerator = "CA0B0334"

// fakeForm emulates the calculator page: it hands out fresh tokens on every
// response and refuses postbacks that carry anything but the latest ones.
type fakeForm struct {
	mutex sync.Mutex

	issued  int
	current SessionState
	mode    string
	posts   []url.Values

	// landing replaces the landing page if set
	landing string
	// results are the values rendered into compute responses, by model
	results map[string][4]string
	// stallNext makes the next postback hang for the duration before failing
	stallNext time.Duration
	// omitGenerator leaves __VIEWSTATEGENERATOR out of delta frames
	omitGenerator bool

	server *httptest.Server
}

func newFakeForm(t *testing.T) *fakeForm {
	f := &fakeForm{
		results: map[string][4]string{
			"2017": {"0.52", "0.21", "2.61", "11.47"},
			"2024": {"0.34", "0.14", "1.70", "0"},
		},
		omitGenerator: true,
	}
	f.server = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeForm) URL() string {
	return f.server.URL + "/InfectionProbabilityCalculator.aspx"
}

func (f *fakeForm) Posts() []url.Values {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	out := make([]url.Values, len(f.posts))
	copy(out, f.posts)
	return out
}

func (f *fakeForm) issue() SessionState {
	f.issued++
	f.current = SessionState{
		ViewState:          fmt.Sprintf("/wEPDwUK%d", f.issued),
		ViewStateGenerator: fakeGenerator,
		EventValidation:    fmt.Sprintf("/wEdAA%d", f.issued),
	}
	return f.current
}

func (f *fakeForm) handle(w http.ResponseWriter, r *http.Request) {
	f.mutex.Lock()

	if stall := f.stallNext; stall > 0 && r.Method == http.MethodPost {
		f.stallNext = 0
		f.mutex.Unlock()
		time.Sleep(stall)
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	defer f.mutex.Unlock()

	if r.Method == http.MethodGet {
		if f.landing != "" {
			fmt.Fprint(w, f.landing)
			return
		}
		fmt.Fprint(w, f.page(f.issue(), ""))
		return
	}

	err := r.ParseForm()
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	f.posts = append(f.posts, r.PostForm)

	if r.PostForm.Get(field_viewstate) != f.current.ViewState ||
		r.PostForm.Get(field_event_validation) != f.current.EventValidation ||
		r.PostForm.Get(field_viewstate_generator) != f.current.ViewStateGenerator {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, "Invalid postback or callback argument.")
		return
	}

	model := r.PostForm.Get("ctl00$phContent$rblSepsisModel")
	panel := ""
	if r.PostForm.Has(control_calculate) {
		values := f.results[model]
		panel = fmt.Sprintf(
			`<span id="phContent_lblRiskAtBirth">%s</span>`+
				`<span id="phContent_lblRiskWellAppearing" class="risk">%s</span>`+
				`<span id="phContent_lblRiskEquivocal">%s</span>`+
				`<span id="phContent_lblRiskClinicalIllness">%s</span>`,
			values[0], values[1], values[2], values[3],
		)
	} else {
		f.mode = model
	}

	state := f.issue()
	if r.PostForm.Get(field_async_post) == "true" {
		w.Header().Set("content-type", "text/plain; charset=utf-8")
		fmt.Fprint(w, f.delta(state, panel))
		return
	}
	fmt.Fprint(w, f.page(state, panel))
}

func (f *fakeForm) page(state SessionState, panel string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html><body><form method="post" action="./InfectionProbabilityCalculator.aspx" id="form1">
<input type="hidden" name="__EVENTTARGET" id="__EVENTTARGET" value="" />
<input type="hidden" name="__EVENTARGUMENT" id="__EVENTARGUMENT" value="" />
<input type="hidden" name="__VIEWSTATE" id="__VIEWSTATE" value="%s" />
<input type="hidden" name="__VIEWSTATEGENERATOR" id="__VIEWSTATEGENERATOR" value="%s" />
<input type="hidden" name="__EVENTVALIDATION" id="__EVENTVALIDATION" value="%s" />
<div id="phContent_upCalculator">%s
<span id="phContent_lblError" style="color:Red;display:none;"></span>
</div>
</form></body></html>`, state.ViewState, state.ViewStateGenerator, state.EventValidation, panel)
}

func segment(kind, id, content string) string {
	return fmt.Sprintf("%d|%s|%s|%s|", len(content), kind, id, content)
}

func (f *fakeForm) delta(state SessionState, panel string) string {
	var out strings.Builder
	out.WriteString(segment("updatePanel", "phContent_upCalculator",
		panel+`<span id="phContent_lblError" style="color:Red;display:none;"></span>`,
	))
	out.WriteString(segment("hiddenField", "__EVENTTARGET", ""))
	out.WriteString(segment("hiddenField", "__EVENTARGUMENT", ""))
	out.WriteString(segment("hiddenField", "__VIEWSTATE", state.ViewState))
	if !f.omitGenerator {
		out.WriteString(segment("hiddenField", "__VIEWSTATEGENERATOR", state.ViewStateGenerator))
	}
	out.WriteString(segment("hiddenField", "__EVENTVALIDATION", state.EventValidation))
	out.WriteString(segment("asyncPostBackControlIDs", "", ""))
	out.WriteString(segment("pageTitle", "", "Neonatal Sepsis Calculator"))
	return out.String()
}
