package replay

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nextlevelbuilder/stepreplay/internal/clock"
	"github.com/nextlevelbuilder/stepreplay/internal/resolver"
	"github.com/nextlevelbuilder/stepreplay/pkg/dom"
	"github.com/nextlevelbuilder/stepreplay/pkg/dom/memdom"
)

// fakeTarget binds an Executor to a memdom document.
type fakeTarget struct {
	doc       *memdom.Doc
	navigated []string
	navErr    error
}

func (t *fakeTarget) Document() (dom.Document, error) {
	if t.doc == nil {
		return nil, dom.ErrContextDestroyed
	}
	return t.doc, nil
}

func (t *fakeTarget) Navigate(ctx context.Context, url string) error {
	if t.navErr != nil {
		return t.navErr
	}
	t.navigated = append(t.navigated, url)
	return nil
}

const formPage = `
<html><body>
  <form id="login">
    <input id="email" name="email" type="email">
    <input id="agree" type="checkbox">
    <select id="lang">
      <option value="en">English</option>
      <option value="de">German</option>
    </select>
    <button id="submit" type="submit">Go</button>
  </form>
  <a id="toggle" href="#section">Jump</a>
</body></html>`

func newTestExecutor(t *testing.T, src string) (*Executor, *fakeTarget, *clock.Fake) {
	t.Helper()
	doc, err := memdom.Parse(src)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	clk := clock.NewFake()
	target := &fakeTarget{doc: doc}
	ex := NewExecutor(target,
		WithClock(clk),
		WithResolver(resolver.New(resolver.WithClock(clk))),
	)
	return ex, target, clk
}

func wantEvents(t *testing.T, doc *memdom.Doc, want ...string) {
	t.Helper()
	got := doc.EventTypes()
	if len(got) != len(want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("events = %v, want %v", got, want)
		}
	}
}

func TestExecute_ClickDispatchesAndActivates(t *testing.T) {
	ex, target, _ := newTestExecutor(t, formPage)

	err := ex.ExecuteStep(context.Background(), Step{Action: ActionClick, Target: "#submit"})
	if err != nil {
		t.Fatalf("CLICK: %v", err)
	}

	wantEvents(t, target.doc, "mousedown", "mouseup", "click")
	if len(target.doc.Submitted()) != 1 {
		t.Error("native activation should have submitted the form")
	}
}

func TestExecute_ClickOnAnchorSuppressesActivation(t *testing.T) {
	ex, target, _ := newTestExecutor(t, formPage)
	navigations := 0
	target.doc.OnNavigate = func(string) { navigations++ }

	if err := ex.ExecuteStep(context.Background(), Step{Action: ActionClick, Target: "#toggle"}); err != nil {
		t.Fatalf("CLICK: %v", err)
	}

	wantEvents(t, target.doc, "mousedown", "mouseup", "click")
	if navigations != 0 {
		t.Error("anchor native activation must be suppressed to avoid double-firing")
	}
}

func TestExecute_DblClick(t *testing.T) {
	ex, target, _ := newTestExecutor(t, formPage)

	if err := ex.ExecuteStep(context.Background(), Step{Action: ActionDblClick, Target: "#submit"}); err != nil {
		t.Fatalf("DBLCLICK: %v", err)
	}
	wantEvents(t, target.doc,
		"mousedown", "mouseup", "click",
		"mousedown", "mouseup", "click",
		"dblclick")
}

func TestExecute_RightClick(t *testing.T) {
	ex, target, _ := newTestExecutor(t, formPage)

	if err := ex.ExecuteStep(context.Background(), Step{Action: ActionRightClick, Target: "#submit"}); err != nil {
		t.Fatalf("RIGHTCLICK: %v", err)
	}
	evs := target.doc.Events()
	if len(evs) != 1 || evs[0].Event.Type != "contextmenu" || evs[0].Event.Button != dom.ButtonSecondary {
		t.Errorf("events = %+v, want one contextmenu with secondary button", evs)
	}
}

func TestExecute_Type(t *testing.T) {
	ex, target, _ := newTestExecutor(t, formPage)

	err := ex.ExecuteStep(context.Background(), Step{Action: ActionType, Target: "#email", Value: "a@b.c"})
	if err != nil {
		t.Fatalf("TYPE: %v", err)
	}

	if got := target.doc.First("#email").Value(); got != "a@b.c" {
		t.Errorf("value = %q, want a@b.c", got)
	}
	wantEvents(t, target.doc, "input", "change", "blur")
}

func TestExecute_TypeChar(t *testing.T) {
	ex, target, clk := newTestExecutor(t, formPage)

	err := ex.ExecuteStep(context.Background(), Step{Action: ActionTypeChar, Target: "#email", Value: "hi"})
	if err != nil {
		t.Fatalf("TYPE_CHAR: %v", err)
	}

	if got := target.doc.First("#email").Value(); got != "hi" {
		t.Errorf("value = %q, want hi", got)
	}
	wantEvents(t, target.doc,
		"keydown", "input", "keyup",
		"keydown", "input", "keyup",
		"change", "blur")
	_ = clk
}

func TestExecute_Clear(t *testing.T) {
	ex, target, _ := newTestExecutor(t, formPage)
	target.doc.First("#email").SetValue("old")

	if err := ex.ExecuteStep(context.Background(), Step{Action: ActionClear, Target: "#email"}); err != nil {
		t.Fatalf("CLEAR: %v", err)
	}
	if got := target.doc.First("#email").Value(); got != "" {
		t.Errorf("value = %q, want empty", got)
	}
	wantEvents(t, target.doc, "input", "change", "blur")
}

func TestExecute_Select(t *testing.T) {
	ex, target, _ := newTestExecutor(t, formPage)

	// Case-insensitive fallback against option text.
	err := ex.ExecuteStep(context.Background(), Step{Action: ActionSelect, Target: "#lang", Value: "german"})
	if err != nil {
		t.Fatalf("SELECT: %v", err)
	}
	if got := target.doc.First("#lang").Value(); got != "de" {
		t.Errorf("selected = %q, want de", got)
	}
	wantEvents(t, target.doc, "change")
}

func TestExecute_SelectOnNonSelect(t *testing.T) {
	ex, _, _ := newTestExecutor(t, formPage)

	err := ex.ExecuteStep(context.Background(), Step{Action: ActionSelect, Target: "#email", Value: "x"})
	if !errors.Is(err, ErrPrecondition) {
		t.Errorf("err = %v, want ErrPrecondition", err)
	}
}

func TestExecute_CheckIsIdempotent(t *testing.T) {
	ex, target, _ := newTestExecutor(t, formPage)

	if err := ex.ExecuteStep(context.Background(), Step{Action: ActionCheck, Target: "#agree"}); err != nil {
		t.Fatalf("CHECK: %v", err)
	}
	if !target.doc.First("#agree").Checked() {
		t.Fatal("checkbox should be checked")
	}
	wantEvents(t, target.doc, "change", "input")

	// Second CHECK: state already matches, no further events.
	if err := ex.ExecuteStep(context.Background(), Step{Action: ActionCheck, Target: "#agree"}); err != nil {
		t.Fatalf("second CHECK: %v", err)
	}
	wantEvents(t, target.doc, "change", "input")
}

func TestExecute_PressEnterOnFocused(t *testing.T) {
	ex, target, _ := newTestExecutor(t, formPage)
	target.doc.First("#email").Focus()

	if err := ex.ExecuteStep(context.Background(), Step{Action: ActionPress, Value: "Enter"}); err != nil {
		t.Fatalf("PRESS: %v", err)
	}

	evs := target.doc.Events()
	want := []string{"keydown", "keypress", "keyup"}
	if len(evs) != len(want) {
		t.Fatalf("events = %v", target.doc.EventTypes())
	}
	for i, w := range want {
		if evs[i].Event.Type != w || evs[i].Event.Key != "Enter" || evs[i].Event.Code != "Enter" {
			t.Errorf("event[%d] = %+v, want %s Enter/Enter", i, evs[i].Event, w)
		}
	}
	if evs[0].Target != target.doc.First("#email") {
		t.Error("PRESS without locator must target the focused element")
	}
}

func TestExecute_WaitDelay(t *testing.T) {
	ex, _, clk := newTestExecutor(t, formPage)
	start := clk.Now()

	if err := ex.ExecuteStep(context.Background(), Step{Action: ActionWait, Value: "250"}); err != nil {
		t.Fatalf("WAIT: %v", err)
	}
	if d := clk.Now().Sub(start); d != 250*time.Millisecond {
		t.Errorf("waited %v, want 250ms", d)
	}
}

func TestExecute_WaitForLocator(t *testing.T) {
	ex, _, _ := newTestExecutor(t, formPage)

	if err := ex.ExecuteStep(context.Background(), Step{Action: ActionWait, Target: "#submit"}); err != nil {
		t.Errorf("WAIT with locator: %v", err)
	}
}

func TestExecute_WaitBadValue(t *testing.T) {
	ex, _, _ := newTestExecutor(t, formPage)

	err := ex.ExecuteStep(context.Background(), Step{Action: ActionWait, Value: "soon"})
	if !errors.Is(err, ErrPrecondition) {
		t.Errorf("err = %v, want ErrPrecondition", err)
	}
}

func TestExecute_AssertExists(t *testing.T) {
	ex, _, _ := newTestExecutor(t, formPage)

	if err := ex.ExecuteStep(context.Background(), Step{Action: ActionAssertExists, Target: "#submit"}); err != nil {
		t.Errorf("ASSERT_EXISTS on present element: %v", err)
	}

	err := ex.ExecuteStep(context.Background(), Step{Action: ActionAssertExists, Target: "#missing"})
	if !errors.Is(err, resolver.ErrNotFound) {
		t.Errorf("err = %v, want resolver.ErrNotFound", err)
	}
}

func TestExecute_Open(t *testing.T) {
	ex, target, clk := newTestExecutor(t, formPage)
	start := clk.Now()

	if err := ex.ExecuteStep(context.Background(), Step{Action: ActionOpen, Target: "https://example.test/"}); err != nil {
		t.Fatalf("OPEN: %v", err)
	}
	if len(target.navigated) != 1 || target.navigated[0] != "https://example.test/" {
		t.Errorf("navigated = %v", target.navigated)
	}
	if d := clk.Now().Sub(start); d < DefaultPostLoadSettle {
		t.Errorf("settled %v, want at least %v after load", d, DefaultPostLoadSettle)
	}
}

func TestExecute_UnknownAction(t *testing.T) {
	ex, _, _ := newTestExecutor(t, formPage)

	err := ex.ExecuteStep(context.Background(), Step{Action: "HOVER", Target: "#submit"})
	if !errors.Is(err, ErrUnsupportedAction) {
		t.Errorf("err = %v, want ErrUnsupportedAction", err)
	}
}

func TestExecute_CancellationDuringTypeChar(t *testing.T) {
	ex, _, clk := newTestExecutor(t, formPage)
	ctx, cancel := context.WithCancel(context.Background())
	clk.OnSleep = func(time.Duration) { cancel() }

	err := ex.ExecuteStep(ctx, Step{Action: ActionTypeChar, Target: "#email", Value: "abc"})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestExecute_ContextDestroyedSurfaces(t *testing.T) {
	ex, target, _ := newTestExecutor(t, formPage)
	target.doc.Destroy()

	err := ex.ExecuteStep(context.Background(), Step{Action: ActionClick, Target: "#submit"})
	if !errors.Is(err, dom.ErrContextDestroyed) {
		t.Errorf("err = %v, want ErrContextDestroyed", err)
	}
}
