package file

import (
	"bytes"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/nextlevelbuilder/stepreplay/pkg/protocol"
)

func TestRoundTrip(t *testing.T) {
	steps := []protocol.StepRecord{
		{Action: "OPEN", Target: "", Value: "https://shop.test/cart?a=1,b=2", Description: "open cart"},
		{Action: "TYPE", Target: `input[name="q"]`, Value: `he said "go"`, Description: "multi\nline"},
		{Action: "TYPE", Target: "#amount", Value: "=SUM(A1:A9)", Description: "formula-looking input"},
		{Action: "TYPE", Target: "#phone", Value: "+4915112345678", Description: ""},
		{Action: "CLICK", Target: "#submit", Value: "", Description: "@here -dash"},
	}

	var buf bytes.Buffer
	if err := Encode(&buf, steps); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !reflect.DeepEqual(got, steps) {
		t.Errorf("round trip:\n got %+v\nwant %+v", got, steps)
	}
}

func TestDecodeHeaderSkip(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int
	}{
		{"lowercase action", "action,target,value,description\nCLICK,#a,,\n", 1},
		{"capitalized Step", "Step,Locator,Value,Notes\nCLICK,#a,,\n", 1},
		{"COMMAND", "COMMAND,x,y,z\nCLICK,#a,,\n", 1},
		{"no header", "CLICK,#a,,\nCLICK,#b,,\n", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(strings.NewReader(tt.input))
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("decoded %d steps, want %d", len(got), tt.want)
			}
		})
	}
}

func TestDecodeNormalizes(t *testing.T) {
	input := "click,#save\n\n ,,, \nwait,,250,pause,extra-ignored\n"
	got, err := Decode(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	want := []protocol.StepRecord{
		{Action: "CLICK", Target: "#save"},
		{Action: "WAIT", Value: "250", Description: "pause"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Decode:\n got %+v\nwant %+v", got, want)
	}
}

func TestDecodeKeepsGenuineApostrophe(t *testing.T) {
	got, err := Decode(strings.NewReader("TYPE,#q,'hello,\n"))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got[0].Value != "'hello" {
		t.Errorf("Value = %q, an apostrophe not guarding a formula char must survive", got[0].Value)
	}
}

func TestEncodeGuardsFormulas(t *testing.T) {
	var buf bytes.Buffer
	err := Encode(&buf, []protocol.StepRecord{{Action: "TYPE", Target: "#a", Value: "=2+2"}})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if !strings.Contains(buf.String(), "'=2+2") {
		t.Errorf("output %q lacks the formula guard", buf.String())
	}
}

func TestStepFileSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "steps.csv")
	sf := NewStepFile(path)

	steps := []protocol.StepRecord{
		{Action: "OPEN", Value: "https://app.test/"},
		{Action: "CLICK", Target: "#go", Description: "start"},
	}
	if err := sf.Save(steps); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := sf.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(got, steps) {
		t.Errorf("Load:\n got %+v\nwant %+v", got, steps)
	}
}

func TestStepFileLoadMissing(t *testing.T) {
	sf := NewStepFile(filepath.Join(t.TempDir(), "absent.csv"))
	if _, err := sf.Load(); err == nil {
		t.Error("Load of a missing file must error")
	}
}
