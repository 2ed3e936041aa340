package browser

import (
	"errors"
	"testing"

	"github.com/nextlevelbuilder/stepreplay/pkg/dom"
)

func TestMapErr(t *testing.T) {
	tests := []struct {
		name string
		in   error
		want error
	}{
		{"nil", nil, nil},
		{
			"bad selector",
			errors.New(`eval js error: SyntaxError: Failed to execute 'querySelectorAll' on 'Document': '#a\' is not a valid selector.`),
			dom.ErrBadSelector,
		},
		{
			"context destroyed",
			errors.New("Execution context was destroyed, most likely because of a navigation."),
			dom.ErrContextDestroyed,
		},
		{
			"context not found",
			errors.New("Cannot find context with specified id"),
			dom.ErrContextDestroyed,
		},
		{
			"target closed",
			errors.New("cdp call timeout: Target closed"),
			dom.ErrContextDestroyed,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapErr(tt.in)
			if tt.want == nil {
				if got != nil {
					t.Errorf("mapErr = %v, want nil", got)
				}
				return
			}
			if !errors.Is(got, tt.want) {
				t.Errorf("mapErr(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestMapErrPassThrough(t *testing.T) {
	in := errors.New("net::ERR_NAME_NOT_RESOLVED")
	got := mapErr(in)
	if !errors.Is(got, in) {
		t.Errorf("mapErr(%v) = %v, unrelated errors must pass through", in, got)
	}
	if errors.Is(got, dom.ErrBadSelector) || errors.Is(got, dom.ErrContextDestroyed) {
		t.Errorf("mapErr(%v) = %v, wrongly classified", in, got)
	}
}
