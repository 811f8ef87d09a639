package instrument

import (
	"fmt"
	"testing"
)

type varsInner struct {
	Style string
}

type varsOuter struct {
	Request *varsInner
	Labels  map[string]string
	hidden  string
}

func (v *varsOuter) Version() string { return "v2" }

func (v *varsOuter) broken() string { return v.hidden }

func TestResolvePath(t *testing.T) {
	root := &varsOuter{
		Request: &varsInner{Style: "fancy"},
		Labels:  map[string]string{"env": "prod"},
		hidden:  "nope",
	}

	tests := []struct {
		name     string
		path     string
		expected string
		ok       bool
	}{
		{"nested field", "Request.Style", "fancy", true},
		{"self prefix stripped", "self.Request.Style", "fancy", true},
		{"map entry", "Labels.env", "prod", true},
		{"getter method", "Version", "v2", true},
		{"missing field", "Request.Missing", "", false},
		{"missing map key", "Labels.region", "", false},
		{"unexported field", "hidden", "", false},
		{"unexported method", "broken", "", false},
		{"path past a leaf", "Request.Style.Deeper", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			value, ok := resolvePath(root, tt.path)
			if ok != tt.ok {
				t.Fatalf("Expected ok=%v, got %v (value=%v)", tt.ok, ok, value)
			}
			if ok && fmt.Sprint(value) != tt.expected {
				t.Errorf("Expected %q, got %v", tt.expected, value)
			}
		})
	}
}

func TestResolvePathNilSegments(t *testing.T) {
	tests := []struct {
		name string
		root any
		path string
	}{
		{"nil root", nil, "Anything"},
		{"nil pointer segment", &varsOuter{}, "Request.Style"},
		{"nil map", &varsOuter{Request: &varsInner{}}, "Labels.env"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if value, ok := resolvePath(tt.root, tt.path); ok {
				t.Errorf("Expected resolution to fail, got %v", value)
			}
		})
	}
}

type explosiveGetter struct{}

func (e *explosiveGetter) Detonate() string { panic("boom") }

func TestResolvePathNeverPanics(t *testing.T) {
	if value, ok := resolvePath(&explosiveGetter{}, "Detonate"); ok {
		t.Errorf("Expected failure from panicking getter, got %v", value)
	}
}
