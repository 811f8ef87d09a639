package instrument

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
)

func namedForTest(x int) int { return x }

func TestFunctionName(t *testing.T) {
	t.Run("named function", func(t *testing.T) {
		name := functionName(reflect.ValueOf(namedForTest))
		if name != "namedForTest" {
			t.Errorf("Expected namedForTest, got %q", name)
		}
	})

	t.Run("method value strips -fm suffix", func(t *testing.T) {
		svc := &fetchService{}
		name := functionName(reflect.ValueOf(svc.Fetch))
		if strings.HasSuffix(name, "-fm") {
			t.Errorf("Expected -fm suffix stripped, got %q", name)
		}
		if !strings.Contains(name, "Fetch") {
			t.Errorf("Expected method name in %q", name)
		}
	})

	t.Run("anonymous function", func(t *testing.T) {
		name := functionName(reflect.ValueOf(func() {}))
		if name == "" {
			t.Error("Expected non-empty name for anonymous function")
		}
	})
}

func TestNewCallSite(t *testing.T) {
	t.Run("detects leading context", func(t *testing.T) {
		site, err := newCallSite(func(ctx context.Context, id int) error { return nil }, "", nil, nil, nil)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if !site.hasCtx {
			t.Error("Expected context detection")
		}
		if site.paramNames[0] != "ctx" || site.paramNames[1] != "arg1" {
			t.Errorf("Unexpected generated names %v", site.paramNames)
		}
		if site.varsRoot != 1 {
			t.Errorf("Expected vars root past the context, got %d", site.varsRoot)
		}
	})

	t.Run("plain function", func(t *testing.T) {
		site, err := newCallSite(func(x int) (int, error) { return x, nil }, "", nil, nil, nil)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if site.hasCtx {
			t.Error("Did not expect context detection")
		}
		if site.errIndex != 1 || site.resultIdx != 0 {
			t.Errorf("Unexpected return layout: errIndex=%d resultIdx=%d", site.errIndex, site.resultIdx)
		}
	})

	t.Run("error-only return", func(t *testing.T) {
		site, err := newCallSite(func() error { return nil }, "", nil, nil, nil)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if site.errIndex != 0 || site.resultIdx != -1 {
			t.Errorf("Unexpected return layout: errIndex=%d resultIdx=%d", site.errIndex, site.resultIdx)
		}
	})

	t.Run("rejects nil", func(t *testing.T) {
		if _, err := newCallSite(nil, "", nil, nil, nil); err == nil {
			t.Error("Expected error for nil function")
		}
	})

	t.Run("rejects non-function", func(t *testing.T) {
		if _, err := newCallSite(42, "", nil, nil, nil); err == nil {
			t.Error("Expected error for non-function")
		}
	})

	t.Run("rejects vars without arguments", func(t *testing.T) {
		if _, err := newCallSite(func() {}, "", nil, nil, []string{"self.A"}); err == nil {
			t.Error("Expected error for Vars on a zero-argument function")
		}
	})

	t.Run("rejects vars with only a context", func(t *testing.T) {
		if _, err := newCallSite(func(ctx context.Context) {}, "", nil, nil, []string{"self.A"}); err == nil {
			t.Error("Expected error for Vars with no non-context argument")
		}
	})
}

func TestCallSiteErrorFrom(t *testing.T) {
	boom := errors.New("boom")
	site, err := newCallSite(func() (string, error) { return "", boom }, "", nil, nil, nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	out, panicked, _ := site.call(nil)
	if panicked {
		t.Fatal("Unexpected panic")
	}
	if got := site.errorFrom(out); !errors.Is(got, boom) {
		t.Errorf("Expected boom, got %v", got)
	}
}

func TestCallSiteCapturesPanic(t *testing.T) {
	site, err := newCallSite(func() { panic("kaboom") }, "", nil, nil, nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	_, panicked, panicVal := site.call(nil)
	if !panicked || panicVal != "kaboom" {
		t.Errorf("Expected captured panic kaboom, got panicked=%v val=%v", panicked, panicVal)
	}
}
