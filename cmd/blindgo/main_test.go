package main

import "testing"

// ---------- validatePercent ----------

func TestValidatePercent_Unset(t *testing.T) {
	if err := validatePercent(-1); err != nil {
		t.Errorf("-1 means unset and should be valid, got: %v", err)
	}
}

func TestValidatePercent_Valid(t *testing.T) {
	for _, p := range []int{0, 1, 50, 99, 100} {
		if err := validatePercent(p); err != nil {
			t.Errorf("validatePercent(%d) = %v, want nil", p, err)
		}
	}
}

func TestValidatePercent_Invalid(t *testing.T) {
	for _, p := range []int{-2, -100, 101, 1000} {
		if err := validatePercent(p); err == nil {
			t.Errorf("validatePercent(%d) = nil, want error", p)
		}
	}
}

// ---------- stepFlag ----------

func TestStepFlag_Unset(t *testing.T) {
	s := &stepFlag{}
	if s.isSet() {
		t.Error("fresh flag should report unset")
	}
	if s.String() != "" {
		t.Errorf("String() = %q, want empty for unset flag", s.String())
	}
}

func TestStepFlag_Valid(t *testing.T) {
	for _, v := range []string{"0", "1024", "-3"} {
		s := &stepFlag{}
		if err := s.Set(v); err != nil {
			t.Errorf("Set(%q) = %v, want nil", v, err)
			continue
		}
		if !s.isSet() {
			t.Errorf("Set(%q) should mark the flag set", v)
		}
		if s.String() != v {
			t.Errorf("String() = %q, want %q", s.String(), v)
		}
	}
}

func TestStepFlag_Invalid(t *testing.T) {
	for _, v := range []string{"", "ten", "1.5"} {
		s := &stepFlag{}
		if err := s.Set(v); err == nil {
			t.Errorf("Set(%q) = nil, want error", v)
		}
		if s.isSet() {
			t.Errorf("Set(%q) failed but flag reports set", v)
		}
	}
}

// ---------- webPortFlag ----------

func TestWebPortFlag_EmptyUsesDefault(t *testing.T) {
	w := &webPortFlag{defaultPort: 8080}
	if err := w.Set(""); err != nil {
		t.Fatalf("Set(\"\"): %v", err)
	}
	if w.port() != 8080 {
		t.Errorf("port = %d, want default 8080", w.port())
	}
}

func TestWebPortFlag_CustomPort(t *testing.T) {
	w := &webPortFlag{defaultPort: 8080}
	if err := w.Set("8980"); err != nil {
		t.Fatalf("Set(\"8980\"): %v", err)
	}
	if w.port() != 8980 {
		t.Errorf("port = %d, want 8980", w.port())
	}
}

func TestWebPortFlag_Invalid(t *testing.T) {
	cases := []string{"0", "-1", "65536", "eighty"}
	for _, s := range cases {
		w := &webPortFlag{defaultPort: 8080}
		if err := w.Set(s); err == nil {
			t.Errorf("Set(%q) = nil, want error", s)
		}
	}
}

func TestWebPortFlag_DefaultDisabled(t *testing.T) {
	w := &webPortFlag{defaultPort: 8080}
	if w.port() != 0 {
		t.Errorf("unset flag should report 0 (disabled), got %d", w.port())
	}
	if w.String() != "0" {
		t.Errorf("String() = %q, want \"0\"", w.String())
	}
}
