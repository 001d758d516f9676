package h5layout

import (
	"errors"
	"reflect"
	"testing"
)

func complete() Groups {
	g := Groups{}
	for _, name := range RequiredGroups {
		g[name] = true
	}
	return g
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name    string
		drop    []string
		missing []string
	}{
		{"complete", nil, nil},
		{"one missing", []string{"waveforms"}, []string{"waveforms"}},
		{"order follows requirements", []string{"diagnostics", "initial"}, []string{"initial", "diagnostics"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := complete()
			for _, d := range tt.drop {
				delete(g, d)
			}
			if got := Check(g); !reflect.DeepEqual(got, tt.missing) {
				t.Errorf("expected %v, got %v", tt.missing, got)
			}
		})
	}
}

func TestCheckEmpty(t *testing.T) {
	if got := Check(Groups{}); !reflect.DeepEqual(got, RequiredGroups) {
		t.Errorf("expected all groups missing, got %v", got)
	}
}

func TestValidate(t *testing.T) {
	if err := Validate(complete()); err != nil {
		t.Errorf("expected valid layout, got %v", err)
	}

	g := complete()
	delete(g, "evolution")
	delete(g, "extraction")

	err := Validate(g)
	if !errors.Is(err, ErrMissing) {
		t.Fatalf("expected ErrMissing, got %v", err)
	}

	var me *MissingError
	if !errors.As(err, &me) || me.Group != "evolution" {
		t.Errorf("expected first missing group evolution, got %v", err)
	}
	if err.Error() != "MISSING evolution" {
		t.Errorf("unexpected message %q", err.Error())
	}
}
