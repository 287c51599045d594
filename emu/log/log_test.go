package log

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestModuleByName(t *testing.T) {
	for _, name := range []string{"emu", "sound", "music", "sfx", "synth", "ring", "audio"} {
		mod, ok := ModuleByName(name)
		if !ok {
			t.Fatalf("ModuleByName(%q) not found", name)
		}
		if mod.String() != name {
			t.Errorf("ModuleByName(%q).String() = %q", name, mod.String())
		}
	}

	if _, ok := ModuleByName("ppu"); ok {
		t.Errorf("ModuleByName(ppu) should not exist")
	}
}

func TestDebugMask(t *testing.T) {
	defer DisableDebugModules(ModuleMaskAll)

	if ModMusic.Enabled(DebugLevel) {
		t.Fatalf("music debug logs should be disabled by default")
	}
	if !ModMusic.Enabled(WarnLevel) {
		t.Fatalf("warnings should always be enabled")
	}

	EnableDebugModules(ModMusic.Mask())
	if !ModMusic.Enabled(DebugLevel) {
		t.Errorf("music debug logs should be enabled")
	}
	if ModSynth.Enabled(DebugLevel) {
		t.Errorf("synth debug logs should still be disabled")
	}
}

func TestDisabledEntryIsNil(t *testing.T) {
	z := ModRing.DebugZ("push").Int("head", 1).Uint8("tail", 2)
	if z != nil {
		t.Fatalf("DebugZ on a disabled module should return nil")
	}
	z.End()
}

func TestZFieldValue(t *testing.T) {
	tests := []struct {
		f    ZField
		want string
	}{
		{ZField{Type: FieldTypeBool, Boolean: true}, "true"},
		{ZField{Type: FieldTypeInt, Integer: uint64(^uint64(0))}, "-1"},
		{ZField{Type: FieldTypeUint, Integer: 42}, "42"},
		{ZField{Type: FieldTypeHex8, Integer: 0xa}, "0a"},
		{ZField{Type: FieldTypeHex16, Integer: 0x1880}, "1880"},
		{ZField{Type: FieldTypeError}, "<nil>"},
		{ZField{Type: FieldTypeString, String: "C-4"}, "C-4"},
	}

	var got, want []string
	for _, tt := range tests {
		got = append(got, tt.f.Value())
		want = append(want, tt.want)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ZField.Value() mismatch (-want +got):\n%s", diff)
	}
}
