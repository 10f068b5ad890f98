package main

import (
	"testing"

	"github.com/embedded-tools/regdecode/defs"
)

func TestParseUintAcceptsHexAndDecimal(t *testing.T) {
	cases := map[string]uint64{
		"0x10": 0x10,
		"16":   16,
		"010":  8, // Go's ParseUint with base 0 treats a leading 0 as octal
	}
	for in, want := range cases {
		got, err := parseUint(in)
		if err != nil {
			t.Fatalf("parseUint(%q) error = %v", in, err)
		}
		if got != want {
			t.Errorf("parseUint(%q) = %d, want %d", in, got, want)
		}
	}
}

func TestParseUintRejectsGarbage(t *testing.T) {
	if _, err := parseUint("not-a-number"); err == nil {
		t.Fatal("parseUint(garbage) error = nil, want error")
	}
}

func TestHighestAddrUsesExplicitEndWhenGiven(t *testing.T) {
	d := &defs.Definitions{Units: []defs.Unit{{Start: 0, End: 0x100}}}
	got, err := highestAddr(d, "0x50")
	if err != nil {
		t.Fatalf("highestAddr() error = %v", err)
	}
	if got != 0x50 {
		t.Errorf("highestAddr() = %#x, want 0x50", got)
	}
}

func TestHighestAddrDefaultsToMaxUnitEnd(t *testing.T) {
	d := &defs.Definitions{Units: []defs.Unit{
		{Start: 0, End: 0x100},
		{Start: 0x200, End: 0x2FF},
	}}
	got, err := highestAddr(d, "")
	if err != nil {
		t.Fatalf("highestAddr() error = %v", err)
	}
	if got != 0x2FF {
		t.Errorf("highestAddr() = %#x, want 0x2ff", got)
	}
}

func TestOpenDeviceEmu(t *testing.T) {
	r, err := openDevice("emu", "", "0", 8, "little", "0x2a")
	if err != nil {
		t.Fatalf("openDevice() error = %v", err)
	}
	defer r.Close()
}

func TestOpenDeviceMissingType(t *testing.T) {
	if _, err := openDevice("", "", "0", 8, "little", "0"); err == nil {
		t.Fatal("openDevice(\"\") error = nil, want error")
	}
}

func TestOpenDeviceUnsupportedType(t *testing.T) {
	if _, err := openDevice("vme", "", "0", 8, "little", "0"); err == nil {
		t.Fatal("openDevice(\"vme\") error = nil, want error")
	}
}

func TestParseEndianRejectsGarbage(t *testing.T) {
	if _, err := parseEndian("middle"); err == nil {
		t.Fatal("parseEndian(\"middle\") error = nil, want error")
	}
}
