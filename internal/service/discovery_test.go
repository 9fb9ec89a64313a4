package service

import (
	"reflect"
	"testing"
)

func TestFindCapability(t *testing.T) {
	cfg := &NodeConfig{
		NodeID: "N1",
		Services: []Entry{
			{Name: "time", Type: "airlink.service.time"},
			{Name: "ota", Type: OTAServiceType},
			{Name: "ota2", Type: OTAServiceType},
		},
	}

	entry, name := FindCapability(cfg, OTAServiceType)
	if entry == nil {
		t.Fatal("FindCapability returned nil for a present capability")
	}
	if name != "ota" {
		t.Errorf("name = %q, want first match %q", name, "ota")
	}

	entry, name = FindCapability(cfg, "airlink.service.schedule")
	if entry != nil || name != "" {
		t.Errorf("FindCapability for absent type = (%v, %q), want (nil, \"\")", entry, name)
	}

	entry, name = FindCapability(nil, OTAServiceType)
	if entry != nil || name != "" {
		t.Errorf("FindCapability on nil config = (%v, %q), want (nil, \"\")", entry, name)
	}
}

func TestResolveProperties(t *testing.T) {
	tests := []struct {
		name      string
		entry     *Entry
		wantRead  []string
		wantWrite []string
	}{
		{
			name: "split read and write",
			entry: &Entry{Params: []Property{
				{Name: "ota_status", Properties: []string{AccessRead}},
				{Name: "ota_url", Properties: []string{AccessWrite}},
			}},
			wantRead:  []string{"ota_status"},
			wantWrite: []string{"ota_url"},
		},
		{
			name: "both flags on one property",
			entry: &Entry{Params: []Property{
				{Name: "ota_info", Properties: []string{AccessRead, AccessWrite}},
			}},
			wantRead:  []string{"ota_info"},
			wantWrite: []string{"ota_info"},
		},
		{
			name:  "no properties",
			entry: &Entry{},
		},
		{
			name: "unknown flags ignored",
			entry: &Entry{Params: []Property{
				{Name: "x", Properties: []string{"notify"}},
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			read, write := ResolveProperties(tt.entry)
			if !reflect.DeepEqual(read, tt.wantRead) {
				t.Errorf("read = %v, want %v", read, tt.wantRead)
			}
			if !reflect.DeepEqual(write, tt.wantWrite) {
				t.Errorf("write = %v, want %v", write, tt.wantWrite)
			}
		})
	}
}

func TestImageStem(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"fw.bin", "fw"},
		{"/abs/path/fw.bin", "fw"},
		{"rel/dir/fw.v2.bin", "fw.v2"},
		{"FW.BIN", "FW"},
		{"firmware", "firmware"},
		{"fw.img", "fw.img"},
		{".bin", ".bin"},
		{"a.binx", "a.binx"},
	}

	for _, tt := range tests {
		if got := ImageStem(tt.path); got != tt.want {
			t.Errorf("ImageStem(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
