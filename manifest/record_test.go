package manifest

import (
	"encoding/json"
	"testing"
)

func TestRecord_IsSeparator(t *testing.T) {
	tests := []struct {
		name string
		rec  Record
		want bool
	}{
		{"explicit type", Record{Type: TypeSeparator}, true},
		{"ascii alias", Record{Name: "---"}, true},
		{"one emdash", Record{Name: "—"}, true},
		{"two emdashes", Record{Name: "——"}, true},
		{"canonical three", Record{Name: "———"}, true},
		{"four emdashes", Record{Name: "————"}, true},
		{"five emdashes", Record{Name: "—————"}, true},
		{"padded alias", Record{Name: "  ---  "}, true},
		{"plain action", Record{Name: "Export"}, false},
		{"label", Record{Type: TypeLabel, Name: "Utilities"}, false},
		{"six emdashes not an alias", Record{Name: "——————"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.rec.IsSeparator(); got != tt.want {
				t.Errorf("IsSeparator() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRecord_Normalized_DividerAlias(t *testing.T) {
	rec := Record{Name: "---", Module: "stale", Function: "stale", Icon: "x.png"}
	got := rec.Normalized()

	if got.Type != TypeSeparator {
		t.Errorf("Type = %q, want %q", got.Type, TypeSeparator)
	}
	if got.Name != DividerName {
		t.Errorf("Name = %q, want %q", got.Name, DividerName)
	}
	if got.Module != "" || got.Function != "" || got.Icon != "" {
		t.Errorf("action fields should be cleared, got %+v", got)
	}
}

func TestRecord_Normalized_TrimsWhitespace(t *testing.T) {
	rec := Record{Name: " Export ", Module: " media ", Function: " export_missing ", Submenu: " Media "}
	got := rec.Normalized()

	if got.Name != "Export" || got.Module != "media" || got.Function != "export_missing" || got.Submenu != "Media" {
		t.Errorf("Normalized() = %+v, fields should be trimmed", got)
	}
}

func TestRecord_Validate(t *testing.T) {
	tests := []struct {
		name    string
		rec     Record
		wantOK  bool
	}{
		{"complete action", Record{Name: "Export", Module: "media", Function: "export_missing"}, true},
		{"missing name", Record{Module: "media", Function: "export_missing"}, false},
		{"missing module", Record{Name: "Export", Function: "export_missing"}, false},
		{"missing function", Record{Name: "Export", Module: "media"}, false},
		{"separator needs nothing", NewDivider(), true},
		{"label needs a name", Record{Type: TypeLabel}, false},
		{"label with name", NewLabel("Utilities"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			issue := tt.rec.Validate()
			if (issue == "") != tt.wantOK {
				t.Errorf("Validate() = %q, want ok=%v", issue, tt.wantOK)
			}
		})
	}
}

func TestRecord_EnabledOrDefault(t *testing.T) {
	if !(Record{}).EnabledOrDefault() {
		t.Error("omitted enabled should default to true")
	}
	if (Record{Enabled: Bool(false)}).EnabledOrDefault() {
		t.Error("explicit false should stay false")
	}
	if !(Record{Enabled: Bool(true)}).EnabledOrDefault() {
		t.Error("explicit true should stay true")
	}
}

func TestRecord_Ref(t *testing.T) {
	if got := (Record{Module: "media", Function: "export_missing"}).Ref(); got != "media.export_missing" {
		t.Errorf("Ref() = %q, want %q", got, "media.export_missing")
	}
	if got := (Record{Module: "media"}).Ref(); got != "" {
		t.Errorf("Ref() with missing function = %q, want empty", got)
	}
}

func TestRecord_JSONRoundTrip(t *testing.T) {
	rec := Record{
		Name:     "Export Missing",
		Module:   "media",
		Function: "export_missing",
		Submenu:  "Media::Reports",
		Icon:     "icons/media.png",
		Enabled:  Bool(false),
	}

	data, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var got Record
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	if got.Name != rec.Name || got.Module != rec.Module || got.Function != rec.Function ||
		got.Submenu != rec.Submenu || got.Icon != rec.Icon {
		t.Errorf("round trip changed fields: got %+v, want %+v", got, rec)
	}
	if got.Enabled == nil || *got.Enabled != false {
		t.Errorf("round trip lost enabled=false")
	}
}

func TestRecord_NullIconLoads(t *testing.T) {
	var rec Record
	if err := json.Unmarshal([]byte(`{"name":"T","module":"m","function":"f","icon":null}`), &rec); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if rec.Icon != "" {
		t.Errorf("null icon should load as empty, got %q", rec.Icon)
	}
}
