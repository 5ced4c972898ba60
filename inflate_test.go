package limelight

import "testing"

func TestXMLProviderInflate(t *testing.T) {
	p := NewXMLProvider()
	root, err := p.Inflate([]byte(testDoc))
	if err != nil {
		t.Fatalf("Inflate: %v", err)
	}
	if root.Tag != "column" {
		t.Errorf("root.Tag = %q, want %q", root.Tag, "column")
	}
	if got := root.Attr("background"); got != "#202020" {
		t.Errorf("root background = %q, want %q", got, "#202020")
	}
	if n := root.NumChildren(); n != 2 {
		t.Fatalf("root.NumChildren() = %d, want 2", n)
	}
	if got := root.ChildAt(0).Attr("height"); got != "40" {
		t.Errorf("first child height = %q, want %q", got, "40")
	}
	if root.ID == 0 || root.ChildAt(0).ID == 0 {
		t.Error("inflated nodes must carry non-zero IDs")
	}
}

func TestXMLProviderAssignsFreshIDs(t *testing.T) {
	p := NewXMLProvider()
	a, err := p.Inflate([]byte(`<box/>`))
	if err != nil {
		t.Fatalf("Inflate: %v", err)
	}
	b, err := p.Inflate([]byte(`<box/>`))
	if err != nil {
		t.Fatalf("Inflate: %v", err)
	}
	if a.ID == b.ID {
		t.Errorf("two inflations share ID %d, want distinct IDs", a.ID)
	}
}

func TestXMLProviderErrors(t *testing.T) {
	p := NewXMLProvider()
	cases := []struct {
		name string
		src  string
	}{
		{"empty", ""},
		{"unclosed", "<box"},
		{"mismatched", "<a></b>"},
		{"two roots", "<a/><b/>"},
	}
	for _, tc := range cases {
		if _, err := p.Inflate([]byte(tc.src)); err == nil {
			t.Errorf("Inflate(%s) succeeded, want error", tc.name)
		}
	}
}
