package lifecycle

import "testing"

func TestParseID(t *testing.T) {
	id, err := ParseID("ep-042--linkedin_v2")
	if err != nil {
		t.Fatal(err)
	}
	if id.TranscriptID != "ep-042" || id.AnalysisType != "linkedin_v2" {
		t.Fatalf("parsed %+v", id)
	}
	if id.String() != "ep-042--linkedin_v2" {
		t.Fatalf("round trip = %q", id.String())
	}
}

func TestParseIDHyphenatedComponents(t *testing.T) {
	id, err := ParseID("a-b--c-d")
	if err != nil {
		t.Fatal(err)
	}
	if id.TranscriptID != "a-b" || id.AnalysisType != "c-d" {
		t.Fatalf("parsed %+v", id)
	}
}

func TestParseIDRejectsBadInput(t *testing.T) {
	cases := []string{
		"",
		"no-separator",
		"a--b--c",   // second component would contain the separator
		"sp ace--x", // charset violation
		"--type",
		"transcript--",
		"a/b--x",
	}
	for _, raw := range cases {
		if _, err := ParseID(raw); err == nil {
			t.Errorf("ParseID(%q) should fail", raw)
		} else if KindOf(err) != KindValidation {
			t.Errorf("ParseID(%q) kind = %q, want validation", raw, KindOf(err))
		}
	}
}

func TestValidTranscriptID(t *testing.T) {
	if !ValidTranscriptID("ep_01.raw") {
		t.Fatal("ep_01.raw should be valid")
	}
	if ValidTranscriptID("a--b") {
		t.Fatal("separator inside transcript id should be invalid")
	}
	if ValidTranscriptID("") {
		t.Fatal("empty transcript id should be invalid")
	}
}
