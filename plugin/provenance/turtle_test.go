package provenance

import (
	"strings"
	"testing"
)

func TestRecordContents(t *testing.T) {
	a := testAnnotation(`warm "round"`, 0.3, 2)
	a.NumOutputs = 2
	ttl := string(Record(testInfo, a, "abc-123"))

	for _, want := range []string{
		"@prefix prov: <http://www.w3.org/ns/prov#> .",
		"safedb:transform_abc-123 rdf:type prov:Activity",
		"studio:effect afxdb:implementation_Trem_VST_1-0-0",
		`rdfs:comment "warm \"round\""`,
		`rdfs:label "genre"`,
		`rdfs:comment "jazz"`,
		`qudt:numericValue "0.3"^^xsd:double`,
		`afx:parameterId "1"^^xsd:integer`,
		"safedb:transform_abc-123 prov:used safedb:signal_abc-123_input_0",
		"safedb:transform_abc-123 prov:generated safedb:signal_abc-123_output_1",
		`rdfs:label "spectral_centroid"`,
		`safe:mean "2000"^^xsd:double`,
	} {
		if !strings.Contains(ttl, want) {
			t.Fatalf("record missing %q:\n%s", want, ttl)
		}
	}
	if got := strings.Count(ttl, "rdf:type mo:Signal"); got != 3 {
		t.Fatalf("signals = %d, want 3", got)
	}
	// The second output channel has no features in the set.
	if got := strings.Count(ttl, "rdf:type safe:Feature"); got != 4 {
		t.Fatalf("features = %d, want 4", got)
	}
}

func TestRecordStatementsAreTerminated(t *testing.T) {
	ttl := string(Record(testInfo, testAnnotation("warm", 1), "id"))
	for _, block := range strings.Split(strings.TrimSpace(ttl), "\n\n") {
		if !strings.HasSuffix(block, " .") {
			t.Fatalf("statement not terminated: %q", block)
		}
	}
}

func TestLiteralEscaping(t *testing.T) {
	got := literal("a\\b\"c\nd")
	want := `"a\\b\"c\nd"`
	if got != want {
		t.Fatalf("literal = %s, want %s", got, want)
	}
}

func TestDetailsTurtle(t *testing.T) {
	ttl := string(Details(testInfo, []ParamInfo{
		{Name: "Rate", Units: "Hz", Default: 4, Min: 0.1, Max: 20},
		{Name: "Depth", Default: 0.5, Min: 0, Max: 1},
	}))
	for _, want := range []string{
		"afxdb:implementation_Trem_VST_1-0-0 rdf:type afx:Implementation",
		"afxdb:implementation_Trem_VST_1-0-0 afx:hasParameter _:param1",
		`rdfs:label "Rate"^^xsd:string`,
		`afx:maximum "20"^^xsd:double`,
		`afx:unit "Hz"^^xsd:string`,
	} {
		if !strings.Contains(ttl, want) {
			t.Fatalf("details missing %q:\n%s", want, ttl)
		}
	}
	if strings.Count(ttl, "afx:unit") != 1 {
		t.Fatal("unit written for a parameter without units")
	}
}
