package provenance

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/cwbudde/algo-safe/features"
	"github.com/cwbudde/algo-safe/plugin/analysis"
)

var turtlePrefixes = [][2]string{
	{"rdf", "http://www.w3.org/1999/02/22-rdf-syntax-ns#"},
	{"rdfs", "http://www.w3.org/2000/01/rdf-schema#"},
	{"xsd", "http://www.w3.org/2001/XMLSchema#"},
	{"prov", "http://www.w3.org/ns/prov#"},
	{"studio", "http://isophonics.net/onto/studio#"},
	{"mo", "http://purl.org/ontology/mo/"},
	{"tl", "http://purl.org/NET/c4dm/timeline.owl#"},
	{"qudt", "http://qudt.org/schema/qudt#"},
	{"afx", "http://w3id.org/aufx/ontology/1.0#"},
	{"afxdb", "http://semanticaudio.co.uk/afxdb/"},
	{"safe", "http://semanticaudio.co.uk/ontology/safe#"},
	{"safedb", "http://semanticaudio.co.uk/safedb/"},
}

// turtleWriter emits Turtle statements grouped by subject.
type turtleWriter struct {
	buf    bytes.Buffer
	blanks int
}

func newTurtleWriter() *turtleWriter {
	w := &turtleWriter{}
	for _, p := range turtlePrefixes {
		fmt.Fprintf(&w.buf, "@prefix %s: <%s> .\n", p[0], p[1])
	}
	w.buf.WriteByte('\n')
	return w
}

func (w *turtleWriter) blank() string {
	w.blanks++
	return "_:b" + strconv.Itoa(w.blanks)
}

// subject writes one subject with its predicate/object pairs.
func (w *turtleWriter) subject(s string, po ...string) {
	if len(po) == 0 || len(po)%2 != 0 {
		panic("provenance: predicate/object pairs expected")
	}
	w.buf.WriteString(s)
	for i := 0; i < len(po); i += 2 {
		if i > 0 {
			w.buf.WriteString(" ;\n   ")
		}
		w.buf.WriteString(" " + po[i] + " " + po[i+1])
	}
	w.buf.WriteString(" .\n\n")
}

func (w *turtleWriter) bytes() []byte { return w.buf.Bytes() }

func literal(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\r", `\r`, "\t", `\t`)
	return `"` + r.Replace(s) + `"`
}

func typedString(s string) string { return literal(s) + "^^xsd:string" }

func typedInt(n int) string { return `"` + strconv.Itoa(n) + `"^^xsd:integer` }

func typedDouble(v float64) string {
	return `"` + strconv.FormatFloat(v, 'g', -1, 64) + `"^^xsd:double`
}

// Record returns the Turtle provenance record of one annotation. id makes
// the record's node names unique.
func Record(info Info, a analysis.Annotation, id string) []byte {
	w := newTurtleWriter()
	local := XMLName(id)

	plugin := "afxdb:" + info.Implementation()
	transform := "safedb:transform_" + local
	user := "safedb:user_" + local

	w.subject(user, "rdf:type", "prov:Person")
	w.subject(transform,
		"rdf:type", "prov:Activity",
		"rdf:type", "studio:Transform",
		"prov:wasAssociatedWith", user,
		"prov:wasAssociatedWith", plugin,
		"studio:effect", plugin,
	)

	metadata := []struct{ label, value string }{
		{"location", a.Metadata.Location},
		{"instrument", a.Metadata.Instrument},
		{"genre", a.Metadata.Genre},
	}
	metaNodes := make(map[string]string, len(metadata))
	for _, m := range metadata {
		node := "safedb:" + m.label + "_" + local
		metaNodes[m.label] = node
		w.subject(transform, "safe:metadata", node)
		w.provItem(node, "safe:MetadataItem", user,
			"rdfs:label", literal(m.label),
			"rdfs:comment", literal(m.value),
		)
	}

	descriptor := w.blank()
	w.subject(transform, "safe:descriptor", descriptor)
	w.provItem(descriptor, "safe:DescriptorItem", user, "rdfs:comment", literal(a.Descriptor))

	state := "safedb:state_" + local
	w.subject(transform, "afx:state", state)
	for i, v := range a.Parameters {
		setting, param, value := w.blank(), w.blank(), "safedb:value_"+local+"_"+strconv.Itoa(i)
		w.subject(state, "afx:parameterSetting", setting)
		w.subject(setting, "rdf:type", "afx:ParameterSetting", "afx:parameter", param)
		w.subject(param, "afx:parameterId", typedInt(i), "qudt:value", value)
		w.subject(value, "qudt:numericValue", typedDouble(v))
	}

	w.association("safedb:pluginAssociation_"+local, plugin, transform, "audio effect plug-in")
	w.association("safedb:userAssociation_"+local, user, transform, "configure/apply effect plug-in")

	w.signals(local, "input", "prov:used", a.NumInputs, a.Unprocessed, transform, metaNodes)
	w.signals(local, "output", "prov:generated", a.NumOutputs, a.Processed, transform, metaNodes)

	return w.bytes()
}

// provItem writes a typed node generated by an activity associated with user.
func (w *turtleWriter) provItem(node, class, user string, po ...string) {
	activity := w.blank()
	w.subject(node, append([]string{"rdf:type", class, "prov:wasGeneratedBy", activity}, po...)...)
	w.subject(activity, "rdf:type", "prov:Activity", "prov:wasAssociatedWith", user)
}

func (w *turtleWriter) association(node, agent, transform, role string) {
	r := w.blank()
	w.subject(node,
		"rdf:type", "prov:Association",
		"prov:agent", agent,
		"prov:qualifiedAssociation", transform,
		"prov:hadRole", r,
	)
	w.subject(r, "rdfs:comment", literal(role))
}

func (w *turtleWriter) signals(local, kind, relation string, n int, set features.Set, transform string, meta map[string]string) {
	for ch := range n {
		name := kind + "_" + strconv.Itoa(ch)
		signal := "safedb:signal_" + local + "_" + name
		timeline := "safedb:timeline_" + local + "_" + name
		interval := w.blank()

		w.subject(signal,
			"rdf:type", "mo:Signal",
			"rdfs:label", literal(kind+" signal "+strconv.Itoa(ch)),
			"mo:time", interval,
			"safe:metadata", meta["instrument"],
			"safe:metadata", meta["genre"],
		)
		w.subject(interval, "rdf:type", "tl:Interval", "tl:onTimeline", timeline)
		w.subject(timeline, "rdf:type", "tl:Timeline")
		w.subject(transform, relation, signal)

		if ch >= len(set.Channels) {
			continue
		}
		c := set.Channels[ch]
		for _, d := range set.Descriptors {
			s := c.Summary(d)
			f := w.blank()
			w.subject(signal, "safe:feature", f)
			w.subject(f,
				"rdf:type", "safe:Feature",
				"rdfs:label", literal(string(d)),
				"safe:frames", typedInt(c.Frames),
				"safe:mean", typedDouble(s.Mean),
				"safe:standardDeviation", typedDouble(s.Std),
			)
		}
	}
}

// Details returns the Turtle description of the plugin and its parameters.
func Details(info Info, params []ParamInfo) []byte {
	w := newTurtleWriter()
	plugin := "afxdb:" + info.Implementation()
	w.subject(plugin,
		"rdf:type", "afx:Implementation",
		"rdf:type", "prov:SoftwareAgent",
		"rdfs:label", typedString(info.Name),
	)
	for i, p := range params {
		node := "_:param" + strconv.Itoa(i)
		w.subject(plugin, "afx:hasParameter", node)
		w.subject(node,
			"rdf:type", "afx:NumericParameter",
			"rdfs:label", typedString(p.Name),
			"afx:parameterId", typedInt(i),
			"afx:default", typedDouble(p.Default),
			"afx:minimum", typedDouble(p.Min),
			"afx:maximum", typedDouble(p.Max),
		)
		if p.Units != "" {
			w.subject(node, "afx:unit", typedString(p.Units))
		}
	}
	return w.bytes()
}
