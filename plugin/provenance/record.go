package provenance

import (
	"encoding/xml"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/cwbudde/algo-safe/features"
	"github.com/cwbudde/algo-safe/plugin/analysis"
)

type dataDocument struct {
	XMLName xml.Name
	Entries []dataEntry `xml:"Entry"`
}

type dataEntry struct {
	ID          string           `xml:"Id,attr"`
	Created     string           `xml:"Created,attr,omitempty"`
	Descriptors []xml.Attr       `xml:",any,attr"`
	Config      configElement    `xml:"PlugInConfiguration"`
	Parameters  parameterElement `xml:"ParameterSettings"`
	Unprocessed featureElement   `xml:"UnprocessedAudioFeatures"`
	Processed   featureElement   `xml:"ProcessedAudioFeatures"`
	MetaData    metaDataElement  `xml:"MetaData"`
}

type configElement struct {
	PluginCode   string  `xml:"PluginCode,attr"`
	Inputs       int     `xml:"Inputs,attr"`
	Outputs      int     `xml:"Outputs,attr"`
	SampleRate   float64 `xml:"SampleRate,attr"`
	AnalysisTime int     `xml:"AnalysisTime,attr"`
}

type parameterElement struct {
	Values string `xml:"Values,attr"`
}

type featureElement struct {
	FrameSize int              `xml:"FrameSize,attr,omitempty"`
	StepSize  int              `xml:"StepSize,attr,omitempty"`
	Channels  []channelElement `xml:"Channel"`
}

type channelElement struct {
	Index    int            `xml:"Index,attr"`
	Frames   int            `xml:"Frames,attr"`
	Features []featureValue `xml:"Feature"`
}

type featureValue struct {
	Name string  `xml:"Name,attr"`
	Mean float64 `xml:"Mean,attr"`
	Std  float64 `xml:"Std,attr"`
}

type metaDataElement struct {
	Genre      string `xml:"Genre,attr"`
	Instrument string `xml:"Instrument,attr"`
	Location   string `xml:"Location,attr"`
	Experience string `xml:"Experience,attr"`
	Age        string `xml:"Age,attr"`
	Language   string `xml:"Language,attr"`
}

func newDataEntry(id string, info Info, a analysis.Annotation) dataEntry {
	e := dataEntry{
		ID: id,
		Config: configElement{
			PluginCode:   info.Code,
			Inputs:       a.NumInputs,
			Outputs:      a.NumOutputs,
			SampleRate:   a.SampleRate,
			AnalysisTime: analysisMillis(a),
		},
		Parameters:  parameterElement{Values: FormatValues(a.Parameters)},
		Unprocessed: newFeatureElement(a.Unprocessed),
		Processed:   newFeatureElement(a.Processed),
		MetaData: metaDataElement{
			Genre:      a.Metadata.Genre,
			Instrument: a.Metadata.Instrument,
			Location:   a.Metadata.Location,
			Experience: a.Metadata.Experience,
			Age:        a.Metadata.Age,
			Language:   a.Metadata.Language,
		},
	}
	if !a.Created.IsZero() {
		e.Created = a.Created.UTC().Format(time.RFC3339)
	}
	terms := a.Terms
	if terms == nil {
		terms = analysis.SplitDescriptor(a.Descriptor)
	}
	for i, term := range terms {
		e.Descriptors = append(e.Descriptors, xml.Attr{
			Name:  xml.Name{Local: "Descriptor" + strconv.Itoa(i)},
			Value: term,
		})
	}
	return e
}

// hasDescriptor reports whether any DescriptorN attribute equals term.
func (e dataEntry) hasDescriptor(term string) bool {
	for _, attr := range e.Descriptors {
		if strings.HasPrefix(attr.Name.Local, "Descriptor") && attr.Value == term {
			return true
		}
	}
	return false
}

func (e dataEntry) terms() []string {
	var out []string
	for _, attr := range e.Descriptors {
		if strings.HasPrefix(attr.Name.Local, "Descriptor") && attr.Value != "" {
			out = append(out, attr.Value)
		}
	}
	return out
}

func newFeatureElement(s features.Set) featureElement {
	el := featureElement{FrameSize: s.FrameSize, StepSize: s.StepSize}
	for i, ch := range s.Channels {
		c := channelElement{Index: i, Frames: ch.Frames}
		for _, d := range s.Descriptors {
			sum := ch.Summary(d)
			c.Features = append(c.Features, featureValue{Name: string(d), Mean: sum.Mean, Std: sum.Std})
		}
		el.Channels = append(el.Channels, c)
	}
	return el
}

func analysisMillis(a analysis.Annotation) int {
	if a.SampleRate <= 0 {
		return 0
	}
	return int(math.Round(float64(a.Samples) / a.SampleRate * 1000))
}

// FormatValues joins parameter values as "v0, v1, ...".
func FormatValues(values []float64) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return strings.Join(parts, ", ")
}

// ParseValues parses a comma separated list of numbers. Empty items are
// skipped.
func ParseValues(s string) ([]float64, error) {
	var out []float64
	for _, field := range strings.Split(s, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return nil, fmt.Errorf("provenance: parameter value %q: %w", field, err)
		}
		out = append(out, v)
	}
	return out, nil
}
