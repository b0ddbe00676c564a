package provenance

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

type detailsDocument struct {
	XMLName    xml.Name          `xml:"Plugin"`
	Name       string            `xml:"Name,attr"`
	Code       string            `xml:"Code,attr"`
	Format     string            `xml:"Format,attr,omitempty"`
	Version    string            `xml:"Version,attr,omitempty"`
	Parameters string            `xml:"Parameters,attr"`
	Params     []detailParameter `xml:"Parameter"`
}

type detailParameter struct {
	ID      int     `xml:"Id,attr"`
	Name    string  `xml:"Name,attr"`
	Units   string  `xml:"Units,attr,omitempty"`
	Default float64 `xml:"Default,attr"`
	Min     float64 `xml:"Min,attr"`
	Max     float64 `xml:"Max,attr"`
}

// WriteDetails writes <Name>Details.xml and <Name>Details.ttl describing
// the plugin and its parameters into dir.
func WriteDetails(dir string, info Info, params []ParamInfo) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("provenance: create details directory: %w", err)
	}

	doc := detailsDocument{
		Name:    info.Name,
		Code:    info.Code,
		Format:  info.Format,
		Version: info.Version,
	}
	names := make([]string, len(params))
	for i, p := range params {
		names[i] = p.Name
		doc.Params = append(doc.Params, detailParameter{
			ID: i, Name: p.Name, Units: p.Units, Default: p.Default, Min: p.Min, Max: p.Max,
		})
	}
	doc.Parameters = strings.Join(names, ", ")

	data, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("provenance: encode details: %w", err)
	}
	base := filepath.Join(dir, XMLName(info.Name)+"Details")
	if err := writeFileAtomic(base+".xml", append([]byte(xml.Header), append(data, '\n')...)); err != nil {
		return err
	}
	return writeFileAtomic(base+".ttl", Details(info, params))
}
