package provenance

import "strings"

// Info identifies the plugin that produced an annotation.
type Info struct {
	Name    string
	Code    string
	Format  string
	Version string
}

// Implementation returns the local name of the plugin implementation node,
// for example "implementation_Trem_VST_1-0-0".
func (i Info) Implementation() string {
	version := strings.ReplaceAll(i.Version, ".", "-")
	return "implementation_" + nameChars(i.Code) + "_" + nameChars(i.Format) + "_" + nameChars(version)
}

// ParamInfo describes one plugin parameter for the details files.
type ParamInfo struct {
	Name    string
	Units   string
	Default float64
	Min     float64
	Max     float64
}

// XMLName reduces s to characters valid in an XML element name. Characters
// outside [0-9A-Za-z:_-] are dropped and a leading digit, '-' or empty
// result gets an underscore prefix.
func XMLName(s string) string {
	out := nameChars(s)
	if out == "" || (out[0] >= '0' && out[0] <= '9') || out[0] == '-' {
		out = "_" + out
	}
	return out
}

func nameChars(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
			return r
		case r == ':' || r == '_' || r == '-':
			return r
		}
		return -1
	}, s)
}
