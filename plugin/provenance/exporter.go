package provenance

import (
	"context"

	"github.com/cwbudde/algo-safe/plugin/analysis"
)

// Exporter routes annotations to a LocalStore or a RemoteExporter. A nil
// destination reports its unavailable warning.
type Exporter struct {
	Local  *LocalStore
	Remote *RemoteExporter
}

var _ analysis.Exporter = (*Exporter)(nil)

// ExportLocal appends a to the local data file.
func (e *Exporter) ExportLocal(ctx context.Context, a analysis.Annotation) analysis.Warning {
	if e.Local == nil {
		return analysis.DataFileUnavailable
	}
	return e.Local.Save(ctx, a)
}

// ExportRemote uploads a to the aggregation service.
func (e *Exporter) ExportRemote(ctx context.Context, a analysis.Annotation) analysis.Warning {
	if e.Remote == nil {
		return analysis.ServerUnavailable
	}
	return e.Remote.Upload(ctx, a)
}

// Lookup returns stored parameter values for descriptor from the remote
// service when fromServer is set, otherwise from the local data file.
func (e *Exporter) Lookup(ctx context.Context, descriptor string, fromServer bool) ([]float64, analysis.Warning) {
	if fromServer {
		if e.Remote == nil {
			return nil, analysis.ServerUnavailable
		}
		return e.Remote.Lookup(ctx, descriptor)
	}
	if e.Local == nil {
		return nil, analysis.DataFileUnavailable
	}
	return e.Local.Lookup(descriptor)
}
