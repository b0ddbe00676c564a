package main

import (
	"fmt"
	"io"
	"sync"

	"github.com/cwbudde/algo-safe/dsp/param"
	"github.com/cwbudde/algo-safe/internal/config"
	"github.com/cwbudde/algo-safe/internal/observe"
	"github.com/cwbudde/algo-safe/plugin"
	"github.com/cwbudde/algo-safe/plugin/analysis"
	"github.com/cwbudde/algo-safe/plugin/provenance"
)

// App carries what every command needs.
type App struct {
	cfg     *config.Config
	out     io.Writer
	errOut  io.Writer
	metrics *observe.Metrics

	mu sync.Mutex
}

// store opens the local data file and, when configured, the remote
// service.
func (a *App) store() (*provenance.Exporter, error) {
	local, err := provenance.NewLocalStore(a.cfg.Storage.DataDir, a.cfg.Info())
	if err != nil {
		return nil, err
	}
	exp := &provenance.Exporter{Local: local}
	rc := a.cfg.RemoteConfig()
	if rc.UploadURL != "" || rc.LookupURL != "" {
		if exp.Remote, err = provenance.NewRemoteExporter(rc, a.cfg.Info()); err != nil {
			return nil, err
		}
	}
	return exp, nil
}

// newProcessor builds a tremolo processor for a stream at sampleRate with
// the given channel count.
func (a *App) newProcessor(sampleRate float64, channels int, head *plugin.PlayHead, exp *provenance.Exporter) (*plugin.Processor, error) {
	aopts := append(a.cfg.AnalysisOptions(exp.Local.LockPath()), analysis.WithMetrics(a.metrics))
	p, err := plugin.New(plugin.NewTremoloKernel(), head, exp,
		plugin.WithProcessorOptions(a.cfg.ProcessorOptions(sampleRate)...),
		plugin.WithAnalysisOptions(aopts...),
		plugin.WithChannels(channels, channels),
		plugin.WithNotifier(analysis.NotifierFunc(a.notify)),
		plugin.WithIntegrityInterval(a.cfg.Analysis.IntegrityInterval),
	)
	if err != nil {
		return nil, fmt.Errorf("create processor: %w", err)
	}
	return p, nil
}

func (a *App) notify(w analysis.Warning) {
	a.mu.Lock()
	defer a.mu.Unlock()
	printWarning(a.errOut, w)
}

func (a *App) parameterSpecs() []param.Spec {
	return plugin.NewTremoloKernel().Parameters()
}
