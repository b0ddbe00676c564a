package analysis

import "fmt"

// Warning is the outcome code reported to the user interface.
type Warning int

const (
	NoWarning Warning = iota
	// AnalysisThreadBusy: a capture completed while another analysis ran.
	AnalysisThreadBusy
	// ParameterChange: a parameter changed while recording.
	ParameterChange
	// AudioNotPlaying: the transport stopped while recording.
	AudioNotPlaying
	// DescriptorNotInFile: the local data file has no entry for a descriptor.
	DescriptorNotInFile
	// DescriptorNotOnServer: the remote service has no entry for a descriptor.
	DescriptorNotOnServer
	// DataFileUnavailable: the local data file could not be read or written.
	DataFileUnavailable
	// ServerUnavailable: the remote service could not be reached.
	ServerUnavailable
)

var warningNames = [...]string{
	NoWarning:             "none",
	AnalysisThreadBusy:    "analysis_thread_busy",
	ParameterChange:       "parameter_change",
	AudioNotPlaying:       "audio_not_playing",
	DescriptorNotInFile:   "descriptor_not_in_file",
	DescriptorNotOnServer: "descriptor_not_on_server",
	DataFileUnavailable:   "data_file_unavailable",
	ServerUnavailable:     "server_unavailable",
}

var warningMessages = [...]string{
	NoWarning:             "",
	AnalysisThreadBusy:    "Another recording is still being analysed. Please try again in a moment.",
	ParameterChange:       "The parameters were changed during recording, the data was not saved.",
	AudioNotPlaying:       "Audio must be playing while recording, the data was not saved.",
	DescriptorNotInFile:   "The descriptor could not be found in the local data file.",
	DescriptorNotOnServer: "The descriptor could not be found on the server.",
	DataFileUnavailable:   "The local data file could not be accessed.",
	ServerUnavailable:     "The server could not be reached.",
}

// String returns a stable snake_case name, suitable for metric attributes.
func (w Warning) String() string {
	if w >= 0 && int(w) < len(warningNames) {
		return warningNames[w]
	}
	return fmt.Sprintf("warning(%d)", int(w))
}

// Message returns the user-facing text for w.
func (w Warning) Message() string {
	if w >= 0 && int(w) < len(warningMessages) {
		return warningMessages[w]
	}
	return ""
}

// Notifier receives warnings for presentation. Notify is called from timer
// and worker goroutines, never from the real-time goroutine.
type Notifier interface {
	Notify(w Warning)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Warning)

// Notify calls f.
func (f NotifierFunc) Notify(w Warning) { f(w) }
