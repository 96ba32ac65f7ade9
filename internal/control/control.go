package control

import "time"

// Request is one line of JSON on the control socket.
type Request struct {
	Op string `json:"op"`
}

// Status reports daemon and engine state.
type Status struct {
	Running     bool         `json:"running"`
	Paused      bool         `json:"paused"`
	Recording   bool         `json:"recording"`
	UptimeSec   float64      `json:"uptime_sec"`
	Level       float64      `json:"level"`
	Buffered    int          `json:"buffered_samples"`
	Transcripts []Transcript `json:"transcripts"`
}

// SimpleResponse acknowledges an operation.
type SimpleResponse struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

// TextResponse carries recognized text back to the client.
type TextResponse struct {
	OK       bool     `json:"ok"`
	Text     string   `json:"text"`
	Segments []string `json:"segments,omitempty"`
}

// Transcript is one recognized line with its arrival time.
type Transcript struct {
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}
