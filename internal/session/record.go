package session

// Record is the persisted session metadata, one of the three contract
// surfaces consumed by downstream collaborators.
type Record struct {
	SessionID       string           `json:"session_id"`
	SourceName      string           `json:"source_name"`
	SessionStart    string           `json:"session_start"`
	StartSource     string           `json:"start_source"`
	ProcessingMode  string           `json:"processing_mode"`
	AudioProperties PropertiesRecord `json:"audio_properties"`
}

// PropertiesRecord mirrors Properties in record form.
type PropertiesRecord struct {
	SampleRate      int     `json:"sample_rate"`
	Channels        int     `json:"channels"`
	BitDepth        int     `json:"bit_depth"`
	DurationSeconds float64 `json:"duration_seconds"`
}

// Record returns the serializable form of the session.
func (s *Session) Record() Record {
	return Record{
		SessionID:      s.ID,
		SourceName:     s.SourceName,
		SessionStart:   s.Start.Format(TimeLayout),
		StartSource:    s.StartSource,
		ProcessingMode: s.Mode,
		AudioProperties: PropertiesRecord{
			SampleRate:      s.Audio.SampleRate,
			Channels:        s.Audio.Channels,
			BitDepth:        s.Audio.BitDepth,
			DurationSeconds: s.Audio.DurationSeconds,
		},
	}
}
