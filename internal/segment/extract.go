package segment

import (
	"fmt"
	"os"
	"path/filepath"

	gaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/datadigshawn/aiSpeech-2026/internal/audio"
)

// Extract writes one 16-bit mono WAV per segment into dir, named after the
// segment ID, and returns the segments with AudioPath filled in. The source
// must be the same mono recording the segments were built from.
func Extract(src *audio.Source, segs []Segment, dir string) ([]Segment, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create chunk dir: %w", err)
	}

	out := make([]Segment, len(segs))
	copy(out, segs)

	for i := range out {
		path := filepath.Join(dir, out[i].ID+".wav")
		if err := writeChunk(src, out[i].Interval, path); err != nil {
			return nil, fmt.Errorf("extract %s: %w", out[i].ID, err)
		}
		out[i].AudioPath = path
	}
	return out, nil
}

func writeChunk(src *audio.Source, iv Interval, path string) error {
	start := int(iv.OffsetMS) * src.SampleRate / 1000
	end := int(iv.EndMS()) * src.SampleRate / 1000
	if start > len(src.Samples) {
		start = len(src.Samples)
	}
	if end > len(src.Samples) {
		end = len(src.Samples)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create chunk file: %w", err)
	}
	defer f.Close()

	enc := wav.NewEncoder(f, src.SampleRate, 16, 1, 1)

	intData := make([]int, end-start)
	for i, sample := range src.Samples[start:end] {
		if sample > 1 {
			sample = 1
		}
		if sample < -1 {
			sample = -1
		}
		intData[i] = int(sample * 32767.0)
	}

	buf := &gaudio.IntBuffer{
		Format: &gaudio.Format{
			NumChannels: 1,
			SampleRate:  src.SampleRate,
		},
		Data:           intData,
		SourceBitDepth: 16,
	}

	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("write chunk audio: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("close encoder: %w", err)
	}
	return nil
}
