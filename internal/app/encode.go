package service

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/irongraph/irongraph/internal/domain/model"
	"github.com/irongraph/irongraph/internal/domain/percentile"
)

// Output format discriminators. Part of the cache fingerprint.
const (
	FormatJSON     = "json"
	FormatColumnar = "columnar-binary"
)

// columnarMagic marks a columnar payload. The version byte follows it.
var columnarMagic = [4]byte{'I', 'G', 'C', 'B'}

const columnarVersion = 1

func contentTypeFor(format string) (string, error) {
	switch format {
	case FormatJSON:
		return "application/json", nil
	case FormatColumnar:
		return "application/octet-stream", nil
	default:
		return "", fmt.Errorf("%w: unknown format %q", ErrValidation, format)
	}
}

// encode serializes a result for the wire. Percentiles are reported as
// integer percentage points; the full-precision values stay internal.
func encode(result *model.AnalyticsResult, format string) ([]byte, error) {
	switch format {
	case FormatJSON:
		return encodeJSON(result)
	case FormatColumnar:
		return encodeColumnar(result)
	default:
		return nil, fmt.Errorf("%w: unknown format %q", ErrValidation, format)
	}
}

// jsonPayload is the wire shape of a JSON response.
type jsonPayload struct {
	RecordCount int            `json:"record_count"`
	Histogram   []model.Bin    `json:"histogram"`
	Scatter     []model.Point  `json:"scatter"`
	Percentiles map[string]int `json:"percentiles,omitempty"`
	DurationMs  float64        `json:"duration_ms"`
}

func encodeJSON(result *model.AnalyticsResult) ([]byte, error) {
	payload := jsonPayload{
		RecordCount: result.RecordCount,
		Histogram:   result.Histogram,
		Scatter:     result.Scatter,
		DurationMs:  float64(result.Duration.Microseconds()) / 1000,
	}
	if len(result.Percentiles) > 0 {
		payload.Percentiles = make(map[string]int, len(result.Percentiles))
		for k, v := range result.Percentiles {
			payload.Percentiles[k] = percentile.Round(v)
		}
	}

	out, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrComputation, err)
	}
	return out, nil
}

// encodeColumnar writes the result in a compact little-endian layout:
//
//	magic[4] version[1]
//	record_count[u32] duration_ns[u64]
//	histogram: n[u32], then n × (lo[f64] hi[f64] count[u32])
//	scatter:   n[u32], then n × (bw[f64] total[f64] dots[f64])
//	percentiles: n[u32], then n × (key_len[u8] key… value[i8])
func encodeColumnar(result *model.AnalyticsResult) ([]byte, error) {
	var buf bytes.Buffer
	buf.Write(columnarMagic[:])
	buf.WriteByte(columnarVersion)

	w := func(v any) {
		_ = binary.Write(&buf, binary.LittleEndian, v)
	}

	w(uint32(result.RecordCount))
	w(uint64(result.Duration.Nanoseconds()))

	w(uint32(len(result.Histogram)))
	for _, b := range result.Histogram {
		w(b.Lo)
		w(b.Hi)
		w(uint32(b.Count))
	}

	w(uint32(len(result.Scatter)))
	for _, p := range result.Scatter {
		w(p.BodyweightKg)
		w(p.TotalKg)
		w(p.Dots)
	}

	w(uint32(len(result.Percentiles)))
	for _, key := range sortedKeys(result.Percentiles) {
		buf.WriteByte(byte(len(key)))
		buf.WriteString(key)
		w(int8(percentile.Round(result.Percentiles[key])))
	}

	return buf.Bytes(), nil
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
