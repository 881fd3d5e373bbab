package cache

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"

	"github.com/irongraph/irongraph/internal/domain/model"
)

// Fingerprint hashes the canonical form of an analytics request. Two
// requests that are field-wise equal after normalization always produce
// the same key, regardless of equipment ordering or duplicates. The
// output format is part of the key since it changes the stored payload.
func Fingerprint(req model.AnalyticsRequest) uint64 {
	f := req.Filter.Normalize()

	d := xxhash.New()
	var buf [8]byte

	writeByte := func(b byte) {
		buf[0] = b
		_, _ = d.Write(buf[:1])
	}
	writeUint64 := func(v uint64) {
		binary.LittleEndian.PutUint64(buf[:], v)
		_, _ = d.Write(buf[:])
	}
	writeFloat := func(v float64) { writeUint64(math.Float64bits(v)) }
	writeString := func(s string) {
		writeUint64(uint64(len(s)))
		_, _ = d.WriteString(s)
	}

	if f.Sex == nil {
		writeByte(0xff)
	} else {
		writeByte(byte(*f.Sex))
	}

	writeUint64(uint64(len(f.Equipment)))
	for _, eq := range f.Equipment {
		writeByte(byte(eq))
	}

	writeString(f.WeightClass)
	writeFloat(f.MinBodyweightKg)
	writeFloat(f.MaxBodyweightKg)
	writeString(f.Federation)
	writeByte(byte(f.Period))
	writeUint64(uint64(f.Year))

	if req.Reference == nil {
		writeByte(0)
	} else {
		writeByte(1)
		writeByte(byte(req.Reference.Sex))
		writeFloat(req.Reference.BodyweightKg)
		writeFloat(req.Reference.SquatKg)
		writeFloat(req.Reference.BenchKg)
		writeFloat(req.Reference.DeadliftKg)
	}

	writeString(req.Format)

	return d.Sum64()
}
