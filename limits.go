package formdata

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Limits bounds the resources a single form may use.
// A zero limit means unlimited, except MaxBufSize which falls back to 64KB.
type Limits struct {
	MaxBufSize       DataSize `toml:"max_buf_size"`
	MaxStreamSize    DataSize `toml:"max_stream_size"`
	MaxFieldSize     DataSize `toml:"max_field_size"`
	MaxFileSize      DataSize `toml:"max_file_size"`
	MaxFieldNameSize uint     `toml:"max_field_name_size"`
	MaxParts         uint     `toml:"max_parts"`
	MaxFields        uint     `toml:"max_fields"`
	MaxFiles         uint     `toml:"max_files"`
	MaxHeaders       uint     `toml:"max_headers"`
}

func DefaultLimits() Limits {
	return Limits{
		MaxBufSize:   defaultMaxBufSize,
		MaxFieldSize: defaultMaxFieldSize,
		MaxParts:     defaultMaxParts,
		MaxHeaders:   defaultMaxHeaders,
	}
}

// DecodeLimits reads limits from a TOML document. Keys that are not present
// keep their default; unknown keys are an error.
//
//	max_buf_size = "128KB"
//	max_file_size = "10MB"
//	max_parts = 100
func DecodeLimits(r io.Reader) (Limits, error) {
	l := DefaultLimits()
	err := toml.NewDecoder(r).DisallowUnknownFields().Decode(&l)
	if err != nil {
		return Limits{}, fmt.Errorf("failed to decode limits: %w", err)
	}

	return l, nil
}

// LoadLimits reads limits from a TOML file.
func LoadLimits(path string) (Limits, error) {
	f, err := os.Open(path)
	if err != nil {
		return Limits{}, fmt.Errorf("failed to open limits file: %w", err)
	}
	defer f.Close()

	return DecodeLimits(f)
}

var dataSizeUnits = []struct {
	suffix string
	size   DataSize
}{
	{"GB", GB},
	{"MB", MB},
	{"KB", KB},
	{"B", 1},
}

// UnmarshalText accepts a plain byte count or a count with a B, KB, MB or GB suffix.
func (s *DataSize) UnmarshalText(text []byte) error {
	str := strings.ToUpper(strings.TrimSpace(strings.ReplaceAll(string(text), "_", "")))
	str = strings.Trim(str, `"`)

	unit := DataSize(1)
	for _, u := range dataSizeUnits {
		if strings.HasSuffix(str, u.suffix) {
			str = strings.TrimSpace(strings.TrimSuffix(str, u.suffix))
			unit = u.size
			break
		}
	}

	n, err := strconv.ParseInt(str, 10, 64)
	if err != nil || n < 0 {
		return fmt.Errorf("invalid data size %q", text)
	}
	*s = DataSize(n) * unit

	return nil
}

func (s DataSize) String() string {
	for _, u := range dataSizeUnits {
		if s >= u.size && s%u.size == 0 {
			return strconv.FormatInt(int64(s/u.size), 10) + u.suffix
		}
	}
	return strconv.FormatInt(int64(s), 10) + "B"
}
