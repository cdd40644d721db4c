package config

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/docker/go-units"
	"github.com/mitchellh/mapstructure"
)

// ByteSize is an int64 byte count that accepts human-friendly suffixed
// strings ("200MB", "1GiB") from the environment, via StringToByteSize.
type ByteSize int64

// String renders the size in binary units (KiB, MiB, GiB, ...), for
// logging, whatever form it was parsed from.
func (b ByteSize) String() string {
	return units.BytesSize(float64(b))
}

// StringToByteSize is a mapstructure.DecodeHookFunc that converts a string
// to a ByteSize using docker/go-units, the same library cuemby-warren uses
// for byte-size configuration knobs. Plain integers (no suffix) are also
// accepted, matching the teacher's WeaklyTypedInput leniency elsewhere.
// Decimal suffixes ("MB") are powers of 1000; binary suffixes ("MiB") are
// powers of 1024.
func StringToByteSize() mapstructure.DecodeHookFunc {
	return func(f, t reflect.Type, data interface{}) (interface{}, error) {
		if f.Kind() != reflect.String || t != reflect.TypeOf(ByteSize(0)) {
			return data, nil
		}
		s, _ := data.(string)
		if s == "" {
			return nil, fmt.Errorf("empty byte size string")
		}
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return ByteSize(n), nil
		}
		parse := units.FromHumanSize
		if strings.Contains(strings.ToLower(s), "i") {
			parse = units.RAMInBytes
		}
		n, err := parse(s)
		if err != nil {
			return nil, fmt.Errorf("invalid byte size %q: %w", s, err)
		}
		return ByteSize(n), nil
	}
}
