package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCamelToSnakeCase(t *testing.T) {
	cases := map[string]string{
		"Id":            "id",
		"GroupKey":      "group_key",
		"SourceModTime": "source_mod_time",
		"SizeBytes":     "size_bytes",
		"SHA256Digest":  "sha256_digest",
		"HTTPServer":    "http_server",
		"EvictedAt":     "evicted_at",
		"":              "",
	}

	for in, expected := range cases {
		assert.Equal(t, expected, CamelToSnakeCase(in), in)
	}
}
