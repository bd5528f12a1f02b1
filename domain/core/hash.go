package core

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// Hash represents a cryptographic hash
type Hash string

// NewHash creates a new hash from data
func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// IsEmpty checks if the hash is empty
func (h Hash) IsEmpty() bool {
	return h == ""
}

// Short returns the first 12 hex characters, for logs
func (h Hash) Short() string {
	if len(h) <= 12 {
		return string(h)
	}
	return string(h[:12])
}

// Domain-specific hash types
type (
	DatasetHash Hash
	OptionsHash Hash
	ResultsHash Hash
)

func (h DatasetHash) String() string { return Hash(h).String() }
func (h OptionsHash) String() string { return Hash(h).String() }
func (h ResultsHash) String() string { return Hash(h).String() }

// ComputeOptionsHash hashes a flat parameter map independent of key order
func ComputeOptionsHash(params map[string]interface{}) OptionsHash {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var data strings.Builder
	for _, key := range keys {
		data.WriteString(key)
		data.WriteString("=")
		data.WriteString(fmt.Sprintf("%v", params[key]))
		data.WriteString(";")
	}

	return OptionsHash(NewHash([]byte(data.String())))
}

// ComputeResultsHash hashes ranked output lines; order is significant
func ComputeResultsHash(lines []string) ResultsHash {
	return ResultsHash(NewHash([]byte(strings.Join(lines, "\n"))))
}
