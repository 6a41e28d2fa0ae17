package cmd

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

// Profile holds command defaults read from a TOML file:
//
//	[encode]
//	delimiter = "|"
//	indent = 4
//	type_hints = true
//
//	[decode]
//	strict = true
//	to = "yaml"
//
// Flags given on the command line take precedence.
type Profile struct {
	Encode EncodeProfile `toml:"encode"`
	Decode DecodeProfile `toml:"decode"`
}

// EncodeProfile configures the encode, check and stats commands.
type EncodeProfile struct {
	From                 string  `toml:"from"`
	Delimiter            string  `toml:"delimiter"`
	Indent               int     `toml:"indent"`
	TypeHints            bool    `toml:"type_hints"`
	Smart                bool    `toml:"smart"`
	Pretty               bool    `toml:"pretty"`
	SemiUniformThreshold float64 `toml:"semi_uniform_threshold"`
}

// DecodeProfile configures the decode command.
type DecodeProfile struct {
	To           string `toml:"to"`
	Strict       bool   `toml:"strict"`
	MaxInputSize int    `toml:"max_input_size"`
	MaxDepth     int    `toml:"max_depth"`
}

// LoadProfile reads the profile at path. An empty path yields the zero
// profile. Unknown keys are rejected so typos do not go unnoticed.
func LoadProfile(path string) (*Profile, error) {
	p := &Profile{}
	if path == "" {
		return p, nil
	}
	md, err := toml.DecodeFile(path, p)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("unknown keys in profile %s: %s", path, strings.Join(keys, ", "))
	}
	return p, nil
}
