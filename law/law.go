package law

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Law 法案/阵营标记
//
// The same two values tag both an enacted law and a player's faction.
type Law byte

const (
	Liberal Law = iota + 1
	Fascist
)

const (
	LiberalCount = 6
	FascistCount = 11
	DeckSize     = LiberalCount + FascistCount
)

func (l Law) String() string {
	switch l {
	case Liberal:
		return "Liberal"
	case Fascist:
		return "Fascist"
	}
	return "Invalid"
}

func (l Law) Valid() bool {
	return l == Liberal || l == Fascist
}

// Parse 将字符串 (如 "Liberal", "fascist", "L") 转换为 Law
func Parse(s string) (Law, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "liberal", "l":
		return Liberal, nil
	case "fascist", "f":
		return Fascist, nil
	default:
		return 0, fmt.Errorf("invalid law: %q", s)
	}
}

func (l Law) MarshalJSON() ([]byte, error) {
	if !l.Valid() {
		return nil, fmt.Errorf("invalid law %d", byte(l))
	}
	return json.Marshal(l.String())
}

func (l *Law) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	v, err := Parse(s)
	if err != nil {
		return err
	}
	*l = v
	return nil
}

func (l Law) MarshalYAML() (any, error) {
	return l.String(), nil
}

func (l *Law) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	v, err := Parse(s)
	if err != nil {
		return err
	}
	*l = v
	return nil
}
