package format

import "fmt"

type Format int8

const (
	Text Format = iota
	Csv
)

func UnmarshalText(text string) (Format, error) {
	switch text {
	case "text", "":
		return Text, nil
	case "csv":
		return Csv, nil
	default:
		return 0, fmt.Errorf("invalid format: %q", text)
	}
}
