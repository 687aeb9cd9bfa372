package test262

import (
	"github.com/tidwall/sjson"
)

// Report summarizes a suite run as the JSON shape a CI consumer or the
// bundles/run CLI commands can render, built incrementally with sjson
// rather than a struct + encoding/json pass, matching how
// pkg/esvm/loadtree.go treats JSON as a value tree instead of a fixed Go
// shape.
func Report(outcomes []Outcome) (string, error) {
	doc := "{}"
	var err error

	passed, failed := 0, 0
	for i, o := range outcomes {
		prefix := "results." + itoa(i)
		doc, err = sjson.Set(doc, prefix+".path", o.Fixture.Path)
		if err != nil {
			return "", err
		}
		doc, err = sjson.Set(doc, prefix+".passed", o.Passed)
		if err != nil {
			return "", err
		}
		if o.Reason != "" {
			doc, err = sjson.Set(doc, prefix+".reason", o.Reason)
			if err != nil {
				return "", err
			}
		}
		if o.Passed {
			passed++
		} else {
			failed++
		}
	}
	doc, err = sjson.Set(doc, "summary.passed", passed)
	if err != nil {
		return "", err
	}
	doc, err = sjson.Set(doc, "summary.failed", failed)
	if err != nil {
		return "", err
	}
	doc, err = sjson.Set(doc, "summary.total", len(outcomes))
	if err != nil {
		return "", err
	}
	return doc, nil
}

func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	var buf [20]byte
	pos := len(buf)
	neg := i < 0
	if neg {
		i = -i
	}
	for i > 0 {
		pos--
		buf[pos] = byte('0' + i%10)
		i /= 10
	}
	if neg {
		pos--
		buf[pos] = '-'
	}
	return string(buf[pos:])
}
