package storage

import (
	"encoding/json"
	"io"
	"math"
	"strconv"

	"github.com/san-kum/qgsim/internal/dynamo"
)

// jsonFloat encodes non-finite values as null.
type jsonFloat float64

func (f jsonFloat) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, v, 'g', -1, 64), nil
}

type exportSample struct {
	Index      int       `json:"index"`
	Time       jsonFloat `json:"time"`
	Mass       jsonFloat `json:"mass"`
	Radius     jsonFloat `json:"radius"`
	Transition jsonFloat `json:"transition"`
	Crossed    bool      `json:"crossed"`
}

type ExportData struct {
	Run     RunMetadata    `json:"run"`
	Steps   int            `json:"steps"`
	Samples []exportSample `json:"samples"`
}

func ExportJSON(w io.Writer, meta RunMetadata, samples []dynamo.Sample) error {
	data := ExportData{
		Run:     meta,
		Steps:   len(samples),
		Samples: make([]exportSample, len(samples)),
	}

	for i, s := range samples {
		data.Samples[i] = exportSample{
			Index:      s.Index,
			Time:       jsonFloat(s.Time),
			Mass:       jsonFloat(s.Mass),
			Radius:     jsonFloat(s.Radius),
			Transition: jsonFloat(s.Transition),
			Crossed:    s.Crossed,
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
