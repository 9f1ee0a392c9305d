package report

import (
	"github.com/KaramelBytes/dagloom-cli/internal/profile"
	"github.com/KaramelBytes/dagloom-cli/internal/relations"
	"github.com/KaramelBytes/dagloom-cli/internal/utils"
)

// Interpretation holds the derived wording for one relation.
type Interpretation struct {
	Significant  *bool        `json:"significant,omitempty"`
	Association  string       `json:"association,omitempty"`
	Predictive   []Predictive `json:"most_predictive,omitempty"`
	Combinations []Predictive `json:"combinations,omitempty"`
	Quality      string       `json:"prediction_quality,omitempty"`
}

// RelationEntry is one relation in the structured document.
type RelationEntry struct {
	Key            string           `json:"key"`
	Sources        []string         `json:"sources"`
	Target         string           `json:"target"`
	Type           relations.Type   `json:"type"`
	Metrics        relations.Record `json:"metrics"`
	Interpretation Interpretation   `json:"interpretation"`
}

// Document is the machine-readable form of an analysis pass. It is built from the results,
// not from the rendered text.
type Document struct {
	RunID     string                 `json:"run_id,omitempty"`
	Dataset   string                 `json:"dataset,omitempty"`
	Relations []RelationEntry        `json:"relations"`
	Errors    []relations.ErrorEntry `json:"errors"`
	Profile   *profile.Document      `json:"profile,omitempty"`
}

// Document assembles the structured form of res. prof may be nil.
func (r *Renderer) Document(runID, dataset string, res *relations.Result, prof *profile.Document) *Document {
	doc := &Document{
		RunID:     runID,
		Dataset:   dataset,
		Relations: make([]RelationEntry, 0, len(res.Relations)),
		Errors:    append([]relations.ErrorEntry{}, res.Errors...),
		Profile:   prof,
	}
	for _, rel := range res.Relations {
		doc.Relations = append(doc.Relations, RelationEntry{
			Key:            rel.Key,
			Sources:        rel.Edge.Sources,
			Target:         rel.Edge.Target,
			Type:           rel.Record.Type(),
			Metrics:        rel.Record,
			Interpretation: r.interpret(rel.Record),
		})
	}
	return doc
}

func (r *Renderer) interpret(rec relations.Record) Interpretation {
	var in Interpretation
	sig := func(p *float64) {
		if p != nil {
			s := *p < r.opt.Alpha
			in.Significant = &s
		}
	}
	var target *relations.CategoricalTargetModel
	switch rec := rec.(type) {
	case *relations.NumericToNumeric:
		sig(rec.PValue)
	case *relations.CategoricalToNumeric:
		sig(rec.PValue)
	case *relations.CategoricalToCategorical:
		p := rec.PValue
		sig(&p)
		in.Association = AssociationStrength(rec.CramersV)
	case *relations.MultiCategoricalToNumeric:
		sig(rec.PValue)
	case *relations.MixedToNumeric:
		sig(rec.PValue)
	case *relations.MixedToCategorical:
		target = &rec.CategoricalTargetModel
	case *relations.MultiCategoricalToCategorical:
		target = &rec.CategoricalTargetModel
	}
	if target != nil {
		for _, t := range target.Conditional {
			in.Predictive = append(in.Predictive, mostPredictive(target, t, r.opt.LiftThreshold)...)
		}
		in.Combinations = combinations(target)
		if target.Prediction.Error == "" {
			in.Quality = AccuracyBucket(target.Prediction.Accuracy)
		}
	}
	return in
}

// JSON renders the document with two-space indentation.
func (d *Document) JSON() ([]byte, error) {
	return utils.PrettyJSON(d)
}
