package rules

import (
	"github.com/kodjo-amani/dossier-check/internal/entity"
)

// BuildContext flattens a dossier into the field namespace conditions
// address: "visa_type", "<doc>.success", "<doc>.<field>",
// "<doc>.checks.<check>" and "<doc>.confidence.<field>".
func BuildContext(d *entity.Dossier) map[string]any {
	ctx := map[string]any{}
	if d == nil {
		return ctx
	}
	ctx["visa_type"] = string(d.VisaType)

	for dt, doc := range d.Documents {
		if doc == nil {
			continue
		}
		prefix := string(dt)
		ctx[prefix+".success"] = doc.Success
		for name, f := range doc.Fields {
			ctx[prefix+"."+name] = f.Value
			ctx[prefix+".confidence."+name] = float64(f.Confidence)
		}
		for name, v := range doc.Checks {
			ctx[prefix+".checks."+name] = v
		}
	}
	return ctx
}
