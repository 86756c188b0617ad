package config

// knownEventKinds mirrors the event kinds the engine can be triggered by.
var knownEventKinds = map[string]bool{
	"push":    true,
	"release": true,
	"manual":  true,
}

// Validate eagerly checks the structural integrity of the model. It returns
// a *DeclarationError describing the first problem found, so a broken
// declaration is rejected before any job is dispatched.
func (m *Model) Validate() error {
	if m.Pipeline == nil {
		return Declarationf("no pipeline declared")
	}
	p := m.Pipeline
	if p.Name == "" {
		return Declarationf("pipeline has no name")
	}

	for _, t := range p.Triggers {
		if len(t.Events) == 0 {
			return Declarationf("pipeline %q: trigger declares no events", p.Name)
		}
		for _, e := range t.Events {
			if !knownEventKinds[e] {
				return Declarationf("pipeline %q: unknown trigger event %q", p.Name, e)
			}
		}
	}

	byName := make(map[string]*Job, len(p.Jobs))
	for _, j := range p.Jobs {
		if j.Name == "" {
			return Declarationf("pipeline %q: job with empty name", p.Name)
		}
		if _, dup := byName[j.Name]; dup {
			return Declarationf("duplicate job name %q", j.Name)
		}
		byName[j.Name] = j
	}

	for _, j := range p.Jobs {
		for _, need := range j.Needs {
			if need == j.Name {
				return Declarationf("job %q depends on itself", j.Name)
			}
			if _, ok := byName[need]; !ok {
				return Declarationf("job %q needs unknown job %q", j.Name, need)
			}
		}
		seenAxes := make(map[string]bool, len(j.Matrix))
		for _, ax := range j.Matrix {
			if ax.Name == "" {
				return Declarationf("job %q: matrix axis with empty name", j.Name)
			}
			if seenAxes[ax.Name] {
				return Declarationf("job %q: duplicate matrix axis %q", j.Name, ax.Name)
			}
			seenAxes[ax.Name] = true
			if len(ax.Values) == 0 {
				return Declarationf("job %q: matrix axis %q has no values", j.Name, ax.Name)
			}
		}
		if len(j.Steps) == 0 {
			return Declarationf("job %q declares no steps", j.Name)
		}
		for i, s := range j.Steps {
			switch {
			case s.Run != "" && s.Uses != "":
				return Declarationf("job %q step %d declares both run and uses", j.Name, i)
			case s.Run == "" && s.Uses == "":
				return Declarationf("job %q step %d declares neither run nor uses", j.Name, i)
			}
			for _, name := range append(append([]string{}, s.Consumes...), s.Produces...) {
				if name == "" {
					return Declarationf("job %q step %d references an artifact with empty name", j.Name, i)
				}
			}
		}
	}

	return nil
}
