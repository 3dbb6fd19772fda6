package columns

import "sort"

// Plan is the outcome of fitting a column set into a width.
type Plan struct {
	// Visible lists the ids to render: priority 0 columns in input order,
	// followed by the admitted columns in tier order.
	Visible []string
	// Hidden lists the remaining ids in input order.
	Hidden []string
	// Budget is the available width minus the buffer. It may be negative.
	Budget int
	// UsedWidth is the resolved width of the visible columns. It can exceed
	// Budget when priority 0 columns alone do not fit.
	UsedWidth int

	// shown marks admitted columns by input position, so repeated ids are
	// told apart.
	shown []bool
}

// Truncated reports whether any column was left out.
func (p Plan) Truncated() bool {
	return len(p.Hidden) > 0
}

// Columns returns the admitted descriptors of cols in input order. cols must
// be the slice the plan was made from.
func (p Plan) Columns(cols []Descriptor) []Descriptor {
	if len(p.shown) != len(cols) {
		return Keep(cols, p.Visible)
	}
	out := make([]Descriptor, 0, len(p.Visible))
	for i, c := range cols {
		if p.shown[i] {
			out = append(out, c)
		}
	}
	return out
}

// Select fits cols into availableWidth pixels, keeping buffer pixels free.
//
// Priority 0 columns are always included. The rest are considered tier by
// tier in ascending priority, in input order within a tier, and admitted
// while they fit. The first column that does not fit ends the selection:
// later, narrower columns are not tried.
func Select(cols []Descriptor, availableWidth, buffer int) Plan {
	plan := Plan{
		Visible: make([]string, 0, len(cols)),
		Budget:  availableWidth - buffer,
		shown:   make([]bool, len(cols)),
	}

	tiers := make(map[int][]int)
	for i, c := range cols {
		if c.Priority == 0 {
			plan.Visible = append(plan.Visible, c.ID)
			plan.UsedWidth += ResolveWidth(c)
			plan.shown[i] = true
			continue
		}
		tiers[c.Priority] = append(tiers[c.Priority], i)
	}

	priorities := make([]int, 0, len(tiers))
	for p := range tiers {
		priorities = append(priorities, p)
	}
	sort.Ints(priorities)

pack:
	for _, p := range priorities {
		for _, i := range tiers[p] {
			w := ResolveWidth(cols[i])
			if plan.UsedWidth+w > plan.Budget {
				break pack
			}
			plan.Visible = append(plan.Visible, cols[i].ID)
			plan.UsedWidth += w
			plan.shown[i] = true
		}
	}

	for i, c := range cols {
		if !plan.shown[i] {
			plan.Hidden = append(plan.Hidden, c.ID)
		}
	}

	return plan
}

// SelectVisible returns the ids of the columns that fit into availableWidth
// pixels with buffer pixels reserved. See Select for the packing rules.
func SelectVisible(cols []Descriptor, availableWidth, buffer int) []string {
	return Select(cols, availableWidth, buffer).Visible
}

// SelectVisibleDefault is SelectVisible with DefaultBuffer.
func SelectVisibleDefault(cols []Descriptor, availableWidth int) []string {
	return SelectVisible(cols, availableWidth, DefaultBuffer)
}
