package pipeline

import (
	"strings"
)

// Action is what a rule does to a matching file.
type Action int

const (
	// ActionConvert turns <name>.txt into a sibling <name>.mem.
	ActionConvert Action = iota
	// ActionReshape packs GroupSize rows into one, in place.
	ActionReshape
	// ActionClean drops blank lines, in place.
	ActionClean
)

func (a Action) String() string {
	switch a {
	case ActionConvert:
		return "convert"
	case ActionReshape:
		return "reshape"
	case ActionClean:
		return "clean"
	default:
		return "unknown"
	}
}

// InPlace reports whether the action rewrites the file it matched.
func (a Action) InPlace() bool {
	return a == ActionReshape || a == ActionClean
}

// Rule binds a file-name predicate to an action. Rules run as separate
// passes over the directory in table order, so later rules see the output
// of earlier ones.
type Rule struct {
	Name      string
	Match     func(name string) bool
	Action    Action
	GroupSize int
}

// Rules returns the dispatch table for a directory. gates lists the gate
// names whose <gate>_bias.txt is converted in the last pass.
//
// bilstm_weight_hh_* / bilstm_weight_ih_* rows are packed in pairs. The
// downstream loader reads these as 2-word rows even though the layout was
// once documented as 4-word rows.
func Rules(gates []string) []Rule {
	gateFiles := make(map[string]bool, len(gates))
	for _, g := range gates {
		gateFiles[g+"_bias.txt"] = true
	}

	return []Rule{
		{
			Name:   "txt",
			Match:  func(name string) bool { return strings.HasSuffix(name, ".txt") },
			Action: ActionConvert,
		},
		{
			Name: "hh_bilstm",
			Match: func(name string) bool {
				return strings.HasSuffix(name, ".mem") && strings.Contains(name, "_hh_bilstm")
			},
			Action:    ActionReshape,
			GroupSize: 2,
		},
		{
			Name: "ih_bilstm",
			Match: func(name string) bool {
				return strings.HasSuffix(name, ".mem") &&
					strings.Contains(name, "_ih_bilstm") &&
					!strings.Contains(name, "_hh_bilstm")
			},
			Action: ActionClean,
		},
		{
			Name: "bilstm_weight",
			Match: func(name string) bool {
				return strings.HasSuffix(name, ".mem") &&
					(strings.HasPrefix(name, "bilstm_weight_hh_") || strings.HasPrefix(name, "bilstm_weight_ih_"))
			},
			Action:    ActionReshape,
			GroupSize: 2,
		},
		{
			Name:   "gate_bias",
			Match:  func(name string) bool { return gateFiles[name] },
			Action: ActionConvert,
		},
	}
}

// memName maps a .txt source to its .mem output.
func memName(name string) string {
	return strings.TrimSuffix(name, ".txt") + ".mem"
}
