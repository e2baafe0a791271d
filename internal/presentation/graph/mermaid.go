package graph

import (
	"fmt"
	"strings"

	"github.com/dewakar-s/procflow/pkg/domain"
)

// Overlay marks session progress on the chart.
type Overlay struct {
	StepIndex int
	Status    domain.SessionStatus
}

// OverlayOf derives the overlay from a snapshot.
func OverlayOf(s *domain.State) *Overlay {
	return &Overlay{StepIndex: s.StepIndex, Status: s.Status}
}

// GenerateMermaid renders a procedure as a top-down flowchart.
// Shapes follow the step type:
//   - ASK_USER: [/Parallelogram/]
//   - API_CALL: [[Subroutine]]
//   - RESPOND_FINAL: ([Stadium])
//   - unknown: {{Hexagon}}
func GenerateMermaid(proc domain.Procedure, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")
	sb.WriteString("    start((\"start\"))\n")

	prev := "start"
	for i, step := range proc.Steps {
		id := fmt.Sprintf("s%d", i)
		opener, closer := "{{", "}}"
		switch step.Type {
		case domain.StepAskUser:
			opener, closer = "[/", "/]"
		case domain.StepAPICall:
			opener, closer = "[[", "]]"
		case domain.StepRespondFinal:
			opener, closer = "([", "])"
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", id, opener, label(i, step), closer)
		fmt.Fprintf(&sb, "    %s --> %s\n", prev, id)
		prev = id
	}
	sb.WriteString("    finish((\"end\"))\n")
	fmt.Fprintf(&sb, "    %s --> finish\n", prev)

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Black text keeps labels readable on both light and dark themes.
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")
		sb.WriteString("    class start visited;\n")

		for i := 0; i < overlay.StepIndex && i < len(proc.Steps); i++ {
			fmt.Fprintf(&sb, "    class s%d visited;\n", i)
		}
		switch {
		case overlay.Status == domain.StatusDone || overlay.Status == domain.StatusTerminated:
			sb.WriteString("    class finish current;\n")
		case overlay.StepIndex < len(proc.Steps):
			fmt.Fprintf(&sb, "    class s%d current;\n", overlay.StepIndex)
		}
	}

	return sb.String()
}

func label(i int, step domain.Step) string {
	text := fmt.Sprintf("%d. %s", i, step.Type)
	if step.Action != "" {
		text += "<br/>" + step.Action
	}
	// Double quotes end a Mermaid label.
	return strings.ReplaceAll(text, "\"", "'")
}
