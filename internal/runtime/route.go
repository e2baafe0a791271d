package runtime

import "github.com/dewakar-s/procflow/pkg/domain"

// Node is a driver state.
type Node string

const (
	NodeEntry          Node = "ENTRY"
	NodeAwaitingInput  Node = "AWAITING_INPUT"
	NodeInvokingAction Node = "INVOKING_ACTION"
	NodeFinalized      Node = "FINALIZED"
	NodeTerminated     Node = "TERMINATED"
)

// Terminal reports whether no transition leaves n.
func (n Node) Terminal() bool {
	return n == NodeFinalized || n == NodeTerminated
}

// Route decides the node for the step at index.
func Route(index int, steps []domain.Step) Node {
	if index < 0 || index >= len(steps) {
		return NodeTerminated
	}
	switch steps[index].Type {
	case domain.StepAskUser:
		return NodeAwaitingInput
	case domain.StepAPICall:
		return NodeInvokingAction
	case domain.StepRespondFinal:
		return NodeFinalized
	default:
		return NodeTerminated
	}
}
