package checkin

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

const freeTextAckPrompt = "Thanks, I've passed that on to your care team. You can continue with the question above, or pick one of the quick actions."

// Engine advances check-in conversations through their flows. It holds only
// the immutable flow definitions; all per-conversation state lives in the
// State passed by the caller, so one Engine serves every patient.
type Engine struct {
	flows map[FlowType][]Step
}

func NewEngine() *Engine {
	return &Engine{flows: defaultFlows()}
}

// steps returns the step list for a flow. An unknown flow type is a
// programming error: the engine must never fabricate a plausible next step.
func (e *Engine) steps(flow FlowType) []Step {
	steps, ok := e.flows[flow]
	if !ok {
		panic(fmt.Sprintf("checkin: unknown flow type %q", flow))
	}
	return steps
}

// Start creates a fresh session at the top of the normal flow and returns
// the opening prompt.
func (e *Engine) Start(patientID uuid.UUID, now time.Time) (*State, Reply) {
	steps := e.steps(FlowNormal)
	state := &State{
		PatientID: patientID,
		Flow:      FlowNormal,
		Step:      0,
		StartedAt: now,
		UpdatedAt: now,
	}
	reply := Reply{
		Flow:   FlowNormal,
		Step:   0,
		Prompt: steps[0],
	}
	state.History = append(state.History, Message{
		Role:   RoleAssistant,
		Body:   steps[0].Prompt,
		SentAt: now,
	})
	return state, reply
}

// Advance applies one patient input to the session state and returns the
// next prompt. Option carries a canonical answer identifier; when it is
// empty, freeText holds an unstructured message that is acknowledged without
// moving the flow index.
//
// The state's flow and step are validated up front: an unknown flow or an
// out-of-range step index means the stored state is corrupt, and the engine
// aborts loudly rather than guessing.
func (e *Engine) Advance(state *State, option OptionID, freeText string, now time.Time) Reply {
	steps := e.steps(state.Flow)
	if state.Step < 0 || state.Step >= len(steps) {
		panic(fmt.Sprintf("checkin: step index %d out of range for flow %q", state.Step, state.Flow))
	}

	terminalStep := len(steps) - 1

	// Record the patient's side of the exchange.
	if option != "" {
		state.History = append(state.History, Message{
			Role:     RolePatient,
			Body:     e.optionLabel(state.Flow, state.Step, option),
			OptionID: option,
			SentAt:   now,
		})
	} else {
		state.History = append(state.History, Message{
			Role:   RolePatient,
			Body:   freeText,
			SentAt: now,
		})
	}
	state.UpdatedAt = now

	var reply Reply
	switch {
	case option == "" || option == OptReportSyncIssue:
		// Free text and sync-issue reports are acknowledged without
		// advancing the structured flow, and never alter triage.
		reply = Reply{
			Flow:        state.Flow,
			Step:        state.Step,
			Prompt:      Step{Prompt: freeTextAckPrompt},
			FreeTextAck: true,
			Terminal:    state.Step == terminalStep,
		}

	case e.isQuickAction(option) && state.Step != terminalStep:
		target := quickActions[option]
		state.Flow = target
		state.Step = 0
		targetSteps := e.steps(target)
		reply = Reply{
			Flow:     target,
			Step:     0,
			Prompt:   targetSteps[0],
			Terminal: len(targetSteps) == 1,
		}

	case state.Flow == FlowNormal && state.Step == symptomScreenStep && isEscalatingSymptom(option):
		esc := symptomEscalations[option]
		state.Flow = esc.flow
		state.Step = 0
		targetSteps := e.steps(esc.flow)
		reply = Reply{
			Flow:   esc.flow,
			Step:   0,
			Prompt: targetSteps[0],
			Escalation: &Escalation{
				Signal:      esc.signal,
				Cause:       string(option),
				Headline:    esc.headline,
				Description: fmt.Sprintf("Reported during check-in on %s.", now.Format("2 Jan 2006 15:04")),
			},
			Terminal: len(targetSteps) == 1,
		}

	case state.Step == terminalStep:
		// Already at the closing step: no further movement.
		reply = Reply{
			Flow:     state.Flow,
			Step:     state.Step,
			Prompt:   steps[state.Step],
			Terminal: true,
		}

	default:
		state.Step++
		reply = Reply{
			Flow:     state.Flow,
			Step:     state.Step,
			Prompt:   steps[state.Step],
			Terminal: state.Step == terminalStep,
		}
	}

	state.History = append(state.History, Message{
		Role:   RoleAssistant,
		Body:   reply.Prompt.Prompt,
		SentAt: now,
	})
	return reply
}

func (e *Engine) isQuickAction(option OptionID) bool {
	_, ok := quickActions[option]
	return ok
}

func isEscalatingSymptom(option OptionID) bool {
	_, ok := symptomEscalations[option]
	return ok
}

// optionLabel resolves the display label a patient selected; unknown options
// fall back to the raw identifier.
func (e *Engine) optionLabel(flow FlowType, step int, option OptionID) string {
	for _, opt := range e.steps(flow)[step].Options {
		if opt.ID == option {
			return opt.Label
		}
	}
	return string(option)
}
