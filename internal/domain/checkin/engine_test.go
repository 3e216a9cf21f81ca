package checkin

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

var testNow = time.Date(2025, 3, 10, 8, 30, 0, 0, time.UTC)

func startSession(t *testing.T, e *Engine) (*State, Reply) {
	t.Helper()
	state, reply := e.Start(uuid.New(), testNow)
	if reply.Flow != FlowNormal || reply.Step != 0 {
		t.Fatalf("expected normal flow step 0, got %s step %d", reply.Flow, reply.Step)
	}
	return state, reply
}

func TestEngineStart(t *testing.T) {
	e := NewEngine()
	state, reply := startSession(t, e)

	if reply.Terminal {
		t.Error("opening step should not be terminal")
	}
	if len(reply.Prompt.Options) != 3 {
		t.Errorf("expected 3 wellbeing options, got %d", len(reply.Prompt.Options))
	}
	if len(state.History) != 1 || state.History[0].Role != RoleAssistant {
		t.Errorf("expected opening prompt in history, got %+v", state.History)
	}
}

func TestEngineNormalFlowCompletes(t *testing.T) {
	e := NewEngine()
	state, _ := startSession(t, e)

	reply := e.Advance(state, OptFeelingGood, "", testNow)
	if reply.Flow != FlowNormal || reply.Step != 1 {
		t.Fatalf("expected step 1, got %s step %d", reply.Flow, reply.Step)
	}

	reply = e.Advance(state, OptNoneOfThese, "", testNow)
	if reply.Step != 2 || reply.Escalation != nil {
		t.Fatalf("'none of these' should advance without escalation, got step %d escalation=%v", reply.Step, reply.Escalation)
	}

	reply = e.Advance(state, OptMedsTakenAll, "", testNow)
	if !reply.Terminal {
		t.Errorf("expected closing step to be terminal, got %+v", reply)
	}
	if reply.Prompt.Prompt != closingPrompt {
		t.Errorf("expected closing prompt, got %q", reply.Prompt.Prompt)
	}
}

func TestEngineChestPainEscalatesRed(t *testing.T) {
	e := NewEngine()
	state, _ := startSession(t, e)
	e.Advance(state, OptFeelingOkay, "", testNow)

	reply := e.Advance(state, OptChestPain, "", testNow)
	if reply.Flow != FlowUrgent || reply.Step != 0 {
		t.Fatalf("expected urgent flow step 0, got %s step %d", reply.Flow, reply.Step)
	}
	if reply.Escalation == nil {
		t.Fatal("expected an escalation")
	}
	if reply.Escalation.Signal != SignalRed {
		t.Errorf("expected red signal, got %s", reply.Escalation.Signal)
	}
	if reply.Escalation.Cause != string(OptChestPain) {
		t.Errorf("expected cause %q, got %q", OptChestPain, reply.Escalation.Cause)
	}
	if state.Flow != FlowUrgent || state.Step != 0 {
		t.Errorf("state not moved to urgent flow: %s step %d", state.Flow, state.Step)
	}
}

func TestEngineSymptomEscalationsAmber(t *testing.T) {
	for _, opt := range []OptionID{OptBreathlessRest, OptFainting} {
		e := NewEngine()
		state, _ := startSession(t, e)
		e.Advance(state, OptFeelingOkay, "", testNow)

		reply := e.Advance(state, opt, "", testNow)
		if reply.Flow != FlowConcern {
			t.Errorf("%s: expected concern flow, got %s", opt, reply.Flow)
		}
		if reply.Escalation == nil || reply.Escalation.Signal != SignalAmber {
			t.Errorf("%s: expected amber escalation, got %+v", opt, reply.Escalation)
		}
	}
}

func TestEngineAnkleSwellingDoesNotEscalate(t *testing.T) {
	e := NewEngine()
	state, _ := startSession(t, e)
	e.Advance(state, OptFeelingOkay, "", testNow)

	reply := e.Advance(state, OptAnkleSwelling, "", testNow)
	if reply.Escalation != nil {
		t.Errorf("ankle swelling should not escalate, got %+v", reply.Escalation)
	}
	if reply.Flow != FlowNormal || reply.Step != 2 {
		t.Errorf("expected linear advance to step 2, got %s step %d", reply.Flow, reply.Step)
	}
}

func TestEngineQuickActionPreempts(t *testing.T) {
	cases := []struct {
		option OptionID
		flow   FlowType
	}{
		{OptRequestRefill, FlowRefill},
		{OptRequestCall, FlowCall},
		{OptReportComplaint, FlowComplaint},
		{OptReportSideEffect, FlowSideEffect},
		{OptBookAppointment, FlowAppointment},
	}
	for _, tc := range cases {
		e := NewEngine()
		state, _ := startSession(t, e)

		reply := e.Advance(state, tc.option, "", testNow)
		if reply.Flow != tc.flow || reply.Step != 0 {
			t.Errorf("%s: expected %s flow step 0, got %s step %d", tc.option, tc.flow, reply.Flow, reply.Step)
		}
		if reply.Escalation != nil {
			t.Errorf("%s: quick actions do not escalate, got %+v", tc.option, reply.Escalation)
		}
	}
}

func TestEngineCallAmbulanceIsTerminal(t *testing.T) {
	e := NewEngine()
	state, _ := startSession(t, e)

	reply := e.Advance(state, OptCallAmbulance, "", testNow)
	if reply.Flow != FlowAmbulance || !reply.Terminal {
		t.Errorf("expected terminal ambulance flow, got %s terminal=%v", reply.Flow, reply.Terminal)
	}
}

func TestEngineQuickActionFromSubFlow(t *testing.T) {
	e := NewEngine()
	state, _ := startSession(t, e)
	e.Advance(state, OptFeelingOkay, "", testNow)
	e.Advance(state, OptBreathlessRest, "", testNow)

	// Mid concern flow the patient asks for an ambulance.
	reply := e.Advance(state, OptCallAmbulance, "", testNow)
	if reply.Flow != FlowAmbulance {
		t.Errorf("expected ambulance flow, got %s", reply.Flow)
	}
}

func TestEngineFreeTextDoesNotAdvance(t *testing.T) {
	e := NewEngine()
	state, _ := startSession(t, e)
	e.Advance(state, OptFeelingGood, "", testNow)

	reply := e.Advance(state, "", "my watch strap broke", testNow)
	if !reply.FreeTextAck {
		t.Error("expected a free-text acknowledgement")
	}
	if reply.Flow != FlowNormal || reply.Step != 1 {
		t.Errorf("free text must not move the flow, got %s step %d", reply.Flow, reply.Step)
	}
	if state.Step != 1 {
		t.Errorf("state step changed to %d", state.Step)
	}

	// The structured question is still answerable afterwards.
	reply = e.Advance(state, OptNoneOfThese, "", testNow)
	if reply.Step != 2 {
		t.Errorf("expected step 2 after resuming, got %d", reply.Step)
	}
}

func TestEngineSyncIssueAcknowledged(t *testing.T) {
	e := NewEngine()
	state, _ := startSession(t, e)

	reply := e.Advance(state, OptReportSyncIssue, "", testNow)
	if !reply.FreeTextAck || reply.Step != 0 {
		t.Errorf("sync issue should only be acknowledged, got %+v", reply)
	}
}

func TestEngineTerminalStepIsIdempotent(t *testing.T) {
	e := NewEngine()
	state, _ := startSession(t, e)
	e.Advance(state, OptFeelingGood, "", testNow)
	e.Advance(state, OptNoneOfThese, "", testNow)
	e.Advance(state, OptMedsTakenAll, "", testNow)

	reply := e.Advance(state, OptFeelingGood, "", testNow)
	if !reply.Terminal || reply.Step != 3 {
		t.Errorf("expected to stay on closing step, got %+v", reply)
	}
}

func TestEngineRecordsHistory(t *testing.T) {
	e := NewEngine()
	state, _ := startSession(t, e)

	e.Advance(state, OptFeelingGood, "", testNow)
	// Opening prompt, patient answer, next prompt.
	if len(state.History) != 3 {
		t.Fatalf("expected 3 history entries, got %d", len(state.History))
	}
	if state.History[1].Role != RolePatient || state.History[1].OptionID != OptFeelingGood {
		t.Errorf("patient message not recorded: %+v", state.History[1])
	}
	if state.History[1].Body != "I'm feeling good" {
		t.Errorf("expected display label in transcript, got %q", state.History[1].Body)
	}
}

func TestEnginePanicsOnUnknownFlow(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic on unknown flow")
		}
	}()
	e := NewEngine()
	state := &State{PatientID: uuid.New(), Flow: FlowType("bogus")}
	e.Advance(state, OptFeelingGood, "", testNow)
}

func TestEnginePanicsOnCorruptStep(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic on out-of-range step")
		}
	}()
	e := NewEngine()
	state := &State{PatientID: uuid.New(), Flow: FlowNormal, Step: 99}
	e.Advance(state, OptFeelingGood, "", testNow)
}
