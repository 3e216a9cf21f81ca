package checkin

// symptomScreenStep is the index of the symptom-screening step within the
// normal flow. Escalating answers are only recognized there.
const symptomScreenStep = 1

// quickActions map an answer to the dedicated flow it preempts into,
// regardless of where the conversation currently stands (except from within
// a terminal step).
var quickActions = map[OptionID]FlowType{
	OptCallAmbulance:    FlowAmbulance,
	OptRequestRefill:    FlowRefill,
	OptRequestCall:      FlowCall,
	OptReportComplaint:  FlowComplaint,
	OptReportSideEffect: FlowSideEffect,
	OptBookAppointment:  FlowAppointment,
}

// symptomEscalations map symptom-screen answers to the flow and triage
// signal they trigger.
var symptomEscalations = map[OptionID]struct {
	flow     FlowType
	signal   TriageSignal
	headline string
}{
	OptChestPain:      {FlowUrgent, SignalRed, "Patient reported chest pain or pressure"},
	OptBreathlessRest: {FlowConcern, SignalAmber, "Patient reported shortness of breath at rest"},
	OptFainting:       {FlowConcern, SignalAmber, "Patient reported fainting or near-fainting"},
}

const closingPrompt = "Thanks, that's everything for today. Your care team can see your answers. Check in again tomorrow!"

// defaultFlows returns the flow definitions. Prompts and labels are display
// defaults; routing depends only on option IDs.
func defaultFlows() map[FlowType][]Step {
	return map[FlowType][]Step{
		FlowNormal: {
			{
				Prompt: "Good morning! How are you feeling today?",
				Options: []Option{
					{OptFeelingGood, "I'm feeling good"},
					{OptFeelingOkay, "I'm okay"},
					{OptFeelingUnwell, "Not great today"},
				},
			},
			{
				Prompt: "Have you noticed any of these symptoms since your last check-in?",
				Options: []Option{
					{OptChestPain, "Chest pain or pressure"},
					{OptBreathlessRest, "Shortness of breath at rest"},
					{OptFainting, "Fainting or near-fainting"},
					{OptAnkleSwelling, "New ankle or leg swelling"},
					{OptNoneOfThese, "None of these"},
				},
			},
			{
				Prompt: "Have you taken your medications as prescribed today?",
				Options: []Option{
					{OptMedsTakenAll, "Yes, all of them"},
					{OptMedsMissedDose, "I missed a dose"},
					{OptRequestRefill, "I'm running out and need a refill"},
				},
			},
			{Prompt: closingPrompt},
		},
		FlowUrgent: {
			{
				Prompt: "Chest pain after cardiac surgery needs urgent attention. Would you like us to call an ambulance for you now?",
				Options: []Option{
					{OptCallAmbulance, "Yes, call an ambulance"},
					{OptRequestCall, "No, but I'd like a nurse to call me"},
				},
			},
			{Prompt: "Your care team has been alerted and will contact you very soon. If your symptoms get worse, call emergency services immediately."},
		},
		FlowConcern: {
			{
				Prompt: "Thank you for telling us. How long have you had this symptom?",
				Options: []Option{
					{OptSinceToday, "It started today"},
					{OptFewDays, "A few days"},
					{OptWeekOrMore, "A week or more"},
				},
			},
			{Prompt: "A nurse will review your check-in today and may call you. If the symptom gets worse, ask for an ambulance right away."},
		},
		FlowRefill: {
			{
				Prompt: "Which medication do you need refilled?",
				Options: []Option{
					{OptMedHeart, "My heart medication"},
					{OptMedBloodThinner, "My blood thinner"},
					{OptMedOther, "Something else"},
				},
			},
			{Prompt: "We've sent your refill request to the pharmacy. You'll get a message when it's ready to collect."},
		},
		FlowCall: {
			{
				Prompt: "When is the best time for a nurse to call you?",
				Options: []Option{
					{OptTimeMorning, "Morning"},
					{OptTimeAfternoon, "Afternoon"},
					{OptTimeEvening, "Evening"},
				},
			},
			{Prompt: "Noted. A nurse will call you in your preferred window."},
		},
		FlowComplaint: {
			{
				Prompt: "We're sorry to hear that. What is your complaint about?",
				Options: []Option{
					{OptComplaintCare, "The care I received"},
					{OptComplaintDevice, "My monitoring device"},
					{OptComplaintOther, "Something else"},
				},
			},
			{Prompt: "Your complaint has been logged and the ward team will follow up with you."},
		},
		FlowSideEffect: {
			{
				Prompt: "Which side effect are you experiencing?",
				Options: []Option{
					{OptSideEffectDizzy, "Dizziness or light-headedness"},
					{OptSideEffectNausea, "Nausea"},
					{OptSideEffectOther, "Something else"},
				},
			},
			{Prompt: "Thanks, we've noted the side effect. Keep taking your medication unless a clinician tells you otherwise; a pharmacist will review this."},
		},
		FlowAppointment: {
			{
				Prompt: "What kind of appointment would you like to book?",
				Options: []Option{
					{OptApptCheckup, "A routine check-up"},
					{OptApptCardiology, "A cardiology review"},
				},
			},
			{Prompt: "We've asked the scheduling team to book this for you. You'll receive the date by message."},
		},
		FlowAmbulance: {
			{Prompt: "We are contacting emergency services for you now. Please stay where you are, unlock your door if you can, and keep your phone nearby."},
		},
	}
}
