package didcomm

// Problem report codes, one per failure class the protocol surface reports.
const (
	CodeUnauthorized  = "e.p.msg.unauthorized"
	CodeBadRequest    = "e.p.msg.bad-request"
	CodeNotFound      = "e.p.msg.not-found"
	CodeConflict      = "e.p.msg.conflict"
	CodeInternalError = "e.p.msg.internal-error"
)

// ProblemReport is the body of a problem-report message.
// https://identity.foundation/didcomm-messaging/spec/#problem-reports
type ProblemReport struct {
	Code       string   `json:"code"`
	Comment    string   `json:"comment"`
	Args       []string `json:"args,omitempty"`
	EscalateTo string   `json:"escalate_to,omitempty"`
}

func NewProblemReport(code, comment string) ProblemReport {
	return ProblemReport{Code: code, Comment: comment}
}

func Unauthorized(comment string) ProblemReport {
	return NewProblemReport(CodeUnauthorized, comment)
}

func BadRequest(comment string) ProblemReport {
	return NewProblemReport(CodeBadRequest, comment)
}

func NotFound(comment string) ProblemReport {
	return NewProblemReport(CodeNotFound, comment)
}

func Conflict(comment string) ProblemReport {
	return NewProblemReport(CodeConflict, comment)
}

func InternalError(comment string) ProblemReport {
	return NewProblemReport(CodeInternalError, comment)
}

// WithArgs attaches positional arguments interpolating into the comment.
func (r ProblemReport) WithArgs(args ...string) ProblemReport {
	r.Args = args
	return r
}

// WithEscalateTo names a contact for unresolvable problems.
func (r ProblemReport) WithEscalateTo(contact string) ProblemReport {
	r.EscalateTo = contact
	return r
}
