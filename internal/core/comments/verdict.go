package comments

// VerdictKind enumerates the possible outcomes of moderating a candidate
// comment.
type VerdictKind int

const (
	// VerdictAccept stores the comment as Unapproved, pending moderation
	VerdictAccept VerdictKind = iota

	// VerdictAcceptMarkedSpam stores the comment with status Spam for
	// manual review
	VerdictAcceptMarkedSpam

	// VerdictSilentlyDrop discards the comment while the caller responds
	// with the same success shape as a real save, so automated submitters
	// cannot probe the detection
	VerdictSilentlyDrop

	// VerdictReject refuses the comment with a user-facing error
	VerdictReject
)

func (k VerdictKind) String() string {
	switch k {
	case VerdictAccept:
		return "accept"
	case VerdictAcceptMarkedSpam:
		return "accept-marked-spam"
	case VerdictSilentlyDrop:
		return "silently-drop"
	case VerdictReject:
		return "reject"
	default:
		return "unknown"
	}
}

// Verdict is the result of one moderation run. It is ephemeral and drives
// what the caller does next: save, save as spam, pretend success, or return
// the rejection to the user.
type Verdict struct {
	// Reason is set for policy rejections (ErrThrottled or ErrDuplicate)
	Reason error

	// FieldErrors is set for structural validation rejections
	FieldErrors FieldErrors

	Kind VerdictKind
}

// Accept marks the candidate as clean.
func Accept() Verdict {
	return Verdict{Kind: VerdictAccept}
}

// AcceptMarkedSpam keeps the candidate but flags it for review.
func AcceptMarkedSpam() Verdict {
	return Verdict{Kind: VerdictAcceptMarkedSpam}
}

// SilentlyDrop discards the candidate behind a fake success.
func SilentlyDrop() Verdict {
	return Verdict{Kind: VerdictSilentlyDrop}
}

// Reject refuses the candidate for a policy reason.
func Reject(reason error) Verdict {
	return Verdict{Kind: VerdictReject, Reason: reason}
}

// RejectFields refuses the candidate with per-field validation errors.
func RejectFields(errs FieldErrors) Verdict {
	return Verdict{Kind: VerdictReject, FieldErrors: errs}
}
