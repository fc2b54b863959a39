package proof

import "strings"

// Kind classifies why a proof could not be built or was rejected. Kinds are
// errors themselves, so construction failures can be matched with errors.Is
// and verification results can be consumed as codes.
type Kind uint8

const (
	ViewingKeyMalformed Kind = iota + 1
	NoteValueTooBig
	PointAtInfinity
	NotOnCurve
	PublicValueMalformed
	IncorrectNoteNumber
	ScalarTooBig
	ScalarIsZero
	BadBlindingFactor
	ChallengeResponseFail
	NoteMismatch
)

var kindText = map[Kind]string{
	ViewingKeyMalformed:   "viewing key malformed",
	NoteValueTooBig:       "note value too big",
	PointAtInfinity:       "point at infinity",
	NotOnCurve:            "not on curve",
	PublicValueMalformed:  "public value malformed",
	IncorrectNoteNumber:   "incorrect note number",
	ScalarTooBig:          "scalar too big",
	ScalarIsZero:          "scalar is zero",
	BadBlindingFactor:     "bad blinding factor",
	ChallengeResponseFail: "challenge response fail",
	NoteMismatch:          "note mismatch",
}

// String returns the machine-readable code, e.g. NOT_ON_CURVE.
func (k Kind) String() string {
	text, ok := kindText[k]
	if !ok {
		return "UNKNOWN"
	}
	return strings.ToUpper(strings.ReplaceAll(text, " ", "_"))
}

func (k Kind) Error() string {
	text, ok := kindText[k]
	if !ok {
		return "proof: unknown failure"
	}
	return "proof: " + text
}
