package encoding

// Encoder maps fitted category labels to the integer codes the model was
// trained with. The class order is fixed at training time; index position
// is the code.
type Encoder struct {
	codes map[string]int
}

// New builds an encoder from an ordered class list.
func New(classes []string) *Encoder {
	codes := make(map[string]int, len(classes))
	for i, c := range classes {
		codes[c] = i
	}
	return &Encoder{codes: codes}
}

// TryEncode looks up the code for a label, reporting whether the label
// was part of the fitted class list.
func (e *Encoder) TryEncode(label string) (int, bool) {
	code, ok := e.codes[label]
	return code, ok
}

// Encode is the total form of TryEncode. Labels unseen at training time
// map to code 0 rather than failing; new categories are expected to show
// up after deployment.
func (e *Encoder) Encode(label string) int {
	code, ok := e.TryEncode(label)
	if !ok {
		return 0
	}
	return code
}

// Len reports the number of fitted classes.
func (e *Encoder) Len() int {
	return len(e.codes)
}
