package attnmt

// Align force-decodes a target sentence and returns the
// attention weights over the source for every target
// position.
//
// The result has len(target) rows of len(source) weights.
// The target words only reach the decoder through the
// output projection, so the alignments depend on the
// target's length alone.
func (m *Model) Align(source, target []int) [][]float64 {
	session := m.NewSession(source)
	res := make([][]float64, 0, len(target))
	var state *OutputState
	for i := range target {
		if i == 0 {
			state = session.Start()
		} else {
			state = session.Next(state)
		}
		res = append(res, append([]float64{}, state.Alignment()...))
	}
	return res
}
