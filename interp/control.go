package interp

import "github.com/go-applesoft/applesoft/token"

// forFrame is one active FOR loop: the control variable, its limit and
// step, and the exact (line, token offset) to resume at on NEXT — the
// position immediately after the FOR clause's own line finished
// parsing "FOR v = a TO b [STEP s]". Re-entering there naturally
// handles both "FOR ... NEXT" packed onto one physical line and FOR
// and NEXT on separate lines, since the normal execution loop simply
// continues from wherever that position leads.
type forFrame struct {
	varName  string
	limit    float64
	step     float64
	lineIdx  int
	tokenPos int
}

// retPoint is one GOSUB return address: a line-table index.
type retPoint struct {
	lineIdx int
}

// userFunc is one DEF FN definition: the bound parameter name and the
// token sequence of the whole line plus the offset where the function
// body expression starts.
type userFunc struct {
	param     string
	toks      []token.Token
	bodyStart int
}

// forStack and gosubStack are plain LIFO stacks, grounded on the
// environment's GOSUB return-address stack: push/pop with no bound
// beyond available memory.
type forStack struct {
	frames []forFrame
}

func (s *forStack) push(f forFrame) { s.frames = append(s.frames, f) }

// findTop returns the index of the most recently pushed frame for
// varName, searching from the top so a nested re-use of the same
// control variable resolves to its innermost loop.
func (s *forStack) findTop(varName string) int {
	for i := len(s.frames) - 1; i >= 0; i-- {
		if s.frames[i].varName == varName {
			return i
		}
	}
	return -1
}

func (s *forStack) top() (forFrame, bool) {
	if len(s.frames) == 0 {
		return forFrame{}, false
	}
	return s.frames[len(s.frames)-1], true
}

// dropTo removes every frame above and including index i, used when
// NEXT closes a loop and any more deeply nested, abandoned loops must
// go with it.
func (s *forStack) dropTo(i int) {
	s.frames = s.frames[:i]
}

func (s *forStack) clear() { s.frames = nil }

type gosubStack struct {
	points []retPoint
}

func (s *gosubStack) push(p retPoint) { s.points = append(s.points, p) }

func (s *gosubStack) pop() (retPoint, bool) {
	if len(s.points) == 0 {
		return retPoint{}, false
	}
	p := s.points[len(s.points)-1]
	s.points = s.points[:len(s.points)-1]
	return p, true
}

func (s *gosubStack) clear() { s.points = nil }
